package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubin-dev/roomescape/internal/clock"
	"github.com/yubin-dev/roomescape/internal/model"
	"github.com/yubin-dev/roomescape/internal/repository"
	"github.com/yubin-dev/roomescape/internal/service"
)

type fakeMembers map[uint64]*model.Member

func (f fakeMembers) GetByID(_ context.Context, id uint64) (*model.Member, error) {
	if m, ok := f[id]; ok {
		return m, nil
	}
	return nil, repository.ErrMemberNotFound
}

type fakeSlots map[uint64]*model.TimeSlot

func (f fakeSlots) GetByID(_ context.Context, id uint64) (*model.TimeSlot, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, repository.ErrTimeSlotNotFound
}

type fakeThemes map[uint64]*model.Theme

func (f fakeThemes) GetByID(_ context.Context, id uint64) (*model.Theme, error) {
	if t, ok := f[id]; ok {
		return t, nil
	}
	return nil, repository.ErrThemeNotFound
}

// fakeReservations keeps just enough of the store contract for handler
// tests: holder uniqueness and rank by insertion order.
type fakeReservations struct {
	rows map[uint64]*model.Reservation
	next uint64
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{rows: map[uint64]*model.Reservation{}, next: 1}
}

func (f *fakeReservations) HolderExists(_ context.Context, slot model.Slot) (bool, error) {
	for _, r := range f.rows {
		if r.Slot == slot && r.Status == model.StatusReserved {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	if res.Status == model.StatusReserved {
		if taken, _ := f.HolderExists(context.Background(), res.Slot); taken {
			return repository.ErrSlotTaken
		}
	}
	res.ID = f.next
	f.next++
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	if r, ok := f.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrReservationNotFound
}

func (f *fakeReservations) GetViewByID(_ context.Context, id uint64) (*model.ReservationView, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &model.ReservationView{
		ID: r.ID, Date: r.Slot.Date, TimeSlotID: r.Slot.TimeSlotID,
		ThemeID: r.Slot.ThemeID, MemberID: r.MemberID, Status: r.Status,
	}, nil
}

func (f *fakeReservations) Remove(_ context.Context, id uint64) (*model.Reservation, error) {
	if _, ok := f.rows[id]; !ok {
		return nil, repository.ErrReservationNotFound
	}
	delete(f.rows, id)
	return nil, nil
}

func (f *fakeReservations) ListByConditions(_ context.Context, _ repository.ReservationFilter) ([]model.ReservationView, error) {
	return nil, nil
}

func (f *fakeReservations) ListWithRankByMember(_ context.Context, memberID uint64) ([]model.RankedReservation, error) {
	var out []model.RankedReservation
	for _, r := range f.rows {
		if r.MemberID != memberID {
			continue
		}
		rank := int64(0)
		if r.Status == model.StatusWaiting {
			rank = 1
			for _, other := range f.rows {
				if other.Slot == r.Slot && other.Status == model.StatusWaiting && other.ID < r.ID {
					rank++
				}
			}
		}
		view, _ := f.GetViewByID(context.Background(), r.ID)
		out = append(out, model.RankedReservation{ReservationView: *view, Rank: rank})
	}
	return out, nil
}

func newAdminHandler(t *testing.T) *AdminReservationHandler {
	t.Helper()
	now, err := time.Parse("2006-01-02 15:04", "2024-04-08 10:00")
	require.NoError(t, err)

	members := fakeMembers{4: {ID: 4, Name: "dana", Role: model.RoleUser}}
	slots := fakeSlots{20: {ID: 20, StartAt: "11:00"}}
	themes := fakeThemes{10: {ID: 10, Name: "vault"}}
	svc := service.NewReservationService(members, slots, themes, newFakeReservations(), clock.Fixed(now))
	return NewAdminReservationHandler(svc)
}

func postReservation(t *testing.T, h *AdminReservationHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, h.Create(c))
	return rec
}

func TestAdminCreateBooksForMember(t *testing.T) {
	h := newAdminHandler(t)

	rec := postReservation(t, h,
		`{"date":"2024-04-09","time_slot_id":20,"theme_id":10,"member_id":4}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"member_id":4`)
	assert.Contains(t, rec.Body.String(), model.StatusReserved)
	assert.Contains(t, rec.Body.String(), `"rank":0`)
}

func TestAdminCreateUnknownMember(t *testing.T) {
	h := newAdminHandler(t)

	rec := postReservation(t, h,
		`{"date":"2024-04-09","time_slot_id":20,"theme_id":10,"member_id":99}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCreateRequiresAllFields(t *testing.T) {
	h := newAdminHandler(t)

	rec := postReservation(t, h,
		`{"date":"2024-04-09","time_slot_id":20,"theme_id":10}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
