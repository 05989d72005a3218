package service

import (
	"context"
	"sort"

	"github.com/yubin-dev/roomescape/internal/model"
	"github.com/yubin-dev/roomescape/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories. It mirrors
// their contract: one RESERVED row per slot, waiting queue ordered by id,
// promotion on removal of a RESERVED row.
type memStore struct {
	members      map[uint64]*model.Member
	themes       map[uint64]*model.Theme
	timeSlots    map[uint64]*model.TimeSlot
	reservations map[uint64]*model.Reservation
	nextID       uint64
}

func newMemStore() *memStore {
	return &memStore{
		members:      map[uint64]*model.Member{},
		themes:       map[uint64]*model.Theme{},
		timeSlots:    map[uint64]*model.TimeSlot{},
		reservations: map[uint64]*model.Reservation{},
		nextID:       1,
	}
}

func (s *memStore) addMember(id uint64, name, role string) {
	s.members[id] = &model.Member{ID: id, Email: name + "@example.com", Name: name, Role: role}
}

func (s *memStore) addTheme(id uint64, name string) {
	s.themes[id] = &model.Theme{ID: id, Name: name}
}

func (s *memStore) addTimeSlot(id uint64, startAt string) {
	s.timeSlots[id] = &model.TimeSlot{ID: id, StartAt: startAt}
}

func (s *memStore) GetByID(ctx context.Context, id uint64) (*model.Member, error) {
	if m, ok := s.members[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, repository.ErrMemberNotFound
}

// themeStore / timeSlotStore adapt memStore to the per-entity interfaces,
// since each store surface declares a GetByID of its own.
type themeStore struct{ *memStore }

func (s themeStore) Create(ctx context.Context, t *model.Theme) error {
	t.ID = s.nextIDVal()
	cp := *t
	s.themes[t.ID] = &cp
	return nil
}

func (s themeStore) GetByID(ctx context.Context, id uint64) (*model.Theme, error) {
	if t, ok := s.themes[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrThemeNotFound
}

func (s themeStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, t := range s.themes {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s themeStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := s.themes[id]; !ok {
		return repository.ErrThemeNotFound
	}
	delete(s.themes, id)
	return nil
}

func (s themeStore) List(ctx context.Context) ([]model.Theme, error) {
	out := make([]model.Theme, 0, len(s.themes))
	for _, t := range s.themes {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s themeStore) Popular(ctx context.Context, start, end string, limit int) ([]model.ThemePopularity, error) {
	counts := map[uint64]int64{}
	for _, r := range s.reservations {
		if r.Slot.Date >= start && r.Slot.Date <= end {
			counts[r.Slot.ThemeID]++
		}
	}
	var out []model.ThemePopularity
	for id, n := range counts {
		if t, ok := s.themes[id]; ok {
			out = append(out, model.ThemePopularity{Theme: *t, ReservationCount: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReservationCount != out[j].ReservationCount {
			return out[i].ReservationCount > out[j].ReservationCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type timeSlotStore struct{ *memStore }

func (s timeSlotStore) Create(ctx context.Context, slot *model.TimeSlot) error {
	slot.ID = s.nextIDVal()
	cp := *slot
	s.timeSlots[slot.ID] = &cp
	return nil
}

func (s timeSlotStore) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	if t, ok := s.timeSlots[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrTimeSlotNotFound
}

func (s timeSlotStore) ExistsByStartAt(ctx context.Context, startAt string) (bool, error) {
	for _, t := range s.timeSlots {
		if t.StartAt == startAt {
			return true, nil
		}
	}
	return false, nil
}

func (s timeSlotStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := s.timeSlots[id]; !ok {
		return repository.ErrTimeSlotNotFound
	}
	delete(s.timeSlots, id)
	return nil
}

func (s timeSlotStore) List(ctx context.Context) ([]model.TimeSlot, error) {
	out := make([]model.TimeSlot, 0, len(s.timeSlots))
	for _, t := range s.timeSlots {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt < out[j].StartAt })
	return out, nil
}

func (s timeSlotStore) ListWithBookedFlag(ctx context.Context, date string, themeID uint64) ([]model.AvailableTime, error) {
	slots, _ := s.List(ctx)
	out := make([]model.AvailableTime, 0, len(slots))
	for _, slot := range slots {
		booked := false
		for _, r := range s.reservations {
			if r.Slot.Date == date && r.Slot.ThemeID == themeID &&
				r.Slot.TimeSlotID == slot.ID && r.Status == model.StatusReserved {
				booked = true
				break
			}
		}
		out = append(out, model.AvailableTime{TimeSlot: slot, AlreadyBooked: booked})
	}
	return out, nil
}

type reservationStore struct{ *memStore }

func (s reservationStore) HolderExists(ctx context.Context, slot model.Slot) (bool, error) {
	for _, r := range s.reservations {
		if r.Slot == slot && r.Status == model.StatusReserved {
			return true, nil
		}
	}
	return false, nil
}

func (s reservationStore) Create(ctx context.Context, res *model.Reservation) error {
	if res.Status == model.StatusReserved {
		if taken, _ := s.HolderExists(ctx, res.Slot); taken {
			return repository.ErrSlotTaken
		}
	}
	res.ID = s.nextIDVal()
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s reservationStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	if r, ok := s.reservations[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrReservationNotFound
}

func (s reservationStore) GetViewByID(ctx context.Context, id uint64) (*model.ReservationView, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	v := s.view(r)
	return &v, nil
}

func (s reservationStore) Remove(ctx context.Context, id uint64) (*model.Reservation, error) {
	victim, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	delete(s.reservations, id)

	if victim.Status != model.StatusReserved {
		return nil, nil
	}
	var next *model.Reservation
	for _, r := range s.reservations {
		if r.Slot == victim.Slot && r.Status == model.StatusWaiting {
			if next == nil || r.ID < next.ID {
				next = r
			}
		}
	}
	if next == nil {
		return nil, nil
	}
	next.Status = model.StatusReserved
	cp := *next
	return &cp, nil
}

func (s reservationStore) ListByConditions(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationView, error) {
	var out []model.ReservationView
	for _, r := range s.sorted() {
		if f.MemberID != nil && r.MemberID != *f.MemberID {
			continue
		}
		if f.ThemeID != nil && r.Slot.ThemeID != *f.ThemeID {
			continue
		}
		if f.DateFrom != nil && r.Slot.Date < *f.DateFrom {
			continue
		}
		if f.DateTo != nil && r.Slot.Date > *f.DateTo {
			continue
		}
		out = append(out, s.view(r))
	}
	return out, nil
}

func (s reservationStore) ListWithRankByMember(ctx context.Context, memberID uint64) ([]model.RankedReservation, error) {
	var out []model.RankedReservation
	for _, r := range s.sorted() {
		if r.MemberID != memberID {
			continue
		}
		rank := int64(0)
		if r.Status == model.StatusWaiting {
			rank = 1
			for _, other := range s.reservations {
				if other.Slot == r.Slot && other.Status == model.StatusWaiting && other.ID < r.ID {
					rank++
				}
			}
		}
		out = append(out, model.RankedReservation{ReservationView: s.view(r), Rank: rank})
	}
	return out, nil
}

func (s reservationStore) ExistsByThemeID(ctx context.Context, themeID uint64) (bool, error) {
	for _, r := range s.reservations {
		if r.Slot.ThemeID == themeID {
			return true, nil
		}
	}
	return false, nil
}

func (s reservationStore) ExistsByTimeSlotID(ctx context.Context, timeSlotID uint64) (bool, error) {
	for _, r := range s.reservations {
		if r.Slot.TimeSlotID == timeSlotID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) nextIDVal() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) sorted() []*model.Reservation {
	out := make([]*model.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) view(r *model.Reservation) model.ReservationView {
	v := model.ReservationView{
		ID:         r.ID,
		Date:       r.Slot.Date,
		TimeSlotID: r.Slot.TimeSlotID,
		ThemeID:    r.Slot.ThemeID,
		MemberID:   r.MemberID,
		Status:     r.Status,
	}
	if ts, ok := s.timeSlots[r.Slot.TimeSlotID]; ok {
		v.StartAt = ts.StartAt
	}
	if th, ok := s.themes[r.Slot.ThemeID]; ok {
		v.Theme = th.Name
	}
	if m, ok := s.members[r.MemberID]; ok {
		v.MemberName = m.Name
	}
	return v
}
