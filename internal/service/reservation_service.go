// Package service implements the booking and catalog business rules on top
// of the storage layer. Services accept narrow store interfaces so they can
// be exercised without a database.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/yubin-dev/roomescape/internal/apperr"
	"github.com/yubin-dev/roomescape/internal/clock"
	"github.com/yubin-dev/roomescape/internal/model"
	"github.com/yubin-dev/roomescape/internal/repository"
)

// MemberStore is the member lookup surface the services need.
type MemberStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Member, error)
}

// TimeSlotStore is the time slot surface the reservation service needs.
type TimeSlotStore interface {
	GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error)
}

// ThemeStore is the theme surface the reservation service needs.
type ThemeStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Theme, error)
}

// ReservationStore is the reservation persistence surface.
type ReservationStore interface {
	HolderExists(ctx context.Context, slot model.Slot) (bool, error)
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetViewByID(ctx context.Context, id uint64) (*model.ReservationView, error)
	Remove(ctx context.Context, id uint64) (*model.Reservation, error)
	ListByConditions(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationView, error)
	ListWithRankByMember(ctx context.Context, memberID uint64) ([]model.RankedReservation, error)
}

// ReservationService implements booking, cancellation and listing rules.
type ReservationService struct {
	members      MemberStore
	timeSlots    TimeSlotStore
	themes       ThemeStore
	reservations ReservationStore
	clk          clock.Clock
}

// NewReservationService wires a ReservationService.
func NewReservationService(members MemberStore, timeSlots TimeSlotStore, themes ThemeStore, reservations ReservationStore, clk clock.Clock) *ReservationService {
	return &ReservationService{
		members:      members,
		timeSlots:    timeSlots,
		themes:       themes,
		reservations: reservations,
		clk:          clk,
	}
}

// BookResult reports the stored booking and whether it holds the slot or
// joined the waiting queue.
type BookResult struct {
	Reservation model.ReservationView
	Rank        int64
}

// Book places a booking for the member on the given slot. The first booking
// of a slot becomes RESERVED; later ones join the queue as WAITING. The slot
// instant must lie strictly in the future.
func (s *ReservationService) Book(ctx context.Context, memberID uint64, slot model.Slot) (*BookResult, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, apperr.NotFound("member not found")
		}
		return nil, err
	}
	ts, err := s.timeSlots.GetByID(ctx, slot.TimeSlotID)
	if err != nil {
		if errors.Is(err, repository.ErrTimeSlotNotFound) {
			return nil, apperr.NotFound("time slot not found")
		}
		return nil, err
	}
	theme, err := s.themes.GetByID(ctx, slot.ThemeID)
	if err != nil {
		if errors.Is(err, repository.ErrThemeNotFound) {
			return nil, apperr.NotFound("theme not found")
		}
		return nil, err
	}

	at, err := slotInstant(slot.Date, ts.StartAt)
	if err != nil {
		return nil, apperr.Validation("invalid date")
	}
	if !at.After(s.clk.Now()) {
		return nil, apperr.Validation("cannot book a past time")
	}

	taken, err := s.reservations.HolderExists(ctx, slot)
	if err != nil {
		return nil, err
	}
	status := model.StatusReserved
	if taken {
		status = model.StatusWaiting
	}

	res := &model.Reservation{Slot: slot, MemberID: memberID, Status: status}
	err = s.reservations.Create(ctx, res)
	if errors.Is(err, repository.ErrSlotTaken) {
		// Lost the race for the holder slot; queue instead.
		res.Status = model.StatusWaiting
		err = s.reservations.Create(ctx, res)
	}
	if err != nil {
		return nil, err
	}

	ranked, err := s.rankOf(ctx, memberID, res.ID)
	if err != nil {
		return nil, err
	}
	if ranked != nil {
		return &BookResult{Reservation: ranked.ReservationView, Rank: ranked.Rank}, nil
	}
	// Fallback projection when the rank listing missed the fresh row.
	return &BookResult{Reservation: model.ReservationView{
		ID:         res.ID,
		Date:       slot.Date,
		TimeSlotID: slot.TimeSlotID,
		StartAt:    ts.StartAt,
		ThemeID:    slot.ThemeID,
		Theme:      theme.Name,
		MemberID:   memberID,
		MemberName: member.Name,
		Status:     res.Status,
	}}, nil
}

func (s *ReservationService) rankOf(ctx context.Context, memberID, reservationID uint64) (*model.RankedReservation, error) {
	ranked, err := s.reservations.ListWithRankByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		if ranked[i].ID == reservationID {
			return &ranked[i], nil
		}
	}
	return nil, nil
}

// Cancel deletes any reservation by ID and returns the view of the booking
// promoted from the waiting queue, if the deletion freed a held slot.
func (s *ReservationService) Cancel(ctx context.Context, id uint64) (*model.ReservationView, error) {
	promoted, err := s.reservations.Remove(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return nil, apperr.NotFound("reservation not found")
	}
	if err != nil {
		return nil, err
	}
	if promoted == nil {
		return nil, nil
	}
	view, err := s.reservations.GetViewByID(ctx, promoted.ID)
	if err != nil {
		// promotion already committed; surface it even without the joins
		return &model.ReservationView{
			ID:         promoted.ID,
			Date:       promoted.Slot.Date,
			TimeSlotID: promoted.Slot.TimeSlotID,
			ThemeID:    promoted.Slot.ThemeID,
			MemberID:   promoted.MemberID,
			Status:     promoted.Status,
		}, nil
	}
	return view, nil
}

// CancelOwn deletes a reservation only when it belongs to the member.
func (s *ReservationService) CancelOwn(ctx context.Context, id, memberID uint64) (*model.ReservationView, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return nil, apperr.NotFound("reservation not found")
	}
	if err != nil {
		return nil, err
	}
	if res.MemberID != memberID {
		return nil, apperr.AccessDenied("not your reservation")
	}
	return s.Cancel(ctx, id)
}

// ListByConditions returns reservation views matching the admin filter.
func (s *ReservationService) ListByConditions(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationView, error) {
	return s.reservations.ListByConditions(ctx, f)
}

// ListMine returns the member's bookings with their queue ranks.
func (s *ReservationService) ListMine(ctx context.Context, memberID uint64) ([]model.RankedReservation, error) {
	return s.reservations.ListWithRankByMember(ctx, memberID)
}

// slotInstant combines a date and a start time into a UTC instant.
func slotInstant(date, startAt string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", date+" "+startAt)
}
