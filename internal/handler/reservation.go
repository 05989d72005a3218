package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yubin-dev/roomescape/internal/apperr"
	"github.com/yubin-dev/roomescape/internal/model"
	"github.com/yubin-dev/roomescape/internal/queue"
	"github.com/yubin-dev/roomescape/internal/service"
)

// ReservationHandler exposes the member-facing booking endpoints.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(s *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: s}
}

type createReservationReq struct {
	Date       string `json:"date"`
	TimeSlotID uint64 `json:"time_slot_id"`
	ThemeID    uint64 `json:"theme_id"`
}

// Create books a slot for the authenticated member. The first booking of a
// slot is RESERVED; later bookings queue as WAITING with their rank.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Date == "" || req.TimeSlotID == 0 || req.ThemeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date/time_slot_id/theme_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	slot := model.Slot{Date: req.Date, TimeSlotID: req.TimeSlotID, ThemeID: req.ThemeID}
	result, err := h.Reservations.Book(ctx, uid, slot)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}

	publishBooked(result.Reservation, false)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": result.Reservation,
		"rank":        result.Rank,
	})
}

// Mine lists the member's bookings with their waiting ranks.
func (h *ReservationHandler) Mine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Reservations.ListMine(ctx, uid)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	if out == nil {
		out = []model.RankedReservation{}
	}
	return c.JSON(http.StatusOK, out)
}

// Delete cancels one of the member's own bookings. Cancelling a RESERVED
// booking promotes the head of the waiting queue.
func (h *ReservationHandler) Delete(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	promoted, err := h.Reservations.CancelOwn(ctx, id, uid)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	notifyPromotion(promoted)
	return c.NoContent(http.StatusNoContent)
}

// notifyPromotion publishes an event for a booking that just took over a
// freed slot. Best-effort, never fails the request.
func notifyPromotion(promoted *model.ReservationView) {
	if promoted == nil {
		return
	}
	publishBooked(*promoted, true)
}

func publishBooked(v model.ReservationView, promoted bool) {
	ev := queue.ReservationBookedEvent{
		ReservationID: v.ID,
		MemberID:      v.MemberID,
		MemberName:    v.MemberName,
		Date:          v.Date,
		StartAt:       v.StartAt,
		Theme:         v.Theme,
		Status:        v.Status,
		Promoted:      promoted,
		BookedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		_ = queue.PublishReservationBooked(ctx, ev)
	}()
}
