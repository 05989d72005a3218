package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yubin-dev/roomescape/internal/apperr"
	"github.com/yubin-dev/roomescape/internal/model"
	"github.com/yubin-dev/roomescape/internal/repository"
	"github.com/yubin-dev/roomescape/internal/service"
)

// AdminReservationHandler exposes the admin booking endpoints: booking on
// behalf of a member, filtered listings and unrestricted deletion.
type AdminReservationHandler struct {
	Reservations *service.ReservationService
}

// NewAdminReservationHandler constructs an AdminReservationHandler.
func NewAdminReservationHandler(s *service.ReservationService) *AdminReservationHandler {
	return &AdminReservationHandler{Reservations: s}
}

type adminCreateReservationReq struct {
	Date       string `json:"date"`
	TimeSlotID uint64 `json:"time_slot_id"`
	ThemeID    uint64 `json:"theme_id"`
	MemberID   uint64 `json:"member_id"`
}

// Create books a slot on behalf of the given member. Admission follows the
// same rules as a member's own booking: RESERVED when the slot is free,
// WAITING otherwise.
func (h *AdminReservationHandler) Create(c echo.Context) error {
	var req adminCreateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Date == "" || req.TimeSlotID == 0 || req.ThemeID == 0 || req.MemberID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date/time_slot_id/theme_id/member_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	slot := model.Slot{Date: req.Date, TimeSlotID: req.TimeSlotID, ThemeID: req.ThemeID}
	result, err := h.Reservations.Book(ctx, req.MemberID, slot)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}

	publishBooked(result.Reservation, false)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": result.Reservation,
		"rank":        result.Rank,
	})
}

// List returns reservations filtered by the optional member_id, theme_id,
// date_from and date_to query parameters.
func (h *AdminReservationHandler) List(c echo.Context) error {
	var f repository.ReservationFilter

	if v := c.QueryParam("member_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member_id"})
		}
		f.MemberID = &id
	}
	if v := c.QueryParam("theme_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theme_id"})
		}
		f.ThemeID = &id
	}
	if v := c.QueryParam("date_from"); v != "" {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_from"})
		}
		f.DateFrom = &v
	}
	if v := c.QueryParam("date_to"); v != "" {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_to"})
		}
		f.DateTo = &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Reservations.ListByConditions(ctx, f)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	if out == nil {
		out = []model.ReservationView{}
	}
	return c.JSON(http.StatusOK, out)
}

// Delete removes any reservation by ID, promoting the head of the waiting
// queue when a RESERVED booking is removed.
func (h *AdminReservationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	promoted, err := h.Reservations.Cancel(ctx, id)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	notifyPromotion(promoted)
	return c.NoContent(http.StatusNoContent)
}
