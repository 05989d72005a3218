package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yubin-dev/roomescape/internal/apperr"
	"github.com/yubin-dev/roomescape/internal/model"
	"github.com/yubin-dev/roomescape/internal/service"
)

// TimeSlotHandler exposes the time slot catalog endpoints. Listing and
// availability are public; creation and deletion are admin only.
type TimeSlotHandler struct {
	Catalog *service.CatalogService
}

// NewTimeSlotHandler constructs a TimeSlotHandler.
func NewTimeSlotHandler(s *service.CatalogService) *TimeSlotHandler {
	return &TimeSlotHandler{Catalog: s}
}

type createTimeSlotReq struct {
	StartAt string `json:"start_at"`
}

// List returns all time slots ordered by start time.
func (h *TimeSlotHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	slots, err := h.Catalog.ListTimeSlots(ctx)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	if slots == nil {
		slots = []model.TimeSlot{}
	}
	return c.JSON(http.StatusOK, slots)
}

// Available returns every slot for the date and theme query parameters with
// a flag marking the ones already held.
func (h *TimeSlotHandler) Available(c echo.Context) error {
	date := c.QueryParam("date")
	themeID, err := strconv.ParseUint(c.QueryParam("theme_id"), 10, 64)
	if date == "" || err != nil || themeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date/theme_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Catalog.AvailableTimes(ctx, date, themeID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	if out == nil {
		out = []model.AvailableTime{}
	}
	return c.JSON(http.StatusOK, out)
}

// Create stores a new start time (admin only).
func (h *TimeSlotHandler) Create(c echo.Context) error {
	var req createTimeSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	slot, err := h.Catalog.CreateTimeSlot(ctx, req.StartAt)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	return c.JSON(http.StatusCreated, slot)
}

// Delete removes a time slot (admin only). Slots with bookings cannot be
// deleted.
func (h *TimeSlotHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Catalog.DeleteTimeSlot(ctx, id); err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	return c.NoContent(http.StatusNoContent)
}
