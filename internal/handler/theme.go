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

// ThemeHandler exposes the theme catalog endpoints. Listing and popularity
// are public; creation and deletion are admin only.
type ThemeHandler struct {
	Catalog *service.CatalogService
}

// NewThemeHandler constructs a ThemeHandler.
func NewThemeHandler(s *service.CatalogService) *ThemeHandler {
	return &ThemeHandler{Catalog: s}
}

type createThemeReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// List returns all themes.
func (h *ThemeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	themes, err := h.Catalog.ListThemes(ctx)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	if themes == nil {
		themes = []model.Theme{}
	}
	return c.JSON(http.StatusOK, themes)
}

// Popular ranks themes by booking count. Optional query parameters: start,
// end (inclusive dates) and limit.
func (h *ThemeHandler) Popular(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Catalog.PopularThemes(ctx, c.QueryParam("start"), c.QueryParam("end"), limit)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	if out == nil {
		out = []model.ThemePopularity{}
	}
	return c.JSON(http.StatusOK, out)
}

// Create stores a new theme (admin only).
func (h *ThemeHandler) Create(c echo.Context) error {
	var req createThemeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Catalog.CreateTheme(ctx, req.Name, req.Description, req.Thumbnail)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	return c.JSON(http.StatusCreated, t)
}

// Delete removes a theme (admin only). Themes with bookings cannot be
// deleted.
func (h *ThemeHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Catalog.DeleteTheme(ctx, id); err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.Message(err)})
	}
	return c.NoContent(http.StatusNoContent)
}
