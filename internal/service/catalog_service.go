package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yubin-dev/roomescape/internal/apperr"
	"github.com/yubin-dev/roomescape/internal/clock"
	"github.com/yubin-dev/roomescape/internal/model"
	"github.com/yubin-dev/roomescape/internal/repository"
)

// Defaults for the popular-themes window when the caller leaves it open:
// the seven days ending yesterday, top ten themes.
const (
	popularWindowDays = 7
	popularLimit      = 10
	popularLimitCeil  = 100

	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04"

	maxThemeNameLength = 255
)

// ThemeCatalogStore is the theme persistence surface of the catalog service.
type ThemeCatalogStore interface {
	Create(ctx context.Context, t *model.Theme) error
	GetByID(ctx context.Context, id uint64) (*model.Theme, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context) ([]model.Theme, error)
	Popular(ctx context.Context, start, end string, limit int) ([]model.ThemePopularity, error)
}

// TimeSlotCatalogStore is the time slot persistence surface of the catalog
// service.
type TimeSlotCatalogStore interface {
	Create(ctx context.Context, s *model.TimeSlot) error
	GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error)
	ExistsByStartAt(ctx context.Context, startAt string) (bool, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context) ([]model.TimeSlot, error)
	ListWithBookedFlag(ctx context.Context, date string, themeID uint64) ([]model.AvailableTime, error)
}

// ReservationUsageStore answers whether catalog entities are referenced by
// bookings, which blocks their deletion.
type ReservationUsageStore interface {
	ExistsByThemeID(ctx context.Context, themeID uint64) (bool, error)
	ExistsByTimeSlotID(ctx context.Context, timeSlotID uint64) (bool, error)
}

// CatalogService manages themes and time slots.
type CatalogService struct {
	themes    ThemeCatalogStore
	timeSlots TimeSlotCatalogStore
	usage     ReservationUsageStore
	clk       clock.Clock
}

// NewCatalogService wires a CatalogService.
func NewCatalogService(themes ThemeCatalogStore, timeSlots TimeSlotCatalogStore, usage ReservationUsageStore, clk clock.Clock) *CatalogService {
	return &CatalogService{themes: themes, timeSlots: timeSlots, usage: usage, clk: clk}
}

// CreateTheme stores a new theme. Theme names are unique.
func (s *CatalogService) CreateTheme(ctx context.Context, name, description, thumbnail string) (*model.Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxThemeNameLength {
		return nil, apperr.Validation("invalid theme name")
	}
	exists, err := s.themes.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation("theme name already exists")
	}
	t := &model.Theme{Name: name, Description: description, Thumbnail: thumbnail}
	if err := s.themes.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTheme removes a theme unless any reservation still references it.
func (s *CatalogService) DeleteTheme(ctx context.Context, id uint64) error {
	if _, err := s.themes.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrThemeNotFound) {
			return apperr.NotFound("theme not found")
		}
		return err
	}
	inUse, err := s.usage.ExistsByThemeID(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.Validation("theme has reservations")
	}
	if err := s.themes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrThemeNotFound) {
			return apperr.NotFound("theme not found")
		}
		return err
	}
	return nil
}

// ListThemes returns all themes.
func (s *CatalogService) ListThemes(ctx context.Context) ([]model.Theme, error) {
	return s.themes.List(ctx)
}

// PopularThemes ranks themes by booking count over [start, end]. Empty
// bounds default to the week ending yesterday; a non-positive limit
// defaults to ten.
func (s *CatalogService) PopularThemes(ctx context.Context, start, end string, limit int) ([]model.ThemePopularity, error) {
	today := s.clk.Now().Format(dateLayout)
	if end == "" {
		end = s.clk.Now().AddDate(0, 0, -1).Format(dateLayout)
	}
	if start == "" {
		start = s.clk.Now().AddDate(0, 0, -popularWindowDays).Format(dateLayout)
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, apperr.Validation("invalid date")
		}
	}
	if start > end || end > today {
		return nil, apperr.Validation("invalid ranking window")
	}
	if limit <= 0 {
		limit = popularLimit
	}
	if limit > popularLimitCeil {
		limit = popularLimitCeil
	}
	return s.themes.Popular(ctx, start, end, limit)
}

// CreateTimeSlot stores a new daily start time. Start times are unique.
func (s *CatalogService) CreateTimeSlot(ctx context.Context, startAt string) (*model.TimeSlot, error) {
	if _, err := time.Parse(timeOfDayLayout, startAt); err != nil {
		return nil, apperr.Validation("invalid start time")
	}
	exists, err := s.timeSlots.ExistsByStartAt(ctx, startAt)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation("time slot already exists")
	}
	slot := &model.TimeSlot{StartAt: startAt}
	if err := s.timeSlots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// DeleteTimeSlot removes a slot unless any reservation still references it.
func (s *CatalogService) DeleteTimeSlot(ctx context.Context, id uint64) error {
	if _, err := s.timeSlots.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTimeSlotNotFound) {
			return apperr.NotFound("time slot not found")
		}
		return err
	}
	inUse, err := s.usage.ExistsByTimeSlotID(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.Validation("time slot has reservations")
	}
	if err := s.timeSlots.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTimeSlotNotFound) {
			return apperr.NotFound("time slot not found")
		}
		return err
	}
	return nil
}

// ListTimeSlots returns all slots ordered by start time.
func (s *CatalogService) ListTimeSlots(ctx context.Context) ([]model.TimeSlot, error) {
	return s.timeSlots.List(ctx)
}

// AvailableTimes returns every slot for a date and theme with a flag marking
// the ones already held by a RESERVED booking.
func (s *CatalogService) AvailableTimes(ctx context.Context, date string, themeID uint64) ([]model.AvailableTime, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperr.Validation("invalid date")
	}
	if _, err := s.themes.GetByID(ctx, themeID); err != nil {
		if errors.Is(err, repository.ErrThemeNotFound) {
			return nil, apperr.NotFound("theme not found")
		}
		return nil, err
	}
	return s.timeSlots.ListWithBookedFlag(ctx, date, themeID)
}
