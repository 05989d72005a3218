package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubin-dev/roomescape/internal/apperr"
	"github.com/yubin-dev/roomescape/internal/model"
)

func newTestCatalog(t *testing.T, store *memStore, now string) *CatalogService {
	t.Helper()
	return NewCatalogService(themeStore{store}, timeSlotStore{store}, reservationStore{store}, fixedClock(t, now))
}

func TestCreateThemeRejectsDuplicateName(t *testing.T) {
	store := newMemStore()
	svc := newTestCatalog(t, store, "2024-04-08 10:00")
	ctx := context.Background()

	created, err := svc.CreateTheme(ctx, "dungeon", "a dark one", "dungeon.png")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = svc.CreateTheme(ctx, "dungeon", "another", "x.png")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateTheme(ctx, "  ", "", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteThemeBlockedWhileInUse(t *testing.T) {
	store := newMemStore()
	slot := seedCatalog(store)
	rsvc := newTestService(t, store, "2024-04-08 10:00")
	csvc := newTestCatalog(t, store, "2024-04-08 10:00")
	ctx := context.Background()

	booked, err := rsvc.Book(ctx, 1, slot)
	require.NoError(t, err)

	err = csvc.DeleteTheme(ctx, slot.ThemeID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = rsvc.Cancel(ctx, booked.Reservation.ID)
	require.NoError(t, err)

	require.NoError(t, csvc.DeleteTheme(ctx, slot.ThemeID))
	err = csvc.DeleteTheme(ctx, slot.ThemeID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateTimeSlotValidatesAndDeduplicates(t *testing.T) {
	store := newMemStore()
	svc := newTestCatalog(t, store, "2024-04-08 10:00")
	ctx := context.Background()

	slot, err := svc.CreateTimeSlot(ctx, "11:00")
	require.NoError(t, err)
	assert.NotZero(t, slot.ID)

	_, err = svc.CreateTimeSlot(ctx, "11:00")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateTimeSlot(ctx, "25:99")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteTimeSlotBlockedWhileInUse(t *testing.T) {
	store := newMemStore()
	slot := seedCatalog(store)
	rsvc := newTestService(t, store, "2024-04-08 10:00")
	csvc := newTestCatalog(t, store, "2024-04-08 10:00")
	ctx := context.Background()

	_, err := rsvc.Book(ctx, 1, slot)
	require.NoError(t, err)

	err = csvc.DeleteTimeSlot(ctx, slot.TimeSlotID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = csvc.DeleteTimeSlot(ctx, 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAvailableTimesFlagsHeldSlots(t *testing.T) {
	store := newMemStore()
	slot := seedCatalog(store)
	store.addTimeSlot(21, "14:00")
	rsvc := newTestService(t, store, "2024-04-08 10:00")
	csvc := newTestCatalog(t, store, "2024-04-08 10:00")
	ctx := context.Background()

	_, err := rsvc.Book(ctx, 1, slot)
	require.NoError(t, err)
	// a waiting booking must not mark the slot as free or double-book it
	_, err = rsvc.Book(ctx, 2, slot)
	require.NoError(t, err)

	out, err := csvc.AvailableTimes(ctx, slot.Date, slot.ThemeID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "11:00", out[0].StartAt)
	assert.True(t, out[0].AlreadyBooked)
	assert.Equal(t, "14:00", out[1].StartAt)
	assert.False(t, out[1].AlreadyBooked)

	_, err = csvc.AvailableTimes(ctx, slot.Date, 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = csvc.AvailableTimes(ctx, "not-a-date", slot.ThemeID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPopularThemesWindowAndOrdering(t *testing.T) {
	store := newMemStore()
	slot := seedCatalog(store)
	store.addTheme(11, "library")
	store.addTimeSlot(21, "14:00")
	rsvc := newTestService(t, store, "2024-04-01 10:00")
	csvc := newTestCatalog(t, store, "2024-04-08 10:00")
	ctx := context.Background()

	// two bookings for theme 11, one for theme 10, all inside the window
	_, err := rsvc.Book(ctx, 1, model.Slot{Date: "2024-04-05", TimeSlotID: 20, ThemeID: 11})
	require.NoError(t, err)
	_, err = rsvc.Book(ctx, 2, model.Slot{Date: "2024-04-06", TimeSlotID: 21, ThemeID: 11})
	require.NoError(t, err)
	_, err = rsvc.Book(ctx, 1, slot)
	require.NoError(t, err)

	// the default window is 2024-04-01 through 2024-04-07, which excludes
	// the 2024-04-09 booking of theme 10
	out, err := csvc.PopularThemes(ctx, "", "", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(11), out[0].ID)
	assert.Equal(t, int64(2), out[0].ReservationCount)

	// yesterday-only window excludes older bookings
	out, err = csvc.PopularThemes(ctx, "2024-04-07", "2024-04-07", 0)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = csvc.PopularThemes(ctx, "2024-04-08", "2024-04-05", 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
