package repository

import (
	"context"
	"database/sql"

	"github.com/yubin-dev/roomescape/internal/model"
)

// TimeSlotRepo provides time slot persistence on MySQL.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo constructs a TimeSlotRepo with the given DB handle.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo {
	return &TimeSlotRepo{db: db}
}

// Create inserts a time slot. On success the slot's ID is populated.
func (r *TimeSlotRepo) Create(ctx context.Context, s *model.TimeSlot) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO time_slot (start_at) VALUES (?)`, s.StartAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID retrieves a time slot by primary key, ErrTimeSlotNotFound when absent.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	const q = `SELECT id, start_at FROM time_slot WHERE id = ?`
	var s model.TimeSlot
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.StartAt)
	if err == sql.ErrNoRows {
		return nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	s.StartAt = trimClock(s.StartAt)
	return &s, nil
}

// ExistsByStartAt reports whether a slot with the given start time exists.
func (r *TimeSlotRepo) ExistsByStartAt(ctx context.Context, startAt string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM time_slot WHERE start_at = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, startAt).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes a time slot by ID, ErrTimeSlotNotFound when no row matched.
func (r *TimeSlotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_slot WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTimeSlotNotFound
	}
	return nil
}

// List returns all time slots ordered by start time.
func (r *TimeSlotRepo) List(ctx context.Context) ([]model.TimeSlot, error) {
	const q = `SELECT id, start_at FROM time_slot ORDER BY start_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TimeSlot
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.StartAt); err != nil {
			return nil, err
		}
		s.StartAt = trimClock(s.StartAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListWithBookedFlag returns every slot annotated with whether a RESERVED
// booking already holds it for the given date and theme.
func (r *TimeSlotRepo) ListWithBookedFlag(ctx context.Context, date string, themeID uint64) ([]model.AvailableTime, error) {
	const q = `SELECT ts.id, ts.start_at,
	                  EXISTS(SELECT 1 FROM reservation r
	                         WHERE r.time_slot_id = ts.id
	                           AND r.date = ? AND r.theme_id = ?
	                           AND r.status = 'RESERVED') AS booked
	           FROM time_slot ts
	           ORDER BY ts.start_at`
	rows, err := r.db.QueryContext(ctx, q, date, themeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AvailableTime
	for rows.Next() {
		var a model.AvailableTime
		if err := rows.Scan(&a.ID, &a.StartAt, &a.AlreadyBooked); err != nil {
			return nil, err
		}
		a.StartAt = trimClock(a.StartAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// trimClock normalizes a MySQL TIME value ("11:00:00") to the "15:04" layout.
func trimClock(v string) string {
	if len(v) == 8 {
		return v[:5]
	}
	return v
}
