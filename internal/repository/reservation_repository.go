package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/yubin-dev/roomescape/internal/model"
)

// ReservationRepo provides reservation persistence on MySQL. The schema
// enforces at most one RESERVED row per (date, time_slot_id, theme_id)
// through the generated holder_key column and its unique index; WAITING
// rows carry a NULL holder_key and may coexist freely.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo constructs a ReservationRepo with the given DB handle.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// ReservationFilter narrows admin listings. Nil fields are ignored;
// DateFrom/DateTo bound the reservation date inclusively.
type ReservationFilter struct {
	MemberID *uint64
	ThemeID  *uint64
	DateFrom *string
	DateTo   *string
}

// DATE columns are formatted in SQL because the driver parses them into
// time.Time otherwise (parseTime=true); the API speaks plain date strings.
const viewColumns = `r.id, DATE_FORMAT(r.date, '%Y-%m-%d'), r.time_slot_id, ts.start_at,
	       r.theme_id, th.name, r.member_id, m.name, r.status`

const viewJoins = ` FROM reservation r
	       JOIN time_slot ts ON ts.id = r.time_slot_id
	       JOIN theme th ON th.id = r.theme_id
	       JOIN member m ON m.id = r.member_id`

// HolderExists reports whether a RESERVED row already holds the slot.
func (r *ReservationRepo) HolderExists(ctx context.Context, slot model.Slot) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM reservation
	           WHERE date = ? AND time_slot_id = ? AND theme_id = ?
	             AND status = 'RESERVED')`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, slot.Date, slot.TimeSlotID, slot.ThemeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a reservation with the status already set on it. A
// duplicate-key violation on the holder index means another RESERVED row
// won the slot concurrently; that is surfaced as ErrSlotTaken so the
// caller can retry as WAITING.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservation (date, time_slot_id, theme_id, member_id, status)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.Slot.Date, res.Slot.TimeSlotID, res.Slot.ThemeID, res.MemberID, res.Status)
	if err != nil {
		if isDuplicate(err) {
			return ErrSlotTaken
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID retrieves a raw reservation row, ErrReservationNotFound when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, DATE_FORMAT(date, '%Y-%m-%d'), time_slot_id, theme_id, member_id, status
	           FROM reservation WHERE id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.Slot.Date, &res.Slot.TimeSlotID, &res.Slot.ThemeID,
		&res.MemberID, &res.Status)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Remove deletes a reservation and, when the deleted row was RESERVED,
// promotes the oldest WAITING row on the same slot inside the same
// transaction. The promoted row is returned when a promotion happened.
func (r *ReservationRepo) Remove(ctx context.Context, id uint64) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var victim model.Reservation
	err = tx.QueryRowContext(ctx,
		`SELECT id, DATE_FORMAT(date, '%Y-%m-%d'), time_slot_id, theme_id, member_id, status
		 FROM reservation WHERE id = ? FOR UPDATE`, id).Scan(
		&victim.ID, &victim.Slot.Date, &victim.Slot.TimeSlotID, &victim.Slot.ThemeID,
		&victim.MemberID, &victim.Status)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservation WHERE id = ?`, id); err != nil {
		return nil, err
	}

	var promoted *model.Reservation
	if victim.Status == model.StatusReserved {
		var next model.Reservation
		err = tx.QueryRowContext(ctx,
			`SELECT id, DATE_FORMAT(date, '%Y-%m-%d'), time_slot_id, theme_id, member_id, status
			 FROM reservation
			 WHERE date = ? AND time_slot_id = ? AND theme_id = ? AND status = 'WAITING'
			 ORDER BY id LIMIT 1 FOR UPDATE`,
			victim.Slot.Date, victim.Slot.TimeSlotID, victim.Slot.ThemeID).Scan(
			&next.ID, &next.Slot.Date, &next.Slot.TimeSlotID, &next.Slot.ThemeID,
			&next.MemberID, &next.Status)
		switch {
		case err == sql.ErrNoRows:
			// empty queue, nothing to promote
		case err != nil:
			return nil, err
		default:
			if _, err := tx.ExecContext(ctx,
				`UPDATE reservation SET status = 'RESERVED' WHERE id = ?`, next.ID); err != nil {
				return nil, err
			}
			next.Status = model.StatusReserved
			promoted = &next
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return promoted, nil
}

// GetViewByID retrieves the joined projection of a single reservation.
func (r *ReservationRepo) GetViewByID(ctx context.Context, id uint64) (*model.ReservationView, error) {
	q := `SELECT ` + viewColumns + viewJoins + ` WHERE r.id = ?`
	var v model.ReservationView
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.Date, &v.TimeSlotID, &v.StartAt, &v.ThemeID, &v.Theme,
		&v.MemberID, &v.MemberName, &v.Status)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizeView(&v)
	return &v, nil
}

// ListByConditions returns joined reservation views matching the filter,
// ordered by reservation id.
func (r *ReservationRepo) ListByConditions(ctx context.Context, f ReservationFilter) ([]model.ReservationView, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.MemberID != nil {
		conds = append(conds, "r.member_id = ?")
		args = append(args, *f.MemberID)
	}
	if f.ThemeID != nil {
		conds = append(conds, "r.theme_id = ?")
		args = append(args, *f.ThemeID)
	}
	if f.DateFrom != nil {
		conds = append(conds, "r.date >= ?")
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		conds = append(conds, "r.date <= ?")
		args = append(args, *f.DateTo)
	}

	q := `SELECT ` + viewColumns + viewJoins
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY r.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReservationView
	for rows.Next() {
		var v model.ReservationView
		if err := rows.Scan(&v.ID, &v.Date, &v.TimeSlotID, &v.StartAt, &v.ThemeID, &v.Theme,
			&v.MemberID, &v.MemberName, &v.Status); err != nil {
			return nil, err
		}
		normalizeView(&v)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListWithRankByMember returns all of a member's bookings with their queue
// rank: 0 for RESERVED, otherwise 1 plus the count of older WAITING rows on
// the same slot. Ordered by reservation id.
func (r *ReservationRepo) ListWithRankByMember(ctx context.Context, memberID uint64) ([]model.RankedReservation, error) {
	q := `SELECT ` + viewColumns + `,
	       CASE WHEN r.status = 'RESERVED' THEN 0
	            ELSE 1 + (SELECT COUNT(*) FROM reservation w
	                      WHERE w.date = r.date AND w.time_slot_id = r.time_slot_id
	                        AND w.theme_id = r.theme_id AND w.status = 'WAITING'
	                        AND w.id < r.id)
	       END AS rnk` + viewJoins + `
	       WHERE r.member_id = ?
	       ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RankedReservation
	for rows.Next() {
		var v model.RankedReservation
		if err := rows.Scan(&v.ID, &v.Date, &v.TimeSlotID, &v.StartAt, &v.ThemeID, &v.Theme,
			&v.MemberID, &v.MemberName, &v.Status, &v.Rank); err != nil {
			return nil, err
		}
		normalizeView(&v.ReservationView)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ExistsByThemeID reports whether any reservation references the theme.
func (r *ReservationRepo) ExistsByThemeID(ctx context.Context, themeID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM reservation WHERE theme_id = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, themeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsByTimeSlotID reports whether any reservation references the slot.
func (r *ReservationRepo) ExistsByTimeSlotID(ctx context.Context, timeSlotID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM reservation WHERE time_slot_id = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, timeSlotID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func normalizeView(v *model.ReservationView) {
	v.StartAt = trimClock(v.StartAt)
}
