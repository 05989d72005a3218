package repository

import (
	"context"
	"database/sql"

	"github.com/yubin-dev/roomescape/internal/model"
)

// ThemeRepo provides theme persistence on MySQL.
type ThemeRepo struct {
	db *sql.DB
}

// NewThemeRepo constructs a ThemeRepo with the given DB handle.
func NewThemeRepo(db *sql.DB) *ThemeRepo {
	return &ThemeRepo{db: db}
}

// Create inserts a theme. On success the theme's ID is populated.
func (r *ThemeRepo) Create(ctx context.Context, t *model.Theme) error {
	const q = `INSERT INTO theme (name, description, thumbnail)
	           VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Description, t.Thumbnail)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID retrieves a theme by primary key, ErrThemeNotFound when absent.
func (r *ThemeRepo) GetByID(ctx context.Context, id uint64) (*model.Theme, error) {
	const q = `SELECT id, name, description, thumbnail FROM theme WHERE id = ?`
	var t model.Theme
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Description, &t.Thumbnail)
	if err == sql.ErrNoRows {
		return nil, ErrThemeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ExistsByName reports whether a theme with the given name exists.
func (r *ThemeRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM theme WHERE name = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes a theme by ID, ErrThemeNotFound when no row matched.
func (r *ThemeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM theme WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrThemeNotFound
	}
	return nil
}

// List returns all themes ordered by id.
func (r *ThemeRepo) List(ctx context.Context) ([]model.Theme, error) {
	const q = `SELECT id, name, description, thumbnail FROM theme ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Theme
	for rows.Next() {
		var t model.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Thumbnail); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Popular returns themes ranked by booking count over the inclusive date
// window [start, end], most-booked first, theme id breaking ties.
func (r *ThemeRepo) Popular(ctx context.Context, start, end string, limit int) ([]model.ThemePopularity, error) {
	const q = `SELECT th.id, th.name, th.description, th.thumbnail, COUNT(r.id) AS cnt
	           FROM theme th
	           JOIN reservation r ON r.theme_id = th.id
	           WHERE r.date BETWEEN ? AND ?
	           GROUP BY th.id, th.name, th.description, th.thumbnail
	           ORDER BY cnt DESC, th.id ASC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ThemePopularity
	for rows.Next() {
		var p model.ThemePopularity
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Thumbnail, &p.ReservationCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
