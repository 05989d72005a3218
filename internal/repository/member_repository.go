package repository

import (
	"context"
	"database/sql"

	"github.com/yubin-dev/roomescape/internal/model"
)

// MemberRepo provides member persistence on MySQL.
type MemberRepo struct {
	db *sql.DB
}

// NewMemberRepo constructs a MemberRepo with the given DB handle.
func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// Create inserts a member. On success the member's ID is populated.
// Returns ErrEmailExists when the email is already registered.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	const q = `INSERT INTO member (email, password_hash, name, role)
	           VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Email, m.PasswordHash, m.Name, m.Role)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByEmail retrieves a member by email, ErrMemberNotFound when absent.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	const q = `SELECT id, email, password_hash, name, role, created_at
	           FROM member WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

// GetByID retrieves a member by primary key, ErrMemberNotFound when absent.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (*model.Member, error) {
	const q = `SELECT id, email, password_hash, name, role, created_at
	           FROM member WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// List returns all members ordered by id.
func (r *MemberRepo) List(ctx context.Context) ([]model.Member, error) {
	const q = `SELECT id, email, password_hash, name, role, created_at
	           FROM member ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MemberRepo) scanOne(row *sql.Row) (*model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Role, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
