package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh tokens. Only the SHA-256 hash of the raw token
// is stored.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo constructs a TokenRepo with the given DB handle.
func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// StoreRefresh inserts a refresh token hash row for a member.
func (r *TokenRepo) StoreRefresh(ctx context.Context, memberID uint64, tokenHash string, exp time.Time) error {
	const q = `INSERT INTO refresh_token (member_id, token_hash, expires_at)
	           VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, memberID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the owning member ID if a non-revoked, non-expired
// token with the given hash exists. sql.ErrNoRows signals an unusable token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	const q = `SELECT member_id, expires_at, revoked_at
	           FROM refresh_token WHERE token_hash = ? LIMIT 1`
	var (
		memberID  uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&memberID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid || now.After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	return memberID, nil
}

// RevokeByHash marks a single token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_token SET revoked_at = NOW()
	           WHERE token_hash = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}

// RevokeAllForMember revokes every active token held by a member.
func (r *TokenRepo) RevokeAllForMember(ctx context.Context, memberID uint64) error {
	const q = `UPDATE refresh_token SET revoked_at = NOW()
	           WHERE member_id = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, memberID)
	return err
}
