package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/marwand/hr-auth/internal/model"
)

// ResetTokenRepo implements ResetTokenStore on MySQL.  Only token
// hashes are stored; a row becomes permanently unredeemable once used
// or expired.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Create inserts a reset token row and populates t.ID.
func (r *ResetTokenRepo) Create(ctx context.Context, t *model.PasswordResetToken) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		t.UserID, t.TokenHash, t.ExpiresAt.UTC())
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

// FindActiveByHash returns the unused, unexpired row for a token hash.
// A used or expired row yields ErrTokenNotFound, same as no row at all.
func (r *ResetTokenRepo) FindActiveByHash(ctx context.Context, hash string) (model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, used, created_at FROM password_reset_tokens WHERE token_hash=? LIMIT 1",
		hash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.PasswordResetToken{}, ErrTokenNotFound
	}
	if err != nil {
		return model.PasswordResetToken{}, err
	}
	if t.Used || time.Now().UTC().After(t.ExpiresAt) {
		return model.PasswordResetToken{}, ErrTokenNotFound
	}
	return t, nil
}

// Consume performs the reset's three effects in one transaction: flip
// the used flag, rotate the user's password, and purge the user's
// refresh tokens.  The guarded UPDATE on used=0 makes a concurrently
// consumed token fail with ErrTokenNotFound and roll everything back.
func (r *ResetTokenRepo) Consume(ctx context.Context, tokenID, userID uint64, newHash string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used=1 WHERE id=? AND used=0", tokenID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, must_change_password=0 WHERE id=?",
		newHash, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID); err != nil {
		return err
	}
	return tx.Commit()
}
