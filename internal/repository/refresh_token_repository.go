package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/marwand/hr-auth/internal/model"
)

// RefreshTokenRepo implements RefreshTokenStore on MySQL.  Rows are
// keyed by the token string itself; rotation is a compare-and-delete on
// that key.
type RefreshTokenRepo struct{ DB *sql.DB }

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo { return &RefreshTokenRepo{DB: db} }

// Store inserts a refresh token row.
func (r *RefreshTokenRepo) Store(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES (?,?,?)",
		t.Token, t.UserID, t.ExpiresAt.UTC())
	return err
}

// Redeem claims a token row exactly once.  The DELETE on the primary
// key is the atomicity boundary: when two requests present the same
// token concurrently, only one DELETE reports an affected row and the
// other caller gets ErrTokenNotFound.  An expired row is deleted here
// as lazy cleanup and reported the same way.
func (r *RefreshTokenRepo) Redeem(ctx context.Context, token string) (model.RefreshToken, error) {
	var (
		t       model.RefreshToken
		created time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, created_at FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &created)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	t.CreatedAt = created

	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", token)
	if err != nil {
		return model.RefreshToken{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RefreshToken{}, err
	}
	if n == 0 {
		// Lost the race to a concurrent redemption.
		return model.RefreshToken{}, ErrTokenNotFound
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	return t, nil
}

// DeleteAllForUser removes every refresh token owned by a user.  Used
// by logout and by all credential-change flows.
func (r *RefreshTokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
