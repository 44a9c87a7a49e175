package repository

import (
	"context"
	"time"

	"github.com/marwand/hr-auth/internal/model"
)

// UserStore is the credential-store contract.  Handlers and middleware
// depend on this interface rather than the MySQL implementation so that
// tests can substitute in-memory fakes.
type UserStore interface {
	// Create inserts a user and populates its ID.  Returns
	// ErrEmailExists on a duplicate email.
	Create(ctx context.Context, u *model.User) error
	// GetByEmail fetches a user by normalized email.  Returns
	// ErrNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// GetByID fetches a user by id.  Returns ErrNotFound when no row
	// matches.
	GetByID(ctx context.Context, id uint64) (model.User, error)
	// UpdateLastLogin records a successful login timestamp.
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
	// SetPasswordAndRevoke replaces the password hash, sets the
	// must-change flag, and deletes every refresh token for the user
	// in one transaction.  Any credential change forces re-login on
	// all other sessions.
	SetPasswordAndRevoke(ctx context.Context, id uint64, hash string, mustChange bool) error
}

// RefreshTokenStore is the refresh-token ledger contract.
type RefreshTokenStore interface {
	// Store persists a newly issued refresh token row.
	Store(ctx context.Context, t model.RefreshToken) error
	// Redeem claims a token row exactly once: it deletes the row and
	// returns it.  Of two concurrent redeemers at most one succeeds;
	// the loser gets ErrTokenNotFound.  Expired rows are deleted on
	// lookup and reported as ErrTokenNotFound.
	Redeem(ctx context.Context, token string) (model.RefreshToken, error)
	// DeleteAllForUser removes every refresh token owned by a user.
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// ResetTokenStore is the password-reset ledger contract.
type ResetTokenStore interface {
	// Create persists a reset token row (hash only) and populates its ID.
	Create(ctx context.Context, t *model.PasswordResetToken) error
	// FindActiveByHash returns the unused, unexpired row for a token
	// hash, or ErrTokenNotFound.
	FindActiveByHash(ctx context.Context, hash string) (model.PasswordResetToken, error)
	// Consume atomically marks the row used, sets the user's new
	// password hash, clears the must-change flag, and deletes the
	// user's refresh tokens.  A row that was consumed concurrently
	// yields ErrTokenNotFound and no other effect.
	Consume(ctx context.Context, tokenID, userID uint64, newHash string) error
}
