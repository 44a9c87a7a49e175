package model

import "time"

// Role values form a closed set.  There is no ordered privilege scale;
// each endpoint declares its own allow-list and the admin handlers apply
// per-operation scope rules (OWNER acts on anyone, HR/MANAGER only on
// EMPLOYEE accounts).
const (
	RoleEmployee = "EMPLOYEE"
	RoleHR       = "HR"
	RoleManager  = "MANAGER"
	RoleOwner    = "OWNER"
)

// Status values for a user account.  Only ACTIVE accounts may
// authenticate or pass the request guard.
const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	switch s {
	case RoleEmployee, RoleHR, RoleManager, RoleOwner:
		return true
	}
	return false
}

// User mirrors the `users` table.  PasswordHash is a bcrypt digest and is
// never serialized; handlers build their own response projections.
//
// Fields:
//  ID                 – primary key identifier of the user.
//  Name               – display name.
//  Email              – unique email address, stored lowercased.
//  PasswordHash       – bcrypt hashed password.
//  Role               – one of the Role* constants.
//  Status             – one of the Status* constants.
//  MustChangePassword – true while an admin-issued temporary password is in force.
//  LastLoginAt        – time of the most recent successful login (nil if never).
type User struct {
	ID                 uint64     // users.id
	Name               string     // users.name
	Email              string     // users.email
	PasswordHash       string     // users.password_hash
	Role               string     // users.role
	Status             string     // users.status
	MustChangePassword bool       // users.must_change_password
	LastLoginAt        *time.Time // users.last_login_at (nullable)
	CreatedAt          time.Time  // users.created_at
	UpdatedAt          time.Time  // users.updated_at
}

// RefreshToken models a row in the `refresh_tokens` ledger.  The token
// string itself (a signed JWT) is the key; a row is redeemable exactly
// once and is deleted on redemption, logout, credential change or expiry.
type RefreshToken struct {
	Token     string    // refresh_tokens.token
	UserID    uint64    // refresh_tokens.user_id
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}

// PasswordResetToken models a row in the `password_reset_tokens` ledger.
// Only the SHA-256 hash of the token is stored; the plaintext goes to the
// mail collaborator and is never persisted.  Once Used is set or
// ExpiresAt has passed the row is permanently unredeemable.
type PasswordResetToken struct {
	ID        uint64    // password_reset_tokens.id
	UserID    uint64    // password_reset_tokens.user_id
	TokenHash string    // password_reset_tokens.token_hash
	ExpiresAt time.Time // password_reset_tokens.expires_at
	Used      bool      // password_reset_tokens.used
	CreatedAt time.Time // password_reset_tokens.created_at
}
