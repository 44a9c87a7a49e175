// Package queue defines message payloads exchanged over the message broker.
package queue

// PasswordResetQueue is the durable queue carrying reset-mail requests
// to the delivery collaborator.
const PasswordResetQueue = "auth.password_reset"

// PasswordResetRequestedEvent is published when a forgot-password
// request matches an account.  It carries the plaintext token for the
// mail sender; the token is never persisted anywhere, so this message
// is the only place it exists outside the user's inbox.
type PasswordResetRequestedEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Token       string `json:"token"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
