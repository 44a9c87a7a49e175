// Package repository defines the persistence contracts for the auth core
// and their MySQL implementations.  Sentinel errors let handlers map
// store outcomes onto the HTTP error taxonomy without inspecting SQL
// details.
package repository

import "errors"

// ErrNotFound is returned when a user row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert collides with an
// existing email.  Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenNotFound is returned when a refresh or reset token has no
// live ledger row: it never existed, was already redeemed or used, or
// has expired.  The causes are deliberately indistinguishable.
var ErrTokenNotFound = errors.New("token not found")
