package utils // package utils provides helpers for token creation, hashing and verification

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
	"github.com/google/uuid"       // random jti claim on every issued token
)

// ErrInvalidToken is returned by ParseToken for any token that fails
// signature verification, is malformed, is expired, or carries claims in
// an unexpected shape.  Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

// SignedToken is a serialized JWT together with its expiry.  Access and
// refresh tokens share this shape but are signed with distinct secrets
// and live for very different windows.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenClaims are the verified claims of an access or refresh token.
// They may be trusted only after ParseToken has checked the signature.
type TokenClaims struct {
	UserID uint64
	Email  string
	Role   string
}

// NewAccessToken builds and signs a short-lived HS256 JWT for a user.
// Claims: subject (sub), email, role, jti, expiration (exp), issued at (iat).
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (SignedToken, error) {
	return signToken(secret, userID, email, role, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs a long-lived HS256 JWT for a user.
// It carries the same claim set as an access token but must be signed
// with the refresh secret; the two secrets are never interchangeable.
func NewRefreshToken(secret string, userID uint64, email, role string, ttlDays int) (SignedToken, error) {
	return signToken(secret, userID, email, role, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, userID uint64, email, role string, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"jti":   uuid.NewString(),
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies raw against secret and returns its claims.  The
// signing method is pinned to HMAC so a token cannot downgrade to "none"
// or smuggle in an asymmetric algorithm.  Expiry is enforced by the
// library during Parse.
func ParseToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}

	var out TokenClaims
	switch sub := claims["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return TokenClaims{}, ErrInvalidToken
		}
		out.UserID = n
	default:
		return TokenClaims{}, ErrInvalidToken
	}
	if out.UserID == 0 {
		return TokenClaims{}, ErrInvalidToken
	}
	out.Email, _ = claims["email"].(string)
	if out.Role, ok = claims["role"].(string); !ok || out.Role == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	return out, nil
}
