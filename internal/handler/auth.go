package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marwand/hr-auth/internal/config"
	"github.com/marwand/hr-auth/internal/middleware"
	"github.com/marwand/hr-auth/internal/model"
	"github.com/marwand/hr-auth/internal/queue"
	"github.com/marwand/hr-auth/internal/repository"
	"github.com/marwand/hr-auth/internal/service"
	"github.com/marwand/hr-auth/internal/utils"
)

// AuthHandler bundles dependencies for the session endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  repository.UserStore
	Tokens repository.RefreshTokenStore
	Resets repository.ResetTokenStore
	Mailer service.ResetMailer // nil disables reset mail delivery
}

func NewAuthHandler(cfg config.Config, u repository.UserStore, t repository.RefreshTokenStore, r repository.ResetTokenStore, m service.ResetMailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Resets: r, Mailer: m}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID                 uint64     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func projectUser(u model.User) userPart {
	return userPart{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
	}
}

// issuePair mints an access+refresh pair for u and persists the refresh
// row.  Every successful login, refresh and password change goes
// through here so the ledger always holds exactly the live sessions.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, u.Email, u.Role, h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.Store(ctx, model.RefreshToken{
		Token:     refresh.Token,
		UserID:    u.ID,
		ExpiresAt: refresh.Exp,
	}); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    projectUser(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Token, Expires: refresh.Exp},
	}, nil
}

// Login verifies credentials and returns a new token pair.  Unknown
// email, wrong password and a non-ACTIVE account all produce the same
// response so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == repository.ErrNotFound {
		return invalidCredentials(c)
	}
	if err != nil {
		return internalError(c, "query failed")
	}
	if u.Status != model.StatusActive {
		return invalidCredentials(c)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return invalidCredentials(c)
	}

	now := time.Now().UTC()
	if err := h.Users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return internalError(c, "update last login failed")
	}
	u.LastLoginAt = &now

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return internalError(c, "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: signature check first, then an
// atomic redeem of the ledger row, then a fresh pair bound to the same
// user.  A replayed or expired token fails the redeem; the user is
// re-loaded so a deactivated account cannot keep refreshing.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "refresh_token required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)

	if _, err := utils.ParseToken(h.Cfg.RefreshSecret, raw); err != nil {
		return invalidRefresh(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Tokens.Redeem(ctx, raw)
	if err == repository.ErrTokenNotFound {
		return invalidRefresh(c)
	}
	if err != nil {
		return internalError(c, "redeem failed")
	}

	u, err := h.Users.GetByID(ctx, row.UserID)
	if err == repository.ErrNotFound {
		return invalidRefresh(c)
	}
	if err != nil {
		return internalError(c, "load user failed")
	}
	if u.Status != model.StatusActive {
		return invalidRefresh(c)
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return internalError(c, "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout deletes every refresh token of the caller.  Already-issued
// access tokens stay usable until their natural expiry; logout bounds
// further refreshes only.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "no identity"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Tokens.DeleteAllForUser(ctx, u.ID); err != nil {
		return internalError(c, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity attached by the guard pipeline.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "no identity"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": projectUser(u)})
}

// ChangePassword rotates the caller's own password.  The wrong current
// password maps to the same invalid-credentials error as login.  All
// refresh tokens are revoked with the change; the response carries a
// fresh pair so the current client keeps its session.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "no identity"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "invalid body"})
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "new password must be at least 8 characters"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return invalidCredentials(c)
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, "hash password failed")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.SetPasswordAndRevoke(ctx, u.ID, hash, false); err != nil {
		return internalError(c, "change password failed")
	}
	u.PasswordHash = hash
	u.MustChangePassword = false

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return internalError(c, "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// forgotPasswordMessage is returned whether or not the email matched;
// the response shape must never reveal account existence.
const forgotPasswordMessage = "if the account exists, a reset link has been sent"

// ForgotPassword issues a one-time, time-boxed reset token.  Only the
// SHA-256 hash is persisted; the plaintext goes to the mail
// collaborator in a detached goroutine, after the row is committed and
// never inside a transaction.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMessage})
	}
	if err != nil {
		return internalError(c, "query failed")
	}

	raw, err := utils.NewResetToken()
	if err != nil {
		return internalError(c, "issue reset token failed")
	}
	row := model.PasswordResetToken{
		UserID:    u.ID,
		TokenHash: utils.HashResetRaw(raw),
		ExpiresAt: time.Now().UTC().Add(time.Duration(h.Cfg.ResetTTLMin) * time.Minute),
	}
	if err := h.Resets.Create(ctx, &row); err != nil {
		return internalError(c, "save reset token failed")
	}

	if h.Mailer != nil {
		event := queue.PasswordResetRequestedEvent{
			UserID:      u.ID,
			Email:       u.Email,
			Name:        u.Name,
			Token:       raw,
			ExpiresAt:   row.ExpiresAt.Format(time.RFC3339),
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pubCancel()
			_ = h.Mailer.PublishPasswordReset(pubCtx, event)
		}()
	}
	return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMessage})
}

// ResetPassword redeems a reset token.  The consume step is a single
// transaction covering the used flag, the new password hash and the
// refresh-token purge, so a crash can never leave the token spent
// without the password changed or vice versa.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "invalid body"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" || len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "token and a new password of at least 8 characters are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Resets.FindActiveByHash(ctx, utils.HashResetRaw(req.Token))
	if err == repository.ErrTokenNotFound {
		return invalidResetToken(c)
	}
	if err != nil {
		return internalError(c, "query failed")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, "hash password failed")
	}
	if err := h.Resets.Consume(ctx, row.ID, row.UserID, hash); err == repository.ErrTokenNotFound {
		return invalidResetToken(c)
	} else if err != nil {
		return internalError(c, "reset password failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}

// ----- shared error responses -----

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials", "message": "invalid credentials"})
}

func invalidRefresh(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_refresh_token", "message": "invalid refresh token"})
}

func invalidResetToken(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_or_expired_token", "message": "invalid or expired token"})
}

func internalError(c echo.Context, msg string) error {
	c.Logger().Errorf("internal error: %s", msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal error"})
}
