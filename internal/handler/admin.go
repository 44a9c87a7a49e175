package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marwand/hr-auth/internal/config"
	"github.com/marwand/hr-auth/internal/middleware"
	"github.com/marwand/hr-auth/internal/model"
	"github.com/marwand/hr-auth/internal/repository"
	"github.com/marwand/hr-auth/internal/utils"
)

// AdminHandler implements the administrator operations: user creation
// and administrator-initiated password resets.  Both are role-scoped
// beyond the route allow-list: OWNER may act on any role, HR and
// MANAGER only on EMPLOYEE accounts.
type AdminHandler struct {
	Cfg   config.Config
	Users repository.UserStore
}

func NewAdminHandler(cfg config.Config, u repository.UserStore) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               string `json:"role"`
	MustChangePassword *bool  `json:"must_change_password"` // default true
}

type adminResetReq struct {
	TemporaryPassword  string `json:"temporary_password"`
	MustChangePassword *bool  `json:"must_change_password"` // default true
}

// canActOn is the admin scope rule shared by both operations.
func canActOn(actorRole, targetRole string) bool {
	switch actorRole {
	case model.RoleOwner:
		return true
	case model.RoleHR, model.RoleManager:
		return targetRole == model.RoleEmployee
	}
	return false
}

// CreateUser provisions an account.  There is no public registration;
// the intended pattern is that the admin sets a temporary password and
// the user is forced to change it on first login.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	actor, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "no identity"})
	}

	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Email == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "email and a password of at least 8 characters are required"})
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "unknown role"})
	}
	if !canActOn(actor.Role, req.Role) {
		return forbidden(c)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, "hash password failed")
	}
	mustChange := true
	if req.MustChangePassword != nil {
		mustChange = *req.MustChangePassword
	}
	u := model.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              req.Email,
		PasswordHash:       hash,
		Role:               req.Role,
		Status:             model.StatusActive,
		MustChangePassword: mustChange,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.Create(ctx, &u); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email_exists", "message": "email already exists"})
		}
		return internalError(c, "create user failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": projectUser(u)})
}

// ResetUserPassword sets a temporary password on the target account and
// revokes all of its refresh tokens, forcing re-login everywhere.
func (h *AdminHandler) ResetUserPassword(c echo.Context) error {
	actor, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "no identity"})
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "invalid user id"})
	}
	var req adminResetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "invalid body"})
	}
	if len(req.TemporaryPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": "temporary password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "user not found"})
	}
	if err != nil {
		return internalError(c, "load user failed")
	}
	if !canActOn(actor.Role, target.Role) {
		return forbidden(c)
	}

	hash, err := utils.HashPassword(req.TemporaryPassword, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, "hash password failed")
	}
	mustChange := true
	if req.MustChangePassword != nil {
		mustChange = *req.MustChangePassword
	}
	if err := h.Users.SetPasswordAndRevoke(ctx, targetID, hash, mustChange); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "user not found"})
		}
		return internalError(c, "reset password failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset", "must_change_password": mustChange})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "operation not permitted for role"})
}
