// Package router wires handlers and middleware onto HTTP routes.  The
// ordering is the guard pipeline: public routes bypass everything,
// protected routes run Authenticate first and role allow-lists second.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/marwand/hr-auth/internal/config"
	"github.com/marwand/hr-auth/internal/handler"
	"github.com/marwand/hr-auth/internal/middleware"
	"github.com/marwand/hr-auth/internal/model"
	"github.com/marwand/hr-auth/internal/repository"
)

// Register mounts every route of the auth core.  rdb may be nil, in
// which case the public endpoints run without rate limiting.
func Register(e *echo.Echo, cfg config.Config, a *handler.AuthHandler, adm *handler.AdminHandler, users repository.UserStore, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Public session routes.  Login and forgot-password are the two
	// credential-probing surfaces, so each gets its own bucket.
	loginLimit := middleware.RateLimit(config.LoadRouteRateLimit("LOGIN", 5, 12*time.Second), rdb)
	forgotLimit := middleware.RateLimit(config.LoadRouteRateLimit("FORGOT_PASSWORD", 3, 20*time.Second), rdb)

	pub := e.Group("/v1/auth")
	pub.POST("/login", a.Login, loginLimit)
	pub.POST("/refresh", a.Refresh)
	pub.POST("/forgot-password", a.ForgotPassword, forgotLimit)
	pub.POST("/reset-password", a.ResetPassword)

	// Everything below requires a valid access token and a live ACTIVE
	// account.  Routes without RequireRole accept any authenticated
	// identity.
	auth := e.Group("/v1/auth")
	auth.Use(middleware.Authenticate(cfg.AccessSecret, users))
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
	auth.POST("/change-password", a.ChangePassword)

	// Admin operations carry a route allow-list; the finer scope rule
	// (who may act on which target role) lives in the handlers.
	admin := auth.Group("/admin", middleware.RequireRole(model.RoleOwner, model.RoleHR, model.RoleManager))
	admin.POST("/users", adm.CreateUser)
	admin.PATCH("/users/:id/password", adm.ResetUserPassword)
}
