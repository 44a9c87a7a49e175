package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/marwand/hr-auth/internal/config"
	"github.com/marwand/hr-auth/internal/database"
	"github.com/marwand/hr-auth/internal/handler"
	"github.com/marwand/hr-auth/internal/queue"
	"github.com/marwand/hr-auth/internal/repository"
	"github.com/marwand/hr-auth/internal/router"
	"github.com/marwand/hr-auth/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewRefreshTokenRepo(db)
	resets := repository.NewResetTokenRepo(db)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	a := handler.NewAuthHandler(cfg, users, tokens, resets, service.AMQPResetMailer{})
	adm := handler.NewAdminHandler(cfg, users)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, a, adm, users, rdb)

	// Dev delivery collaborator for reset mails; reconnects forever.
	go queue.StartPasswordResetConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
