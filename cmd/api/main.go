package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/categories"
	"task-manager-backend/internal/config"
	"task-manager-backend/internal/db"
	"task-manager-backend/internal/events"
	"task-manager-backend/internal/server"
	"task-manager-backend/internal/tasks"
	"task-manager-backend/internal/validate"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ERROR] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw := db.New(cfg.ConnString(), db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	defer func() {
		if err := gw.Close(); err != nil {
			log.Printf("[WARN] db: close: %v", err)
		}
	}()

	if cfg.DBApplySchema {
		if err := gw.ApplySchema(ctx); err != nil {
			log.Fatalf("[ERROR] %v", err)
		}
	}

	if cfg.DBStatsInterval > 0 {
		monitor, err := db.NewMonitor(gw, cfg.DBStatsInterval)
		if err != nil {
			log.Fatalf("[ERROR] %v", err)
		}
		monitor.Start()
		defer monitor.Stop()
	}

	hub := events.NewHub()
	go hub.Run(ctx)

	cats := categories.NewService(gw)
	handler := server.NewRouter(server.Deps{
		Auth:           authenticator(cfg),
		Validator:      validate.New(time.Now),
		Categories:     cats,
		Workflow:       tasks.NewWorkflow(gw, cats),
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] API server is running on :%s (auth=%s)", cfg.Port, cfg.AuthMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] server: %v", err)
		}
	case <-ctx.Done():
		log.Println("[info] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server: shutdown: %v", err)
		}
	}
}

func authenticator(cfg *config.Config) auth.Authenticator {
	if cfg.AuthMode == config.AuthModeJWT {
		return auth.JWTAuthenticator{Secret: []byte(cfg.JWTSecret)}
	}
	return auth.StaticAuthenticator{Credential: auth.Credential{
		IDAccount: cfg.AuthAccountID,
		IDUser:    cfg.AuthUserID,
	}}
}
