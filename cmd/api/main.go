package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"goal-tracker-backend/internal/api"
	"goal-tracker-backend/internal/auth"
	"goal-tracker-backend/internal/config"
	"goal-tracker-backend/internal/goals"
	"goal-tracker-backend/internal/logging"
	"goal-tracker-backend/internal/users"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}

	userSvc := users.NewService(st.users, users.NewBcryptHasher(cfg.BcryptCost))
	goalSvc := goals.NewService(st.goals, userSvc)

	handler := api.NewRouter(api.Deps{
		Users:          userSvc,
		Tokens:         tokens,
		Goals:          goalSvc,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	})
	if cfg.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return serve(ctx, srv, cfg.ShutdownTimeout, log)
}

// serve runs srv until ctx is cancelled, then shuts it down within
// timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("API server is running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
