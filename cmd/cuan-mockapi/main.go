package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/alimurrofid/petualangan-cuan/internal/cli"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/fakeapi"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentFakeAPI, os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)

	opts := []fakeapi.Option{fakeapi.WithLogger(logger), fakeapi.WithAuthRateLimit(20)}
	if secret := os.Getenv("MOCKAPI_SECRET"); secret != "" {
		opts = append(opts, fakeapi.WithSecret(secret))
	}
	fake := fakeapi.New(opts...)

	// A demo account so the CLI and worker have something to log into.
	if cfg.Email != "" && cfg.Password != "" {
		user, _, err := fake.SeedUser("Demo", cfg.Email, cfg.Password)
		if err != nil {
			logger.Error("Failed to seed demo user", log.FieldError, err)
			os.Exit(1)
		}
		fake.SeedWallet(user.ID, "Dompet", 500000)
		fake.SeedCategory(user.ID, "Gaji", core.Income)
		fake.SeedCategory(user.ID, "Makan", core.Expense)
		logger.Info("Seeded demo user", log.FieldUserID, user.ID, "email", cfg.Email)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.MockAPIPort,
		Handler:        fake,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting mock API", "port", cfg.MockAPIPort, log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.MockAPIPort)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
