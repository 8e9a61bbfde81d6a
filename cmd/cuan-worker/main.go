package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/alimurrofid/petualangan-cuan/internal/amqp"
	"github.com/alimurrofid/petualangan-cuan/internal/app"
	"github.com/alimurrofid/petualangan-cuan/internal/cli"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/export/sheets"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
	"github.com/alimurrofid/petualangan-cuan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Stdout)
	logger.Info("Starting cuan-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.SheetsEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}

	var cleanup []func()
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	})

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err)
		os.Exit(1)
	}
	cleanup = append(cleanup, func() { _ = a.Close() })

	if !a.Session.Authenticated() {
		if cfg.Email == "" || cfg.Password == "" {
			logger.Error("No stored session; set CUAN_EMAIL and CUAN_PASSWORD")
			os.Exit(1)
		}
		if _, err := a.Auth.Login(ctx, core.Credentials{Email: cfg.Email, Password: cfg.Password}); err != nil {
			logger.Error("Login failed", log.FieldError, err)
			os.Exit(1)
		}
	}

	exporter, err := sheets.New(ctx, sheets.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	w := worker.NewExportWorker(a.Client, exporter, a.Storage, cfg.ExportBatchSize, logger)

	// Export whatever was missed while the worker was down.
	if err := w.CatchUp(ctx); err != nil {
		logger.Error("Startup catch-up failed", log.FieldError, err)
	}

	if cfg.AMQPEnabled() {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		cleanup = append(cleanup, func() { _ = consumer.Close() })

		go func() {
			if err := consumer.ConsumeEvents(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption failed", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("AMQP_URL not set, exporting on the periodic sweep only")
	}

	// Periodic sweep for events that never arrived.
	go func() {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.CatchUp(ctx); err != nil {
					logger.Error("Periodic export failed", log.FieldError, err)
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
