// Package main is a minimal PayBridge webhook receiver.
//
// It listens for webhook POSTs, verifies each payload's signature with
// the shared webhook secret before trusting its contents, and logs the
// outcome. It is both a working reference for SDK users and the
// integration surface used to exercise webhook verification end to end.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"

	"paybridge"
)

// maxBodyBytes bounds how much of an incoming webhook body is read.
const maxBodyBytes = 1 << 20

// listenerConfig holds the listener's own settings. The webhook secret is
// the only PayBridge credential it needs.
type listenerConfig struct {
	Port          string                 `envconfig:"PORT" default:"8484"`
	WebhookSecret paybridge.SecretString `envconfig:"PAYBRIDGE_WEBHOOK_SECRET" required:"true"`
	LogLevel      string                 `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit
// on error.
func run() error {
	_ = godotenv.Load()

	var cfg listenerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("webhook listener starting", "port", cfg.Port)

	r := chi.NewRouter()
	r.Post("/webhooks/paybridge", webhookHandler(cfg.WebhookSecret, logger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// webhookHandler verifies the signature header against the raw body and
// acknowledges only authentic payloads. The body is used exactly as
// received; verification happens before anything trusts its contents.
func webhookHandler(secret paybridge.SecretString, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			logger.Error("failed to read webhook body", "error", err)
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		header := r.Header.Get(paybridge.WebhookSignatureHeader)
		if !paybridge.VerifyWebhook(header, body, secret.Unmask()) {
			logger.Warn("rejected webhook with invalid signature",
				"remote_addr", r.RemoteAddr,
				"body_bytes", len(body),
			)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		logger.Info("verified webhook received", "body_bytes", len(body))
		w.WriteHeader(http.StatusNoContent)
	}
}

// newLogger builds the process-wide structured logger.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
