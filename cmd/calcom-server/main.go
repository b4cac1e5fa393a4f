package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/calcom"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/firebase"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/storage"
	httphandler "github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driving/http"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/application"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr(),
		"store_backend", cfg.StoreBackend,
		"calcom_api", cfg.CalcomAPIBaseURL,
		"firebase_project", cfg.FirebaseProjectID,
		"check_revoked", cfg.FirebaseCheckRevoked,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the credential store (migrations run for sqlite).
	stores, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.StoreBackend,
		DBPath:        cfg.DBPath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		SecretKey:     cfg.SecretKey,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stores.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	// 4. Identity verifier and upstream client.
	verifier, err := firebase.NewVerifier(firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		ClientEmail:   cfg.FirebaseClientEmail,
		PrivateKeyPEM: cfg.FirebasePrivateKey,
		CheckRevoked:  cfg.FirebaseCheckRevoked,
	}, logger)
	if err != nil {
		return err
	}
	calcomClient := calcom.NewClient(cfg.CalcomAPIBaseURL)

	// 5. Application services.
	credentialSvc := application.NewCredentialService(stores.Credentials, stores.Legacy, logger)
	accessResolver := application.NewAccessResolver(stores.Profiles, logger)
	schedulingSvc := application.NewSchedulingService(credentialSvc, calcomClient)

	// 6. HTTP handler and middleware.
	apiHandler := httphandler.NewHandler(accessResolver, credentialSvc, schedulingSvc, logger)
	handler := httphandler.NewServeMux(apiHandler, httphandler.MuxOptions{
		Verifier:       verifier,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Readiness:      stores.Ping,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Wait for a shutdown signal or a listener failure.
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
