package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/predictor"
	"github.com/ariebrainware/ml-pipeline-api/repository"
	"github.com/ariebrainware/ml-pipeline-api/router"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.LoadConfig()
	gin.SetMode(cfg.GinMode)

	db, err := config.ConnectPostgres()
	if err != nil {
		return fmt.Errorf("connect relational database: %w", err)
	}
	repo := repository.New(db)
	if cfg.IsTest() {
		if err := repo.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	store, err := docstore.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect document store: %w", err)
	}

	if _, err := config.ConnectRedis(); err != nil {
		// Prediction routes stay available without rate limiting.
		log.WithError(err).Warn("redis unavailable, rate limiting disabled")
	}

	svc, err := predictor.NewServiceFromConfig(repo)
	if err != nil {
		return fmt.Errorf("configure predictor: %w", err)
	}
	// Load eagerly so a bad artifact shows up at startup; requests retry on failure.
	if _, err := svc.Load(ctx); err != nil {
		log.WithError(err).Warn("model not loaded, predictions will return 503 until it is available")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router.New(db, store, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
