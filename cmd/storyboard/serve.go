package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/storyboard-agent/internal/api"
	"github.com/heimdex/storyboard-agent/internal/config"
	"github.com/heimdex/storyboard-agent/internal/gcs"
	"github.com/heimdex/storyboard-agent/internal/logging"
	"github.com/heimdex/storyboard-agent/internal/playback"
	"github.com/heimdex/storyboard-agent/internal/video"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	startTime := time.Now()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, logger := a.cfg, a.logger
	logger.Info("starting storyboard agent", "version", config.Version, "data_dir", cfg.DataDir())

	publicDir, err := filepath.Abs(cfg.PublicDir())
	if err != nil {
		return fmt.Errorf("failed to resolve public dir: %w", err)
	}
	if err := os.MkdirAll(publicDir, 0755); err != nil {
		return fmt.Errorf("failed to create public dir: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	client, err := a.vertexClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create vertex client: %w", err)
	}

	store, err := gcs.NewStore(ctx, logging.WithComponent(logger, "gcs"))
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	defer store.Close()

	assembler := video.NewAssembler(video.Config{
		Videos:    client,
		Store:     store,
		PublicDir: publicDir,
		Timeout:   cfg.VideoTimeout(),
		Fanout:    a.fanoutOptions(),
		Logger:    logger,
	})

	if cfg.RequireAuth() {
		authToken, err := ensureAuthToken(a.repo)
		if err != nil {
			return fmt.Errorf("failed to ensure auth token: %w", err)
		}
		fmt.Println()
		fmt.Printf("  API URL:    http://%s:%d/api\n", cfg.Host(), cfg.Port())
		fmt.Printf("  Auth Token: %s\n", authToken)
		fmt.Println()
	}

	apiServer := api.NewServer(api.ServerConfig{
		Host:           cfg.Host(),
		Port:           cfg.Port(),
		Stories:        a.storyService(client),
		Videos:         assembler,
		Repository:     a.repo,
		PlaybackServer: playback.NewServer(publicDir, logger),
		PublicDir:      publicDir,
		RequireAuth:    cfg.RequireAuth(),
		AllowedOrigins: cfg.AllowedOrigins(),
		Version:        config.Version,
		Logger:         logger,
		StartTime:      startTime,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
			return err
		}
	case <-parent.Done():
	}

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
