package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/storyboard-agent/internal/api"
	"github.com/heimdex/storyboard-agent/internal/config"
	"github.com/heimdex/storyboard-agent/internal/db"
	"github.com/heimdex/storyboard-agent/internal/fanout"
	"github.com/heimdex/storyboard-agent/internal/logging"
	"github.com/heimdex/storyboard-agent/internal/storyboard"
	"github.com/heimdex/storyboard-agent/internal/vertex"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storyboard",
		Short:         "Generate scenarios, storyboards and scene videos from a story pitch",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(),
		newScenarioCmd(),
		newStoryboardCmd(),
		newExportCmd(),
	)
	return root
}

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg      *config.EnvConfig
	logger   *slog.Logger
	database *db.DB
	repo     *storyboard.SQLiteRepository
}

func newApp() (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		repo:     storyboard.NewRepository(database.Conn()),
	}, nil
}

func (a *app) Close() error {
	return a.database.Close()
}

func (a *app) fanoutOptions() fanout.Options {
	return fanout.Options{
		Limit:   a.cfg.MaxConcurrency(),
		Limiter: fanout.NewLimiter(a.cfg.RateInterval()),
	}
}

func (a *app) vertexClient(ctx context.Context) (*vertex.Client, error) {
	return vertex.NewClient(ctx, vertex.Config{
		ProjectID:          a.cfg.ProjectID(),
		Location:           a.cfg.Location(),
		Bucket:             a.cfg.Bucket(),
		TextModel:          a.cfg.TextModel(),
		ImageModel:         a.cfg.ImageModel(),
		CustomizationModel: a.cfg.CustomizationModel(),
		VideoModel:         a.cfg.VideoModel(),
		PollInterval:       a.cfg.VideoPollInterval(),
		Logger:             logging.WithComponent(a.logger, "vertex"),
	})
}

func (a *app) storyService(client *vertex.Client) *storyboard.Service {
	strategy := storyboard.ImageStrategyPrompt
	if a.cfg.CharacterReferences() {
		strategy = storyboard.ImageStrategyCharacterReference
	}
	return storyboard.NewService(storyboard.ServiceConfig{
		Text:          client,
		Images:        client,
		Fanout:        a.fanoutOptions(),
		ImageStrategy: strategy,
		Logger:        a.logger,
	})
}

func ensureAuthToken(repo storyboard.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}

	return token, nil
}
