package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heimdex/storyboard-agent/internal/playback"
	"github.com/heimdex/storyboard-agent/internal/storyboard"
	"github.com/heimdex/storyboard-agent/internal/video"
)

// StoryGenerator runs the scenario and storyboard stages.
type StoryGenerator interface {
	GenerateScenario(ctx context.Context, req storyboard.ScenarioRequest) (*storyboard.Scenario, error)
	GenerateStoryboard(ctx context.Context, s *storyboard.Scenario, req storyboard.StoryboardRequest) (*storyboard.Scenario, error)
}

// VideoAssembler turns scenes with images into clips.
type VideoAssembler interface {
	Assemble(ctx context.Context, scenes []video.SceneInput) ([]video.Clip, error)
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Host           string
	Port           int
	Stories        StoryGenerator
	Videos         VideoAssembler
	Repository     storyboard.Repository
	PlaybackServer playback.PlaybackService
	PublicDir      string
	RequireAuth    bool
	AllowedOrigins []string
	Version        string
	Logger         *slog.Logger
	StartTime      time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(host, strconv.Itoa(cfg.Port)),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
