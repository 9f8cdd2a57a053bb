// Package config provides configuration management for the storyboard agent.
// Configuration is loaded from environment variables (optionally seeded from a
// .env file) with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8787
	DefaultLogLevel  = "info"
	DefaultDataDir   = ".storyboard"
	DefaultPublicDir = "public"
	DefaultLocation  = "us-central1"

	// Model defaults
	DefaultTextModel          = "gemini-2.5-flash"
	DefaultImageModel         = "imagen-3.0-generate-002"
	DefaultCustomizationModel = "imagen-3.0-capability-001"
	DefaultVideoModel         = "veo-2.0-generate-001"

	// Orchestration defaults
	DefaultMaxConcurrency    = 4
	DefaultVideoTimeout      = 15 * time.Minute
	DefaultVideoPollInterval = 10 * time.Second

	// Environment variable names
	EnvHost     = "STORYBOARD_HOST"
	EnvPort     = "STORYBOARD_PORT"
	EnvLogLevel = "STORYBOARD_LOG_LEVEL"
	EnvDataDir  = "STORYBOARD_DATA_DIR"

	// Google Cloud environment variable names
	EnvProjectID = "PROJECT_ID"
	EnvLocation  = "LOCATION"
	EnvBucket    = "STORYBOARD_GCS_BUCKET"

	// Model environment variable names
	EnvTextModel          = "STORYBOARD_TEXT_MODEL"
	EnvImageModel         = "STORYBOARD_IMAGE_MODEL"
	EnvCustomizationModel = "STORYBOARD_CUSTOMIZATION_MODEL"
	EnvVideoModel         = "STORYBOARD_VIDEO_MODEL"

	// Orchestration environment variable names
	EnvPublicDir           = "STORYBOARD_PUBLIC_DIR"
	EnvMaxConcurrency      = "STORYBOARD_MAX_CONCURRENCY"
	EnvRateInterval        = "STORYBOARD_RATE_INTERVAL"
	EnvVideoTimeout        = "STORYBOARD_VIDEO_TIMEOUT"
	EnvVideoPollInterval   = "STORYBOARD_VIDEO_POLL_INTERVAL"
	EnvCharacterReferences = "STORYBOARD_CHARACTER_REFERENCES"

	// HTTP access environment variable names
	EnvRequireAuth    = "STORYBOARD_REQUIRE_AUTH"
	EnvAllowedOrigins = "STORYBOARD_ALLOWED_ORIGINS"

	// Database filename
	DBFilename = "storyboard.db"
)

// Config defines the application configuration interface
type Config interface {
	Host() string
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string

	ProjectID() string
	Location() string
	Bucket() string

	TextModel() string
	ImageModel() string
	CustomizationModel() string
	VideoModel() string

	PublicDir() string
	MaxConcurrency() int
	RateInterval() time.Duration
	VideoTimeout() time.Duration
	VideoPollInterval() time.Duration
	CharacterReferences() bool

	RequireAuth() bool
	AllowedOrigins() []string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	host     string
	port     int
	logLevel string
	dataDir  string

	projectID string
	location  string
	bucket    string

	textModel          string
	imageModel         string
	customizationModel string
	videoModel         string

	publicDir           string
	maxConcurrency      int
	rateInterval        time.Duration
	videoTimeout        time.Duration
	videoPollInterval   time.Duration
	characterReferences bool

	requireAuth    bool
	allowedOrigins []string
}

// New creates a new EnvConfig with defaults and environment variable overrides.
// A .env file in the working directory is loaded first when present; variables
// already set in the process environment win.
func New() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		logLevel:           DefaultLogLevel,
		dataDir:            defaultDataDir(),
		location:           DefaultLocation,
		textModel:          DefaultTextModel,
		imageModel:         DefaultImageModel,
		customizationModel: DefaultCustomizationModel,
		videoModel:         DefaultVideoModel,
		publicDir:          DefaultPublicDir,
		maxConcurrency:     DefaultMaxConcurrency,
		videoTimeout:       DefaultVideoTimeout,
		videoPollInterval:  DefaultVideoPollInterval,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	overrideString(&cfg.host, EnvHost)
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.projectID = os.Getenv(EnvProjectID)
	if loc := os.Getenv(EnvLocation); loc != "" {
		cfg.location = loc
	}
	cfg.bucket = os.Getenv(EnvBucket)

	overrideString(&cfg.textModel, EnvTextModel)
	overrideString(&cfg.imageModel, EnvImageModel)
	overrideString(&cfg.customizationModel, EnvCustomizationModel)
	overrideString(&cfg.videoModel, EnvVideoModel)
	overrideString(&cfg.publicDir, EnvPublicDir)

	if mc := os.Getenv(EnvMaxConcurrency); mc != "" {
		n, err := strconv.Atoi(mc)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxConcurrency, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", EnvMaxConcurrency)
		}
		cfg.maxConcurrency = n
	}

	var err error
	if cfg.rateInterval, err = durationFromEnv(EnvRateInterval, 0); err != nil {
		return nil, err
	}
	if cfg.videoTimeout, err = durationFromEnv(EnvVideoTimeout, DefaultVideoTimeout); err != nil {
		return nil, err
	}
	if cfg.videoPollInterval, err = durationFromEnv(EnvVideoPollInterval, DefaultVideoPollInterval); err != nil {
		return nil, err
	}
	if cfg.videoPollInterval <= 0 {
		return nil, fmt.Errorf("invalid %s: must be positive", EnvVideoPollInterval)
	}

	if cfg.characterReferences, err = boolFromEnv(EnvCharacterReferences); err != nil {
		return nil, err
	}
	if cfg.requireAuth, err = boolFromEnv(EnvRequireAuth); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(os.Getenv(EnvAllowedOrigins), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.allowedOrigins = append(cfg.allowedOrigins, origin)
		}
	}

	return cfg, nil
}

// Host returns the interface the HTTP server binds to
func (c *EnvConfig) Host() string {
	return c.host
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

func (c *EnvConfig) ProjectID() string {
	return c.projectID
}

func (c *EnvConfig) Location() string {
	return c.location
}

// Bucket is where generated images and videos are written by the providers.
func (c *EnvConfig) Bucket() string {
	return c.bucket
}

func (c *EnvConfig) TextModel() string {
	return c.textModel
}

func (c *EnvConfig) ImageModel() string {
	return c.imageModel
}

func (c *EnvConfig) CustomizationModel() string {
	return c.customizationModel
}

func (c *EnvConfig) VideoModel() string {
	return c.videoModel
}

// PublicDir is the local directory that mirrors generated video objects.
func (c *EnvConfig) PublicDir() string {
	return c.publicDir
}

// MaxConcurrency bounds concurrent provider calls per fan-out. 0 means unlimited.
func (c *EnvConfig) MaxConcurrency() int {
	return c.maxConcurrency
}

// RateInterval is the minimum spacing between provider calls. 0 disables limiting.
func (c *EnvConfig) RateInterval() time.Duration {
	return c.rateInterval
}

func (c *EnvConfig) VideoTimeout() time.Duration {
	return c.videoTimeout
}

func (c *EnvConfig) VideoPollInterval() time.Duration {
	return c.videoPollInterval
}

// CharacterReferences enables character-aware scene image customization.
func (c *EnvConfig) CharacterReferences() bool {
	return c.characterReferences
}

// RequireAuth enables bearer token auth on /api routes. Without it only
// loopback clients may call them.
func (c *EnvConfig) RequireAuth() bool {
	return c.requireAuth
}

// AllowedOrigins lists browser origins allowed besides localhost.
func (c *EnvConfig) AllowedOrigins() []string {
	return c.allowedOrigins
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func boolFromEnv(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
