// Package vertex adapts the Vertex AI generative models (Gemini text, Imagen
// images and Veo videos) behind small interfaces the orchestration code
// depends on.
package vertex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultPollInterval = 10 * time.Second

// TextGenerator produces raw model text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces single images written to object storage.
type ImageGenerator interface {
	// GenerateImage renders one image from a prompt. AspectRatio may be empty
	// for the model default.
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error)

	// CustomizeImage renders one image from a prompt that references
	// previously generated subject images.
	CustomizeImage(ctx context.Context, prompt string, subjects []SubjectReference) (ImageResult, error)
}

// VideoGenerator drives the long-running video generation operation.
type VideoGenerator interface {
	StartVideo(ctx context.Context, prompt, imageBase64 string) (*Operation, error)

	// WaitVideo blocks until the operation reaches a terminal state or ctx is
	// done, and returns the storage URI of the first generated sample.
	WaitVideo(ctx context.Context, op *Operation) (string, error)
}

type ImageRequest struct {
	Prompt      string
	AspectRatio string
}

type ImageResult struct {
	GCSURI string
}

// SubjectReference is a character image used to keep a subject consistent
// across generated scene images.
type SubjectReference struct {
	Name        string
	Description string
	GCSURI      string
}

// Operation is an opaque handle to an in-progress video generation.
type Operation struct {
	Name string
	raw  *genai.GenerateVideosOperation
}

// Config holds the client's configuration.
type Config struct {
	ProjectID          string
	Location           string
	Bucket             string // output bucket for images and videos
	TextModel          string
	ImageModel         string
	CustomizationModel string
	VideoModel         string
	PollInterval       time.Duration
	Logger             *slog.Logger
}

// Client is the production implementation of the generator interfaces,
// backed by a single genai client.
type Client struct {
	cfg    Config
	genai  *genai.Client
	logger *slog.Logger

	// pollVideo refreshes a video operation. Swapped in tests.
	pollVideo func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// NewClient creates a Vertex-backed client. Credentials are resolved through
// Application Default Credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("output bucket is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	cfg.Logger.Info("vertex client initialised",
		"project", cfg.ProjectID,
		"location", cfg.Location,
		"text_model", cfg.TextModel,
		"image_model", cfg.ImageModel,
		"video_model", cfg.VideoModel,
	)

	c := &Client{cfg: cfg, genai: gc, logger: cfg.Logger}
	c.pollVideo = func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		return gc.Operations.GetVideosOperation(ctx, op, nil)
	}
	return c, nil
}

// GenerateText submits prompt with temperature 1 and a zero thinking budget.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.TextModel, genai.Text(prompt), textConfig())
	if err != nil {
		return "", &RemoteCallError{Op: "generate text", Err: err}
	}
	return resp.Text(), nil
}

// textConfig disables thinking entirely: a zero budget, and no thought parts
// in the response.
func textConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](1),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr[int32](0),
		},
	}
}

func (c *Client) outputURI(prefix string) string {
	return "gs://" + strings.TrimSuffix(c.cfg.Bucket, "/") + "/" + prefix + "/"
}
