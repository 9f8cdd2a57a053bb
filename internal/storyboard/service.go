package storyboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/heimdex/storyboard-agent/internal/fanout"
	"github.com/heimdex/storyboard-agent/internal/logging"
	"github.com/heimdex/storyboard-agent/internal/vertex"
)

// CharacterAspectRatio is the aspect ratio of character portraits.
const CharacterAspectRatio = "1:1"

// ImageStrategy selects how scene images are produced by the expander.
type ImageStrategy int

const (
	// ImageStrategyPrompt renders each scene image from its imagePrompt alone.
	ImageStrategyPrompt ImageStrategy = iota

	// ImageStrategyCharacterReference customizes each scene image with the
	// stored images of the characters present in the scene. Scenes without
	// any referenced character image fall back to ImageStrategyPrompt.
	ImageStrategyCharacterReference
)

func (s ImageStrategy) String() string {
	switch s {
	case ImageStrategyCharacterReference:
		return "character_reference"
	default:
		return "prompt"
	}
}

// ScenarioRequest is the input of the Scenario Synthesizer.
type ScenarioRequest struct {
	Pitch     string   `json:"pitch"`
	NumScenes int      `json:"numScenes"`
	Style     string   `json:"style"`
	Language  Language `json:"language"`
}

// StoryboardRequest is the input of the Storyboard Expander, alongside the
// scenario being expanded.
type StoryboardRequest struct {
	NumScenes int      `json:"numScenes"`
	Style     string   `json:"style"`
	Language  Language `json:"language"`
}

// ServiceConfig holds the Service dependencies.
type ServiceConfig struct {
	Text          vertex.TextGenerator
	Images        vertex.ImageGenerator
	Fanout        fanout.Options
	ImageStrategy ImageStrategy
	Logger        *slog.Logger
}

// Service runs the scenario and storyboard stages. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	text     vertex.TextGenerator
	images   vertex.ImageGenerator
	fanout   fanout.Options
	strategy ImageStrategy
	logger   *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		text:     cfg.Text,
		images:   cfg.Images,
		fanout:   cfg.Fanout,
		strategy: cfg.ImageStrategy,
		logger:   logging.WithComponent(logger, "storyboard"),
	}
}

// GenerateScenario turns a pitch into a scenario with exactly req.NumScenes
// scenes and one portrait per character. Character image failures leave
// ImageGcsURI empty; text failures abort the stage.
func (s *Service) GenerateScenario(ctx context.Context, req ScenarioRequest) (*Scenario, error) {
	scenario, err := s.generateScenario(ctx, req)
	if err != nil {
		s.logger.Error("scenario generation failed", "error", err)
		return nil, fmt.Errorf("%s: %w", scenesStagePrefix, err)
	}
	return scenario, nil
}

func (s *Service) generateScenario(ctx context.Context, req ScenarioRequest) (*Scenario, error) {
	if req.NumScenes < 0 {
		return nil, fmt.Errorf("%w: numScenes must not be negative", ErrInvalidRequest)
	}

	prompt, err := BuildScenarioPrompt(req)
	if err != nil {
		return nil, err
	}

	text, err := s.text.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	scenario, err := ParseScenario(text)
	if err != nil {
		logParseFailure(s.logger, err)
		return nil, err
	}
	scenario.Language = req.Language

	s.logger.Info("scenario parsed",
		"characters", len(scenario.Characters),
		"settings", len(scenario.Settings),
		"scenes", len(scenario.Scenes),
	)

	characters, err := fanout.Map(ctx, scenario.Characters, s.fanout, func(ctx context.Context, _ int, c Character) (Character, error) {
		return s.characterImage(ctx, req.Style, c), nil
	})
	if err != nil {
		return nil, err
	}
	scenario.Characters = characters

	if len(scenario.Scenes) != req.NumScenes {
		s.logger.Info("reconciling scene count", "returned", len(scenario.Scenes), "requested", req.NumScenes)
	}
	scenario.Scenes = ReconcileScenes(scenario.Scenes, req.NumScenes)

	return scenario, nil
}

// GenerateStoryboard generates a fresh scene list for scenario and one image
// per scene. The returned scenario is a deep copy; the input is not modified.
// The scene count is whatever the model produced.
func (s *Service) GenerateStoryboard(ctx context.Context, scenario *Scenario, req StoryboardRequest) (*Scenario, error) {
	out, err := s.generateStoryboard(ctx, scenario, req)
	if err != nil {
		s.logger.Error("storyboard generation failed", "error", err)
		return nil, fmt.Errorf("%s: %w", storyboardStagePrefix, err)
	}
	return out, nil
}

func (s *Service) generateStoryboard(ctx context.Context, scenario *Scenario, req StoryboardRequest) (*Scenario, error) {
	if scenario == nil {
		return nil, fmt.Errorf("%w: scenario is required", ErrInvalidRequest)
	}
	if req.NumScenes < 0 {
		return nil, fmt.Errorf("%w: numScenes must not be negative", ErrInvalidRequest)
	}

	prompt, err := BuildStoryboardPrompt(scenario, req)
	if err != nil {
		return nil, err
	}

	text, err := s.text.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	scenes, err := ParseScenes(text)
	if err != nil {
		logParseFailure(s.logger, err)
		return nil, err
	}

	s.logger.Info("storyboard parsed",
		"scenes", len(scenes),
		"requested", req.NumScenes,
		"image_strategy", s.strategy.String(),
	)

	scenes, err = fanout.Map(ctx, scenes, s.fanout, func(ctx context.Context, i int, sc Scene) (Scene, error) {
		return s.sceneImage(ctx, scenario.Characters, i, sc), nil
	})
	if err != nil {
		return nil, err
	}

	out, err := Clone(scenario)
	if err != nil {
		return nil, err
	}
	out.Scenes = scenes
	out.Language = req.Language
	return out, nil
}

func (s *Service) characterImage(ctx context.Context, style string, c Character) Character {
	res, err := s.images.GenerateImage(ctx, vertex.ImageRequest{
		Prompt:      fmt.Sprintf("%s: %s", style, c.Description),
		AspectRatio: CharacterAspectRatio,
	})
	if err != nil {
		s.logItemFailure("character image generation failed", err, "character", c.Name)
		c.ImageGcsURI = ""
		return c
	}
	c.ImageGcsURI = res.GCSURI
	s.logger.Debug("character image generated", "character", c.Name, "gcs_uri", res.GCSURI)
	return c
}

func (s *Service) sceneImage(ctx context.Context, characters []Character, i int, sc Scene) Scene {
	var (
		res vertex.ImageResult
		err error
	)
	if refs := s.subjectReferences(characters, sc); len(refs) > 0 {
		res, err = s.images.CustomizeImage(ctx, sc.ImagePrompt, refs)
	} else {
		res, err = s.images.GenerateImage(ctx, vertex.ImageRequest{Prompt: sc.ImagePrompt})
	}
	if err != nil {
		s.logItemFailure("scene image generation failed", err, "scene", i)
		sc.ImageGcsURI = ""
		return sc
	}
	sc.ImageGcsURI = res.GCSURI
	s.logger.Debug("scene image generated", "scene", i, "gcs_uri", res.GCSURI)
	return sc
}

// subjectReferences returns the stored images of the characters present in
// sc, or nil unless the character reference strategy is active.
func (s *Service) subjectReferences(characters []Character, sc Scene) []vertex.SubjectReference {
	if s.strategy != ImageStrategyCharacterReference {
		return nil
	}
	var refs []vertex.SubjectReference
	for _, c := range characters {
		if c.ImageGcsURI == "" || !slices.Contains(sc.CharactersPresent, c.Name) {
			continue
		}
		refs = append(refs, vertex.SubjectReference{
			Name:        c.Name,
			Description: c.Description,
			GCSURI:      c.ImageGcsURI,
		})
	}
	return refs
}

func (s *Service) logItemFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if vertex.IsContentFiltered(err) {
		args = append(args, "content_filtered", true)
	}
	s.logger.Warn(msg, args...)
}

func logParseFailure(logger *slog.Logger, err error) {
	var pe *ParseError
	if errors.As(err, &pe) {
		logger.Error("failed to parse model response", "error", pe.Err, "raw", pe.Raw)
	}
}
