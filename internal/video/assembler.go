// Package video turns storyboard scenes with rendered images into video clips:
// one image-to-video generation per scene, a signed retrieval URL and a local
// mirror of the generated file.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/heimdex/storyboard-agent/internal/fanout"
	"github.com/heimdex/storyboard-agent/internal/gcs"
	"github.com/heimdex/storyboard-agent/internal/logging"
	"github.com/heimdex/storyboard-agent/internal/vertex"
)

// SceneInput is a scene descriptor as posted by clients. Only scenes with an
// ImageBase64 payload are turned into videos.
type SceneInput struct {
	ImagePrompt string `json:"imagePrompt"`
	VideoPrompt string `json:"videoPrompt"`
	Description string `json:"description"`
	Voiceover   string `json:"voiceover"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// Clip is one generated video. FileName is the object path inside the bucket,
// which is also the path of the local mirror under the public directory.
type Clip struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`

	// Scene is the index of the originating scene in the input slice.
	Scene int `json:"-"`
}

// Config holds the Assembler dependencies.
type Config struct {
	Videos    vertex.VideoGenerator
	Store     gcs.ObjectStore
	PublicDir string
	// Timeout bounds a single scene from submission to completion. 0 means
	// only the caller's context applies.
	Timeout time.Duration
	Fanout  fanout.Options
	Logger  *slog.Logger
}

type Assembler struct {
	videos    vertex.VideoGenerator
	store     gcs.ObjectStore
	publicDir string
	timeout   time.Duration
	fanout    fanout.Options
	logger    *slog.Logger
}

func NewAssembler(cfg Config) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Assembler{
		videos:    cfg.Videos,
		store:     cfg.Store,
		publicDir: cfg.PublicDir,
		timeout:   cfg.Timeout,
		fanout:    cfg.Fanout,
		logger:    logging.WithComponent(logger, "video"),
	}
}

// Assemble generates one clip per scene carrying an image. Scenes without an
// image are skipped. Clips are returned in scene order. Any scene failure
// aborts the batch and no clips are returned; a failed local mirror is only
// logged.
func (a *Assembler) Assemble(ctx context.Context, scenes []SceneInput) ([]Clip, error) {
	type qualified struct {
		index int
		scene SceneInput
	}

	var work []qualified
	for i, sc := range scenes {
		if sc.ImageBase64 == "" {
			continue
		}
		work = append(work, qualified{index: i, scene: sc})
	}

	a.logger.Info("generating videos", "scenes", len(scenes), "qualified", len(work))

	return fanout.Map(ctx, work, a.fanout, func(ctx context.Context, _ int, q qualified) (Clip, error) {
		clip, err := a.assembleScene(ctx, q.index, q.scene)
		if err != nil {
			return Clip{}, fmt.Errorf("scene %d: %w", q.index+1, err)
		}
		return clip, nil
	})
}

func (a *Assembler) assembleScene(ctx context.Context, index int, sc SceneInput) (Clip, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	logger := a.logger.With("scene", index+1)

	op, err := a.videos.StartVideo(ctx, sc.VideoPrompt, sc.ImageBase64)
	if err != nil {
		return Clip{}, err
	}
	logger.Info("video operation started", "operation", op.Name)

	uri, err := a.videos.WaitVideo(ctx, op)
	if err != nil {
		return Clip{}, err
	}
	logger.Info("video generation completed", "gcs_uri", uri)

	bucket, object, err := gcs.ParseURI(uri)
	if err != nil {
		return Clip{}, err
	}

	url, err := a.store.SignedURL(ctx, bucket, object)
	if err != nil {
		return Clip{}, err
	}

	dest, err := a.localPath(object)
	if err != nil {
		logger.Warn("skipping local mirror", "object", object, "error", err)
	} else if err := a.store.Download(ctx, bucket, object, dest); err != nil {
		logger.Warn("failed to mirror video", "object", object, "dest", dest, "error", err)
	} else {
		logger.Info("video mirrored", "dest", dest)
	}

	logger.Debug("signed url obtained", "url", logging.SanitizeURL(url))
	return Clip{FileName: object, URL: url, Scene: index}, nil
}

// localPath maps an object path to its mirror under the public directory.
func (a *Assembler) localPath(object string) (string, error) {
	root := filepath.Clean(a.publicDir)
	dest := filepath.Join(root, filepath.FromSlash(object))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object path %q escapes public directory", object)
	}
	return dest, nil
}
