package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/heimdex/storyboard-agent/internal/logging"
	"github.com/heimdex/storyboard-agent/internal/storyboard"
	"github.com/heimdex/storyboard-agent/internal/video"
)

// videosHandler runs the Video Assembler. Every outcome, failures included,
// is reported as HTTP 200 with a VideoResponse body.
func videosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var scenes []video.SceneInput
		if err := json.NewDecoder(r.Body).Decode(&scenes); err != nil {
			WriteJSON(w, http.StatusOK, VideoResponse{Success: false, Error: "invalid request body: expected an array of scenes"})
			return
		}

		scenarioID := r.URL.Query().Get("scenario_id")
		if scenarioID != "" {
			if cfg.Repository == nil {
				WriteJSON(w, http.StatusOK, VideoResponse{Success: false, Error: "stored scenarios are not available"})
				return
			}
			s, err := cfg.Repository.GetScenario(ctx, scenarioID)
			if err != nil || s == nil {
				WriteJSON(w, http.StatusOK, VideoResponse{Success: false, Error: "scenario not found"})
				return
			}
		}

		var job *storyboard.VideoJob
		logger := cfg.Logger
		if cfg.Repository != nil {
			job = &storyboard.VideoJob{ScenarioID: scenarioID, SceneCount: len(scenes)}
			if err := cfg.Repository.CreateVideoJob(ctx, job); err != nil {
				logger.Error("failed to create video job", "error", err)
				WriteJSON(w, http.StatusOK, VideoResponse{Success: false, Error: "failed to create video job"})
				return
			}
			logger = logging.WithJobID(logger, job.ID)
		}

		logger.Info("generating videos", "scenes", len(scenes), "scenario_id", scenarioID)

		clips, err := cfg.Videos.Assemble(ctx, scenes)

		// Job rows must settle even when the client has gone away.
		bookkeeping := context.WithoutCancel(ctx)
		if err != nil {
			logger.Error("video generation failed", "error", err)
			resp := VideoResponse{Success: false, Error: err.Error()}
			if job != nil {
				if ferr := cfg.Repository.FailVideoJob(bookkeeping, job.ID, err.Error()); ferr != nil {
					logger.Warn("failed to record job failure", "error", ferr)
				}
				resp.JobID = job.ID
			}
			WriteJSON(w, http.StatusOK, resp)
			return
		}
		if clips == nil {
			clips = []video.Clip{}
		}

		resp := VideoResponse{Success: true, VideoURLs: clips}
		if job != nil {
			resp.JobID = job.ID
			if err := cfg.Repository.CompleteVideoJob(bookkeeping, job.ID, clips); err != nil {
				logger.Warn("failed to record job completion", "error", err)
			}
			if scenarioID != "" {
				if err := cfg.Repository.AttachClips(bookkeeping, scenarioID, clips); err != nil {
					logger.Warn("failed to attach clips to scenario", "scenario_id", scenarioID, "error", err)
				}
			}
		}

		logger.Info("videos generated", "clips", len(clips))
		WriteJSON(w, http.StatusOK, resp)
	}
}
