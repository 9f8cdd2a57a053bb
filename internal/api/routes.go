package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/storyboard-agent/internal/logging"
	"github.com/heimdex/storyboard-agent/internal/storyboard"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist(cfg.AllowedOrigins...))

	r.Get("/health", healthHandler(cfg))
	r.Get("/public/*", publicHandler(cfg))
	r.Head("/public/*", publicHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		if cfg.RequireAuth {
			r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))
		} else {
			r.Use(LocalOnly(cfg.Logger))
		}

		r.Post("/scenarios", createScenarioHandler(cfg))
		r.Get("/scenarios", listScenariosHandler(cfg))
		r.Get("/scenarios/{id}", getScenarioHandler(cfg))
		r.Get("/scenarios/{id}/export.edl", exportEDLHandler(cfg))
		r.Post("/storyboard", storyboardHandler(cfg))
		r.Post("/videos", videosHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func publicHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PlaybackServer == nil {
			WriteError(w, http.StatusNotFound, "public files not configured", "NOT_FOUND")
			return
		}
		if err := cfg.PlaybackServer.ServeFile(w, r, chi.URLParam(r, "*")); err != nil {
			cfg.Logger.Error("playback error", "path", r.URL.Path, "error", err)
		}
	}
}

func createScenarioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req storyboard.ScenarioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Pitch == "" {
			WriteError(w, http.StatusBadRequest, "pitch is required", "BAD_REQUEST")
			return
		}

		scenario, err := cfg.Stories.GenerateScenario(r.Context(), req)
		if err != nil {
			writeGenerationError(w, err)
			return
		}

		if cfg.Repository != nil {
			if err := cfg.Repository.SaveScenario(r.Context(), scenario, req.Pitch, req.Style); err != nil {
				cfg.Logger.Error("failed to store scenario", "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to store scenario", "INTERNAL_ERROR")
				return
			}
			logging.WithScenarioID(cfg.Logger, scenario.ID).Info("scenario stored",
				"scenes", len(scenario.Scenes), "characters", len(scenario.Characters))
		}

		WriteJSON(w, http.StatusOK, scenario)
	}
}

func storyboardHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StoryboardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		scenario := req.Scenario
		if req.ScenarioID != "" {
			if cfg.Repository == nil {
				WriteError(w, http.StatusBadRequest, "stored scenarios are not available", "BAD_REQUEST")
				return
			}
			stored, err := cfg.Repository.GetScenario(r.Context(), req.ScenarioID)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			if stored == nil {
				WriteError(w, http.StatusNotFound, "scenario not found", "NOT_FOUND")
				return
			}
			scenario = stored
		}
		if scenario == nil {
			WriteError(w, http.StatusBadRequest, "scenario or scenarioId is required", "BAD_REQUEST")
			return
		}

		out, err := cfg.Stories.GenerateStoryboard(r.Context(), scenario, storyboard.StoryboardRequest{
			NumScenes: req.NumScenes,
			Style:     req.Style,
			Language:  req.Language,
		})
		if err != nil {
			writeGenerationError(w, err)
			return
		}

		if cfg.Repository != nil && req.ScenarioID != "" {
			if err := cfg.Repository.SaveScenario(r.Context(), out, "", req.Style); err != nil {
				cfg.Logger.Error("failed to store storyboard", "scenario_id", out.ID, "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to store storyboard", "INTERNAL_ERROR")
				return
			}
		}

		WriteJSON(w, http.StatusOK, out)
	}
}

func listScenariosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 {
				limit = n
			}
		}

		list, err := cfg.Repository.ListScenarios(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list scenarios", "INTERNAL_ERROR")
			return
		}
		if list == nil {
			list = []*storyboard.ScenarioSummary{}
		}
		WriteJSON(w, http.StatusOK, ScenariosResponse{Scenarios: list})
	}
}

func getScenarioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := cfg.Repository.GetScenario(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if s == nil {
			WriteError(w, http.StatusNotFound, "scenario not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, s)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Repository.GetVideoJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, job)
	}
}

// writeGenerationError maps orchestration failures to a status code. The
// message carries the stage prefix.
func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storyboard.ErrInvalidRequest):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		WriteError(w, http.StatusBadGateway, err.Error(), "GENERATION_FAILED")
	}
}
