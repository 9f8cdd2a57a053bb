package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/storyboard-agent/internal/export"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
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

		timeline := export.FromScenario(s, cfg.PublicDir, export.DefaultClipDuration)
		if fps := r.URL.Query().Get("fps"); fps != "" {
			rate, err := strconv.ParseFloat(fps, 64)
			if err != nil || rate <= 0 {
				WriteError(w, http.StatusBadRequest, "fps must be a positive number", "BAD_REQUEST")
				return
			}
			timeline.FrameRate = rate
		}

		if len(timeline.Clips) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "scenario has no generated videos", "NO_CLIPS")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", timeline.Title+".edl"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(export.GenerateEDL(timeline)))
	}
}
