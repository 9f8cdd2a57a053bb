package api

import (
	"github.com/heimdex/storyboard-agent/internal/storyboard"
	"github.com/heimdex/storyboard-agent/internal/video"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StoryboardRequest expands either an inline scenario or a stored one.
type StoryboardRequest struct {
	ScenarioID string               `json:"scenarioId,omitempty"`
	Scenario   *storyboard.Scenario `json:"scenario,omitempty"`
	NumScenes  int                  `json:"numScenes"`
	Style      string               `json:"style"`
	Language   storyboard.Language  `json:"language"`
}

// VideoResponse is always returned with HTTP 200; Success tells the outcome.
type VideoResponse struct {
	Success   bool         `json:"success"`
	VideoURLs []video.Clip `json:"videoUrls,omitzero"`
	Error     string       `json:"error,omitempty"`
	JobID     string       `json:"jobId,omitempty"`
}

type ScenariosResponse struct {
	Scenarios []*storyboard.ScenarioSummary `json:"scenarios"`
}
