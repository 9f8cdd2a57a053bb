// Package logging builds the JSON slog logger used across the storyboard
// agent. Attributes that may carry credentials are redacted by the handler.
package logging

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// NewLogger writes JSON records to stdout at the given level.
func NewLogger(level string) *slog.Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo writes JSON records to w. Debug level adds source locations.
func NewLoggerTo(w io.Writer, level string) *slog.Logger {
	lvl := ParseLevel(level)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: redact,
	}))
}

// ParseLevel accepts slog level names ("debug", "WARN", "info+2") and the
// "warning" alias. Anything else is info.
func ParseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// redact masks string attributes whose key names a URL or a token.
func redact(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	key := strings.ToLower(a.Key)
	switch {
	case key == "url" || strings.HasSuffix(key, "_url"):
		return slog.String(a.Key, SanitizeURL(a.Value.String()))
	case key == "token" || key == "authorization" || strings.HasSuffix(key, "_token"):
		return slog.String(a.Key, SanitizeToken(a.Value.String()))
	}
	return a
}

func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

func WithJobID(logger *slog.Logger, jobID string) *slog.Logger {
	return logger.With("job_id", jobID)
}

func WithScenarioID(logger *slog.Logger, scenarioID string) *slog.Logger {
	return logger.With("scenario_id", scenarioID)
}

// SanitizeToken keeps the first and last four characters of a token.
func SanitizeToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeURL drops the query and fragment. Signed URLs carry their
// credentials in the query.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
