package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("short"); got != "****" {
		t.Errorf("SanitizeToken(short) = %q, want ****", got)
	}
	if got := SanitizeToken("abcdefghijkl"); got != "abcd...ijkl" {
		t.Errorf("SanitizeToken() = %q, want abcd...ijkl", got)
	}
}

func TestSanitizeURL(t *testing.T) {
	raw := "https://storage.googleapis.com/bucket/videos/a.mp4?X-Goog-Signature=secret&X-Goog-Expires=360000"
	want := "https://storage.googleapis.com/bucket/videos/a.mp4"
	if got := SanitizeURL(raw); got != want {
		t.Errorf("SanitizeURL() = %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info+2", slog.LevelInfo + 2},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerTo_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info")

	logger.Info("clip ready",
		"video_url", "https://storage.googleapis.com/b/videos/1/sample_0.mp4?X-Goog-Signature=abc",
		"auth_token", "0123456789abcdef",
		"scene", 2,
		"gcs_uri", "gs://b/videos/1/sample_0.mp4",
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if got := rec["video_url"]; got != "https://storage.googleapis.com/b/videos/1/sample_0.mp4" {
		t.Errorf("video_url = %v", got)
	}
	if got := rec["auth_token"]; got != "0123...cdef" {
		t.Errorf("auth_token = %v", got)
	}
	if got := rec["gcs_uri"]; got != "gs://b/videos/1/sample_0.mp4" {
		t.Errorf("gcs_uri = %v, want unchanged", got)
	}
	if got := rec["scene"]; got != float64(2) {
		t.Errorf("scene = %v", got)
	}
}

func TestNewLoggerTo_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record not written")
	}
}
