package storyboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes Markdown code fence markers ("```json" and "```")
// anywhere in text and trims surrounding whitespace. Text without fences is
// returned trimmed and otherwise unchanged. No validation is performed.
func StripFences(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

type rawScenario struct {
	Scenario   string          `json:"scenario"`
	Genre      string          `json:"genre"`
	Mood       string          `json:"mood"`
	Music      string          `json:"music"`
	Language   Language        `json:"language"`
	Characters json.RawMessage `json:"characters"`
	Settings   json.RawMessage `json:"settings"`
	Scenes     json.RawMessage `json:"scenes"`
}

// ParseScenario decodes a full scenario response. The scenes field must be a
// JSON array; characters and settings may be absent but must be arrays when
// present.
func ParseScenario(text string) (*Scenario, error) {
	var raw rawScenario
	if err := decodeResponse(text, &raw); err != nil {
		return nil, err
	}

	s := &Scenario{
		Scenario: raw.Scenario,
		Genre:    raw.Genre,
		Mood:     raw.Mood,
		Music:    raw.Music,
		Language: raw.Language,
	}
	if err := decodeArray(raw.Characters, "characters", false, &s.Characters); err != nil {
		return nil, err
	}
	if err := decodeArray(raw.Settings, "settings", false, &s.Settings); err != nil {
		return nil, err
	}
	if err := decodeArray(raw.Scenes, "scenes", true, &s.Scenes); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseScenes decodes a {"scenes": [...]} response.
func ParseScenes(text string) ([]Scene, error) {
	var raw struct {
		Scenes json.RawMessage `json:"scenes"`
	}
	if err := decodeResponse(text, &raw); err != nil {
		return nil, err
	}

	var scenes []Scene
	if err := decodeArray(raw.Scenes, "scenes", true, &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

func decodeResponse(text string, v any) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(StripFences(text)), v); err != nil {
		return &ParseError{Raw: text, Err: err}
	}
	return nil
}

func decodeArray[T any](raw json.RawMessage, field string, required bool, dst *[]T) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if required {
			return fmt.Errorf("%w: expected %s to be an array, got nothing", ErrInvalidShape, field)
		}
		*dst = []T{}
		return nil
	}
	if trimmed[0] != '[' {
		return fmt.Errorf("%w: expected %s to be an array", ErrInvalidShape, field)
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidShape, field, err)
	}
	return nil
}
