// Package storyboard synthesizes scenarios and storyboards from a story pitch
// by orchestrating text and image generation.
//
// Optional media fields (imageGcsUri, videoUrl, fileName) are absent when
// empty: the Go zero value "" is the only absent representation and it is
// omitted from JSON.
package storyboard

import (
	"encoding/json"
	"fmt"
	"time"
)

type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageGcsURI string `json:"imageGcsUri,omitempty"`
}

type Setting struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Scene struct {
	ImagePrompt       string   `json:"imagePrompt"`
	VideoPrompt       string   `json:"videoPrompt"`
	Description       string   `json:"description"`
	Voiceover         string   `json:"voiceover"`
	CharactersPresent []string `json:"charactersPresent"`
	ImageGcsURI       string   `json:"imageGcsUri,omitempty"`
	VideoURL          string   `json:"videoUrl,omitempty"`
	FileName          string   `json:"fileName,omitempty"`
}

type Scenario struct {
	ID         string      `json:"id,omitempty"`
	Scenario   string      `json:"scenario"`
	Genre      string      `json:"genre"`
	Mood       string      `json:"mood"`
	Music      string      `json:"music"`
	Language   Language    `json:"language"`
	Characters []Character `json:"characters"`
	Settings   []Setting   `json:"settings"`
	Scenes     []Scene     `json:"scenes"`
	CreatedAt  time.Time   `json:"createdAt,omitzero"`
	UpdatedAt  time.Time   `json:"updatedAt,omitzero"`
}

// Genres lists the music genres the model may pick from.
var Genres = []string{
	"Alternative & Punk",
	"Ambient",
	"Children's",
	"Cinematic",
	"Classical",
	"Country & Folk",
	"Dance & Electronic",
	"Hip-Hop & Rap",
	"Holiday",
	"Jazz & Blues",
	"Pop",
	"R&B & Soul",
	"Reggae",
	"Rock",
}

// Moods lists the moods the model may pick from.
var Moods = []string{
	"Angry",
	"Bright",
	"Calm",
	"Dark",
	"Dramatic",
	"Funky",
	"Happy",
	"Inspirational",
	"Romantic",
	"Sad",
}

// PlaceholderScene is appended when the model returns fewer scenes than
// requested.
func PlaceholderScene() Scene {
	return Scene{
		ImagePrompt:       "A blank canvas waiting to be filled with imagination",
		VideoPrompt:       "Describe what is happening in the video",
		Description:       "This scene is yet to be created. Let your imagination run wild!",
		Voiceover:         "What happens next? The story is yours to continue...",
		CharactersPresent: []string{},
	}
}

// ReconcileScenes pads scenes with placeholders or truncates them so the
// result has exactly n entries. The input slice is not modified.
func ReconcileScenes(scenes []Scene, n int) []Scene {
	if n < 0 {
		n = 0
	}
	out := make([]Scene, 0, n)
	for i := 0; i < len(scenes) && i < n; i++ {
		out = append(out, scenes[i])
	}
	for len(out) < n {
		out = append(out, PlaceholderScene())
	}
	return out
}

// Clone returns a deep value copy of s by a JSON round trip, so the result
// shares no slices with the input.
func Clone(s *Scenario) (*Scenario, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("clone scenario: %w", err)
	}
	var out Scenario
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone scenario: %w", err)
	}
	return &out, nil
}
