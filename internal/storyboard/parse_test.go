package storyboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", "  {\"a\":1}\n", `{"a":1}`},
		{"text around fence", "Here you go:\n```json\n{}\n```\n", "Here you go:\n\n{}"},
		{"malformed left alone", "```json\n{\"a\":", `{"a":`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseScenario(t *testing.T) {
	text := "```json\n" + `{
		"scenario": "A robot and a dog.",
		"genre": "Cinematic",
		"mood": "Inspirational",
		"music": "Soft strings",
		"language": {"name": "French", "code": "fr-FR"},
		"characters": [{"name": "Bolt", "description": "a rusty robot"}],
		"settings": [{"name": "City", "description": "a flooded city"}],
		"scenes": [{"imagePrompt": "i", "videoPrompt": "v", "description": "d", "voiceover": "o", "charactersPresent": ["Bolt"]}]
	}` + "\n```"

	got, err := ParseScenario(text)
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}

	want := &Scenario{
		Scenario:   "A robot and a dog.",
		Genre:      "Cinematic",
		Mood:       "Inspirational",
		Music:      "Soft strings",
		Language:   Language{Name: "French", Code: "fr-FR"},
		Characters: []Character{{Name: "Bolt", Description: "a rusty robot"}},
		Settings:   []Setting{{Name: "City", Description: "a flooded city"}},
		Scenes: []Scene{{
			ImagePrompt: "i", VideoPrompt: "v", Description: "d", Voiceover: "o",
			CharactersPresent: []string{"Bolt"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseScenario() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", ErrEmptyResponse},
		{"whitespace", "  \n", ErrEmptyResponse},
		{"scenes not array", `{"scenario": "x", "scenes": {"a": 1}}`, ErrInvalidShape},
		{"scenes missing", `{"scenario": "x"}`, ErrInvalidShape},
		{"characters not array", `{"characters": "Bolt", "scenes": []}`, ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseScenario() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseScenario_NullRostersBecomeEmpty(t *testing.T) {
	got, err := ParseScenario(`{"scenario": "x", "characters": null, "scenes": []}`)
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}
	if got.Characters == nil || len(got.Characters) != 0 {
		t.Errorf("Characters = %#v, want empty slice", got.Characters)
	}
	if got.Settings == nil || len(got.Settings) != 0 {
		t.Errorf("Settings = %#v, want empty slice", got.Settings)
	}
}

func TestParseScenario_ParseErrorKeepsRaw(t *testing.T) {
	raw := "```json\n{\"scenario\": \"unterminated\n```"

	_, err := ParseScenario(raw)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Raw != raw {
		t.Errorf("Raw = %q, want original text", pe.Raw)
	}
	if !strings.HasPrefix(pe.Error(), "failed to parse AI response: ") {
		t.Errorf("Error() = %q", pe.Error())
	}
}

func TestParseScenes(t *testing.T) {
	scenes, err := ParseScenes(`{"scenes": [{"imagePrompt": "a"}, {"imagePrompt": "b"}]}`)
	if err != nil {
		t.Fatalf("ParseScenes() error = %v", err)
	}
	if len(scenes) != 2 || scenes[1].ImagePrompt != "b" {
		t.Errorf("ParseScenes() = %+v", scenes)
	}

	if _, err := ParseScenes(`{"scenes": "none"}`); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("ParseScenes(non-array) error = %v, want ErrInvalidShape", err)
	}
}

func TestReconcileScenes(t *testing.T) {
	scenes := []Scene{{ImagePrompt: "1"}, {ImagePrompt: "2"}, {ImagePrompt: "3"}}

	for n := 0; n <= 6; n++ {
		got := ReconcileScenes(scenes, n)
		if len(got) != n {
			t.Fatalf("ReconcileScenes(3 scenes, %d) len = %d", n, len(got))
		}
		for i := range got {
			if i < len(scenes) {
				if got[i].ImagePrompt != scenes[i].ImagePrompt {
					t.Errorf("n=%d scene %d = %q, want original", n, i, got[i].ImagePrompt)
				}
				continue
			}
			if diff := cmp.Diff(PlaceholderScene(), got[i]); diff != "" {
				t.Errorf("n=%d scene %d not a placeholder (-want +got):\n%s", n, i, diff)
			}
		}
	}

	if len(scenes) != 3 {
		t.Error("input slice was modified")
	}
}

func TestPlaceholderScene_EmptyCharacterList(t *testing.T) {
	p := PlaceholderScene()
	if p.CharactersPresent == nil || len(p.CharactersPresent) != 0 {
		t.Errorf("CharactersPresent = %#v, want empty non-nil slice", p.CharactersPresent)
	}
	if p.ImageGcsURI != "" {
		t.Error("placeholder should carry no image")
	}
}

func TestClone_RoundTrip(t *testing.T) {
	original := &Scenario{
		ID:       "abc",
		Scenario: "story",
		Language: Language{Name: "English", Code: "en-US"},
		Characters: []Character{
			{Name: "Bolt", Description: "robot", ImageGcsURI: "gs://b/images/1.png"},
			{Name: "Rex", Description: "dog"},
		},
		Settings: []Setting{{Name: "City", Description: "flooded"}},
		Scenes: []Scene{
			{ImagePrompt: "i", CharactersPresent: []string{"Bolt", "Rex"}, VideoURL: "https://x", FileName: "videos/1.mp4"},
			PlaceholderScene(),
		},
	}

	clone, err := Clone(original)
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if diff := cmp.Diff(original, clone); diff != "" {
		t.Errorf("Clone() mismatch (-want +got):\n%s", diff)
	}

	clone.Scenes[0].CharactersPresent[0] = "changed"
	clone.Characters[0].ImageGcsURI = ""
	if original.Scenes[0].CharactersPresent[0] != "Bolt" || original.Characters[0].ImageGcsURI == "" {
		t.Error("Clone() shares memory with the original")
	}
}

func TestScenarioJSON_AbsentImageOmitted(t *testing.T) {
	c := Character{Name: "Rex", Description: "dog"}
	clone, err := Clone(&Scenario{Characters: []Character{c}})
	if err != nil {
		t.Fatal(err)
	}
	if clone.Characters[0].ImageGcsURI != "" {
		t.Errorf("ImageGcsURI = %q, want empty", clone.Characters[0].ImageGcsURI)
	}
}
