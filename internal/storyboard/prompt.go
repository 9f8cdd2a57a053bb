package storyboard

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptsFS embed.FS

var prompts = template.Must(template.ParseFS(promptsFS, "prompts/*.tmpl"))

type scenarioPromptData struct {
	Pitch     string
	NumScenes int
	Style     string
	Language  Language
	Genres    []string
	Moods     []string
}

type storyboardPromptData struct {
	Scenario  *Scenario
	NumScenes int
	Style     string
	Language  Language
}

// BuildScenarioPrompt renders the instruction that turns a pitch into a full
// scenario with characters, settings and scenes.
func BuildScenarioPrompt(req ScenarioRequest) (string, error) {
	return render("scenario.tmpl", scenarioPromptData{
		Pitch:     req.Pitch,
		NumScenes: req.NumScenes,
		Style:     req.Style,
		Language:  req.Language,
		Genres:    Genres,
		Moods:     Moods,
	})
}

// BuildStoryboardPrompt renders the instruction that produces fresh scenes
// for an existing scenario.
func BuildStoryboardPrompt(s *Scenario, req StoryboardRequest) (string, error) {
	return render("storyboard.tmpl", storyboardPromptData{
		Scenario:  s,
		NumScenes: req.NumScenes,
		Style:     req.Style,
		Language:  req.Language,
	})
}

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}
