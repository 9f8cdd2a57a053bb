package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heimdex/storyboard-agent/internal/storyboard"
)

type languageFlags struct {
	name string
	code string
}

func (l *languageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.name, "language", "English", "language name of the generated text")
	cmd.Flags().StringVar(&l.code, "language-code", "en-US", "language code of the generated text")
}

func (l languageFlags) language() storyboard.Language {
	return storyboard.Language{Name: l.name, Code: l.code}
}

func newScenarioCmd() *cobra.Command {
	var (
		req  storyboard.ScenarioRequest
		lang languageFlags
		save bool
	)

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Generate a scenario from a pitch and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.vertexClient(ctx)
			if err != nil {
				return fmt.Errorf("failed to create vertex client: %w", err)
			}

			req.Language = lang.language()
			scenario, err := a.storyService(client).GenerateScenario(ctx, req)
			if err != nil {
				return err
			}

			if save {
				if err := a.repo.SaveScenario(ctx, scenario, req.Pitch, req.Style); err != nil {
					return fmt.Errorf("failed to store scenario: %w", err)
				}
			}
			return writeJSON(cmd.OutOrStdout(), scenario)
		},
	}

	cmd.Flags().StringVar(&req.Pitch, "pitch", "", "story pitch")
	cmd.Flags().IntVar(&req.NumScenes, "scenes", 4, "number of scenes")
	cmd.Flags().StringVar(&req.Style, "style", "cinematic", "visual style of the images")
	cmd.Flags().BoolVar(&save, "save", false, "store the scenario in the local database")
	lang.register(cmd)
	cmd.MarkFlagRequired("pitch")
	return cmd
}

func newStoryboardCmd() *cobra.Command {
	var (
		req  storyboard.StoryboardRequest
		lang languageFlags
		file string
		id   string
	)

	cmd := &cobra.Command{
		Use:   "storyboard",
		Short: "Generate fresh scenes for a scenario and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (id == "") {
				return fmt.Errorf("exactly one of --file or --id is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			scenario, err := loadScenario(ctx, a, file, id)
			if err != nil {
				return err
			}

			client, err := a.vertexClient(ctx)
			if err != nil {
				return fmt.Errorf("failed to create vertex client: %w", err)
			}

			req.Language = lang.language()
			out, err := a.storyService(client).GenerateStoryboard(ctx, scenario, req)
			if err != nil {
				return err
			}

			if id != "" {
				if err := a.repo.SaveScenario(ctx, out, "", req.Style); err != nil {
					return fmt.Errorf("failed to store storyboard: %w", err)
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "scenario JSON file ('-' for stdin)")
	cmd.Flags().StringVar(&id, "id", "", "id of a stored scenario")
	cmd.Flags().IntVar(&req.NumScenes, "scenes", 4, "number of scenes")
	cmd.Flags().StringVar(&req.Style, "style", "cinematic", "visual style of the images")
	lang.register(cmd)
	return cmd
}

func loadScenario(ctx context.Context, a *app, file, id string) (*storyboard.Scenario, error) {
	if id != "" {
		s, err := a.repo.GetScenario(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("scenario %s not found", id)
		}
		return s, nil
	}

	var r io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open scenario file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var s storyboard.Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return &s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
