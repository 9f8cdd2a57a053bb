package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/storyboard-agent/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		id  string
		out string
		fps float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an EDL rough cut of a stored scenario's videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.repo.GetScenario(cmd.Context(), id)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("scenario %s not found", id)
			}

			timeline := export.FromScenario(s, a.cfg.PublicDir(), export.DefaultClipDuration)
			if len(timeline.Clips) == 0 {
				return fmt.Errorf("scenario %s has no generated videos", id)
			}
			if fps > 0 {
				timeline.FrameRate = fps
			}

			path, err := export.WriteEDL(out, timeline)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "id of a stored scenario")
	cmd.Flags().StringVar(&out, "out", ".", "existing output directory")
	cmd.Flags().Float64Var(&fps, "fps", export.DefaultFrameRate, "timeline frame rate")
	cmd.MarkFlagRequired("id")
	return cmd
}
