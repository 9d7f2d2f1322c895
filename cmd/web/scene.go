package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"booteh.app/web/internal/background"
	"booteh.app/web/internal/metrics"
)

// sceneReport is printed by the scene command.
type sceneReport struct {
	HandleID      string            `json:"handle_id"`
	Seed          int64             `json:"seed"`
	Frames        uint64            `json:"frames"`
	Shapes        int               `json:"shapes"`
	Hovered       int               `json:"hovered"`
	PeakResources float64           `json:"peak_resources"`
	LiveResources float64           `json:"live_resources"`
	Ledger        background.Ledger `json:"ledger"`
	Balanced      bool              `json:"balanced"`
}

func newSceneCmd() *cobra.Command {
	var (
		seed     int64
		frames   uint64
		interval time.Duration
		dump     bool
	)
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Mount the background on a headless renderer and report its resource ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if frames == 0 {
				return fmt.Errorf("--frames must be positive")
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			r := background.NewHeadlessRenderer()
			m := metrics.NewManager()
			h, err := background.Mount(cmd.Context(), r, background.Options{Seed: seed, FrameInterval: interval}, background.WithObserver(m))
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()
			r.Emit(background.EventPointerMove, background.Input{X: background.DefaultWidth / 2, Y: background.DefaultHeight / 2})

			ticker := time.NewTicker(interval)
			for h.Frames() < frames {
				select {
				case <-cmd.Context().Done():
					ticker.Stop()
					return cmd.Context().Err()
				case <-ticker.C:
				}
			}
			ticker.Stop()

			snap := h.Snapshot()
			report := sceneReport{
				HandleID:      h.ID,
				Seed:          snap.Seed,
				Frames:        h.Frames(),
				Shapes:        len(snap.Shapes),
				Hovered:       -1,
				PeakResources: m.LiveBackgroundResources(),
			}
			for i, sh := range snap.Shapes {
				if sh.Hovered {
					report.Hovered = i
				}
			}
			if err := h.Close(); err != nil {
				return err
			}
			report.LiveResources = m.LiveBackgroundResources()
			report.Ledger = r.Ledger()
			report.Balanced = report.Ledger.Balanced()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			var out any = report
			if dump {
				out = snap
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
			if !report.Balanced {
				return fmt.Errorf("background leaked resources: %+v", report.Ledger)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 1, "scene seed")
	cmd.Flags().Uint64Var(&frames, "frames", 60, "frames to render before closing")
	cmd.Flags().DurationVar(&interval, "interval", background.DefaultFrameInterval, "frame interval")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the final scene instead of the report")
	return cmd
}
