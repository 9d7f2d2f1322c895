package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"booteh.app/web/internal/backend"
)

type probeResult struct {
	name    string
	detail  string
	err     error
	elapsed time.Duration
}

func newProbeCmd(configPath *string) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that every backend endpoint the site reads from answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if baseURL == "" {
				cfg, err := loadConfig(cmd.Context(), *configPath)
				if err != nil {
					return err
				}
				baseURL = cfg.BackendBaseURL
			}
			client := backend.NewClient(baseURL, backend.WithTimeout(timeout))
			results := probe(cmd.Context(), client)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ENDPOINT\tRESULT\tLATENCY")
			failed := 0
			for _, r := range results {
				outcome := r.detail
				if r.err != nil {
					outcome = "FAIL: " + r.err.Error()
					failed++
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, outcome, r.elapsed.Round(time.Millisecond))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d backend checks failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "backend", "", "backend base URL (defaults to config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	return cmd
}

// probe runs every check concurrently; results keep a fixed order.
func probe(ctx context.Context, client *backend.Client) []probeResult {
	checks := []struct {
		name string
		run  func(context.Context) (string, error)
	}{
		{"health", func(ctx context.Context) (string, error) {
			h, err := client.Health(ctx)
			return fmt.Sprintf("status=%s database=%s", h.Status, h.Database), err
		}},
		{"blog", func(ctx context.Context) (string, error) {
			posts, err := client.BlogPosts(ctx, 3)
			return fmt.Sprintf("%d posts", len(posts)), err
		}},
		{"personality-tests", func(ctx context.Context) (string, error) {
			tests, err := client.PersonalityTests(ctx)
			return fmt.Sprintf("%d tests", len(tests)), err
		}},
		{"mystery", func(ctx context.Context) (string, error) {
			items, err := client.MysteryAssessments(ctx)
			return fmt.Sprintf("%d assessments", len(items)), err
		}},
	}

	results := make([]probeResult, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			detail, err := c.run(ctx)
			results[i] = probeResult{name: c.name, detail: detail, err: err, elapsed: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
