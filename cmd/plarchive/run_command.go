package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"plarchive/internal/archiver"
	"plarchive/internal/index"
	"plarchive/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var schema string
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every configured playlist and republish the endpoint",
		Long: "Run clears the output root, fetches every playlist in catalog order,\n" +
			"writes artifacts with checksum sidecars, and regenerates the index.\n" +
			"A failed run leaves the marker file behind.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ApplySchema(schema); err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return errors.New("--workers must be positive")
				}
				cfg.Run.Workers = workers
			}

			if !skipPreflight {
				if err := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); err != nil {
					return err
				}
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			runner, err := ctx.runner(logger)
			if err != nil {
				return err
			}
			summary, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRunSummary(summary))
			fmt.Fprintf(out, "Index written to %s\n", summary.IndexPath)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Playlists processed concurrently")
	cmd.Flags().StringVar(&schema, "schema", "", "Endpoint schema to publish (v0 or v1)")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory and binary checks")
	return cmd
}

func renderRunSummary(summary *archiver.Summary) string {
	rows := make([][]string, 0, len(summary.Results))
	var kept, dropped int
	for _, res := range summary.Results {
		kept += res.Stats.Kept
		dropped += res.Stats.Dropped()
		rows = append(rows, []string{
			res.Descriptor.Name,
			res.Uploader,
			strconv.Itoa(res.Stats.Kept),
			strconv.Itoa(res.Stats.Dropped()),
			index.FormatDuration(res.Elapsed),
		})
	}
	return tableSpec{
		headers: []string{"Playlist", "Uploader", "Records", "Dropped", "Took"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
		footer: []string{
			"Total (" + summary.Schema.Name + ")",
			"",
			strconv.Itoa(kept),
			strconv.Itoa(dropped),
			index.FormatTotal(summary.Elapsed),
		},
	}.render()
}
