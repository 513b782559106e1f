package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"plarchive/internal/archiver"
	"plarchive/internal/marker"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-check every published artifact against its checksum sidecars",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			schema, err := ctx.schema()
			if err != nil {
				return err
			}
			descriptors, err := ctx.playlists()
			if err != nil {
				return err
			}
			pub, err := ctx.publisher()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if marker.Present(cfg.Paths.MarkerFile) {
				fmt.Fprintln(out, renderStatusLine("Marker", statusWarn, "present; a run is in progress or did not finish", colorize))
			}

			failures := archiver.Verify(pub, descriptors, schema)
			failedDirs := make(map[string]int)
			for _, f := range failures {
				rel, relErr := filepath.Rel(pub.Root, f.Path)
				if relErr != nil {
					rel = f.Path
				}
				failedDirs[filepath.Dir(rel)]++
			}
			for _, d := range descriptors {
				if n := failedDirs[d.Name]; n > 0 {
					fmt.Fprintln(out, renderStatusLine(d.Name, statusError, fmt.Sprintf("%d problem(s)", n), colorize))
					continue
				}
				fmt.Fprintln(out, renderStatusLine(d.Name, statusOK, "checksums valid", colorize))
			}
			for _, f := range failures {
				fmt.Fprintf(out, "%s%s: %v\n", statusIndent, f.Path, f.Err)
			}

			indexMissing := false
			if _, err := os.Stat(cfg.IndexPath()); err != nil {
				indexMissing = true
				fmt.Fprintln(out, renderStatusLine("Index", statusError, fmt.Sprintf("%s (%v)", cfg.IndexPath(), err), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Index", statusOK, cfg.IndexPath(), colorize))
			}

			if len(failures) > 0 {
				return fmt.Errorf("verify: %d checksum problem(s) under %s", len(failures), pub.Root)
			}
			if indexMissing {
				return fmt.Errorf("verify: index missing at %s", cfg.IndexPath())
			}
			return nil
		},
	}
}
