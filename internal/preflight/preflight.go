package preflight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"plarchive/internal/config"
	"plarchive/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Directories are created first so only permission problems fail.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if err := cfg.EnsureDirectories(); err != nil {
		results = append(results, Result{Name: "Directories", Detail: err.Error()})
		return results
	}

	results = append(results,
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output parent", filepath.Dir(cfg.Paths.OutputDir)),
		CheckDirectoryAccess("Marker directory", filepath.Dir(cfg.Paths.MarkerFile)),
		CheckFileReadable("Playlists file", cfg.Paths.PlaylistsFile),
	)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	for _, status := range deps.CheckBinaries(ctx, []deps.Requirement{deps.YtdlpRequirement(cfg.Ytdlp.Binary)}) {
		detail := status.Detail
		if status.Available {
			detail = status.Command
			if status.Version != "" {
				detail += " (" + status.Version + ")"
			}
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}
	return results
}

// Failed returns an error naming every failed check, or nil.
func Failed(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(failed, "; "))
}
