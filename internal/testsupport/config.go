// Package testsupport builds isolated configurations and stub binaries for
// tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"plarchive/internal/catalog"
	"plarchive/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// A one-playlist catalog is written unless WithPlaylists overrides it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "endpoints", cfgVal.Endpoint.Schema)
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = ""
	cfgVal.Paths.MarkerFile = filepath.Join(base, "_.lock")
	cfgVal.Paths.PlaylistsFile = filepath.Join(base, "metadata.json")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	writePlaylists(builder, []catalog.Descriptor{
		{Reference: "PL_A", Name: "music_mix", DisplayName: "Music Mix"},
	})

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPlaylists replaces the catalog written for the test config.
func WithPlaylists(descriptors ...catalog.Descriptor) ConfigOption {
	return func(b *configBuilder) {
		writePlaylists(b, descriptors)
	}
}

// WithSchema selects the endpoint schema and moves the output root to match.
func WithSchema(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Endpoint.Schema = name
		b.cfg.Paths.OutputDir = filepath.Join(b.baseDir, "endpoints", name)
	}
}

func writePlaylists(b *configBuilder, descriptors []catalog.Descriptor) {
	if err := catalog.Write(b.cfg.Paths.PlaylistsFile, descriptors); err != nil {
		b.t.Fatalf("write playlists: %v", err)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp"}
		}
		binDir := stubDir(b)
		for _, name := range names {
			writeScript(b, filepath.Join(binDir, name), "exit 0")
		}
		prependPath(b, binDir)
	}
}

// WithYtdlpScript installs a yt-dlp stub whose body is the given shell script
// and points the config at it.
func WithYtdlpScript(body string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(stubDir(b), "yt-dlp")
		writeScript(b, target, body)
		b.cfg.Ytdlp.Binary = target
	}
}

func stubDir(b *configBuilder) string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

func writeScript(b *configBuilder, target, body string) {
	script := []byte("#!/bin/sh\n" + body + "\n")
	if err := os.WriteFile(target, script, 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", target, err)
	}
}

func prependPath(b *configBuilder, dir string) {
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
