package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"plarchive/internal/config"
	"plarchive/internal/testsupport"
)

// ytdlpStub answers --version, fails for PL_BAD, and otherwise prints a
// three-entry playlist where one video is unavailable and one lacks a
// duration. It exits 1 like yt-dlp does when any single video failed.
const ytdlpStub = `for last; do :; done
case "$last" in
  --version) echo 2026.09.01; exit 0 ;;
  PL_BAD) echo "ERROR: [youtube:tab] PL_BAD: The playlist does not exist." >&2; exit 1 ;;
esac
cat <<'JSON'
{"id": "PL_A", "title": "Mix", "uploader": "ChannelX", "entries": [
 {"id": "a1", "title": "First, \"quoted\"", "duration": 212, "view_count": 1000, "uploader": "ChannelX", "uploader_id": "@channelx", "channel_url": "https://www.youtube.com/channel/UCX", "webpage_url": "https://www.youtube.com/watch?v=a1", "description": "one"},
 null,
 {"id": "b2", "title": "Second", "view_count": 5, "uploader": "ChannelX", "uploader_id": "@channelx", "channel_url": "https://www.youtube.com/channel/UCX", "webpage_url": "https://www.youtube.com/watch?v=b2", "description": "two"}
]}
JSON
exit 1`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("PLARCHIVE_YTDLP_PATH", "")
	opts = append([]testsupport.ConfigOption{testsupport.WithYtdlpScript(ytdlpStub)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "plarchive.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
