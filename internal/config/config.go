package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains filesystem locations used by a run.
type Paths struct {
	OutputDir     string `toml:"output_dir"`
	WorkDir       string `toml:"work_dir"`
	LogDir        string `toml:"log_dir"`
	MarkerFile    string `toml:"marker_file"`
	PlaylistsFile string `toml:"playlists_file"`
}

// Endpoint selects the published schema version and report labels.
type Endpoint struct {
	Schema        string `toml:"schema"`
	ScriptVersion string `toml:"script_version"`
	IndexFile     string `toml:"index_file"`
}

// Ytdlp contains settings for the yt-dlp extractor.
type Ytdlp struct {
	Binary                  string   `toml:"binary"`
	TimeoutSeconds          int      `toml:"timeout_seconds"`
	ExtraArgs               []string `toml:"extra_args"`
	MinFetchIntervalSeconds int      `toml:"min_fetch_interval_seconds"`
}

// Run contains run-wide execution settings.
type Run struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for plarchive.
//
// Configuration sections by subsystem:
//   - Paths: output root, work directory, logs, marker file, playlist catalog
//   - Endpoint: schema version (v0 legacy, v1 current) and report labels
//   - Ytdlp: extractor binary, timeout, and pacing
//   - Run: worker count
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Endpoint Endpoint `toml:"endpoint"`
	Ytdlp    Ytdlp    `toml:"ytdlp"`
	Run      Run      `toml:"run"`
	Logging  Logging  `toml:"logging"`

	// outputDerived records that OutputDir was derived from the schema.
	outputDerived bool
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(filepath.Dir(resolvedPath), exists); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("plarchive.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The output root
// itself is recreated by the publisher at the start of every run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, filepath.Dir(c.Paths.OutputDir), filepath.Dir(c.Paths.MarkerFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
		}
	}
	return nil
}

// YtdlpTimeout returns the per-playlist extraction timeout; zero means unbounded.
func (c *Config) YtdlpTimeout() time.Duration {
	return time.Duration(c.Ytdlp.TimeoutSeconds) * time.Second
}

// FetchInterval returns the minimum spacing between two playlist fetches.
func (c *Config) FetchInterval() time.Duration {
	return time.Duration(c.Ytdlp.MinFetchIntervalSeconds) * time.Second
}

// ApplySchema switches the endpoint schema. An output root derived from the
// previous schema follows the new one; an explicit output_dir is kept.
func (c *Config) ApplySchema(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == c.Endpoint.Schema {
		return nil
	}
	previous := *c
	c.Endpoint.Schema = name
	if c.outputDerived {
		c.Paths.OutputDir = filepath.Join(filepath.Dir(c.Paths.OutputDir), name)
	}
	if err := c.Validate(); err != nil {
		*c = previous
		return err
	}
	return nil
}

// IndexPath returns the absolute location of the generated report.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Endpoint.IndexFile)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// expandRelative resolves relative values against base instead of the working
// directory, so paths in a config file are relative to that file.
func expandRelative(base, pathValue string) (string, error) {
	if pathValue == "" || base == "" || strings.HasPrefix(pathValue, "~") || filepath.IsAbs(pathValue) {
		return expandPath(pathValue)
	}
	return expandPath(filepath.Join(base, pathValue))
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
