package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// normalize expands paths and fills defaults. Relative paths are resolved
// against the config file directory when a file was loaded.
func (c *Config) normalize(configDir string, fromFile bool) error {
	base := ""
	if fromFile {
		base = configDir
	}
	c.normalizeEndpoint()
	if err := c.normalizePaths(base); err != nil {
		return err
	}
	c.normalizeYtdlp()
	if c.Run.Workers == 0 {
		c.Run.Workers = defaultWorkers
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeEndpoint() {
	c.Endpoint.Schema = strings.ToLower(strings.TrimSpace(c.Endpoint.Schema))
	if c.Endpoint.Schema == "" {
		c.Endpoint.Schema = defaultSchema
	}
	c.Endpoint.ScriptVersion = strings.TrimSpace(c.Endpoint.ScriptVersion)
	if c.Endpoint.ScriptVersion == "" {
		c.Endpoint.ScriptVersion = defaultScriptVersion
	}
	c.Endpoint.IndexFile = strings.TrimSpace(c.Endpoint.IndexFile)
	if c.Endpoint.IndexFile == "" {
		c.Endpoint.IndexFile = defaultIndexFile
	}
}

func (c *Config) normalizePaths(base string) error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = filepath.Join(defaultOutputBase, c.Endpoint.Schema)
		c.outputDerived = true
	}
	if c.Paths.OutputDir, err = expandRelative(base, c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir()
	}
	if c.Paths.WorkDir, err = expandRelative(base, c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandRelative(base, strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MarkerFile) == "" {
		c.Paths.MarkerFile = defaultMarkerFile
	}
	if c.Paths.MarkerFile, err = expandRelative(base, c.Paths.MarkerFile); err != nil {
		return fmt.Errorf("paths.marker_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.PlaylistsFile) == "" {
		c.Paths.PlaylistsFile = defaultPlaylistsFile
	}
	if c.Paths.PlaylistsFile, err = expandRelative(base, c.Paths.PlaylistsFile); err != nil {
		return fmt.Errorf("paths.playlists_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeYtdlp() {
	c.Ytdlp.Binary = strings.TrimSpace(c.Ytdlp.Binary)
	if value, ok := os.LookupEnv("PLARCHIVE_YTDLP_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Ytdlp.Binary = strings.TrimSpace(value)
	}
	if c.Ytdlp.Binary == "" {
		c.Ytdlp.Binary = defaultYtdlpBinary
	}
	args := make([]string, 0, len(c.Ytdlp.ExtraArgs))
	for _, arg := range c.Ytdlp.ExtraArgs {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Ytdlp.ExtraArgs = args
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
