package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"plarchive/internal/endpoint"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEndpoint(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYtdlp(); err != nil {
		return err
	}
	if c.Run.Workers < 1 {
		return errors.New("run.workers must be positive")
	}
	return c.validateLogging()
}

func (c *Config) validateEndpoint() error {
	if _, ok := endpoint.Lookup(c.Endpoint.Schema); !ok {
		return fmt.Errorf("endpoint.schema: unsupported value %q (expected one of %s)", c.Endpoint.Schema, strings.Join(endpoint.Names(), ", "))
	}
	if strings.ContainsAny(c.Endpoint.IndexFile, `/\`) {
		return errors.New("endpoint.index_file must be a bare file name")
	}
	return nil
}

func (c *Config) validatePaths() error {
	output := c.Paths.OutputDir
	if output == "" {
		return errors.New("paths.output_dir must be set")
	}
	if output == filepath.Dir(output) {
		return fmt.Errorf("paths.output_dir %q must not be a filesystem root", output)
	}
	if output == c.Paths.WorkDir {
		return errors.New("paths.work_dir must differ from paths.output_dir")
	}
	if isWithin(output, c.Paths.WorkDir) || isWithin(c.Paths.WorkDir, output) {
		return errors.New("paths.work_dir and paths.output_dir must not contain each other")
	}
	if isWithin(output, c.Paths.MarkerFile) {
		return errors.New("paths.marker_file must live outside paths.output_dir")
	}
	return nil
}

func (c *Config) validateYtdlp() error {
	if c.Ytdlp.TimeoutSeconds < 0 {
		return errors.New("ytdlp.timeout_seconds must be >= 0")
	}
	if c.Ytdlp.MinFetchIntervalSeconds < 0 {
		return errors.New("ytdlp.min_fetch_interval_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// isWithin reports whether target is parent or a descendant of parent.
func isWithin(parent, target string) bool {
	if parent == "" || target == "" {
		return false
	}
	rel, err := filepath.Rel(parent, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
