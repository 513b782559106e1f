package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"plarchive/internal/archiver"
	"plarchive/internal/catalog"
	"plarchive/internal/config"
	"plarchive/internal/endpoint"
	"plarchive/internal/logging"
	"plarchive/internal/publish"
	"plarchive/internal/ytdlp"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) schema() (endpoint.Schema, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return endpoint.Schema{}, err
	}
	schema, ok := endpoint.Lookup(cfg.Endpoint.Schema)
	if !ok {
		return endpoint.Schema{}, fmt.Errorf("unknown endpoint schema %q", cfg.Endpoint.Schema)
	}
	return schema, nil
}

func (c *commandContext) playlists() ([]catalog.Descriptor, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Load(cfg.Paths.PlaylistsFile)
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) publisher() (*publish.Publisher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return publish.New(cfg.Paths.OutputDir, cfg.Paths.WorkDir), nil
}

// runner wires the archiver from configuration with the yt-dlp extractor.
func (c *commandContext) runner(logger *slog.Logger) (*archiver.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	schema, err := c.schema()
	if err != nil {
		return nil, err
	}
	playlists, err := c.playlists()
	if err != nil {
		return nil, err
	}
	pub, err := c.publisher()
	if err != nil {
		return nil, err
	}
	client := ytdlp.New(cfg.Ytdlp.Binary,
		ytdlp.WithTimeout(cfg.YtdlpTimeout()),
		ytdlp.WithExtraArgs(cfg.Ytdlp.ExtraArgs...),
		ytdlp.WithMinInterval(cfg.FetchInterval()),
	)
	return archiver.NewRunner(client, pub, playlists, archiver.Options{
		Schema:        schema,
		ScriptVersion: cfg.Endpoint.ScriptVersion,
		IndexFile:     cfg.Endpoint.IndexFile,
		MarkerPath:    cfg.Paths.MarkerFile,
		Workers:       cfg.Run.Workers,
	}, logger), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
