package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath    = "~/.config/plarchive/config.toml"
	defaultOutputBase    = "endpoints"
	defaultMarkerFile    = "_.lock"
	defaultPlaylistsFile = "metadata.json"
	defaultSchema        = "v1"
	defaultScriptVersion = "2.0"
	defaultIndexFile     = "index.md"
	defaultYtdlpBinary   = "yt-dlp"
	defaultWorkers       = 1
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults. OutputDir is
// left empty and derived from the schema during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:       defaultWorkDir(),
			MarkerFile:    defaultMarkerFile,
			PlaylistsFile: defaultPlaylistsFile,
		},
		Endpoint: Endpoint{
			Schema:        defaultSchema,
			ScriptVersion: defaultScriptVersion,
			IndexFile:     defaultIndexFile,
		},
		Ytdlp: Ytdlp{
			Binary: defaultYtdlpBinary,
		},
		Run: Run{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultWorkDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "plarchive", "work")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/plarchive/work"
	}
	return filepath.Join(home, ".cache", "plarchive", "work")
}
