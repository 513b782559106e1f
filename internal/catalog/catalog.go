// Package catalog loads the ordered list of playlists to archive.
//
// A catalog is either the JSON document used by earlier releases
// (an array of {"url", "name", "pretty_name"} objects) or a TOML file with
// [[playlists]] tables using the same keys. Order is significant: it drives
// processing order and the layout of the generated index.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"plarchive/internal/textutil"
)

var (
	// ErrDuplicateName reports two descriptors sharing an internal name.
	ErrDuplicateName = errors.New("catalog: duplicate playlist name")
	// ErrUnsafeName reports an internal name that cannot be used as a directory.
	ErrUnsafeName = errors.New("catalog: playlist name is not filesystem-safe")
)

// Descriptor identifies one archived playlist.
type Descriptor struct {
	Reference   string `json:"url" toml:"url"`
	Name        string `json:"name" toml:"name"`
	DisplayName string `json:"pretty_name" toml:"pretty_name"`
}

type tomlCatalog struct {
	Playlists []Descriptor `toml:"playlists"`
}

// Load reads and validates the catalog at path. The decoder is chosen by
// file extension; anything other than .toml is read as JSON. Keys other than
// url, name, and pretty_name are ignored. An empty catalog is valid.
func Load(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var descriptors []Descriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		descriptors, err = decodeTOML(data)
	default:
		descriptors, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return Normalize(descriptors)
}

func decodeJSON(data []byte) ([]Descriptor, error) {
	var descriptors []Descriptor
	if err := json.Unmarshal(bytes.TrimSpace(data), &descriptors); err != nil {
		return nil, err
	}
	return descriptors, nil
}

func decodeTOML(data []byte) ([]Descriptor, error) {
	var doc tomlCatalog
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Playlists, nil
}

// Normalize trims fields, derives missing display names, and validates the
// descriptors. The input slice is not modified.
func Normalize(descriptors []Descriptor) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(descriptors))
	seen := make(map[string]int, len(descriptors))
	for i, d := range descriptors {
		d.Reference = strings.TrimSpace(d.Reference)
		d.Name = strings.TrimSpace(d.Name)
		d.DisplayName = strings.TrimSpace(d.DisplayName)

		if d.Reference == "" {
			return nil, fmt.Errorf("catalog entry %d (%q): url is required", i+1, d.Name)
		}
		if !textutil.IsSafeName(d.Name) {
			return nil, fmt.Errorf("%w: entry %d name %q (try %q)", ErrUnsafeName, i+1, d.Name, textutil.SanitizeToken(d.Name))
		}
		if prev, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("%w: %q used by entries %d and %d", ErrDuplicateName, d.Name, prev+1, i+1)
		}
		seen[d.Name] = i
		if d.DisplayName == "" {
			d.DisplayName = textutil.DisplayName(d.Name)
		}
		out = append(out, d)
	}
	return out, nil
}

// Write stores descriptors at path, as TOML for a .toml path and as indented
// JSON otherwise.
func Write(path string, descriptors []Descriptor) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(tomlCatalog{Playlists: descriptors})
	default:
		data, err = json.MarshalIndent(descriptors, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}
