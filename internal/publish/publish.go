// Package publish owns the output tree of a run. Artifacts are first staged in
// a per-playlist work directory and then moved into the output root, one
// directory per playlist.
package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"plarchive/internal/fileutil"
	"plarchive/internal/textutil"
)

// ErrUnsafeName reports a playlist name that cannot be used as a directory.
var ErrUnsafeName = errors.New("publish: unsafe playlist name")

// File is one artifact or sidecar to publish.
type File struct {
	Name string
	Data []byte
}

// Publisher writes into an output root through a staging work directory.
type Publisher struct {
	Root    string
	WorkDir string
}

// New creates a Publisher.
func New(root, workDir string) *Publisher {
	return &Publisher{Root: root, WorkDir: workDir}
}

// Dir returns the output directory of a playlist.
func (p *Publisher) Dir(name string) string {
	return filepath.Join(p.Root, name)
}

func (p *Publisher) stageDir(name string) string {
	return filepath.Join(p.WorkDir, name)
}

// Reset removes and recreates the output root and the work directory. Every
// run is a full republish; nothing from a previous run survives.
func (p *Publisher) Reset() error {
	for _, dir := range []string{p.Root, p.WorkDir} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("publish: empty directory path")
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Stage writes files into the playlist's work directory.
func (p *Publisher) Stage(name string, files []File) error {
	if err := checkName(name); err != nil {
		return err
	}
	dir := p.stageDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	for _, file := range files {
		if err := checkFileName(file.Name); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, file.Name), file.Data, 0o644); err != nil {
			return fmt.Errorf("stage %s: %w", file.Name, err)
		}
	}
	return nil
}

// Publish moves every staged file of a playlist into its output directory,
// replacing same-named files. Other files already in the directory are left
// alone. It returns the published paths.
func (p *Publisher) Publish(name string) ([]string, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	src := p.stageDir(name)
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("read staging dir: %w", err)
	}
	dst := p.Dir(name)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("create playlist dir: %w", err)
	}
	published := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		target := filepath.Join(dst, entry.Name())
		if err := fileutil.MoveFile(filepath.Join(src, entry.Name()), target); err != nil {
			return published, fmt.Errorf("move %s: %w", entry.Name(), err)
		}
		published = append(published, target)
	}
	if err := os.Remove(src); err != nil {
		return published, fmt.Errorf("remove staging dir: %w", err)
	}
	return published, nil
}

// WriteIndex writes the top-level report into the output root.
func (p *Publisher) WriteIndex(fileName string, content []byte) error {
	if err := checkFileName(fileName); err != nil {
		return err
	}
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}
	path := filepath.Join(p.Root, fileName)
	if err := fileutil.WriteFileAtomic(path, content, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func checkName(name string) error {
	if !textutil.IsSafeName(name) {
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return nil
}

func checkFileName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("publish: invalid file name %q", name)
	}
	return nil
}
