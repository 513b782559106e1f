// Package marker manages the advisory file that signals a run in progress.
//
// The file's presence is what external schedulers look at. An flock on the
// same file additionally keeps two plarchive processes from running at once.
// The file is removed only after a successful run; a failed run leaves it in
// place for an operator to inspect and clear.
package marker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRunInProgress reports that another process holds the marker.
var ErrRunInProgress = errors.New("marker: another run is in progress")

// Marker is a held run marker.
type Marker struct {
	path  string
	lock  *flock.Flock
	stale bool
}

// Acquire takes the marker at path. Stale reports whether a marker from an
// earlier run that did not finish cleanly was found.
func Acquire(path string) (*Marker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create marker dir: %w", err)
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat marker: %w", statErr)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire marker: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrRunInProgress, path)
	}

	if err := os.WriteFile(path, []byte("."), 0o644); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("write marker: %w", err)
	}
	return &Marker{path: path, lock: lock, stale: existed}, nil
}

// Path returns the marker file location.
func (m *Marker) Path() string { return m.path }

// Stale reports whether a leftover marker was present at acquisition.
func (m *Marker) Stale() bool { return m.stale }

// Release removes the marker file and drops the lock.
func (m *Marker) Release() error {
	removeErr := os.Remove(m.path)
	if errors.Is(removeErr, fs.ErrNotExist) {
		removeErr = nil
	}
	unlockErr := m.lock.Unlock()
	if removeErr != nil {
		return fmt.Errorf("remove marker: %w", removeErr)
	}
	if unlockErr != nil {
		return fmt.Errorf("unlock marker: %w", unlockErr)
	}
	return nil
}

// Abandon drops the lock but leaves the marker file behind, signalling that
// the run did not complete.
func (m *Marker) Abandon() error {
	return m.lock.Unlock()
}

// Present reports whether a marker file exists at path.
func Present(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
