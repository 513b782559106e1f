// Package checksum computes artifact digests and the sidecar files that carry
// them. Sidecars use the coreutils layout ("<hex>  <name>\n") so they can be
// checked with md5sum -c / sha256sum -c.
package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"strings"

	"plarchive/internal/endpoint"
)

var (
	// ErrMismatch reports a sidecar digest that does not match its artifact.
	ErrMismatch = errors.New("checksum: digest mismatch")
	// ErrMalformedSidecar reports a sidecar that cannot be parsed.
	ErrMalformedSidecar = errors.New("checksum: malformed sidecar")
	// ErrUnexpectedFile reports a file the schema does not publish.
	ErrUnexpectedFile = errors.New("checksum: unexpected file")
)

func newHash(alg endpoint.Algorithm) (hash.Hash, error) {
	switch alg {
	case endpoint.MD5:
		return md5.New(), nil
	case endpoint.SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("checksum: unsupported algorithm %q", alg)
	}
}

// Digest returns the lowercase hex digest of data.
func Digest(data []byte, alg endpoint.Algorithm) (string, error) {
	h, err := newHash(alg)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sidecar returns the sidecar contents for an artifact named fileName.
func Sidecar(data []byte, alg endpoint.Algorithm, fileName string) ([]byte, error) {
	sum, err := Digest(data, alg)
	if err != nil {
		return nil, err
	}
	return []byte(sum + "  " + fileName + "\n"), nil
}

// ParseSidecar extracts the digest and file name from sidecar contents.
func ParseSidecar(sidecar []byte) (string, string, error) {
	line := strings.TrimRight(string(sidecar), "\r\n")
	if strings.Contains(line, "\n") {
		return "", "", fmt.Errorf("%w: expected a single line", ErrMalformedSidecar)
	}
	sum, name, ok := strings.Cut(line, "  ")
	if !ok {
		sum, name, ok = strings.Cut(line, " *")
	}
	if !ok || sum == "" || name == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedSidecar, line)
	}
	if _, err := hex.DecodeString(sum); err != nil {
		return "", "", fmt.Errorf("%w: digest is not hex", ErrMalformedSidecar)
	}
	return strings.ToLower(sum), name, nil
}

// Verify checks data against sidecar contents.
func Verify(data, sidecar []byte, alg endpoint.Algorithm) error {
	want, _, err := ParseSidecar(sidecar)
	if err != nil {
		return err
	}
	got, err := Digest(data, alg)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: got %s want %s", ErrMismatch, got, want)
	}
	return nil
}

// Failure describes one sidecar that did not validate.
type Failure struct {
	Path string
	Err  error
}

// VerifyDir checks every artifact and sidecar the schema expects inside dir.
// Missing files and files the schema does not publish are reported as
// failures.
func VerifyDir(dir string, schema endpoint.Schema) []Failure {
	var failures []Failure
	expected := make(map[string]bool)
	for _, name := range schema.Files() {
		expected[name] = true
	}
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			if !expected[entry.Name()] {
				failures = append(failures, Failure{Path: filepath.Join(dir, entry.Name()), Err: ErrUnexpectedFile})
			}
		}
	}
	for _, format := range schema.Formats {
		artifact := endpoint.ArtifactName(format)
		data, err := os.ReadFile(filepath.Join(dir, artifact))
		if err != nil {
			failures = append(failures, Failure{Path: filepath.Join(dir, artifact), Err: err})
			continue
		}
		for _, alg := range schema.Algorithms {
			sidecarPath := filepath.Join(dir, endpoint.SidecarName(artifact, alg))
			sidecar, err := os.ReadFile(sidecarPath)
			if err != nil {
				failures = append(failures, Failure{Path: sidecarPath, Err: err})
				continue
			}
			if _, name, err := ParseSidecar(sidecar); err == nil && name != artifact {
				failures = append(failures, Failure{Path: sidecarPath, Err: fmt.Errorf("%w: names %q", ErrMismatch, name)})
				continue
			}
			if err := Verify(data, sidecar, alg); err != nil {
				failures = append(failures, Failure{Path: sidecarPath, Err: err})
			}
		}
	}
	return failures
}
