// Package ytdlp wraps the yt-dlp executable as a playlist metadata extractor.
//
// Extraction is best-effort per video: yt-dlp is run with --ignore-errors so
// an unavailable video becomes a null entry instead of aborting the playlist.
// Only a playlist that cannot be resolved at all is reported as an error.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"
)

const defaultBinary = "yt-dlp"

// waitDelay bounds how long Fetch waits for output pipes to close after the
// process group has been killed.
const waitDelay = 5 * time.Second

// Sentinel errors for extraction.
var (
	ErrPlaylistUnavailable = errors.New("ytdlp: playlist unavailable")
	ErrNotInstalled        = errors.New("ytdlp: yt-dlp not installed")
	ErrTimeout             = errors.New("ytdlp: extraction timed out")
)

// FetchError wraps a failure with the playlist reference being extracted.
type FetchError struct {
	Reference string
	Detail    string
	Err       error
}

func (e *FetchError) Error() string {
	msg := "ytdlp: fetch " + e.Reference + ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Entry is one raw video record as reported by yt-dlp. A nil Entry marks a
// video that could not be extracted.
type Entry = map[string]any

// Playlist is the extraction result for one reference.
type Playlist struct {
	ID       string
	Title    string
	Uploader string
	Entries  []Entry
}

// Client runs yt-dlp as a subprocess.
type Client struct {
	// Binary is the yt-dlp executable. Defaults to "yt-dlp".
	Binary string

	// Timeout bounds one playlist extraction. Zero means no timeout.
	Timeout time.Duration

	// ExtraArgs are appended before the reference.
	ExtraArgs []string

	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each extraction.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

// WithExtraArgs appends arguments to every invocation.
func WithExtraArgs(args ...string) Option {
	return func(c *Client) { c.ExtraArgs = append(c.ExtraArgs, args...) }
}

// WithMinInterval spaces consecutive fetches at least d apart.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// New creates a Client for the given binary.
func New(binary string, opts ...Option) *Client {
	c := &Client{Binary: strings.TrimSpace(binary)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return defaultBinary
}

// Args returns the yt-dlp arguments used to extract reference.
func (c *Client) Args(reference string) []string {
	args := []string{
		"--dump-single-json",
		"--ignore-errors",
		"--ignore-no-formats-error",
		"--skip-download",
		"--no-warnings",
		"--no-progress",
	}
	args = append(args, c.ExtraArgs...)
	return append(args, reference)
}

// Fetch extracts the playlist metadata for reference.
func (c *Client) Fetch(ctx context.Context, reference string) (*Playlist, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Reference: reference, Err: err}
		}
	}

	cmdCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, c.binary(), c.Args(reference)...)
	// yt-dlp may be a wrapper script; cancellation must reach its children
	// too or they keep stdout open past the deadline.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error { return killGroup(cmd.Process) }
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var execErr *exec.Error
		if errors.As(runErr, &execErr) || errors.Is(runErr, fs.ErrNotExist) {
			return nil, &FetchError{Reference: reference, Err: ErrNotInstalled, Detail: runErr.Error()}
		}
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &FetchError{Reference: reference, Err: ErrTimeout}
		}
		if ctx.Err() != nil {
			return nil, &FetchError{Reference: reference, Err: ctx.Err()}
		}
	}

	// yt-dlp exits non-zero when any single video failed even though the
	// playlist document is complete, so stdout decides.
	playlist, err := Parse(stdout.Bytes())
	if err != nil {
		detail := lastLine(stderr.String())
		if detail == "" && runErr != nil {
			detail = runErr.Error()
		}
		return nil, &FetchError{Reference: reference, Err: fmt.Errorf("%w: %v", ErrPlaylistUnavailable, err), Detail: detail}
	}
	return playlist, nil
}

func killGroup(p *os.Process) error {
	if p == nil {
		return os.ErrProcessDone
	}
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}

type rawPlaylist struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Type     string            `json:"_type"`
	Uploader *string           `json:"uploader"`
	Channel  *string           `json:"channel"`
	Entries  []json.RawMessage `json:"entries"`
}

// Parse decodes a yt-dlp single-JSON playlist document. Null entries are kept
// as nil so callers can count unavailable videos.
func Parse(data []byte) (*Playlist, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("empty extractor output")
	}

	var raw rawPlaylist
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode playlist document: %w", err)
	}
	if raw.Entries == nil {
		return nil, fmt.Errorf("document %q is not a playlist (type %q)", raw.ID, raw.Type)
	}

	playlist := &Playlist{
		ID:       raw.ID,
		Title:    raw.Title,
		Uploader: coalesce(raw.Uploader, raw.Channel),
		Entries:  make([]Entry, 0, len(raw.Entries)),
	}
	for _, msg := range raw.Entries {
		playlist.Entries = append(playlist.Entries, decodeEntry(msg))
	}
	return playlist, nil
}

// decodeEntry returns nil for a null entry. Entries that are not JSON objects
// come back empty so normalization drops them like any incomplete record.
func decodeEntry(msg json.RawMessage) Entry {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var entry Entry
	if err := decoder.Decode(&entry); err != nil || entry == nil {
		return Entry{}
	}
	return entry
}

func coalesce(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}
