package archiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"plarchive/internal/catalog"
	"plarchive/internal/endpoint"
	"plarchive/internal/index"
	"plarchive/internal/logging"
	"plarchive/internal/marker"
	"plarchive/internal/publish"
)

// Options configures a Runner.
type Options struct {
	Schema        endpoint.Schema
	ScriptVersion string
	IndexFile     string
	MarkerPath    string

	// Workers bounds how many playlists are processed at once. Values below
	// two process strictly in configured order.
	Workers int

	// Now overrides the clock used for the report timestamp.
	Now func() time.Time
}

// Summary describes a completed run.
type Summary struct {
	RunID       string
	Schema      endpoint.Schema
	Results     []Result
	Elapsed     time.Duration
	GeneratedAt time.Time
	IndexPath   string
	StaleMarker bool
}

// Runner executes full archive passes.
type Runner struct {
	extractor Extractor
	publisher *publish.Publisher
	playlists []catalog.Descriptor
	opts      Options
	logger    *slog.Logger
}

// NewRunner wires a Runner. A nil logger discards output.
func NewRunner(extractor Extractor, publisher *publish.Publisher, playlists []catalog.Descriptor, opts Options, logger *slog.Logger) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IndexFile == "" {
		opts.IndexFile = "index.md"
	}
	return &Runner{
		extractor: extractor,
		publisher: publisher,
		playlists: append([]catalog.Descriptor(nil), playlists...),
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "archiver"),
	}
}

// Run performs a full pass. On failure the marker is left in place and the
// output root holds whatever was published before the failure.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	if r.extractor == nil || r.publisher == nil {
		return nil, errors.New("archiver: runner is not fully configured")
	}

	m, err := marker.Acquire(r.opts.MarkerPath)
	if err != nil {
		return nil, err
	}
	if m.Stale() {
		logger.Warn("previous run did not complete cleanly; republishing everything",
			logging.String("marker", m.Path()),
			logging.Alert("stale_marker"),
		)
	}

	summary, err := r.run(ctx, start, logger)
	if err != nil {
		logger.Error("run halted", logging.Error(err), logging.String("marker", m.Path()))
		_ = m.Abandon()
		return nil, err
	}
	summary.RunID = runID
	summary.StaleMarker = m.Stale()

	if err := m.Release(); err != nil {
		return nil, err
	}
	logger.Info("run complete",
		logging.Int("playlist_count", len(summary.Results)),
		logging.Elapsed(summary.Elapsed),
	)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, start time.Time, logger *slog.Logger) (*Summary, error) {
	logger.Info("run started",
		logging.String("schema", r.opts.Schema.Name),
		logging.Int("playlist_count", len(r.playlists)),
		logging.Int("workers", r.workers()),
	)
	if len(r.playlists) == 0 {
		logger.Warn("catalog lists no playlists; publishing an empty index", logging.Alert("empty_catalog"))
	}
	if err := r.publisher.Reset(); err != nil {
		return nil, fmt.Errorf("reset output: %w", err)
	}

	results, err := r.processAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Schema:      r.opts.Schema,
		Results:     results,
		Elapsed:     time.Since(start),
		GeneratedAt: r.opts.Now(),
	}
	report := index.Render(r.indexSummary(summary))
	if err := r.publisher.WriteIndex(r.opts.IndexFile, []byte(report)); err != nil {
		return nil, &PlaylistError{Stage: StageIndex, Err: err}
	}
	summary.IndexPath = r.indexPath()
	return summary, nil
}

func (r *Runner) workers() int {
	if r.opts.Workers < 1 {
		return 1
	}
	return r.opts.Workers
}

func (r *Runner) processAll(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(r.playlists))
	if r.workers() == 1 {
		for i, desc := range r.playlists {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := r.ProcessPlaylist(ctx, desc)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, desc := range r.playlists {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.ProcessPlaylist(gctx, desc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) indexSummary(s *Summary) index.Summary {
	entries := make([]index.Entry, 0, len(s.Results))
	for _, res := range s.Results {
		entries = append(entries, index.Entry{
			Name:        res.Descriptor.Name,
			DisplayName: res.Descriptor.DisplayName,
			Reference:   res.Descriptor.Reference,
			Uploader:    res.Uploader,
			Elapsed:     res.Elapsed,
		})
	}
	return index.Summary{
		Schema:        r.opts.Schema,
		ScriptVersion: r.opts.ScriptVersion,
		Entries:       entries,
		Elapsed:       s.Elapsed,
		GeneratedAt:   s.GeneratedAt,
	}
}

func (r *Runner) indexPath() string {
	return filepath.Join(r.publisher.Root, r.opts.IndexFile)
}

// WriteStaticIndex regenerates the report from the catalog alone, without
// fetching or touching playlist directories.
func (r *Runner) WriteStaticIndex() (string, error) {
	m, err := marker.Acquire(r.opts.MarkerPath)
	if err != nil {
		return "", err
	}
	entries := make([]index.Entry, 0, len(r.playlists))
	for _, desc := range r.playlists {
		entries = append(entries, index.Entry{
			Name:        desc.Name,
			DisplayName: desc.DisplayName,
			Reference:   desc.Reference,
		})
	}
	report := index.Render(index.Summary{
		Schema:        r.opts.Schema,
		ScriptVersion: r.opts.ScriptVersion,
		Entries:       entries,
		GeneratedAt:   r.opts.Now(),
		Static:        true,
	})
	if err := r.publisher.WriteIndex(r.opts.IndexFile, []byte(report)); err != nil {
		_ = m.Abandon()
		return "", err
	}
	if err := m.Release(); err != nil {
		return "", err
	}
	r.logger.Info("static index written", logging.String("path", r.indexPath()))
	return r.indexPath(), nil
}
