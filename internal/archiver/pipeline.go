package archiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"plarchive/internal/catalog"
	"plarchive/internal/checksum"
	"plarchive/internal/endpoint"
	"plarchive/internal/export"
	"plarchive/internal/logging"
	"plarchive/internal/metadata"
	"plarchive/internal/publish"
	"plarchive/internal/ytdlp"
)

// Pipeline stages, used in logs and PlaylistError.
const (
	StageFetch    = "fetch"
	StageEncode   = "encode"
	StageChecksum = "checksum"
	StageStage    = "stage"
	StagePublish  = "publish"
	StageIndex    = "index"
)

// Extractor fetches a playlist listing for a reference.
type Extractor interface {
	Fetch(ctx context.Context, reference string) (*ytdlp.Playlist, error)
}

// PlaylistError identifies the playlist and stage that halted a run.
type PlaylistError struct {
	Name  string
	Stage string
	Err   error
}

func (e *PlaylistError) Error() string {
	return fmt.Sprintf("playlist %s: %s: %v", e.Name, e.Stage, e.Err)
}

func (e *PlaylistError) Unwrap() error { return e.Err }

// Result is what one playlist's processing learned.
type Result struct {
	Descriptor catalog.Descriptor
	Uploader   string
	Elapsed    time.Duration
	Stats      metadata.Stats
	Files      []string
}

// Artifacts serializes records in every format of the schema, each followed
// by its checksum sidecars.
func Artifacts(records []metadata.Record, schema endpoint.Schema) ([]publish.File, error) {
	files := make([]publish.File, 0, len(schema.Formats)*(1+len(schema.Algorithms)))
	for _, format := range schema.Formats {
		name := endpoint.ArtifactName(format)
		data, err := export.Encode(records, schema.Columns, format)
		if err != nil {
			return nil, &PlaylistError{Stage: StageEncode, Err: err}
		}
		files = append(files, publish.File{Name: name, Data: data})
		for _, alg := range schema.Algorithms {
			sidecar, err := checksum.Sidecar(data, alg, name)
			if err != nil {
				return nil, &PlaylistError{Stage: StageChecksum, Err: err}
			}
			files = append(files, publish.File{Name: endpoint.SidecarName(name, alg), Data: sidecar})
		}
	}
	return files, nil
}

// ProcessPlaylist fetches, normalizes, serializes, checksums, and publishes a
// single playlist.
func (r *Runner) ProcessPlaylist(ctx context.Context, desc catalog.Descriptor) (Result, error) {
	start := time.Now()
	ctx = logging.WithPlaylist(ctx, desc.Name)
	result := Result{Descriptor: desc}

	fail := func(stage string, err error) (Result, error) {
		return result, &PlaylistError{Name: desc.Name, Stage: stage, Err: err}
	}

	logger := r.stageLogger(ctx, StageFetch)
	logger.Info("fetching playlist", logging.String(logging.FieldReference, desc.Reference))
	playlist, err := r.extractor.Fetch(ctx, desc.Reference)
	if err != nil {
		return fail(StageFetch, err)
	}
	result.Uploader = playlist.Uploader

	records, stats := metadata.Normalize(playlist.Entries, r.opts.Schema.Columns)
	result.Stats = stats
	logger.Info("playlist fetched",
		logging.String("playlist_id", playlist.ID),
		logging.String("title", playlist.Title),
		logging.String("uploader", playlist.Uploader),
		logging.Int("entry_count", stats.Seen),
		logging.Int(logging.FieldRecordCount, stats.Kept),
		logging.Int(logging.FieldDroppedCount, stats.Dropped()),
	)
	if stats.Dropped() > 0 {
		logger.Debug("entries dropped",
			logging.Int("unavailable", stats.Unavailable),
			logging.Int("incomplete", stats.Incomplete),
		)
	}

	files, err := Artifacts(records, r.opts.Schema)
	if err != nil {
		var pe *PlaylistError
		if errors.As(err, &pe) {
			return fail(pe.Stage, pe.Err)
		}
		return fail(StageEncode, err)
	}

	if err := r.publisher.Stage(desc.Name, files); err != nil {
		return fail(StageStage, err)
	}
	published, err := r.publisher.Publish(desc.Name)
	if err != nil {
		return fail(StagePublish, err)
	}
	result.Files = published
	result.Elapsed = time.Since(start)

	r.stageLogger(ctx, StagePublish).Info("playlist published",
		logging.Int("file_count", len(published)),
		logging.Elapsed(result.Elapsed),
	)
	return result, nil
}

func (r *Runner) stageLogger(ctx context.Context, stage string) *slog.Logger {
	return logging.WithContext(logging.WithStage(ctx, stage), r.logger)
}
