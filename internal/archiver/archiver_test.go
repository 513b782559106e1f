package archiver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"plarchive/internal/archiver"
	"plarchive/internal/catalog"
	"plarchive/internal/endpoint"
	"plarchive/internal/marker"
	"plarchive/internal/publish"
	"plarchive/internal/ytdlp"
)

type fakeExtractor struct {
	mu        sync.Mutex
	playlists map[string]*ytdlp.Playlist
	errs      map[string]error
	delay     map[string]time.Duration
	calls     []string
}

func (f *fakeExtractor) Fetch(ctx context.Context, reference string) (*ytdlp.Playlist, error) {
	f.mu.Lock()
	f.calls = append(f.calls, reference)
	d := f.delay[reference]
	f.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[reference]; ok {
		return nil, err
	}
	pl, ok := f.playlists[reference]
	if !ok {
		return nil, &ytdlp.FetchError{Reference: reference, Err: ytdlp.ErrPlaylistUnavailable}
	}
	return pl, nil
}

func video(id string) ytdlp.Entry {
	return ytdlp.Entry{
		"id":          id,
		"title":       "Video " + id,
		"duration":    float64(212),
		"view_count":  float64(1000),
		"uploader":    "ChannelX",
		"uploader_id": "@channelx",
		"channel_url": "https://www.youtube.com/channel/UCX",
		"webpage_url": "https://www.youtube.com/watch?v=" + id,
		"description": "about " + id,
	}
}

func examplePlaylist() *ytdlp.Playlist {
	missing := video("b")
	delete(missing, "duration")
	return &ytdlp.Playlist{
		Uploader: "ChannelX",
		Entries:  []ytdlp.Entry{video("a"), nil, missing},
	}
}

type harness struct {
	root, work, markerPath string
	publisher              *publish.Publisher
	extractor              *fakeExtractor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	base := t.TempDir()
	h := &harness{
		root:       filepath.Join(base, "endpoints", "v1"),
		work:       filepath.Join(base, "work"),
		markerPath: filepath.Join(base, "_.lock"),
		extractor: &fakeExtractor{
			playlists: map[string]*ytdlp.Playlist{},
			errs:      map[string]error{},
			delay:     map[string]time.Duration{},
		},
	}
	h.publisher = publish.New(h.root, h.work)
	return h
}

func (h *harness) runner(t *testing.T, schemaName string, workers int, playlists ...catalog.Descriptor) *archiver.Runner {
	t.Helper()
	schema, ok := endpoint.Lookup(schemaName)
	if !ok {
		t.Fatalf("unknown schema %s", schemaName)
	}
	return archiver.NewRunner(h.extractor, h.publisher, playlists, archiver.Options{
		Schema:        schema,
		ScriptVersion: "2.0",
		IndexFile:     "index.md",
		MarkerPath:    h.markerPath,
		Workers:       workers,
		Now:           func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) },
	}, nil)
}

func musicMix() catalog.Descriptor {
	return catalog.Descriptor{Reference: "PL_A", Name: "music_mix", DisplayName: "Music Mix"}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRunPublishesExamplePlaylist(t *testing.T) {
	h := newHarness(t)
	h.extractor.playlists["PL_A"] = examplePlaylist()

	summary, err := h.runner(t, "v0", 1, musicMix()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summary.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(summary.Results))
	}
	res := summary.Results[0]
	if res.Uploader != "ChannelX" || res.Stats.Kept != 1 || res.Stats.Dropped() != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	dir := filepath.Join(h.root, "music_mix")
	csv := readFile(t, filepath.Join(dir, "playlist.csv"))
	if lines := strings.Split(strings.TrimSuffix(csv, "\r\n"), "\r\n"); len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %q", csv)
	}
	for _, name := range []string{"playlist.csv.md5", "playlist.csv.sha256", "playlist.json", "playlist.json.md5", "playlist.json.sha256"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	report := readFile(t, summary.IndexPath)
	if !strings.Contains(report, "ChannelX / **Music Mix** - [link](PL_A)") {
		t.Fatalf("report missing playlist line:\n%s", report)
	}
	if !strings.Contains(report, "(./music_mix/playlist.csv)") {
		t.Fatalf("report missing csv link:\n%s", report)
	}
	if !strings.Contains(report, "19/10/2026 08:30:00") {
		t.Fatalf("report missing timestamp:\n%s", report)
	}
	if marker.Present(h.markerPath) {
		t.Fatal("expected marker removed after successful run")
	}
}

func TestRunChecksumsValidateAfterPublish(t *testing.T) {
	h := newHarness(t)
	h.extractor.playlists["PL_A"] = examplePlaylist()
	playlists := []catalog.Descriptor{musicMix()}

	if _, err := h.runner(t, "v0", 1, playlists...).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	schema, _ := endpoint.Lookup("v0")
	if failures := archiver.Verify(h.publisher, playlists, schema); len(failures) != 0 {
		t.Fatalf("expected checksums to validate, got %+v", failures)
	}
}

func TestRunHaltsOnInvalidReference(t *testing.T) {
	h := newHarness(t)
	h.extractor.playlists["PL_A"] = examplePlaylist()
	playlists := []catalog.Descriptor{
		musicMix(),
		{Reference: "PL_BAD", Name: "broken", DisplayName: "Broken"},
		{Reference: "PL_A", Name: "after", DisplayName: "After"},
	}

	_, err := h.runner(t, "v1", 1, playlists...).Run(context.Background())
	if !errors.Is(err, ytdlp.ErrPlaylistUnavailable) {
		t.Fatalf("expected ErrPlaylistUnavailable, got %v", err)
	}
	var pe *archiver.PlaylistError
	if !errors.As(err, &pe) || pe.Name != "broken" || pe.Stage != archiver.StageFetch {
		t.Fatalf("expected PlaylistError for broken/fetch, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(h.root, "index.md")); !os.IsNotExist(err) {
		t.Fatalf("expected no index after halt, stat err: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.root, "music_mix", "playlist.csv")); err != nil {
		t.Fatalf("expected earlier playlist to stay published: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.root, "after")); !os.IsNotExist(err) {
		t.Fatalf("expected later playlist not processed, stat err: %v", err)
	}
	if !marker.Present(h.markerPath) {
		t.Fatal("expected marker left behind after failure")
	}
	if got := len(h.extractor.calls); got != 2 {
		t.Fatalf("expected fetching to stop at the failing playlist, got %d calls", got)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.extractor.playlists["PL_A"] = examplePlaylist()
	r := h.runner(t, "v1", 1, musicMix())

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := readFile(t, filepath.Join(h.root, "music_mix", "playlist.csv"))
	firstSum := readFile(t, filepath.Join(h.root, "music_mix", "playlist.csv.md5"))

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := readFile(t, filepath.Join(h.root, "music_mix", "playlist.csv")); got != first {
		t.Fatalf("csv changed between runs")
	}
	if got := readFile(t, filepath.Join(h.root, "music_mix", "playlist.csv.md5")); got != firstSum {
		t.Fatalf("checksum changed between runs")
	}
}

func TestRunClearsStaleOutputAndReportsStaleMarker(t *testing.T) {
	h := newHarness(t)
	h.extractor.playlists["PL_A"] = examplePlaylist()
	stale := filepath.Join(h.root, "removed_playlist", "playlist.csv")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(h.markerPath, []byte("."), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := h.runner(t, "v1", 1, musicMix()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.StaleMarker {
		t.Fatal("expected stale marker to be reported")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale output removed, stat err: %v", err)
	}
}

func TestRunWithWorkersKeepsConfiguredOrder(t *testing.T) {
	h := newHarness(t)
	playlists := []catalog.Descriptor{
		{Reference: "PL_1", Name: "first", DisplayName: "First"},
		{Reference: "PL_2", Name: "second", DisplayName: "Second"},
		{Reference: "PL_3", Name: "third", DisplayName: "Third"},
	}
	for _, desc := range playlists {
		h.extractor.playlists[desc.Reference] = &ytdlp.Playlist{Uploader: "U", Entries: []ytdlp.Entry{video(desc.Name)}}
	}
	h.extractor.delay["PL_1"] = 50 * time.Millisecond

	summary, err := h.runner(t, "v1", 3, playlists...).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, desc := range playlists {
		if summary.Results[i].Descriptor.Name != desc.Name {
			t.Fatalf("result %d = %s, want %s", i, summary.Results[i].Descriptor.Name, desc.Name)
		}
		if _, err := os.Stat(filepath.Join(h.root, desc.Name, "playlist.csv")); err != nil {
			t.Fatalf("missing output for %s: %v", desc.Name, err)
		}
	}
	report := readFile(t, summary.IndexPath)
	if !(strings.Index(report, "**First**") < strings.Index(report, "**Second**") &&
		strings.Index(report, "**Second**") < strings.Index(report, "**Third**")) {
		t.Fatalf("report not in configured order:\n%s", report)
	}
}

func TestRunFailsWhenMarkerHeld(t *testing.T) {
	h := newHarness(t)
	held, err := marker.Acquire(h.markerPath)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Release()

	_, err = h.runner(t, "v1", 1, musicMix()).Run(context.Background())
	if !errors.Is(err, marker.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if len(h.extractor.calls) != 0 {
		t.Fatal("expected no fetches while another run holds the marker")
	}
}

func TestRunWithEmptyCatalogPublishesEmptyIndex(t *testing.T) {
	h := newHarness(t)
	summary, err := h.runner(t, "v1", 1).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != 0 || len(h.extractor.calls) != 0 {
		t.Fatalf("expected no work, got results=%d calls=%v", len(summary.Results), h.extractor.calls)
	}
	report := readFile(t, summary.IndexPath)
	if !strings.Contains(report, "> Endpoint version : 1.0") || strings.Contains(report, "[link]") {
		t.Fatalf("unexpected empty report:\n%s", report)
	}
	if marker.Present(h.markerPath) {
		t.Fatal("expected marker removed after a successful run")
	}
}

func TestWriteStaticIndex(t *testing.T) {
	h := newHarness(t)
	path, err := h.runner(t, "v1", 1, musicMix()).WriteStaticIndex()
	if err != nil {
		t.Fatalf("WriteStaticIndex: %v", err)
	}
	report := readFile(t, path)
	if !strings.Contains(report, "**Music Mix** - [link](PL_A)") || strings.Contains(report, "Took") {
		t.Fatalf("unexpected static report:\n%s", report)
	}
	if len(h.extractor.calls) != 0 {
		t.Fatal("static index must not fetch")
	}
}
