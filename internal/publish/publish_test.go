package publish_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"plarchive/internal/publish"
)

func newPublisher(t *testing.T) *publish.Publisher {
	t.Helper()
	base := t.TempDir()
	p := publish.New(filepath.Join(base, "endpoints", "v1"), filepath.Join(base, "work"))
	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return p
}

func TestResetClearsPreviousOutput(t *testing.T) {
	p := newPublisher(t)
	stale := filepath.Join(p.Root, "old_playlist", "playlist.csv")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale output removed, stat err: %v", err)
	}
	if info, err := os.Stat(p.Root); err != nil || !info.IsDir() {
		t.Fatalf("expected output root recreated, err: %v", err)
	}
}

func TestStageAndPublish(t *testing.T) {
	p := newPublisher(t)
	files := []publish.File{
		{Name: "playlist.csv", Data: []byte("a,b\r\n")},
		{Name: "playlist.csv.md5", Data: []byte("abc  playlist.csv\n")},
	}
	if err := p.Stage("music_mix", files); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	published, err := p.Publish("music_mix")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published files, got %v", published)
	}
	for _, file := range files {
		got, err := os.ReadFile(filepath.Join(p.Dir("music_mix"), file.Name))
		if err != nil {
			t.Fatalf("read %s: %v", file.Name, err)
		}
		if string(got) != string(file.Data) {
			t.Fatalf("%s content mismatch: %q", file.Name, got)
		}
	}
	if _, err := os.Stat(filepath.Join(p.WorkDir, "music_mix")); !os.IsNotExist(err) {
		t.Fatalf("expected staging dir removed, stat err: %v", err)
	}
}

func TestPublishOverwritesAndKeepsOtherFiles(t *testing.T) {
	p := newPublisher(t)
	dir := p.Dir("music_mix")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "playlist.csv"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := p.Stage("music_mix", []publish.File{{Name: "playlist.csv", Data: []byte("new")}}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Publish("music_mix"); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(filepath.Join(dir, "playlist.csv"))
	if string(got) != "new" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("expected unrelated file kept: %v", err)
	}
}

func TestStageRejectsUnsafeNames(t *testing.T) {
	p := newPublisher(t)
	if err := p.Stage("../escape", nil); !errors.Is(err, publish.ErrUnsafeName) {
		t.Fatalf("expected ErrUnsafeName, got %v", err)
	}
	if err := p.Stage("ok", []publish.File{{Name: "../x", Data: nil}}); err == nil {
		t.Fatal("expected invalid file name error")
	}
}

func TestWriteIndex(t *testing.T) {
	p := newPublisher(t)
	if err := p.WriteIndex("index.md", []byte("# Index\n")); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(p.Root, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "# Index\n" {
		t.Fatalf("unexpected index content %q", got)
	}
}
