package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"plarchive/internal/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONPreservesOrder(t *testing.T) {
	path := writeFile(t, "metadata.json", `[
  {"url": "PL_B", "name": "second", "pretty_name": "Second"},
  {"url": "PL_A", "name": "music_mix", "pretty_name": "  Music Mix "},
  {"url": "PL_C", "name": "lofi-beats"}
]`)

	got, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []catalog.Descriptor{
		{Reference: "PL_B", Name: "second", DisplayName: "Second"},
		{Reference: "PL_A", Name: "music_mix", DisplayName: "Music Mix"},
		{Reference: "PL_C", Name: "lofi-beats", DisplayName: "Lofi Beats"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected descriptors:\n got %#v\nwant %#v", got, want)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "playlists.toml", `
[[playlists]]
url = "PL_A"
name = "music_mix"
pretty_name = "Music Mix"

[[playlists]]
url = "PL_B"
name = "talks"
`)
	got, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].Name != "music_mix" || got[1].DisplayName != "Talks" {
		t.Fatalf("unexpected descriptors: %#v", got)
	}
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{"duplicate", `[{"url":"a","name":"x"},{"url":"b","name":"x"}]`, catalog.ErrDuplicateName, ""},
		{"unsafe", `[{"url":"a","name":"../x"}]`, catalog.ErrUnsafeName, ""},
		{"uppercase", `[{"url":"a","name":"Music Mix"}]`, catalog.ErrUnsafeName, "music_mix"},
		{"missing url", `[{"name":"x"}]`, nil, "url is required"},
		{"not an array", `{"url":"a","name":"x"}`, nil, "parse catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Load(writeFile(t, "metadata.json", tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeFile(t, "metadata.json", `[{"url":"PL_A","name":"music_mix","pretty_name":"Music Mix","uploader":"ChannelX","time_took":12.5}]`)

	got, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []catalog.Descriptor{{Reference: "PL_A", Name: "music_mix", DisplayName: "Music Mix"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected descriptors: %#v", got)
	}
}

func TestLoadEmptyCatalog(t *testing.T) {
	for name, content := range map[string]string{"metadata.json": `[]`, "playlists.toml": ""} {
		got, err := catalog.Load(writeFile(t, name, content))
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no descriptors from %s, got %#v", name, got)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	in := []catalog.Descriptor{{Reference: "PL_A", Name: "music_mix", DisplayName: "Music Mix"}}
	if err := catalog.Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %#v", out)
	}
}

func TestWriteTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlists.toml")
	in := []catalog.Descriptor{
		{Reference: "PL_A", Name: "music_mix", DisplayName: "Music Mix"},
		{Reference: "PL_B", Name: "talks", DisplayName: "Talks"},
	}
	if err := catalog.Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %#v", out)
	}
}
