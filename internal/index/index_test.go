package index_test

import (
	"strings"
	"testing"
	"time"

	"plarchive/internal/endpoint"
	"plarchive/internal/index"
)

func mustSchema(t *testing.T, name string) endpoint.Schema {
	t.Helper()
	s, ok := endpoint.Lookup(name)
	if !ok {
		t.Fatalf("schema %s not registered", name)
	}
	return s
}

func TestRenderListsPlaylistWithLinks(t *testing.T) {
	summary := index.Summary{
		Schema:        mustSchema(t, "v1"),
		ScriptVersion: "2.0",
		Entries: []index.Entry{{
			Name:        "music_mix",
			DisplayName: "Music Mix",
			Reference:   "PL_A",
			Uploader:    "ChannelX",
			Elapsed:     65*time.Minute + 59*time.Second,
		}},
		Elapsed:     2 * time.Hour,
		GeneratedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}

	got := index.Render(summary)
	want := "> Endpoints\n" +
		"> Script version : 2.0\n" +
		"> Endpoint version : 1.0\n\n---\n" +
		"\nChannelX / **Music Mix** - [link](PL_A)\n" +
		"  Took 1 h, 05 mins.\n" +
		"  - [CSV file](./music_mix/playlist.csv)\n" +
		"    - [MD5](./music_mix/playlist.csv.md5)\n" +
		"\n---\n" +
		"\n- Auto-generated at : 04/03/2026 05:06:07\n" +
		"\n- Total time took : 2h, 00 mins.\n"
	if got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderKeepsEntryOrder(t *testing.T) {
	summary := index.Summary{
		Schema: mustSchema(t, "v1"),
		Entries: []index.Entry{
			{Name: "zeta", DisplayName: "Zeta", Reference: "PL_Z", Uploader: "U"},
			{Name: "alpha", DisplayName: "Alpha", Reference: "PL_A", Uploader: "U"},
		},
	}
	got := index.Render(summary)
	if strings.Index(got, "**Zeta**") > strings.Index(got, "**Alpha**") {
		t.Fatalf("expected configured order, got:\n%s", got)
	}
}

func TestRenderLegacySchemaListsEveryArtifact(t *testing.T) {
	summary := index.Summary{
		Schema:  mustSchema(t, "v0"),
		Entries: []index.Entry{{Name: "mix", DisplayName: "Mix", Reference: "PL", Uploader: "U"}},
	}
	got := index.Render(summary)
	for _, link := range []string{
		"[CSV file](./mix/playlist.csv)",
		"[SHA256](./mix/playlist.csv.sha256)",
		"[MD5](./mix/playlist.csv.md5)",
		"[JSON file](./mix/playlist.json)",
		"[SHA256](./mix/playlist.json.sha256)",
		"[MD5](./mix/playlist.json.md5)",
	} {
		if !strings.Contains(got, link) {
			t.Fatalf("missing %s in:\n%s", link, got)
		}
	}
}

func TestRenderStaticOmitsTimings(t *testing.T) {
	summary := index.Summary{
		Schema:      mustSchema(t, "v1"),
		Entries:     []index.Entry{{Name: "mix", DisplayName: "Mix", Reference: "PL", Uploader: "U"}},
		GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Static:      true,
	}
	got := index.Render(summary)
	if strings.Contains(got, "Took") || strings.Contains(got, "Total time") {
		t.Fatalf("static report should not include timings:\n%s", got)
	}
	if !strings.Contains(got, "**Mix** - [link](PL)") {
		t.Fatalf("static report missing entry line:\n%s", got)
	}
	if strings.Contains(got, "U / ") {
		t.Fatalf("static report should not include uploader:\n%s", got)
	}
}

func TestRenderStaticLegacyLayout(t *testing.T) {
	summary := index.Summary{
		Schema:        mustSchema(t, "v0"),
		ScriptVersion: "2.0",
		Entries:       []index.Entry{{Name: "mix", DisplayName: "Mix", Reference: "PL"}},
		GeneratedAt:   time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Static:        true,
	}
	got := index.Render(summary)
	want := "# Endpoints\n\n" +
		"- **Mix** - [link](PL)\n" +
		"\t- [CSV file](./mix/playlist.csv)\n" +
		"\t\t- [Checksum : SHA256](./mix/playlist.csv.sha256)\n" +
		"\t\t- [Checksum : MD5](./mix/playlist.csv.md5)\n" +
		"\t- [JSON file](./mix/playlist.json)\n" +
		"\t\t- [Checksum : SHA256](./mix/playlist.json.sha256)\n" +
		"\t\t- [Checksum : MD5](./mix/playlist.json.md5)\n" +
		"\n---\n\n" +
		"- Auto-generated by : plarchive 2.0\n\n" +
		"- Auto-generated at : **04/03/2026 05:06:07**\n\n"
	if got != want {
		t.Fatalf("unexpected static report:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatTotal(t *testing.T) {
	if got := index.FormatTotal(26*time.Hour + 7*time.Minute + 59*time.Second); got != "26h, 07 mins." {
		t.Fatalf("FormatTotal = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 h, 00 mins."},
		{59 * time.Second, "0 h, 00 mins."},
		{5*time.Minute + 30*time.Second, "0 h, 05 mins."},
		{26*time.Hour + 7*time.Minute, "26 h, 07 mins."},
		{-time.Minute, "0 h, 00 mins."},
	}
	for _, tt := range tests {
		if got := index.FormatDuration(tt.in); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
