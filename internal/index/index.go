// Package index renders the markdown report published at the top of an
// endpoint. Rendering is pure; the caller owns writing the result.
package index

import (
	"fmt"
	"strings"
	"time"

	"plarchive/internal/endpoint"
)

// TimestampLayout is the layout of the generation timestamp in the footer.
const TimestampLayout = "02/01/2006 15:04:05"

// Entry is one playlist row in the report.
type Entry struct {
	Name        string
	DisplayName string
	Reference   string
	Uploader    string
	Elapsed     time.Duration
}

// Summary is everything the report shows for one run.
type Summary struct {
	Schema        endpoint.Schema
	ScriptVersion string
	Entries       []Entry
	Elapsed       time.Duration
	GeneratedAt   time.Time

	// Static selects the catalog-only layout: a bulleted list of playlists
	// and artifact links with no uploaders or timings.
	Static bool
}

// Render returns the report document. Entries appear in the order given.
func Render(s Summary) string {
	if s.Static {
		return renderStatic(s)
	}
	var b strings.Builder

	b.WriteString("> Endpoints\n")
	if s.ScriptVersion != "" {
		fmt.Fprintf(&b, "> Script version : %s\n", s.ScriptVersion)
	}
	fmt.Fprintf(&b, "> Endpoint version : %s\n\n---\n", s.Schema.Version)

	for _, entry := range s.Entries {
		b.WriteString("\n")
		writeEntry(&b, s, entry)
		b.WriteString("\n---\n")
	}

	fmt.Fprintf(&b, "\n- Auto-generated at : %s\n", s.GeneratedAt.Format(TimestampLayout))
	fmt.Fprintf(&b, "\n- Total time took : %s\n", FormatTotal(s.Elapsed))
	return b.String()
}

func writeEntry(b *strings.Builder, s Summary, entry Entry) {
	if entry.Uploader == "" {
		fmt.Fprintf(b, "**%s** - [link](%s)\n", entry.DisplayName, entry.Reference)
	} else {
		fmt.Fprintf(b, "%s / **%s** - [link](%s)\n", entry.Uploader, entry.DisplayName, entry.Reference)
	}
	fmt.Fprintf(b, "  Took %s\n", FormatDuration(entry.Elapsed))
	for _, format := range s.Schema.Formats {
		artifact := endpoint.ArtifactName(format)
		fmt.Fprintf(b, "  - [%s](%s)\n", format.Label(), endpoint.Link(entry.Name, artifact))
		for _, alg := range s.Schema.Algorithms {
			fmt.Fprintf(b, "    - [%s](%s)\n", alg.Label(), endpoint.Link(entry.Name, endpoint.SidecarName(artifact, alg)))
		}
	}
}

func renderStatic(s Summary) string {
	var b strings.Builder
	b.WriteString("# Endpoints\n\n")
	for _, entry := range s.Entries {
		fmt.Fprintf(&b, "- **%s** - [link](%s)\n", entry.DisplayName, entry.Reference)
		for _, format := range s.Schema.Formats {
			artifact := endpoint.ArtifactName(format)
			fmt.Fprintf(&b, "\t- [%s](%s)\n", format.Label(), endpoint.Link(entry.Name, artifact))
			for _, alg := range s.Schema.Algorithms {
				fmt.Fprintf(&b, "\t\t- [Checksum : %s](%s)\n", alg.Label(), endpoint.Link(entry.Name, endpoint.SidecarName(artifact, alg)))
			}
		}
		b.WriteString("\n---\n\n")
	}
	b.WriteString("- Auto-generated by : plarchive")
	if s.ScriptVersion != "" {
		b.WriteString(" " + s.ScriptVersion)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "- Auto-generated at : **%s**\n\n", s.GeneratedAt.Format(TimestampLayout))
	return b.String()
}

// FormatDuration renders a per-playlist time as "H h, MM mins.", truncated
// to whole minutes.
func FormatDuration(d time.Duration) string {
	h, m := hoursMinutes(d)
	return fmt.Sprintf("%d h, %02d mins.", h, m)
}

// FormatTotal renders the run total as "Hh, MM mins.".
func FormatTotal(d time.Duration) string {
	h, m := hoursMinutes(d)
	return fmt.Sprintf("%dh, %02d mins.", h, m)
}

func hoursMinutes(d time.Duration) (int64, int64) {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Minute)
	return total / 60, total % 60
}
