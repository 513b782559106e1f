// Package endpoint describes the published schema versions of the archive:
// which metadata columns are exported, which artifact formats are written, and
// which checksum algorithms accompany them. It also owns the file naming
// inside a playlist directory so the publisher, reporter, and verifier agree.
package endpoint

import (
	"path"
	"sort"
	"strings"
)

// Format identifies a serialized artifact type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Algorithm identifies a checksum digest written as a sidecar.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// Column names exported in artifacts, in canonical order.
const (
	ColumnYoutubeID    = "youtube_id"
	ColumnVideoTitle   = "video_title"
	ColumnDuration     = "duration"
	ColumnViewCount    = "view_count"
	ColumnUploaderName = "uploader_name"
	ColumnUploaderID   = "uploader_id"
	ColumnChannelURL   = "channel_url"
	ColumnVideoURL     = "video_url"
	ColumnDescription  = "description"
)

// ArtifactBase is the file stem shared by every artifact in a playlist directory.
const ArtifactBase = "playlist"

// Schema is one published endpoint version.
type Schema struct {
	Name       string
	Version    string
	Columns    []string
	Formats    []Format
	Algorithms []Algorithm
}

var baseColumns = []string{
	ColumnYoutubeID,
	ColumnVideoTitle,
	ColumnDuration,
	ColumnViewCount,
	ColumnUploaderName,
	ColumnUploaderID,
	ColumnChannelURL,
	ColumnVideoURL,
}

var schemas = map[string]Schema{
	"v0": {
		Name:       "v0",
		Version:    "0.1",
		Columns:    append(append([]string{}, baseColumns...), ColumnDescription),
		Formats:    []Format{FormatCSV, FormatJSON},
		Algorithms: []Algorithm{SHA256, MD5},
	},
	"v1": {
		Name:       "v1",
		Version:    "1.0",
		Columns:    append([]string{}, baseColumns...),
		Formats:    []Format{FormatCSV},
		Algorithms: []Algorithm{MD5},
	},
}

// Lookup returns the schema registered under name.
func Lookup(name string) (Schema, bool) {
	s, ok := schemas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Schema{}, false
	}
	return s.clone(), true
}

// Names lists the registered schema names in sorted order.
func Names() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Schema) clone() Schema {
	s.Columns = append([]string(nil), s.Columns...)
	s.Formats = append([]Format(nil), s.Formats...)
	s.Algorithms = append([]Algorithm(nil), s.Algorithms...)
	return s
}

// ArtifactName returns the file name of the artifact for format.
func ArtifactName(format Format) string {
	return ArtifactBase + "." + string(format)
}

// SidecarName returns the checksum sidecar file name for an artifact.
func SidecarName(artifact string, alg Algorithm) string {
	return artifact + "." + string(alg)
}

// Link returns the report-relative link to a file inside a playlist directory.
func Link(playlist, file string) string {
	return "./" + path.Join(playlist, file)
}

// Files lists every file a playlist directory holds under this schema, in
// publication order: each artifact followed by its sidecars.
func (s Schema) Files() []string {
	files := make([]string, 0, len(s.Formats)*(1+len(s.Algorithms)))
	for _, format := range s.Formats {
		artifact := ArtifactName(format)
		files = append(files, artifact)
		for _, alg := range s.Algorithms {
			files = append(files, SidecarName(artifact, alg))
		}
	}
	return files
}

// Label returns the human-readable name used for a format in reports.
func (f Format) Label() string {
	return strings.ToUpper(string(f)) + " file"
}

// Label returns the human-readable name used for an algorithm in reports.
func (a Algorithm) Label() string {
	return strings.ToUpper(string(a))
}
