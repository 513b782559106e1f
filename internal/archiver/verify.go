package archiver

import (
	"plarchive/internal/catalog"
	"plarchive/internal/checksum"
	"plarchive/internal/endpoint"
	"plarchive/internal/publish"
)

// Verify re-checks every artifact and sidecar of the configured playlists
// under the publisher's root.
func Verify(p *publish.Publisher, playlists []catalog.Descriptor, schema endpoint.Schema) []checksum.Failure {
	var failures []checksum.Failure
	for _, desc := range playlists {
		failures = append(failures, checksum.VerifyDir(p.Dir(desc.Name), schema)...)
	}
	return failures
}
