// Package archiver runs the per-playlist pipeline and the full archive pass.
//
// A playlist moves through fetch, normalize, encode, checksum, and publish.
// A run takes the marker, clears the output root, processes every configured
// playlist, writes the index, and releases the marker. Any playlist failure
// halts the run and leaves the marker behind.
package archiver
