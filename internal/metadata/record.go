package metadata

import "plarchive/internal/endpoint"

// Record is one normalized video.
type Record struct {
	YoutubeID    string
	Title        string
	Duration     int64
	ViewCount    int64
	UploaderName string
	UploaderID   string
	ChannelURL   string
	VideoURL     string
	Description  string
}

// Value returns the column value as a string or int64. Unknown columns yield nil.
func (r Record) Value(column string) any {
	switch column {
	case endpoint.ColumnYoutubeID:
		return r.YoutubeID
	case endpoint.ColumnVideoTitle:
		return r.Title
	case endpoint.ColumnDuration:
		return r.Duration
	case endpoint.ColumnViewCount:
		return r.ViewCount
	case endpoint.ColumnUploaderName:
		return r.UploaderName
	case endpoint.ColumnUploaderID:
		return r.UploaderID
	case endpoint.ColumnChannelURL:
		return r.ChannelURL
	case endpoint.ColumnVideoURL:
		return r.VideoURL
	case endpoint.ColumnDescription:
		return r.Description
	default:
		return nil
	}
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInteger
)

type field struct {
	source string
	kind   fieldKind
	assign func(*Record, string, int64)
}

// fields maps each archive column to the yt-dlp key it is read from.
var fields = map[string]field{
	endpoint.ColumnYoutubeID:    {"id", kindString, func(r *Record, s string, _ int64) { r.YoutubeID = s }},
	endpoint.ColumnVideoTitle:   {"title", kindString, func(r *Record, s string, _ int64) { r.Title = s }},
	endpoint.ColumnDuration:     {"duration", kindInteger, func(r *Record, _ string, n int64) { r.Duration = n }},
	endpoint.ColumnViewCount:    {"view_count", kindInteger, func(r *Record, _ string, n int64) { r.ViewCount = n }},
	endpoint.ColumnUploaderName: {"uploader", kindString, func(r *Record, s string, _ int64) { r.UploaderName = s }},
	endpoint.ColumnUploaderID:   {"uploader_id", kindString, func(r *Record, s string, _ int64) { r.UploaderID = s }},
	endpoint.ColumnChannelURL:   {"channel_url", kindString, func(r *Record, s string, _ int64) { r.ChannelURL = s }},
	endpoint.ColumnVideoURL:     {"webpage_url", kindString, func(r *Record, s string, _ int64) { r.VideoURL = s }},
	endpoint.ColumnDescription:  {"description", kindString, func(r *Record, s string, _ int64) { r.Description = s }},
}
