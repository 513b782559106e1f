package metadata

import (
	"encoding/json"
	"math"
	"strconv"
)

// Stats counts what normalization did with a playlist's entries.
type Stats struct {
	Seen        int
	Kept        int
	Unavailable int
	Incomplete  int
}

// Dropped is the number of entries excluded from the output.
func (s Stats) Dropped() int {
	return s.Unavailable + s.Incomplete
}

// Normalize maps raw entries onto records carrying the given columns. Nil
// entries count as unavailable; entries with a missing, null, or mistyped
// required field count as incomplete. Unknown columns make every entry
// incomplete.
func Normalize(entries []map[string]any, columns []string) ([]Record, Stats) {
	stats := Stats{Seen: len(entries)}
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			stats.Unavailable++
			continue
		}
		record, ok := normalizeEntry(entry, columns)
		if !ok {
			stats.Incomplete++
			continue
		}
		records = append(records, record)
	}
	stats.Kept = len(records)
	return records, stats
}

func normalizeEntry(entry map[string]any, columns []string) (Record, bool) {
	var record Record
	for _, column := range columns {
		f, ok := fields[column]
		if !ok {
			return Record{}, false
		}
		raw, present := entry[f.source]
		if !present || raw == nil {
			return Record{}, false
		}
		switch f.kind {
		case kindString:
			s, ok := raw.(string)
			if !ok {
				return Record{}, false
			}
			f.assign(&record, s, 0)
		case kindInteger:
			n, ok := toInt64(raw)
			if !ok {
				return Record{}, false
			}
			f.assign(&record, "", n)
		}
	}
	return record, true
}

// toInt64 accepts JSON numbers. Fractional values are rounded to the nearest
// integer; non-finite or out-of-range values are rejected.
func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case float64:
		return floatToInt64(v)
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	r := math.Round(f)
	if r >= 1<<63 || r < -(1<<63) {
		return 0, false
	}
	return int64(r), true
}
