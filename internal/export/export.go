// Package export serializes normalized records into published artifacts.
//
// Output is deterministic: the same records and columns always produce the
// same bytes, which keeps checksums stable between runs.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"plarchive/internal/endpoint"
	"plarchive/internal/metadata"
)

// Encode serializes records in the given format.
func Encode(records []metadata.Record, columns []string, format endpoint.Format) ([]byte, error) {
	switch format {
	case endpoint.FormatCSV:
		return EncodeCSV(records, columns)
	case endpoint.FormatJSON:
		return EncodeJSON(records, columns)
	default:
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}
}

// EncodeCSV writes a header row equal to columns followed by one row per
// record, using RFC 4180 quoting and CRLF line endings.
func EncodeCSV(records []metadata.Record, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}
	row := make([]string, len(columns))
	for i, record := range records {
		for j, column := range columns {
			value, err := cell(record, column)
			if err != nil {
				return nil, fmt.Errorf("export: record %d: %w", i, err)
			}
			row[j] = value
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export: write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(record metadata.Record, column string) (string, error) {
	switch v := record.Value(column).(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", fmt.Errorf("unknown column %q", column)
	}
}

// EncodeJSON writes the records as a JSON array of objects whose keys follow
// column order. Integers are emitted as numbers and HTML characters are not
// escaped.
func EncodeJSON(records []metadata.Record, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, record := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, column := range columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			value := record.Value(column)
			if value == nil {
				return nil, fmt.Errorf("export: record %d: unknown column %q", i, column)
			}
			if err := writeJSONValue(&buf, column); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSONValue(&buf, value); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, value any) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("export: encode json value: %w", err)
	}
	buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
	return nil
}
