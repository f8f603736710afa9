package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one parsed CSV row keyed by normalized header names.
type Row map[string]string

// Get returns the first non-blank value among the given keys.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

// NormalizeKey canonicalizes a header name: lowercased, trimmed, internal
// whitespace collapsed to a single underscore. "From Email Address" and
// "from_email_address" address the same column.
func NormalizeKey(key string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(key)))
	return strings.Join(fields, "_")
}

// ParseRows reads an entire CSV document into rows keyed by normalized
// header names. The first row is the header. Any reader error is a
// structural failure: the file cannot be treated as tabular data and the
// whole run is aborted, so no partial row slice is returned.
func ParseRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeKey(h)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV: %w", err)
		}

		row := make(Row, len(keys))
		for i, key := range keys {
			if i < len(record) && key != "" {
				row[key] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
