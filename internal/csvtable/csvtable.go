// Package csvtable reads header-keyed CSV tables.
//
// The first row names the columns. Every following row becomes a Record
// mapping column name to its whitespace-trimmed value. Quoted fields may span
// lines; stray quotes and ragged rows are tolerated rather than rejected,
// since the upstream tables are hand-maintained spreadsheet exports.
package csvtable

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one data row keyed by header name.
type Record map[string]string

// Get returns the trimmed value for key, or "" when the row has no such column.
func (r Record) Get(key string) string {
	return r[key]
}

// First returns the first non-empty value among keys, in order.
func (r Record) First(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

// Parse reads all records from r. Empty input yields no records.
func Parse(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := make(Record, len(header))
		for i, name := range header {
			// Short rows leave trailing columns absent.
			if i >= len(row) {
				break
			}
			rec[name] = strings.TrimSpace(row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
