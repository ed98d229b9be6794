package core

// convert.go turns decoded CSV text into header cells and keyed rows.
//
// These functions handle the messy reality of vendor exports:
//   - UTF-8 byte order marks glued to the first header cell
//   - Excel formula prefixes (="Title") on header cells
//   - Ragged rows with fewer or more cells than the header
//   - Duplicate header columns
//
// Only header cells are cleaned. Data cells are kept byte for byte since
// passwords may legitimately carry quotes or surrounding spaces.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyFile is returned when a payload has no header row.
var ErrEmptyFile = errors.New("empty file")

// CleanCell removes common CSV artifacts from a header cell:
// - Strips a byte order mark
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	}

	return strings.Trim(s, `"'`)
}

// CleanHeader cleans every header cell.
func CleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = CleanCell(h)
	}
	return out
}

// HeaderIndex maps column names to their first position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a cleaned header row.
// Column names are matched exactly; the first duplicate wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

// BuildRow keys a raw row by column name. Missing trailing cells are absent.
func (idx HeaderIndex) BuildRow(fields []string) Row {
	row := make(Row, len(idx))
	for col, pos := range idx {
		if pos < len(fields) {
			row[col] = fields[pos]
		}
	}
	return row
}

// ReadRows parses CSV text into a cleaned header and the data rows.
// Each data row carries the file line it starts on.
func ReadRows(text []byte) ([]string, []RawRow, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("invalid csv header: %w", err)
	}
	header = CleanHeader(header)

	var rows []RawRow
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid csv: %w", err)
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, RawRow{Line: line, Fields: fields})
	}

	return header, rows, nil
}
