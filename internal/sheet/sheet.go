// Package sheet parses uploaded result files into rows of named cell
// values. It understands .xlsx workbooks (first sheet only) and .csv files.
//
// The first non-empty row is the header; header cells become column keys,
// lower-cased and trimmed, so downstream lookups are case-insensitive.
// Cell values stay raw strings; internal/core normalizes them.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/b-balajis/rms-backend/internal/core"
)

// ErrEmptyFile is returned when a file has no data rows after the header.
var ErrEmptyFile = errors.New("empty file")

// Parse converts an uploaded file into rows. The format is chosen by file
// extension; anything that is not .xlsx is treated as CSV.
func Parse(filename string, data []byte) ([]core.Row, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = parseXLSX(data)
	default:
		records, err = parseCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse sheet %s: %w", filename, err)
	}

	return toRows(records)
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Result workbooks carry their data on the first sheet.
	name := f.GetSheetName(0)
	if name == "" {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(name)
}

func parseCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	reader.FieldsPerRecord = -1 // rows may have trailing blanks trimmed
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// toRows turns raw records into keyed rows using the first non-empty record
// as the header. Blank data rows are skipped.
func toRows(records [][]string) ([]core.Row, error) {
	headerIdx := -1
	for i, rec := range records {
		if !isEmptyRecord(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyFile
	}

	header := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := []core.Row{}
	for _, rec := range records[headerIdx+1:] {
		if isEmptyRecord(rec) {
			continue
		}
		row := make(core.Row, len(header))
		for i, key := range header {
			if key == "" || i >= len(rec) {
				continue
			}
			row[key] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func isEmptyRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so the CSV reader never chokes on exports from old tooling.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.Write(data[:size])
		}
		data = data[size:]
	}
	return buf.Bytes()
}
