// Package loader reads the semicolon-delimited party export into memory.
//
// The file is read once and decoded with each candidate encoding in turn;
// the first candidate that both decodes and parses as CSV wins. Legacy ERP
// exports are usually Latin-1 or Windows-1252, so UTF-8 is tried strictly.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiter is the field separator used by the export.
const Delimiter = ';'

// ErrNoEncoding is returned when no candidate encoding yields a parseable table.
var ErrNoEncoding = errors.New("encoding error: file could not be read with any candidate encoding")

// ErrEmptyFile is returned when the file holds nothing but whitespace.
var ErrEmptyFile = errors.New("empty file: no header row found")

// Table is a decoded file: header names and one map per data row.
type Table struct {
	Encoding string
	Header   []string
	Rows     []map[string]string
}

// Load reads path and decodes it with the first workable candidate encoding.
func Load(path string, candidates []Encoding) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(NewBOMSkippingReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	table, err := Decode(data, candidates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Decode tries each candidate on data in order. Attempt failures are joined
// into the returned error alongside ErrNoEncoding.
func Decode(data []byte, candidates []Encoding) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if len(candidates) == 0 {
		candidates = DefaultEncodings
	}

	var attempts []error
	for _, enc := range candidates {
		text, err := enc.Decode(data)
		if err != nil {
			attempts = append(attempts, fmt.Errorf("%s: %w", enc.Name, err))
			continue
		}

		table, err := parse(text)
		if err != nil {
			attempts = append(attempts, fmt.Errorf("%s: %w", enc.Name, err))
			continue
		}

		table.Encoding = enc.Name
		return table, nil
	}

	return nil, errors.Join(append([]error{ErrNoEncoding}, attempts...)...)
}

func parse(text []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, toRow(header, record))
	}

	return &Table{Header: header, Rows: rows}, nil
}

// toRow pads short records with blanks and drops cells past the header width.
func toRow(header, record []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

// isBlank reports whether a record is a single empty cell. encoding/csv
// already drops zero-length lines; this also catches whitespace-only lines.
func isBlank(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}
