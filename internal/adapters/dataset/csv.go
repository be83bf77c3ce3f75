// Package dataset loads training tables from CSV files and SQLite databases.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	domain "github.com/okian/salarycast/internal/domain/dataset"
)

// CSVSource reads a header-first CSV file.
type CSVSource struct {
	Path string
}

// NewCSV returns a CSV source for path.
func NewCSV(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads the whole file. Rows that fail to parse are skipped and
// recorded as warnings; ragged rows are padded or truncated.
func (s *CSVSource) Load(ctx context.Context) (*domain.Table, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ParseCSV(ctx, data)
}

// ParseCSV parses CSV bytes. UTF-8 and UTF-16 with a BOM are decoded; other
// invalid UTF-8 input is read as Latin-1.
func ParseCSV(ctx context.Context, data []byte) (*domain.Table, error) {
	decoded, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no header row", domain.ErrEmptyTable)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	tbl := domain.NewTable(headers, nil)
	rowNum := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			tbl.Warnings = append(tbl.Warnings, domain.Warning{Row: rowNum, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		if len(row) != len(headers) {
			tbl.Warnings = append(tbl.Warnings, domain.Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("row has %d columns, expected %d", len(row), len(headers)),
			})
		}
		tbl.Append(row)
	}
	if tbl.Len() == 0 {
		return nil, fmt.Errorf("%w: no data rows", domain.ErrEmptyTable)
	}
	return tbl, nil
}

func decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		return out, err
	}
	if utf8.Valid(data) {
		return data, nil
	}
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	return out, err
}

// Open picks a source by file extension: .db, .sqlite and .sqlite3 are read
// as SQLite using table, anything else as CSV.
func Open(path, table string) (domain.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLite(path, table)
	default:
		return NewCSV(path), nil
	}
}
