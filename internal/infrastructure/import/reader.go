// Package sheetimport reads tabular product files (CSV or XLSX) into
// header-keyed rows and validates them against per-column rules.
package sheetimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Row is one data row keyed by normalized header name
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Reader yields header-keyed rows. Next returns io.EOF after the last row.
type Reader interface {
	Headers() []string
	Next() (*Row, error)
	Close() error
}

// Open picks a reader by file extension
func Open(fileName string, r io.Reader) (Reader, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return NewCSVReader(r)
	case ".xlsx":
		return NewXLSXReader(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// ReadAll drains reader, skipping blank rows. maxRows <= 0 means no limit.
func ReadAll(reader Reader, maxRows int) ([]*Row, error) {
	var rows []*Row
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, fmt.Errorf("%w (%d)", ErrTooManyRows, maxRows)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}

// MissingHeaders lists required headers the reader does not have
func MissingHeaders(reader Reader, required []string) []string {
	present := make(map[string]bool, len(reader.Headers()))
	for _, h := range reader.Headers() {
		present[h] = true
	}
	var missing []string
	for _, h := range required {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

// normalizeHeader lowercases and snake-cases a header cell
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func buildRow(line int, headers, record []string) *Row {
	row := &Row{LineNumber: line, Data: make(map[string]string, len(headers))}
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row
}

// CSVReader reads comma-separated UTF-8 files, with or without a BOM
type CSVReader struct {
	reader  *csv.Reader
	headers []string
	line    int
}

// NewCSVReader validates encoding and reads the header row
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	buf := bufio.NewReader(r)

	if bom, err := buf.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	const checkSize = 4096
	head, err := buf.Peek(checkSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	if !validUTF8(head, len(head) == checkSize) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(buf)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	headers := make([]string, len(record))
	for i, h := range record {
		headers[i] = normalizeHeader(h)
	}
	return &CSVReader{reader: cr, headers: headers, line: 1}, nil
}

// validUTF8 ignores a rune cut off at the end of a partial peek
func validUTF8(b []byte, partial bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !partial {
		return false
	}
	for i := 1; i < utf8.UTFMax && i < len(b); i++ {
		if utf8.Valid(b[:len(b)-i]) {
			return true
		}
	}
	return false
}

// Headers returns normalized header names
func (r *CSVReader) Headers() []string { return r.headers }

// Next reads the next record
func (r *CSVReader) Next() (*Row, error) {
	record, err := r.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	r.line++
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", r.line, err)
	}
	return buildRow(r.line, r.headers, record), nil
}

// Close is a no-op; the caller owns the underlying reader
func (r *CSVReader) Close() error { return nil }

// XLSXReader reads the first worksheet of an Excel workbook
type XLSXReader struct {
	file    *excelize.File
	rows    *excelize.Rows
	headers []string
	line    int
}

// NewXLSXReader opens the workbook and reads the header row of its first sheet
func NewXLSXReader(r io.Reader) (*XLSXReader, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		_ = file.Close()
		return nil, ErrEmptyFile
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	x := &XLSXReader{file: file, rows: rows}
	if !rows.Next() {
		_ = x.Close()
		return nil, ErrMissingHeader
	}
	cells, err := rows.Columns()
	if err != nil {
		_ = x.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(cells) == 0 {
		_ = x.Close()
		return nil, ErrMissingHeader
	}
	x.headers = make([]string, len(cells))
	for i, h := range cells {
		x.headers[i] = normalizeHeader(h)
	}
	x.line = 1
	return x, nil
}

// Headers returns normalized header names
func (x *XLSXReader) Headers() []string { return x.headers }

// Next reads the next sheet row
func (x *XLSXReader) Next() (*Row, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	x.line++
	cells, err := x.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", x.line, err)
	}
	return buildRow(x.line, x.headers, cells), nil
}

// Close releases the workbook's temporary files
func (x *XLSXReader) Close() error {
	return errors.Join(x.rows.Close(), x.file.Close())
}
