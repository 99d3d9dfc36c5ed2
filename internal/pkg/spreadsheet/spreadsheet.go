// Package spreadsheet reads and writes tabular reference data as CSV or XLSX.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a supported spreadsheet format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MaxFileSize bounds an uploaded import file
const MaxFileSize = 10 << 20

// ErrUnsupportedFormat is returned for anything other than csv or xlsx
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Table is a header row followed by data rows
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseFormat accepts "csv" or "xlsx", case-insensitively. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromFilename picks the format from a file extension
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Write encodes t to w. sheet names the worksheet for xlsx output.
func Write(w io.Writer, f Format, sheet string, t Table) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatXLSX:
		return writeXLSX(w, sheet, t)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Read decodes a table. The first non-empty row is the header. Header
// cells are trimmed and lower-cased so lookups are case-insensitive.
func Read(r io.Reader, f Format) (Table, error) {
	var rows [][]string
	var err error

	switch f {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return Table{}, err
	}

	for len(rows) > 0 && isBlank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return Table{}, errors.New("spreadsheet is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return Table{Headers: headers, Rows: rows[1:]}, nil
}

// Records returns each row keyed by header. Blank rows are kept as nil
// so row numbers stay aligned with the source file.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		if isBlank(row) {
			continue
		}
		rec := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				rec[h] = strings.TrimSpace(row[j])
			} else {
				rec[h] = ""
			}
		}
		out[i] = rec
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func writeXLSX(w io.Writer, sheet string, t Table) error {
	file := excelize.NewFile()
	defer file.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, row := range append([][]string{t.Headers}, t.Rows...) {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write xlsx row %d: %w", i+1, err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return rows, nil
}

// Encode is Write into a byte slice
func Encode(f Format, sheet string, t Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, sheet, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
