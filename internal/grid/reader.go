// Package grid decodes uploaded spreadsheet files into a raw cell grid.
// The normalization core is agnostic to file formats; this package owns
// the format-specific decoding.
package grid

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/asetfilter/asetfilter/internal/parser"
)

// preferredSheet is the sheet name the inventory exports use. Files that
// lack it fall back to the first sheet.
const preferredSheet = "A"

// Read decodes file bytes into a RawGrid based on the file extension.
// Supported formats: .xlsx/.xlsm (zipped spreadsheet), .xls (legacy binary
// workbook, the format most inventory exports still arrive in) and .csv.
func Read(data []byte, filename string) (parser.RawGrid, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		return readExcel(data)
	case ".xls":
		return readLegacyExcel(data)
	case ".csv":
		return readCSV(data)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .xls, .xlsx or .csv)", ext)
	}
}

// readExcel reads every cell of one sheet via excelize. GetRows already
// yields formatted string values, so numeric cells arrive the way they
// display - including the corrupted time-like area cells the parser
// knows how to reduce.
func readExcel(data []byte) (parser.RawGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := preferredSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("spreadsheet has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return parser.RawGrid(rows), nil
}

// readLegacyExcel reads a pre-2007 binary (BIFF) workbook. Cell values come
// out as their string representation, matching what readExcel yields for
// the same content.
func readLegacyExcel(data []byte) (parser.RawGrid, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open legacy workbook: %w", err)
	}

	if wb.GetNumberSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sh, err := wb.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	for i := 1; i < wb.GetNumberSheets(); i++ {
		s, err := wb.GetSheet(i)
		if err != nil {
			continue
		}
		if s.GetName() == preferredSheet {
			sh = s
			break
		}
	}

	grid := make(parser.RawGrid, 0, sh.GetNumberRows())
	for i := 0; i < sh.GetNumberRows(); i++ {
		r, err := sh.GetRow(i)
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}

		cells := r.GetCols()
		cols := make([]string, len(cells))
		for j, c := range cells {
			cols[j] = c.GetString()
		}
		grid = append(grid, cols)
	}

	return grid, nil
}

// readCSV parses CSV bytes leniently: ragged rows are allowed (the parser
// tolerates them) and invalid UTF-8 is replaced rather than rejected.
func readCSV(data []byte) (parser.RawGrid, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return parser.RawGrid(records), nil
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
