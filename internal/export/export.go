// Package export re-serializes stored assets to delimited-text and
// spreadsheet formats. The mapping is direct and order-preserving: one
// record in, one row out.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/asetfilter/asetfilter/internal/store"
)

// Header is the exported column layout, mirroring the source inventory
// labels so exported files round-trip through the same parser.
var Header = []string{
	"Jenis Barang / Nama Barang",
	"KECAMATAN",
	"Luas (m2)",
	"Satuan Kerja",
	"Status Tanah",
	"Status Gabungan",
	"PEMETAAN ASET TANAH",
	"Nilai / Harga",
	"Kode Aset",
	"Tahun",
}

// row flattens an asset into Header order. Nil numerics become empty cells.
func row(a store.Asset) []string {
	value := ""
	if a.Value != nil {
		value = strconv.FormatFloat(*a.Value, 'f', -1, 64)
	}
	year := ""
	if a.Year != nil {
		year = strconv.Itoa(*a.Year)
	}
	return []string{
		a.Name,
		a.District,
		strconv.FormatFloat(a.Area, 'f', -1, 64),
		a.WorkUnit,
		a.LandStatus,
		a.Status,
		a.MapStatus,
		value,
		a.AssetCode,
		year,
	}
}

// CSV writes the assets as comma-separated text with a header row.
func CSV(w io.Writer, assets []store.Asset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range assets {
		if err := cw.Write(row(a)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// XLSX writes the assets as a single-sheet spreadsheet.
func XLSX(w io.Writer, assets []store.Asset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, a := range assets {
		cells := row(a)
		out := make([]any, len(cells))
		for j, c := range cells {
			out[j] = c
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, axis, &out); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
