package parser

import (
	"errors"
	"reflect"
	"testing"
)

// inventoryGrid mimics a real export: title rows, header at an offset,
// interleaved subtotal and blank rows, and messy numeric cells.
func inventoryGrid() RawGrid {
	return RawGrid{
		{"PEMERINTAH KOTA"},
		{"DAFTAR ASET TANAH"},
		{},
		{"No.", "Jenis Barang / Nama Barang", "Luas (m2)", "KECAMATAN", "Satuan Kerja", "Status Tanah", "CATATAN (TERMANFAATKAN/TERLANTAR)", "K3 (MILIK WARGA/ADA KLAIM, TKD, DLL)", "PEMETAAN ASET TANAH", "Nilai / Harga", "Kode Aset", "Tahun"},
		{"1", "Tanah Kantor Kelurahan", "6153:00:00", "Laweyan", "Kelurahan Laweyan", "Hak Pakai", "TERMANFAATKAN", "", "Sudah", "Rp 1.500.000", "A-001", "1987"},
		{"2", "  Tanah   Kas Desa ", " 250 ", "-", "", "", "TERLANTAR", "MILIK WARGA", "", "abc", "", "belum"},
		{"", "", "", "", "", "", "", "", "", "", "", ""},
		{"JUMLAH", "", "6403", "", "", "", "", "", "", "", "", ""},
		{"3", "", "100", "Banjarsari", "", "", "", "", "", "", "", ""},
		{"4", "Tanah Sawah", "abc", "Jebres", "", "", "", "", "", "", "", ""},
	}
}

func TestParse(t *testing.T) {
	records, report, err := Parse(inventoryGrid())
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Parse() emitted %d records, want 2: %+v", len(records), records)
	}

	first := records[0]
	if first.Name != "Tanah Kantor Kelurahan" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.Area != 6153 {
		t.Errorf("Area = %v, want 6153 (colon triplet reduced)", first.Area)
	}
	if first.District != "Laweyan" {
		t.Errorf("District = %q", first.District)
	}
	if first.Status != "Hak Pakai | TERMANFAATKAN | Sudah" {
		t.Errorf("Status = %q", first.Status)
	}
	if first.Value == nil || *first.Value != 1500000 {
		t.Errorf("Value = %v, want 1500000", first.Value)
	}
	if first.Year == nil || *first.Year != 1987 {
		t.Errorf("Year = %v, want 1987", first.Year)
	}
	if first.AssetCode != "A-001" {
		t.Errorf("AssetCode = %q", first.AssetCode)
	}

	second := records[1]
	if second.Name != "Tanah Kas Desa" {
		t.Errorf("Name = %q, want collapsed whitespace", second.Name)
	}
	if second.Area != 250 {
		t.Errorf("Area = %v, want 250", second.Area)
	}
	if second.District != "" {
		t.Errorf("District = %q, want empty for dash placeholder", second.District)
	}
	if second.Status != "TERLANTAR | MILIK WARGA" {
		t.Errorf("Status = %q", second.Status)
	}
	if second.Value != nil {
		t.Errorf("Value = %v, want nil for unparseable cell", *second.Value)
	}
	if second.Year != nil {
		t.Errorf("Year = %v, want nil for non-year cell", *second.Year)
	}

	wantReport := Report{
		TotalRows:       6,
		Imported:        2,
		SummaryRows:     1,
		BlankRows:       1,
		MissingName:     1,
		MissingRequired: 1,
	}
	if !reflect.DeepEqual(*report, wantReport) {
		t.Errorf("Report = %+v, want %+v", *report, wantReport)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	grid := inventoryGrid()

	first, firstReport, err := Parse(grid)
	if err != nil {
		t.Fatalf("first Parse() error: %v", err)
	}
	second, secondReport, err := Parse(grid)
	if err != nil {
		t.Fatalf("second Parse() error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("records differ across identical parses")
	}
	if !reflect.DeepEqual(firstReport, secondReport) {
		t.Errorf("reports differ across identical parses: %+v vs %+v", firstReport, secondReport)
	}
}

func TestParseColumnOrderIndependent(t *testing.T) {
	original := RawGrid{
		{"Nama Barang", "Luas (m2)", "KECAMATAN"},
		{"Tanah Kantor", "250", "Laweyan"},
	}
	reordered := RawGrid{
		{"KECAMATAN", "Nama Barang", "Luas (m2)"},
		{"Laweyan", "Tanah Kantor", "250"},
	}

	a, _, err := Parse(original)
	if err != nil {
		t.Fatalf("Parse(original) error: %v", err)
	}
	b, _, err := Parse(reordered)
	if err != nil {
		t.Fatalf("Parse(reordered) error: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("reordering header columns changed output:\n%+v\nvs\n%+v", a, b)
	}
}

func TestParseHeaderNotFound(t *testing.T) {
	grid := RawGrid{
		{"Kolom A", "Kolom B"},
		{"1", "2"},
	}

	records, report, err := Parse(grid)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("Parse() error = %v, want ErrHeaderNotFound", err)
	}
	if records != nil || report != nil {
		t.Errorf("Parse() must produce no partial output on fatal error")
	}
}

func TestParseDuplicateColumnsReported(t *testing.T) {
	grid := RawGrid{
		{"Nama Barang", "Luas", "Luas (m2)"},
		{"Tanah Kantor", "250", "999"},
	}

	records, report, err := Parse(grid)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(report.DuplicateColumns) != 1 {
		t.Fatalf("DuplicateColumns = %v, want one entry", report.DuplicateColumns)
	}
	if len(records) != 1 || records[0].Area != 250 {
		t.Errorf("first-wins mapping violated: %+v", records)
	}
}
