// Package parser normalizes irregularly structured asset inventory
// spreadsheets into typed records. The input is a raw grid of cell values;
// the output is a sequence of cleaned records plus a report of everything
// that was skipped and why.
//
// Spreadsheets arrive from manual processes: the header row sits at an
// unpredictable offset, subtotal rows are interleaved with data, column
// labels vary between files, and numeric fields sometimes carry export
// artifacts (e.g. "6153:00:00" for an area of 6153 m2). The pipeline is
// pure and performs no I/O; decoding files into a grid and persisting
// records are the caller's concern.
package parser

// RawGrid is a spreadsheet decoded into rows of cell values.
// Indices are zero-based. The grid is borrowed for the duration of one
// parse and never mutated.
type RawGrid [][]string

// Field identifies a canonical output field. All recognized input columns
// map onto this closed set.
type Field string

const (
	FieldName       Field = "name"
	FieldDistrict   Field = "district"
	FieldArea       Field = "area"
	FieldWorkUnit   Field = "work_unit"
	FieldLandStatus Field = "land_status"
	FieldNote       Field = "note"       // CATATAN column, feeds status consolidation
	FieldClaim      Field = "claim"      // K3 column, feeds status consolidation
	FieldMapStatus  Field = "map_status" // PEMETAAN ASET TANAH
	FieldValue      Field = "value"      // Nilai / Harga
	FieldAssetCode  Field = "asset_code"
	FieldYear       Field = "year"
)

// HeaderMap maps a column index in the source grid to its canonical field.
// It is built once per grid after the header row is located and never
// re-derived mid-parse.
type HeaderMap map[int]Field

// RowClass is the outcome of classifying one row below the header.
type RowClass int

const (
	// RowData is a usable data row.
	RowData RowClass = iota
	// RowSummary is a subtotal/total row, excluded from output but counted.
	RowSummary
	// RowDiscard is a blank or unusable row.
	RowDiscard
)

// RowOutcome is the tagged result of classifying one row.
type RowOutcome struct {
	Class  RowClass
	Reason string // set for RowDiscard
}

// Record is one cleaned asset. Name and Area are guaranteed present;
// every other field may be empty or nil.
type Record struct {
	Name       string
	District   string
	Area       float64 // square meters
	WorkUnit   string
	LandStatus string
	Status     string // consolidated status annotation, see Consolidate
	MapStatus  string
	Value      *float64 // monetary value, nil when absent or unparseable
	AssetCode  string
	Year       *int // nil when absent or implausible
}

// Report accumulates counts for one parse invocation. Rows below the
// header are classified exactly once, so the counters partition them:
// Imported + SummaryRows + BlankRows + MissingName + MissingRequired
// equals TotalRows.
type Report struct {
	TotalRows       int // rows below the header row
	Imported        int
	SummaryRows     int
	BlankRows       int
	MissingName     int // discarded: no stable identity without a name
	MissingRequired int // rejected by the assembler: area missing or invalid

	// DuplicateColumns lists header labels that mapped to an already
	// claimed field. The first match wins; these were ignored.
	DuplicateColumns []string
}
