package parser

import "strings"

// Discard reasons recorded in the Report.
const (
	reasonBlank       = "blank row"
	reasonMissingName = "missing name"
)

// classifyRow decides what one row below the header is. The priority order
// is a deliberate tie-break and must not be reordered:
//
//  1. Discard when blank across all mapped columns;
//  2. Summary when any cell of the row matches a summary keyword.
//     Subtotal rows often carry the keyword in an unmapped column
//     (typically the row-number column), so the whole row is scanned;
//  3. Discard when the name cell is empty (no stable identity);
//  4. Data otherwise.
func classifyRow(row []string, hm HeaderMap) RowOutcome {
	blank := true
	for idx := range hm {
		if strings.TrimSpace(cellAt(row, idx)) != "" {
			blank = false
			break
		}
	}
	if blank {
		return RowOutcome{Class: RowDiscard, Reason: reasonBlank}
	}

	for _, cell := range row {
		if isSummaryCell(cell) {
			return RowOutcome{Class: RowSummary}
		}
	}

	for idx, field := range hm {
		if field == FieldName {
			if strings.TrimSpace(cellAt(row, idx)) == "" {
				return RowOutcome{Class: RowDiscard, Reason: reasonMissingName}
			}
			break
		}
	}

	return RowOutcome{Class: RowData}
}

// isSummaryCell reports whether a cell marks a subtotal/total row.
// Comparison is against the uppercased, whitespace-normalized cell so
// "  Jumlah " and "SUB TOTAL TANAH" both match.
func isSummaryCell(cell string) bool {
	v := strings.ToUpper(strings.Join(strings.Fields(cell), " "))
	if v == "" {
		return false
	}
	for _, kw := range summaryKeywords {
		if strings.Contains(v, kw) {
			return true
		}
	}
	return false
}

// cellAt returns the cell at idx, tolerating ragged rows shorter than the
// header row.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
