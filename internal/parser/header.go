package parser

import "strings"

// MaxHeaderScanRows bounds the header search so an unrecognized layout
// fails fast instead of scanning an entire huge file.
var MaxHeaderScanRows = 20

// locateHeader scans rows from the top and returns the index of the first
// row whose cells contain a recognized name-field label. Pure scan, no
// side effects.
func locateHeader(grid RawGrid) (int, error) {
	maxRows := MaxHeaderScanRows
	if len(grid) < maxRows {
		maxRows = len(grid)
	}

	for i := 0; i < maxRows; i++ {
		for _, cell := range grid[i] {
			label := normalizeLabel(cell)
			if label == "" {
				continue
			}
			for _, want := range nameHeaderLabels {
				if strings.Contains(label, want) {
					return i, nil
				}
			}
		}
	}

	return -1, ErrHeaderNotFound
}

// mapColumns builds the HeaderMap from the header row's cells. Columns
// matching no alias are ignored. When several columns map to the same
// field the first wins; later labels are returned for the report.
func mapColumns(headerRow []string) (HeaderMap, []string, error) {
	hm := make(HeaderMap, len(headerRow))
	claimed := make(map[Field]bool, len(headerRow))
	var duplicates []string

	for idx, cell := range headerRow {
		field, ok := matchAlias(cell)
		if !ok {
			continue
		}
		if claimed[field] {
			duplicates = append(duplicates, strings.TrimSpace(cell))
			continue
		}
		hm[idx] = field
		claimed[field] = true
	}

	if !claimed[FieldName] {
		return nil, nil, ErrNameColumnMissing
	}

	return hm, duplicates, nil
}
