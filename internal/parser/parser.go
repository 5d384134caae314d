package parser

// Parse runs the full normalization pipeline over one grid:
// locate the header, map columns, then classify, clean and assemble each
// row below the header. Row- and field-level problems are absorbed into
// the Report; only ErrHeaderNotFound and ErrNameColumnMissing abort the
// parse, in which case no partial output is produced.
//
// Parse is pure and holds no state between calls, so independent grids may
// be parsed concurrently. Parsing the same grid twice yields identical
// records and an identical report.
func Parse(grid RawGrid) ([]Record, *Report, error) {
	headerIdx, err := locateHeader(grid)
	if err != nil {
		return nil, nil, err
	}

	hm, duplicates, err := mapColumns(grid[headerIdx])
	if err != nil {
		return nil, nil, err
	}

	report := &Report{DuplicateColumns: duplicates}
	var records []Record

	for _, row := range grid[headerIdx+1:] {
		report.TotalRows++

		switch outcome := classifyRow(row, hm); {
		case outcome.Class == RowSummary:
			report.SummaryRows++
			continue
		case outcome.Class == RowDiscard && outcome.Reason == reasonBlank:
			report.BlankRows++
			continue
		case outcome.Class == RowDiscard:
			report.MissingName++
			continue
		}

		rec, ok := assemble(row, hm)
		if !ok {
			report.MissingRequired++
			continue
		}

		records = append(records, rec)
		report.Imported++
	}

	return records, report, nil
}

// assemble cleans each mapped cell and emits a Record. A record requires a
// non-empty name (guaranteed by classification) and a non-negative area;
// anything else may be empty or nil.
func assemble(row []string, hm HeaderMap) (Record, bool) {
	raw := make(map[Field]string, len(hm))
	for idx, field := range hm {
		raw[field] = cellAt(row, idx)
	}

	area := cleanArea(raw[FieldArea])
	if area == nil {
		return Record{}, false
	}

	name := cleanText(raw[FieldName])
	if name == "" {
		return Record{}, false
	}

	landStatus := cleanText(raw[FieldLandStatus])
	mapStatus := cleanText(raw[FieldMapStatus])

	return Record{
		Name:       name,
		District:   cleanDistrict(raw[FieldDistrict]),
		Area:       *area,
		WorkUnit:   cleanText(raw[FieldWorkUnit]),
		LandStatus: landStatus,
		Status:     Consolidate(landStatus, raw[FieldNote], raw[FieldClaim], mapStatus),
		MapStatus:  mapStatus,
		Value:      cleanValue(raw[FieldValue]),
		AssetCode:  cleanText(raw[FieldAssetCode]),
		Year:       cleanYear(raw[FieldYear]),
	}, true
}
