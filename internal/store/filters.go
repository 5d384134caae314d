package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/asetfilter/asetfilter/internal/parser"
)

// Filter holds the query dimensions exposed to callers. Zero values mean
// "no constraint"; all set constraints combine with AND. Status keywords
// combine with OR inside their clause, since an asset matches a status
// filter if its consolidated annotation carries any selected keyword.
type Filter struct {
	NameContains string
	District     string
	WorkUnit     string
	MinArea      *float64
	MaxArea      *float64
	Statuses     []string
}

// where builds the SQL condition and positional args for the filter.
// Always returns a usable clause ("TRUE" when unconstrained).
func (f Filter) where() (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.NameContains != "" {
		conds = append(conds, "name ILIKE "+arg("%"+f.NameContains+"%"))
	}
	if f.District != "" {
		conds = append(conds, "district = "+arg(f.District))
	}
	if f.WorkUnit != "" {
		conds = append(conds, "work_unit = "+arg(f.WorkUnit))
	}
	if f.MinArea != nil {
		conds = append(conds, "area >= "+arg(*f.MinArea))
	}
	if f.MaxArea != nil {
		conds = append(conds, "area <= "+arg(*f.MaxArea))
	}

	if len(f.Statuses) > 0 {
		var ors []string
		for _, kw := range f.Statuses {
			if kw = strings.TrimSpace(kw); kw != "" {
				ors = append(ors, "status ILIKE "+arg("%"+kw+"%"))
			}
		}
		if len(ors) > 0 {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}

	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}

// ListAssets returns one page of filtered assets in insertion order plus
// the total count of matches.
func (s *Store) ListAssets(ctx context.Context, f Filter, page, pageSize int) ([]Asset, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	cond, args := f.where()

	var total int64
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM assets WHERE "+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, %s FROM assets WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		strings.Join(assetColumns, ", "), cond, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}

	assets, err := scanAssets(rows)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// ExportAssets returns all filtered assets in insertion order, unpaginated,
// for re-serialization to CSV or XLSX.
func (s *Store) ExportAssets(ctx context.Context, f Filter) ([]Asset, error) {
	cond, args := f.where()

	query := fmt.Sprintf(
		`SELECT id, %s FROM assets WHERE %s ORDER BY id`,
		strings.Join(assetColumns, ", "), cond,
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("export assets: %w", err)
	}
	return scanAssets(rows)
}

// Options are the distinct values available for the filter form.
type Options struct {
	Districts []string `json:"districts"`
	WorkUnits []string `json:"workUnits"`
	Statuses  []string `json:"statuses"`
	MinArea   float64  `json:"minArea"`
	MaxArea   float64  `json:"maxArea"`
}

// FilterOptions derives the filterable dimensions from the stored dataset:
// distinct districts and work units, the status keywords split out of the
// consolidated annotations, and the area range.
func (s *Store) FilterOptions(ctx context.Context) (Options, error) {
	var opts Options

	var err error
	if opts.Districts, err = s.distinctColumn(ctx, "district"); err != nil {
		return opts, err
	}
	if opts.WorkUnits, err = s.distinctColumn(ctx, "work_unit"); err != nil {
		return opts, err
	}

	statuses, err := s.distinctColumn(ctx, "status")
	if err != nil {
		return opts, err
	}
	opts.Statuses = statusKeywords(statuses)

	err = s.pool.QueryRow(ctx,
		`SELECT coalesce(min(area), 0), coalesce(max(area), 0) FROM assets`,
	).Scan(&opts.MinArea, &opts.MaxArea)
	if err != nil {
		return opts, fmt.Errorf("area range: %w", err)
	}

	return opts, nil
}

func (s *Store) distinctColumn(ctx context.Context, column string) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT DISTINCT %s FROM assets WHERE %s <> '' ORDER BY %s`, column, column, column,
	))
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// statusKeywords splits consolidated annotations into individual keywords,
// deduplicated case-insensitively (first casing wins) and sorted.
func statusKeywords(statuses []string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, status := range statuses {
		for _, kw := range parser.SplitStatus(status) {
			key := strings.ToLower(kw)
			if seen[key] {
				continue
			}
			seen[key] = true
			keywords = append(keywords, kw)
		}
	}
	sort.Strings(keywords)
	return keywords
}
