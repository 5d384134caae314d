// Package store persists normalized asset records in PostgreSQL.
// It owns dataset lifecycle: each upload becomes a new dataset that
// replaces the previous one, identified explicitly by a dataset ID rather
// than implicit "current data" state.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asetfilter/asetfilter/internal/parser"
)

// Asset is a persisted record: a parser.Record plus storage identity.
type Asset struct {
	ID        int64
	DatasetID uuid.UUID
	parser.Record
}

// Store provides access to the asset tables.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	dataset_id  UUID NOT NULL,
	name        TEXT NOT NULL,
	district    TEXT NOT NULL DEFAULT '',
	area        DOUBLE PRECISION NOT NULL,
	work_unit   TEXT NOT NULL DEFAULT '',
	land_status TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	map_status  TEXT NOT NULL DEFAULT '',
	value       DOUBLE PRECISION,
	asset_code  TEXT NOT NULL DEFAULT '',
	year        INTEGER
);
CREATE INDEX IF NOT EXISTS assets_dataset_idx ON assets (dataset_id);
CREATE INDEX IF NOT EXISTS assets_district_idx ON assets (district);

CREATE TABLE IF NOT EXISTS upload_history (
	id           UUID PRIMARY KEY,
	filename     TEXT NOT NULL,
	uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	imported     INTEGER NOT NULL DEFAULT 0,
	summary_rows INTEGER NOT NULL DEFAULT 0,
	rejected     INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);
`

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// assetColumns is the column order used by inserts and selects.
var assetColumns = []string{
	"dataset_id", "name", "district", "area", "work_unit",
	"land_status", "status", "map_status", "value", "asset_code", "year",
}

// ReplaceDataset inserts records under datasetID and removes every other
// dataset, atomically. Uploading a new inventory replaces the previous one;
// partial replacements are never visible to readers.
func (s *Store) ReplaceDataset(ctx context.Context, datasetID uuid.UUID, records []parser.Record) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"assets"},
		assetColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				datasetID, r.Name, r.District, r.Area, r.WorkUnit,
				r.LandStatus, r.Status, r.MapStatus, r.Value, r.AssetCode, r.Year,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy assets: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM assets WHERE dataset_id <> $1`, datasetID); err != nil {
		return 0, fmt.Errorf("drop previous datasets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Reset truncates the asset and history tables. Destructive; exposed only
// through the authenticated admin endpoint.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE assets, upload_history`); err != nil {
		return fmt.Errorf("reset tables: %w", err)
	}
	return nil
}

// scanAssets reads asset rows in assetColumns order (prefixed by id).
func scanAssets(rows pgx.Rows) ([]Asset, error) {
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(
			&a.ID, &a.DatasetID, &a.Name, &a.District, &a.Area, &a.WorkUnit,
			&a.LandStatus, &a.Status, &a.MapStatus, &a.Value, &a.AssetCode, &a.Year,
		); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
