package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/asetfilter/asetfilter/internal/export"
	"github.com/asetfilter/asetfilter/internal/grid"
	"github.com/asetfilter/asetfilter/internal/logging"
	"github.com/asetfilter/asetfilter/internal/parser"
	"github.com/asetfilter/asetfilter/internal/store"
)

// handleHealth responds to liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadResponse reports what one upload did. Per-row problems do not fail
// an upload; they are counted so the caller can present
// "N imported, M summaries skipped, K rejected". Rejected counts every row
// dropped for missing data (no name or no usable area); MissingName is the
// subset of those that lacked a name. History rows record the same
// Rejected total.
type uploadResponse struct {
	DatasetID        string   `json:"datasetId"`
	Imported         int      `json:"imported"`
	SummaryRows      int      `json:"summaryRows"`
	BlankRows        int      `json:"blankRows"`
	MissingName      int      `json:"missingName"`
	Rejected         int      `json:"rejected"`
	DuplicateColumns []string `json:"duplicateColumns,omitempty"`
}

// handleUpload ingests one spreadsheet: decode to a grid, normalize, and
// replace the stored dataset atomically. Only the two structural parse
// failures reject the file; everything else is absorbed into the counts.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		s.respondError(w, r, fmt.Errorf("parse multipart form: %w", err), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}

	logger := logging.WithFields(ctx, "file", header.Filename, "bytes", len(data))
	logger.Info("upload received")

	g, err := grid.Read(data, header.Filename)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	records, report, err := parser.Parse(g)
	if err != nil {
		s.recordFailure(ctx, header.Filename, err)
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	datasetID := uuid.New()
	if _, err := s.db.ReplaceDataset(ctx, datasetID, records); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if err := s.db.RecordUpload(ctx, store.Upload{
		ID:          uuid.New(),
		Filename:    header.Filename,
		UploadedAt:  time.Now().UTC(),
		Imported:    report.Imported,
		SummaryRows: report.SummaryRows,
		Rejected:    report.MissingName + report.MissingRequired,
		Status:      store.UploadSucceeded,
	}); err != nil {
		// The dataset is already in place; a history miss is not worth a 500.
		logger.Warn("record upload history", "error", err)
	}

	logger.Info("upload processed",
		"dataset_id", datasetID,
		"imported", report.Imported,
		"summary_rows", report.SummaryRows,
		"blank_rows", report.BlankRows,
		"rejected", report.MissingName+report.MissingRequired,
	)

	respondJSON(w, http.StatusOK, uploadResponse{
		DatasetID:        datasetID.String(),
		Imported:         report.Imported,
		SummaryRows:      report.SummaryRows,
		BlankRows:        report.BlankRows,
		MissingName:      report.MissingName,
		Rejected:         report.MissingName + report.MissingRequired,
		DuplicateColumns: report.DuplicateColumns,
	})
}

// recordFailure stores a history entry for a file rejected outright.
func (s *Server) recordFailure(ctx context.Context, filename string, parseErr error) {
	if err := s.db.RecordUpload(ctx, store.Upload{
		ID:         uuid.New(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Status:     store.UploadFailed,
		Error:      parseErr.Error(),
	}); err != nil {
		logging.FromContext(ctx).Warn("record failed upload", "error", err)
	}
}

// assetJSON is the wire shape of one asset.
type assetJSON struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	District   string   `json:"district"`
	Area       float64  `json:"area"`
	WorkUnit   string   `json:"workUnit"`
	LandStatus string   `json:"landStatus"`
	Status     string   `json:"status"`
	MapStatus  string   `json:"mapStatus"`
	Value      *float64 `json:"value"`
	AssetCode  string   `json:"assetCode"`
	Year       *int     `json:"year"`
}

func toAssetJSON(a store.Asset) assetJSON {
	return assetJSON{
		ID:         a.ID,
		Name:       a.Name,
		District:   a.District,
		Area:       a.Area,
		WorkUnit:   a.WorkUnit,
		LandStatus: a.LandStatus,
		Status:     a.Status,
		MapStatus:  a.MapStatus,
		Value:      a.Value,
		AssetCode:  a.AssetCode,
		Year:       a.Year,
	}
}

type listResponse struct {
	Rows     []assetJSON `json:"rows"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// handleListAssets returns one page of filtered assets.
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	page := intQuery(r, "page", 1)
	pageSize := intQuery(r, "page_size", 20)

	assets, total, err := s.db.ListAssets(r.Context(), f, page, pageSize)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	rows := make([]assetJSON, len(assets))
	for i, a := range assets {
		rows[i] = toAssetJSON(a)
	}

	respondJSON(w, http.StatusOK, listResponse{
		Rows:     rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// handleFilterOptions returns the distinct filterable values of the stored
// dataset.
func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.db.FilterOptions(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, opts)
}

// handleExport streams the filtered records as CSV or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)

	assets, err := s.db.ExportAssets(r.Context(), f)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="aset.csv"`)
		if err := export.CSV(w, assets); err != nil {
			logging.FromContext(r.Context()).Error("export csv", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="aset.xlsx"`)
		if err := export.XLSX(w, assets); err != nil {
			logging.FromContext(r.Context()).Error("export xlsx", "error", err)
		}
	default:
		s.respondError(w, r, fmt.Errorf("unknown export format %q", format), http.StatusBadRequest)
	}
}

// handleReset wipes the stored dataset and upload history.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Reset(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	logging.FromContext(r.Context()).Info("dataset reset")
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleHistory returns the most recent upload history entries.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.db.ListUploads(r.Context(), s.cfg.Upload.HistoryLimit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, uploads)
}

// filterFromQuery maps query parameters onto a store.Filter.
// Absent or malformed numeric bounds mean "no constraint".
func filterFromQuery(r *http.Request) store.Filter {
	q := r.URL.Query()

	f := store.Filter{
		NameContains: q.Get("name"),
		District:     q.Get("district"),
		WorkUnit:     q.Get("work_unit"),
		Statuses:     q["status"],
	}
	if v, err := strconv.ParseFloat(q.Get("min_area"), 64); err == nil {
		f.MinArea = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_area"), 64); err == nil {
		f.MaxArea = &v
	}
	return f
}

func intQuery(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already written; nothing left to do but log.
		slog.Error("encode response", "error", err)
	}
}
