package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/asetfilter/asetfilter/internal/config"
	"github.com/asetfilter/asetfilter/internal/parser"
	"github.com/asetfilter/asetfilter/internal/store"
)

// stubStore records calls and returns canned data so handler behavior can be
// tested without a database.
type stubStore struct {
	replaced    []parser.Record
	uploads     []store.Upload
	lastFilter  store.Filter
	assets      []store.Asset
	total       int64
	options     store.Options
	replaceErr  error
	listErr     error
	exportErr   error
	optionsErr  error
	historyErr  error
	historyRows []store.Upload
	resetCalled bool
}

func (s *stubStore) ReplaceDataset(_ context.Context, _ uuid.UUID, records []parser.Record) (int64, error) {
	if s.replaceErr != nil {
		return 0, s.replaceErr
	}
	s.replaced = records
	return int64(len(records)), nil
}

func (s *stubStore) RecordUpload(_ context.Context, u store.Upload) error {
	s.uploads = append(s.uploads, u)
	return nil
}

func (s *stubStore) ListUploads(_ context.Context, limit int) ([]store.Upload, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	if len(s.historyRows) > limit {
		return s.historyRows[:limit], nil
	}
	return s.historyRows, nil
}

func (s *stubStore) ListAssets(_ context.Context, f store.Filter, page, pageSize int) ([]store.Asset, int64, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	s.lastFilter = f
	return s.assets, s.total, nil
}

func (s *stubStore) ExportAssets(_ context.Context, f store.Filter) ([]store.Asset, error) {
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	s.lastFilter = f
	return s.assets, nil
}

func (s *stubStore) FilterOptions(_ context.Context) (store.Options, error) {
	if s.optionsErr != nil {
		return store.Options{}, s.optionsErr
	}
	return s.options, nil
}

func (s *stubStore) Reset(_ context.Context) error {
	s.resetCalled = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 30 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize:  10 << 20,
			Timeout:      time.Minute,
			HistoryLimit: 50,
		},
	}
}

func newTestServer(db Datastore, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = testConfig()
	}
	return NewServer(db, cfg)
}

// multipartFile builds a multipart request body with a single "file" part.
func multipartFile(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

const inventoryCSV = `DAFTAR ASET TANAH,,,
Jenis Barang,KECAMATAN,Luas (m2),Status Tanah
Tanah Kantor,Ngawi,1500,Hak Pakai
Tanah Sawah,Paron,6153:00:00,Milik Pemda
,Kedunggalar,300,
Tanah Tegalan,Ngawi,abc,
JUMLAH,,7653,
`

func TestHandleUpload(t *testing.T) {
	db := &stubStore{}
	srv := newTestServer(db, nil)

	body, contentType := multipartFile(t, "aset.csv", []byte(inventoryCSV))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Imported != 2 {
		t.Errorf("Imported = %d, want 2", resp.Imported)
	}
	if resp.SummaryRows != 1 {
		t.Errorf("SummaryRows = %d, want 1", resp.SummaryRows)
	}
	if resp.MissingName != 1 {
		t.Errorf("MissingName = %d, want 1", resp.MissingName)
	}
	// Rejected spans both the nameless row and the unparseable-area row.
	if resp.Rejected != 2 {
		t.Errorf("Rejected = %d, want 2", resp.Rejected)
	}
	if resp.DatasetID == "" {
		t.Error("DatasetID is empty")
	}

	if len(db.replaced) != 2 {
		t.Fatalf("stored %d records, want 2", len(db.replaced))
	}
	if db.replaced[1].Area != 6153 {
		t.Errorf("second record area = %v, want 6153 (colon suffix stripped)", db.replaced[1].Area)
	}

	if len(db.uploads) != 1 {
		t.Fatalf("recorded %d history entries, want 1", len(db.uploads))
	}
	if db.uploads[0].Status != store.UploadSucceeded {
		t.Errorf("history status = %q, want %q", db.uploads[0].Status, store.UploadSucceeded)
	}
	if db.uploads[0].Rejected != resp.Rejected {
		t.Errorf("history Rejected = %d, response rejected = %d; counts must agree", db.uploads[0].Rejected, resp.Rejected)
	}
}

func TestHandleUploadHeaderNotFound(t *testing.T) {
	db := &stubStore{}
	srv := newTestServer(db, nil)

	// No row contains a name header label within the scan window.
	body, contentType := multipartFile(t, "noise.csv", []byte("a,b,c\n1,2,3\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "HEADER_NOT_FOUND" {
		t.Errorf("error code = %q, want HEADER_NOT_FOUND", resp.Code)
	}

	// A rejected file still leaves a history trail.
	if len(db.uploads) != 1 || db.uploads[0].Status != store.UploadFailed {
		t.Errorf("expected one failed history entry, got %+v", db.uploads)
	}
}

func TestHandleUploadMissingFile(t *testing.T) {
	srv := newTestServer(&stubStore{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleUploadRequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{
		RequireAPIKey: true,
		APIKeys:       []string{"secret-key"},
	}
	srv := newTestServer(&stubStore{}, cfg)

	body, contentType := multipartFile(t, "aset.csv", []byte(inventoryCSV))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	body, contentType = multipartFile(t, "aset.csv", []byte(inventoryCSV))
	req = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", "secret-key")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with key: status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestHandleListAssets(t *testing.T) {
	value := 250000.0
	db := &stubStore{
		assets: []store.Asset{
			{ID: 1, Record: parser.Record{Name: "Tanah Kantor", District: "Ngawi", Area: 1500, Value: &value}},
		},
		total: 41,
	}
	srv := newTestServer(db, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/assets?name=tanah&district=Ngawi&min_area=100&max_area=2000&status=TKD&status=TERLANTAR&page=2&page_size=10", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	f := db.lastFilter
	if f.NameContains != "tanah" || f.District != "Ngawi" {
		t.Errorf("filter text fields = %+v", f)
	}
	if f.MinArea == nil || *f.MinArea != 100 {
		t.Errorf("MinArea = %v, want 100", f.MinArea)
	}
	if f.MaxArea == nil || *f.MaxArea != 2000 {
		t.Errorf("MaxArea = %v, want 2000", f.MaxArea)
	}
	if len(f.Statuses) != 2 {
		t.Errorf("Statuses = %v, want two entries", f.Statuses)
	}

	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 41 || resp.Page != 2 || resp.PageSize != 10 {
		t.Errorf("pagination = {Total: %d, Page: %d, PageSize: %d}, want {41, 2, 10}", resp.Total, resp.Page, resp.PageSize)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].Name != "Tanah Kantor" {
		t.Errorf("rows = %+v", resp.Rows)
	}
}

func TestHandleListAssetsDefaultsPagination(t *testing.T) {
	db := &stubStore{}
	srv := newTestServer(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/assets?page=0&page_size=junk", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("pagination defaults = {Page: %d, PageSize: %d}, want {1, 20}", resp.Page, resp.PageSize)
	}
}

func TestHandleExportCSV(t *testing.T) {
	db := &stubStore{
		assets: []store.Asset{
			{ID: 1, Record: parser.Record{Name: "Tanah Kantor", District: "Ngawi", Area: 1500}},
		},
	}
	srv := newTestServer(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/export?format=csv", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "aset.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Tanah Kantor") {
		t.Errorf("body missing exported record: %s", rec.Body.String())
	}
}

func TestHandleExportUnknownFormat(t *testing.T) {
	srv := newTestServer(&stubStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/export?format=pdf", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleFilterOptions(t *testing.T) {
	db := &stubStore{
		options: store.Options{
			Districts: []string{"Ngawi", "Paron"},
			Statuses:  []string{"Hak Pakai", "TKD"},
		},
	}
	srv := newTestServer(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/assets/filters", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var opts store.Options
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(opts.Districts) != 2 || opts.Districts[0] != "Ngawi" {
		t.Errorf("districts = %v", opts.Districts)
	}
}

func TestHandleHistory(t *testing.T) {
	db := &stubStore{
		historyRows: []store.Upload{
			{ID: uuid.New(), Filename: "aset.csv", Status: store.UploadSucceeded, Imported: 40},
		},
	}
	srv := newTestServer(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var uploads []store.Upload
	if err := json.Unmarshal(rec.Body.Bytes(), &uploads); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(uploads) != 1 || uploads[0].Filename != "aset.csv" {
		t.Errorf("uploads = %+v", uploads)
	}
}

func TestHandleReset(t *testing.T) {
	db := &stubStore{}
	srv := newTestServer(db, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/assets", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !db.resetCalled {
		t.Error("Reset was not called")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
