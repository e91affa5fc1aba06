package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/infrastructure/config"
	"flight-ingest-service/internal/infrastructure/router"
	"flight-ingest-service/internal/interface/api"
	"flight-ingest-service/internal/interface/inmem"
	"flight-ingest-service/internal/interface/spreadsheet"
	"flight-ingest-service/internal/usecase"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"
)

const prefix = "/api/v1/data-processing"

func newTestServer(t *testing.T) (*gin.Engine, *inmem.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNopLogger()
	cfg := config.DefaultIngestionConfig()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	store := inmem.NewStore()

	sources, err := router.NewSourceRouterFromConfig(cfg, log)
	if err != nil {
		t.Fatalf("NewSourceRouterFromConfig: %v", err)
	}
	opener := spreadsheet.NewExcelOpener()
	writer := spreadsheet.NewExcelWriter()

	ingest := usecase.NewIngestProcessor(store, sources, opener,
		usecase.NewSheetNormalizer(cfg, log), cfg.SpreadsheetExtensions, m, log)
	cleaning := usecase.NewCleaningOrchestrator(inmem.NewRuleEngine(store), store, 0, m, log)
	missing := usecase.NewMissingDimensionService(store, opener, writer, log)
	export := usecase.NewFlightExportService(store, store, writer, cfg.HomeCountry, log)
	processing := usecase.NewDataProcessingService(ingest, cleaning, missing, store, store, log)

	engine := gin.New()
	api.NewHandler(processing, missing, export, 1<<20, "test", log).RegisterRoutes(engine, prefix)
	return engine, store
}

func movementWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "TSN"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	rows := [][]interface{}{
		{"FlightDate", "FlightNo", "Route", "ACType", "Seat", "ADL", "CHD", "CGO", "Mail", "TotalPax"},
		{"2024-03-05", "VN1", "SGN-HAN", "A321", 180, 100, 2, 0, 0, 0},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := row
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(content)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return body, w.FormDataContentType()
}

func do(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestUploadFilesIngestsAndSkipsRepeat(t *testing.T) {
	engine, store := newTestServer(t)
	store.UpsertActypeSeat(entity.ActypeSeat{Actype: "A321", Seat: 180})
	store.UpsertRoute(entity.Route{Route: "SGN-HAN"})
	content := movementWorkbook(t)

	body, ct := multipartBody(t, "files", map[string][]byte{"toan cang 03.xlsx": content})
	req := httptest.NewRequest(http.MethodPost, prefix+"/upload-files", body)
	req.Header.Set("Content-Type", ct)
	rec := do(engine, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var first entity.UploadResult
	decode(t, rec, &first)
	if !first.Success || first.ProcessedFiles != 1 || first.TotalRows != 1 {
		t.Fatalf("first upload = %+v", first)
	}
	if first.ProcessingSummary == nil || first.ProcessingSummary.ImportedFiles != 1 {
		t.Fatalf("summary = %+v", first.ProcessingSummary)
	}

	body, ct = multipartBody(t, "files", map[string][]byte{"toan cang 03.xlsx": content})
	req = httptest.NewRequest(http.MethodPost, prefix+"/upload-files", body)
	req.Header.Set("Content-Type", ct)
	rec = do(engine, req)

	var second entity.UploadResult
	decode(t, rec, &second)
	if second.ProcessedFiles != 0 || second.SkippedFiles != 1 {
		t.Fatalf("second upload = %+v", second)
	}
	if got := len(store.RawMovements()); got != 1 {
		t.Fatalf("raw rows = %d, want 1", got)
	}
}

func TestUploadFilesRequiresFiles(t *testing.T) {
	engine, _ := newTestServer(t)
	body, ct := multipartBody(t, "other", map[string][]byte{"a.xlsx": []byte("x")})
	req := httptest.NewRequest(http.MethodPost, prefix+"/upload-files", body)
	req.Header.Set("Content-Type", ct)
	rec := do(engine, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadFilesRejectsOversizedBody(t *testing.T) {
	engine, _ := newTestServer(t)
	body, ct := multipartBody(t, "files", map[string][]byte{"big.xlsx": bytes.Repeat([]byte("a"), 2<<20)})
	req := httptest.NewRequest(http.MethodPost, prefix+"/upload-files", body)
	req.Header.Set("Content-Type", ct)
	rec := do(engine, req)
	if rec.Code != http.StatusRequestEntityTooLarge && rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 413 or 400", rec.Code)
	}
}

func TestExportFlightDataValidation(t *testing.T) {
	engine, _ := newTestServer(t)

	cases := []struct {
		name  string
		query string
		field string
	}{
		{"missing start", "?end_date=2024-03-05", "start_date"},
		{"malformed end", "?start_date=2024-03-05&end_date=05/03/2024", "end_date"},
		{"inverted", "?start_date=2024-03-06&end_date=2024-03-05", "start_date"},
		{"bad format", "?start_date=2024-03-05&end_date=2024-03-05&format=csv", "format"},
	}

	for _, tc := range cases {
		rec := do(engine, httptest.NewRequest(http.MethodGet, prefix+"/export-flight-data"+tc.query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
			continue
		}
		var resp struct {
			Detail string           `json:"detail"`
			Errors []api.FieldError `json:"errors"`
		}
		decode(t, rec, &resp)
		if len(resp.Errors) == 0 || resp.Errors[0].Field != tc.field {
			t.Errorf("%s: errors = %+v, want field %s", tc.name, resp.Errors, tc.field)
		}
	}
}

func TestExportFlightDataNoData(t *testing.T) {
	engine, _ := newTestServer(t)
	for _, format := range []string{"json", "xlsx"} {
		rec := do(engine, httptest.NewRequest(http.MethodGet,
			prefix+"/export-flight-data?start_date=2024-03-01&end_date=2024-03-31&format="+format, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", format, rec.Code)
		}
		var resp struct {
			Count   int    `json:"count"`
			Message string `json:"message"`
		}
		decode(t, rec, &resp)
		if resp.Count != 0 || resp.Message == "" {
			t.Errorf("%s: response = %+v", format, resp)
		}
	}
}

func TestExportMissingDimensionsDownload(t *testing.T) {
	engine, _ := newTestServer(t)
	rec := do(engine, httptest.NewRequest(http.MethodPost, prefix+"/export-missing-dimensions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != spreadsheet.ContentType {
		t.Errorf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, entity.BackfillFileName) {
		t.Errorf("content disposition = %q", got)
	}

	wb, err := spreadsheet.NewExcelOpener().Open(entity.BackfillFileName, rec.Body.Bytes())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()
	if got := len(wb.SheetNames()); got != 3 {
		t.Errorf("sheets = %d, want 3", got)
	}
}

func TestListMissingDimensionsRejectsUnknownType(t *testing.T) {
	engine, _ := newTestServer(t)
	rec := do(engine, httptest.NewRequest(http.MethodGet, prefix+"/missing-dimensions?type=AIRPORT", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = do(engine, httptest.NewRequest(http.MethodGet, prefix+"/missing-dimensions?type=actype", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStagingRequiresWorkbook(t *testing.T) {
	engine, _ := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string][]byte{"Add_information.xlsx": []byte("not a workbook")})
	req := httptest.NewRequest(http.MethodPost, prefix+"/missing-dimensions/staging", body)
	req.Header.Set("Content-Type", ct)
	rec := do(engine, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRunsAndSummary(t *testing.T) {
	engine, _ := newTestServer(t)

	rec := do(engine, httptest.NewRequest(http.MethodPost, prefix+"/run-data-cleaning", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("run-data-cleaning status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = do(engine, httptest.NewRequest(http.MethodGet, prefix+"/processing-summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("processing-summary status = %d", rec.Code)
	}
	var summary entity.ProcessingSummary
	decode(t, rec, &summary)
	if summary.RawRecords != 0 {
		t.Errorf("summary = %+v", summary)
	}

	rec = do(engine, httptest.NewRequest(http.MethodGet, prefix+"/runs?limit=5", nil))
	var runs struct {
		Count int                     `json:"count"`
		Data  []*entity.ProcessingRun `json:"data"`
	}
	decode(t, rec, &runs)
	if runs.Count != 1 || runs.Data[0].Kind != entity.RunKindDataCleaning {
		t.Fatalf("runs = %+v", runs)
	}

	rec = do(engine, httptest.NewRequest(http.MethodGet, prefix+"/runs?limit=500", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=500 status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	engine, _ := newTestServer(t)
	rec := do(engine, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}
