package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/internal/interface/inmem"
	"flight-ingest-service/internal/usecase"
)

func cargoWorkbook(t *testing.T) []byte {
	return buildXLSX(t,
		sheet{name: "TSN", rows: [][]interface{}{
			movementHeader,
			{"2024-03-05", "VN9001", "SGN-HAN", "A321", 0, 0, 0, 500, 0, 0},
		}},
		sheet{name: "DAD", rows: [][]interface{}{
			movementHeader,
			{"2024-03-05", "", "", "", 0, 0, 0, 0, 0, 0},
		}},
	)
}

func TestIngestBatchCargoScenario(t *testing.T) {
	p := newPipeline(t, pipelineOptions{})
	ctx := context.Background()

	result, err := p.ingest.IngestBatch(ctx, []usecase.UploadedFile{
		{Name: "reports/Toan Cang 03.xlsx", Content: cargoWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}

	if result.ProcessedFiles != 1 || result.TotalRows != 1 || result.FilteredRows != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("errors = %v", result.Errors)
	}
	detail := result.FileDetails[0]
	if detail.FileName != "Toan Cang 03.xlsx" || detail.FileType != "MN" || detail.Rows != 1 {
		t.Errorf("detail = %+v", detail)
	}

	raw := p.store.RawMovements()
	if len(raw) != 1 {
		t.Fatalf("raw rows = %d, want 1", len(raw))
	}
	if raw[0].FlightNo != "VN9001" || raw[0].Cargo != 500 || raw[0].TotalPax != 0 {
		t.Errorf("raw row = %+v", raw[0])
	}
	if raw[0].Source != "Toan Cang 03.xlsx" {
		t.Errorf("source = %q, want base name", raw[0].Source)
	}
}

func TestIngestBatchKeepsRowsWithEitherIdentifier(t *testing.T) {
	cases := []struct {
		name     string
		row      []interface{}
		kept     bool
		flightNo string
		actype   string
	}{
		{"flight number only", []interface{}{"2024-03-05", "VN1", "SGN-HAN", "", 0, 0, 0, 10, 0, 0}, true, "VN1", ""},
		{"aircraft type only", []interface{}{"2024-03-05", "", "SGN-HAN", "A321", 0, 0, 0, 10, 0, 0}, true, "", "A321"},
		{"neither", []interface{}{"2024-03-05", "", "SGN-HAN", "", 0, 0, 0, 10, 0, 0}, false, "", ""},
	}

	rows := [][]interface{}{movementHeader}
	for _, tc := range cases {
		rows = append(rows, tc.row)
	}
	p := newPipeline(t, pipelineOptions{})
	result, err := p.ingest.IngestBatch(context.Background(), []usecase.UploadedFile{
		{Name: "toan cang 04.xlsx", Content: buildXLSX(t, sheet{name: "TSN", rows: rows})},
	})
	if err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}
	if result.TotalRows != 2 || result.FilteredRows != 1 {
		t.Fatalf("result = %+v, want 2 kept and 1 filtered", result)
	}

	raw := p.store.RawMovements()
	if len(raw) != 2 {
		t.Fatalf("raw rows = %d, want 2", len(raw))
	}
	i := 0
	for _, tc := range cases {
		if !tc.kept {
			continue
		}
		if raw[i].FlightNo != tc.flightNo || raw[i].Actype != tc.actype {
			t.Errorf("%s: raw row = %+v", tc.name, raw[i])
		}
		i++
	}
}

func TestIngestBatchSkipsImportedFiles(t *testing.T) {
	p := newPipeline(t, pipelineOptions{})
	ctx := context.Background()
	file := usecase.UploadedFile{Name: "toan cang.xlsx", Content: cargoWorkbook(t)}

	if _, err := p.ingest.IngestBatch(ctx, []usecase.UploadedFile{file}); err != nil {
		t.Fatalf("first IngestBatch: %v", err)
	}
	before := len(p.store.RawMovements())

	result, err := p.ingest.IngestBatch(ctx, []usecase.UploadedFile{file, file})
	if err != nil {
		t.Fatalf("second IngestBatch: %v", err)
	}
	if result.SkippedFiles != 2 || result.ProcessedFiles != 0 {
		t.Fatalf("result = %+v, want 2 skipped", result)
	}
	if got := len(p.store.RawMovements()); got != before {
		t.Fatalf("raw rows = %d, want %d", got, before)
	}
}

func TestIngestBatchSameFileTwiceInOneBatch(t *testing.T) {
	p := newPipeline(t, pipelineOptions{})
	file := usecase.UploadedFile{Name: "toan cang.xlsx", Content: cargoWorkbook(t)}

	result, err := p.ingest.IngestBatch(context.Background(), []usecase.UploadedFile{file, file})
	if err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}
	if result.ProcessedFiles != 1 || result.SkippedFiles != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestIngestBatchRejections(t *testing.T) {
	p := newPipeline(t, pipelineOptions{})
	headerOnly := buildXLSX(t, sheet{name: "S", rows: [][]interface{}{movementHeader}})

	result, err := p.ingest.IngestBatch(context.Background(), []usecase.UploadedFile{
		{Name: "notes.csv", Content: []byte("a,b")},
		{Name: "unknown.xlsx", Content: cargoWorkbook(t)},
		{Name: "report NAA.xlsx", Content: cargoWorkbook(t)},
		{Name: "NAA empty.xlsx", Content: headerOnly},
		{Name: "CV1 legacy.xls", Content: []byte("\xd0\xcf\x11\xe0")},
		{Name: "CV1 good.xlsx", Content: cargoWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}

	if result.ProcessedFiles != 1 || len(result.Errors) != 5 {
		t.Fatalf("result = %+v", result)
	}
	wantFragments := []string{"unsupported file type", "cannot determine source type", "cannot determine source type", "no data extracted", "failed to read"}
	for i, frag := range wantFragments {
		if !strings.Contains(result.Errors[i], frag) {
			t.Errorf("errors[%d] = %q, want it to mention %q", i, result.Errors[i], frag)
		}
	}

	summary, _ := p.store.GetProcessingSummary(context.Background())
	if summary.ImportedFiles != 1 {
		t.Errorf("ledger entries = %d, want 1", summary.ImportedFiles)
	}
}

// failingRepository fails raw appends for one file name
type failingRepository struct {
	inner    repository.IngestionRepository
	failFile string
}

func (r *failingRepository) Begin(ctx context.Context) (repository.IngestionTx, error) {
	tx, err := r.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{IngestionTx: tx, failFile: r.failFile}, nil
}

type failingTx struct {
	repository.IngestionTx
	failFile string
}

func (t *failingTx) AppendRawMovements(ctx context.Context, rows []*entity.RawMovement) error {
	if len(rows) > 0 && rows[0].Source == t.failFile {
		// stage part of the file before failing
		_ = t.IngestionTx.AppendRawMovements(ctx, rows[:1])
		return errors.New("disk full")
	}
	return t.IngestionTx.AppendRawMovements(ctx, rows)
}

func TestIngestBatchPersistenceFailureIsolated(t *testing.T) {
	store := inmem.NewStore()
	ingest := newIngestProcessorOver(t, &failingRepository{inner: store, failFile: "NAA 2.xlsx"})

	result, err := ingest.IngestBatch(context.Background(), []usecase.UploadedFile{
		{Name: "NAA 1.xlsx", Content: cargoWorkbook(t)},
		{Name: "NAA 2.xlsx", Content: cargoWorkbook(t)},
		{Name: "NAA 3.xlsx", Content: cargoWorkbook(t)},
	})
	if err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}
	if result.ProcessedFiles != 2 || len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "disk full") {
		t.Fatalf("result = %+v", result)
	}

	raw := store.RawMovements()
	if len(raw) != 2 {
		t.Fatalf("raw rows = %d, want 2", len(raw))
	}
	for _, r := range raw {
		if r.Source == "NAA 2.xlsx" {
			t.Fatal("rows of the failed file were committed")
		}
	}
}

// commitFailingRepository fails at commit
type commitFailingRepository struct {
	inner repository.IngestionRepository
}

func (r *commitFailingRepository) Begin(ctx context.Context) (repository.IngestionTx, error) {
	tx, err := r.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &commitFailingTx{IngestionTx: tx}, nil
}

type commitFailingTx struct {
	repository.IngestionTx
}

func (t *commitFailingTx) Commit(ctx context.Context) error {
	return errors.New("connection reset")
}

func TestIngestBatchCommitFailureIsHard(t *testing.T) {
	store := inmem.NewStore()
	ingest := newIngestProcessorOver(t, &commitFailingRepository{inner: store})

	result, err := ingest.IngestBatch(context.Background(), []usecase.UploadedFile{
		{Name: "NAA 1.xlsx", Content: cargoWorkbook(t)},
	})
	if err == nil || result != nil {
		t.Fatalf("IngestBatch = %+v, %v; want hard error", result, err)
	}
	if len(store.RawMovements()) != 0 {
		t.Fatal("rows stored despite failed commit")
	}
}
