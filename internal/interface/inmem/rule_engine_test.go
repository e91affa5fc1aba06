package inmem

import (
	"context"
	"testing"

	"flight-ingest-service/internal/domain/entity"
)

func seedRaw(t *testing.T, store *Store, fileName, sourceType string, rows ...*entity.RawMovement) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for _, r := range rows {
		r.Source = fileName
	}
	if err := tx.AppendRawMovements(ctx, rows); err != nil {
		t.Fatalf("AppendRawMovements: %v", err)
	}
	if err := tx.MarkFileImported(ctx, &entity.ImportLedgerEntry{FileName: fileName, SourceType: sourceType, RowCount: len(rows)}); err != nil {
		t.Fatalf("MarkFileImported: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func runChain(t *testing.T, engine *RuleEngine) {
	t.Helper()
	stages := []func(context.Context) error{
		engine.CleanAndProcess,
		engine.LogMissingDimensions,
		engine.CleanAndValidate,
	}
	for _, stage := range stages {
		if err := stage(context.Background()); err != nil {
			t.Fatalf("stage failed: %v", err)
		}
	}
}

func TestCleanAndProcess(t *testing.T) {
	store := NewStoreWithClock(fixedClock)
	engine := NewRuleEngine(store)

	seedRaw(t, store, "NAA_03.xlsx", "MB",
		&entity.RawMovement{FlightDate: strPtr("2024-03-05 00:00:00"), FlightNo: " vn123 ", Route: "han-sgn", Actype: "a321", Adult: 150, Child: 5},
		&entity.RawMovement{FlightDate: strPtr("2024-03-05 00:00:00"), FlightNo: "VN123", Route: "HAN-SGN", Actype: "A321", TotalPax: 10},
		&entity.RawMovement{FlightDate: strPtr("garbage"), FlightNo: "VN7", Route: "HAN-DAD", Actype: "A321"},
	)

	if err := engine.CleanAndProcess(context.Background()); err != nil {
		t.Fatalf("CleanAndProcess: %v", err)
	}
	cleaned := store.CleanedMovements()
	if len(cleaned) != 3 {
		t.Fatalf("cleaned = %d, want 3", len(cleaned))
	}

	first := cleaned[0]
	if first.FlightNo != "VN123" || first.Route != "HAN-SGN" || first.Actype != "A321" {
		t.Errorf("codes not normalized: %+v", first)
	}
	if first.ConvertDate != 20240305 || first.WeekNumber != 10 || first.YearNumber != 2024 {
		t.Errorf("date fields = %d w%d y%d", first.ConvertDate, first.WeekNumber, first.YearNumber)
	}
	if first.TotalPax != 155 {
		t.Errorf("TotalPax = %v, want adl+chd 155", first.TotalPax)
	}
	if first.RegionType != 1 || first.TypeFilter != 1 || first.Note != nil {
		t.Errorf("region/filter/note = %d %d %v", first.RegionType, first.TypeFilter, first.Note)
	}
	if cleaned[1].Note == nil || *cleaned[1].Note != NoteDuplicate {
		t.Errorf("second movement should be a duplicate")
	}
	if cleaned[2].ConvertDate != 0 || cleaned[2].TypeFilter != 0 {
		t.Errorf("unparsable date row = %+v", cleaned[2])
	}

	// nothing new to promote
	if err := engine.CleanAndProcess(context.Background()); err != nil {
		t.Fatalf("CleanAndProcess: %v", err)
	}
	if len(store.CleanedMovements()) != 3 {
		t.Fatal("raw rows promoted twice")
	}
}

func TestValidationAndBackfill(t *testing.T) {
	ctx := context.Background()
	store := NewStoreWithClock(fixedClock)
	engine := NewRuleEngine(store)

	store.UpsertActypeSeat(entity.ActypeSeat{Actype: "A321", Seat: 180})
	store.UpsertRoute(entity.Route{Route: "HAN-SGN"})

	seedRaw(t, store, "toan cang.xlsx", "MN",
		&entity.RawMovement{FlightDate: strPtr("2024-03-05"), FlightNo: "VN1", Route: "SGN-HAN", Actype: "A321", TotalPax: 170},
		&entity.RawMovement{FlightDate: strPtr("2024-03-05"), FlightNo: "VN2", Route: "SGN-DAD", Actype: "B789", TotalPax: 200},
		&entity.RawMovement{FlightDate: strPtr("2024-03-05"), FlightNo: "VN3", Route: "HAN-SGN", Actype: "A321", TotalPax: 190},
	)
	runChain(t, engine)

	cleaned := store.CleanedMovements()
	if len(cleaned) != 1 || cleaned[0].FlightNo != "VN1" {
		t.Fatalf("cleaned = %+v, want only VN1", cleaned)
	}

	errs := store.ErrorRecords()
	if len(errs) != 2 {
		t.Fatalf("errors = %d, want 2", len(errs))
	}
	byFlight := map[string]entity.ErrorRecord{}
	for _, e := range errs {
		byFlight[e.FlightNo] = e
	}
	vn2 := byFlight["VN2"]
	if vn2.InvalidRoute != 1 || vn2.InvalidActypeSeat != 1 || vn2.TotalErrors != 2 || vn2.FlightDate != "2024-03-05" {
		t.Errorf("VN2 error = %+v", vn2)
	}
	vn3 := byFlight["VN3"]
	if vn3.InvalidPassengerCargo != 1 || vn3.TotalErrors != 1 {
		t.Errorf("VN3 error = %+v", vn3)
	}

	summary, _ := store.GetProcessingSummary(ctx)
	if summary.MissingActypes != 1 || summary.MissingRoutes != 1 {
		t.Fatalf("missing = %d/%d, want 1/1", summary.MissingActypes, summary.MissingRoutes)
	}
	values, _ := store.DistinctMissingValues(ctx, entity.DimensionRoute)
	if len(values) != 1 || values[0] != "SGN-DAD" {
		t.Fatalf("missing routes = %v", values)
	}

	seat := int64(300)
	_ = store.StageActypes(ctx, []*entity.StagedActype{{Actype: "B789", Seat: &seat}})
	_ = store.StageRoutes(ctx, []*entity.StagedRoute{{Route: "DAD-SGN"}})
	if err := engine.ImportMissingDimensions(ctx); err != nil {
		t.Fatalf("ImportMissingDimensions: %v", err)
	}
	summary, _ = store.GetProcessingSummary(ctx)
	if summary.MissingActypes != 0 || summary.MissingRoutes != 0 {
		t.Fatalf("missing after import = %d/%d, want 0/0", summary.MissingActypes, summary.MissingRoutes)
	}

	if err := engine.RevalidateErrorData(ctx); err != nil {
		t.Fatalf("RevalidateErrorData: %v", err)
	}
	if got := len(store.CleanedMovements()); got != 2 {
		t.Fatalf("cleaned after revalidate = %d, want 2", got)
	}
	remaining := store.ErrorRecords()
	if len(remaining) != 1 || remaining[0].FlightNo != "VN3" {
		t.Fatalf("remaining errors = %+v", remaining)
	}
}

func TestStagesHonorCancelledContext(t *testing.T) {
	store := NewStore()
	engine := NewRuleEngine(store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := engine.CleanAndProcess(ctx); err == nil {
		t.Fatal("expected cancelled context to fail the stage")
	}
}
