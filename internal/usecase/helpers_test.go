package usecase_test

import (
	"testing"
	"time"

	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/internal/infrastructure/config"
	"flight-ingest-service/internal/infrastructure/router"
	"flight-ingest-service/internal/interface/inmem"
	"flight-ingest-service/internal/interface/spreadsheet"
	"flight-ingest-service/internal/usecase"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name string
	rows [][]interface{}
}

// buildXLSX writes the sheets into a real xlsx workbook
func buildXLSX(t *testing.T, sheets ...sheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		for r, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(s.name, cell, &values); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

var movementHeader = []interface{}{"FlightDate", "FlightNo", "Route", "ACType", "Seat", "ADL", "CHD", "CGO", "Mail", "TotalPax"}

type pipeline struct {
	store      *inmem.Store
	ingest     *usecase.IngestProcessor
	cleaning   *usecase.CleaningOrchestrator
	missing    *usecase.MissingDimensionService
	export     *usecase.FlightExportService
	processing *usecase.DataProcessingService
}

type pipelineOptions struct {
	engine  repository.RuleEngine
	timeout time.Duration
}

func newPipeline(t *testing.T, opts pipelineOptions) *pipeline {
	t.Helper()
	log := logger.NewNopLogger()
	cfg := config.DefaultIngestionConfig()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())

	store := inmem.NewStore()
	var engine repository.RuleEngine = inmem.NewRuleEngine(store)
	if opts.engine != nil {
		engine = opts.engine
	}

	sources, err := router.NewSourceRouterFromConfig(cfg, log)
	if err != nil {
		t.Fatalf("NewSourceRouterFromConfig: %v", err)
	}

	opener := spreadsheet.NewExcelOpener()
	writer := spreadsheet.NewExcelWriter()

	p := &pipeline{store: store}
	p.ingest = usecase.NewIngestProcessor(store, sources, opener,
		usecase.NewSheetNormalizer(cfg, log), cfg.SpreadsheetExtensions, m, log)
	p.cleaning = usecase.NewCleaningOrchestrator(engine, store, opts.timeout, m, log)
	p.missing = usecase.NewMissingDimensionService(store, opener, writer, log)
	p.export = usecase.NewFlightExportService(store, store, writer, cfg.HomeCountry, log)
	p.processing = usecase.NewDataProcessingService(p.ingest, p.cleaning, p.missing, store, store, log)
	return p
}

// newIngestProcessorOver builds an ingest processor with default settings over repo
func newIngestProcessorOver(t *testing.T, repo repository.IngestionRepository) *usecase.IngestProcessor {
	t.Helper()
	log := logger.NewNopLogger()
	cfg := config.DefaultIngestionConfig()
	sources, err := router.NewSourceRouterFromConfig(cfg, log)
	if err != nil {
		t.Fatalf("NewSourceRouterFromConfig: %v", err)
	}
	return usecase.NewIngestProcessor(repo, sources, spreadsheet.NewExcelOpener(),
		usecase.NewSheetNormalizer(cfg, log), cfg.SpreadsheetExtensions,
		metrics.NewMetrics("test", prometheus.NewRegistry()), log)
}
