package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/metrics"
	"flight-ingest-service/pkg/utils"
)

// UploadedFile is one spreadsheet received for ingestion
type UploadedFile struct {
	Name    string
	Content []byte
}

// IngestProcessor loads uploaded workbooks into the raw store under the import ledger
type IngestProcessor struct {
	repo       repository.IngestionRepository
	router     SourceRouter
	opener     WorkbookOpener
	normalizer *SheetNormalizer
	extensions []string
	metrics    *metrics.Metrics
	logger     logger.Logger
	now        func() time.Time
}

// NewIngestProcessor creates a new ingest processor
func NewIngestProcessor(
	repo repository.IngestionRepository,
	router SourceRouter,
	opener WorkbookOpener,
	normalizer *SheetNormalizer,
	extensions []string,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *IngestProcessor {
	return &IngestProcessor{
		repo:       repo,
		router:     router,
		opener:     opener,
		normalizer: normalizer,
		extensions: extensions,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// IngestBatch processes the files in order inside one transaction. Per-file failures
// are reported in the result and roll back only that file; the returned error is set
// only when the batch as a whole could not be stored.
func (p *IngestProcessor) IngestBatch(ctx context.Context, files []UploadedFile) (*entity.BatchResult, error) {
	result := &entity.BatchResult{
		Errors:      []string{},
		Warnings:    []string{},
		FileDetails: []entity.FileDetail{},
	}

	tx, err := p.repo.Begin(ctx)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("ingest_begin").Inc()
		return nil, fmt.Errorf("failed to begin ingestion: %w", err)
	}

	for i, file := range files {
		fileName := baseName(file.Name)
		log := p.logger.With("file", fileName)

		skipped, detail, err := p.ingestFile(ctx, tx, i, fileName, file.Content, result)
		if err != nil {
			var hard *hardError
			if errors.As(err, &hard) {
				_ = tx.Rollback(ctx)
				return nil, hard.err
			}
			log.Warn("File rejected", "error", err)
			p.metrics.FilesFailed.Inc()
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if skipped {
			log.Info("File already imported, skipping")
			p.metrics.FilesSkipped.Inc()
			result.SkippedFiles++
			continue
		}

		log.Info("File ingested",
			"sourceType", detail.FileType,
			"rows", detail.Rows,
			"filteredRows", detail.FilteredRows)
		result.ProcessedFiles++
		result.TotalRows += detail.Rows
		result.FilteredRows += detail.FilteredRows
		result.FileDetails = append(result.FileDetails, *detail)
	}

	if err := tx.Commit(ctx); err != nil {
		p.metrics.ErrorsCount.WithLabelValues("ingest_commit").Inc()
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to commit ingestion batch: %w", err)
	}

	p.metrics.FilesProcessed.Add(float64(result.ProcessedFiles))
	p.metrics.RowsIngested.Add(float64(result.TotalRows))
	p.metrics.RowsFiltered.Add(float64(result.FilteredRows))

	return result, nil
}

func (p *IngestProcessor) ingestFile(
	ctx context.Context,
	tx repository.IngestionTx,
	position int,
	fileName string,
	content []byte,
	result *entity.BatchResult,
) (bool, *entity.FileDetail, error) {
	if !p.isSpreadsheet(fileName) {
		return false, nil, fmt.Errorf("unsupported file type: %s", fileName)
	}

	imported, err := tx.IsFileImported(ctx, fileName)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check import ledger for file %s: %v", fileName, err)
	}
	if imported {
		return true, nil, nil
	}

	handler := p.router.GetHandler(fileName)
	if handler == nil {
		return false, nil, fmt.Errorf("cannot determine source type for file %s", fileName)
	}

	wb, err := p.opener.Open(fileName, content)
	if err != nil {
		return false, nil, fmt.Errorf("failed to read file %s: %v", fileName, err)
	}
	normalized := p.normalizer.Normalize(wb, handler, fileName)
	_ = wb.Close()
	result.Warnings = append(result.Warnings, normalized.Warnings...)

	if len(normalized.Rows) == 0 {
		return false, nil, fmt.Errorf("no data extracted from file %s", fileName)
	}

	kept := make([]*entity.RawMovement, 0, len(normalized.Rows))
	for _, row := range normalized.Rows {
		if row.HasIdentity() {
			kept = append(kept, row)
		}
	}
	filtered := len(normalized.Rows) - len(kept)
	if len(kept) == 0 {
		return false, nil, fmt.Errorf("no rows with a flight number or aircraft type in file %s", fileName)
	}

	savepoint := fmt.Sprintf("file_%d", position)
	if err := tx.SavePoint(ctx, savepoint); err != nil {
		return false, nil, &hardError{err: fmt.Errorf("failed to create savepoint for file %s: %w", fileName, err)}
	}

	entry := &entity.ImportLedgerEntry{
		FileName:   fileName,
		SourceType: handler.SourceType(),
		RowCount:   len(kept),
		Status:     entity.ImportStatusImported,
		Checksum:   utils.Checksum(content),
		ImportDate: p.now(),
	}

	persistErr := tx.AppendRawMovements(ctx, kept)
	if persistErr == nil {
		persistErr = tx.MarkFileImported(ctx, entry)
	}
	if persistErr != nil {
		if err := tx.RollbackTo(ctx, savepoint); err != nil {
			return false, nil, &hardError{err: fmt.Errorf("failed to roll back file %s: %w", fileName, err)}
		}
		p.metrics.ErrorsCount.WithLabelValues("ingest_persist").Inc()
		return false, nil, fmt.Errorf("failed to persist file %s: %v", fileName, persistErr)
	}

	return false, &entity.FileDetail{
		FileName:     fileName,
		FileType:     handler.SourceType(),
		Rows:         len(kept),
		FilteredRows: filtered,
	}, nil
}

func (p *IngestProcessor) isSpreadsheet(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range p.extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// baseName drops any folder part of an uploaded file name
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return path.Base(strings.TrimSpace(name))
}

// hardError aborts the whole batch instead of a single file
type hardError struct {
	err error
}

func (e *hardError) Error() string { return e.err.Error() }
