package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/pkg/logger"

	"github.com/google/uuid"
)

// DataProcessingService drives the upload, cleaning and backfill workflows.
// Pipeline operations are serialized so an upload and a merge never interleave.
type DataProcessingService struct {
	mu           sync.Mutex
	ingest       *IngestProcessor
	orchestrator *CleaningOrchestrator
	missing      *MissingDimensionService
	stats        repository.StatsRepository
	runs         repository.ProcessingRunRepository
	logger       logger.Logger
}

// NewDataProcessingService creates a new data processing service. runs may be nil,
// in which case no audit history is kept.
func NewDataProcessingService(
	ingest *IngestProcessor,
	orchestrator *CleaningOrchestrator,
	missing *MissingDimensionService,
	stats repository.StatsRepository,
	runs repository.ProcessingRunRepository,
	logger logger.Logger,
) *DataProcessingService {
	return &DataProcessingService{
		ingest:       ingest,
		orchestrator: orchestrator,
		missing:      missing,
		stats:        stats,
		runs:         runs,
		logger:       logger,
	}
}

// UploadFiles ingests the files and, when at least one was newly imported, runs the
// automatic cleaning chain. A stage failure is reported with success=false; only a
// failed batch commit or an unreadable summary is returned as an error.
func (s *DataProcessingService) UploadFiles(ctx context.Context, files []UploadedFile) (*entity.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.startRun(entity.RunKindUpload)
	s.logger.Info("Starting upload batch", "runID", run.RunID, "files", len(files))

	batch, err := s.ingest.IngestBatch(ctx, files)
	if err != nil {
		s.finishRun(ctx, run, err)
		return nil, err
	}
	run.Batch = batch

	result := &entity.UploadResult{
		Success:     true,
		BatchResult: *batch,
	}

	if batch.ProcessedFiles > 0 {
		report, err := s.orchestrator.RunAutomaticChain(ctx)
		run.Stages = report
		result.Cleaning = report
		if err != nil {
			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				s.finishRun(ctx, run, err)
				return nil, err
			}
			result.Success = false
			result.StageError = stageErr.Error()
			result.Errors = append(result.Errors, stageErr.Error())
		}
	}

	summary, err := s.stats.GetProcessingSummary(ctx)
	if err != nil {
		s.finishRun(ctx, run, err)
		return nil, fmt.Errorf("failed to read processing summary: %w", err)
	}
	result.ProcessingSummary = summary

	result.Message = fmt.Sprintf("Processed %d file(s) with %d rows", batch.ProcessedFiles, batch.TotalRows)
	if batch.SkippedFiles > 0 {
		result.Message += fmt.Sprintf(" (skipped %d already imported)", batch.SkippedFiles)
	}
	if result.StageError != "" {
		result.Message += "; cleaning failed: " + result.StageError
	}

	if !result.Success {
		s.finishRunStatus(ctx, run, entity.StatusPartial, result.StageError)
	} else {
		s.finishRun(ctx, run, nil)
	}
	return result, nil
}

// RunDataCleaning runs the automatic chain on demand
func (s *DataProcessingService) RunDataCleaning(ctx context.Context) (*entity.CleaningResult, error) {
	return s.runStages(ctx, entity.RunKindDataCleaning, "Data cleaning completed", s.orchestrator.RunAutomaticChain)
}

// RevalidateErrorData re-attempts promotion of error records
func (s *DataProcessingService) RevalidateErrorData(ctx context.Context) (*entity.CleaningResult, error) {
	return s.runStages(ctx, entity.RunKindRevalidate, "Error data revalidated", s.orchestrator.RevalidateErrorData)
}

// ImportMissingDimensions merges staged backfill rows and reports resolved counts
func (s *DataProcessingService) ImportMissingDimensions(ctx context.Context) (*entity.ImportMissingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.startRun(entity.RunKindImportDimensions)
	report, err := s.orchestrator.ImportMissingDimensions(ctx)
	run.Stages = report
	s.finishRun(ctx, run, err)
	if err != nil {
		return nil, err
	}

	result := &entity.ImportMissingResult{
		Success: true,
		BeforeImport: entity.MissingCounts{
			MissingActypes: report.Before.MissingActypes,
			MissingRoutes:  report.Before.MissingRoutes,
		},
		AfterImport: entity.MissingCounts{
			MissingActypes: report.After.MissingActypes,
			MissingRoutes:  report.After.MissingRoutes,
		},
	}
	result.Resolved = entity.ResolvedCounts{
		Actypes: result.BeforeImport.MissingActypes - result.AfterImport.MissingActypes,
		Routes:  result.BeforeImport.MissingRoutes - result.AfterImport.MissingRoutes,
	}
	result.Message = fmt.Sprintf("Imported missing dimensions, resolved %d actypes and %d routes",
		result.Resolved.Actypes, result.Resolved.Routes)

	s.logger.Info("Imported missing dimensions",
		"runID", run.RunID,
		"resolvedActypes", result.Resolved.Actypes,
		"resolvedRoutes", result.Resolved.Routes)

	return result, nil
}

// StageBackfill stages a filled-in backfill workbook
func (s *DataProcessingService) StageBackfill(ctx context.Context, fileName string, content []byte) (*entity.StagingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.missing.StageBackfill(ctx, fileName, content)
}

// Summary returns store-wide aggregate counts
func (s *DataProcessingService) Summary(ctx context.Context) (*entity.ProcessingSummary, error) {
	return s.stats.GetProcessingSummary(ctx)
}

// RecentRuns returns the latest processing runs, newest first
func (s *DataProcessingService) RecentRuns(ctx context.Context, limit int) ([]*entity.ProcessingRun, error) {
	if s.runs == nil {
		return []*entity.ProcessingRun{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return s.runs.FindRecentRuns(ctx, limit)
}

func (s *DataProcessingService) runStages(
	ctx context.Context,
	kind, message string,
	fn func(context.Context) (*entity.StageRunReport, error),
) (*entity.CleaningResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.startRun(kind)
	report, err := fn(ctx)
	run.Stages = report
	s.finishRun(ctx, run, err)
	if err != nil {
		return nil, err
	}
	return &entity.CleaningResult{Success: true, Message: message, Report: report}, nil
}

func (s *DataProcessingService) startRun(kind string) *entity.ProcessingRun {
	return &entity.ProcessingRun{
		RunID:     uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
}

func (s *DataProcessingService) finishRun(ctx context.Context, run *entity.ProcessingRun, err error) {
	if err != nil {
		s.finishRunStatus(ctx, run, entity.StatusFailed, err.Error())
		return
	}
	s.finishRunStatus(ctx, run, entity.StatusCompleted, "")
}

// finishRunStatus records the run; the audit log never fails the operation
func (s *DataProcessingService) finishRunStatus(ctx context.Context, run *entity.ProcessingRun, status, detail string) {
	run.Status = status
	run.Error = detail
	run.FinishedAt = time.Now()
	if s.runs == nil {
		return
	}
	if err := s.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("Failed to save processing run", "runID", run.RunID, "error", err)
	}
}
