package usecase

import (
	"context"
	"fmt"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/metrics"
)

type stage struct {
	name string
	run  func(ctx context.Context) error
}

// CleaningOrchestrator runs rule engine stages in a fixed order and reports the
// aggregate counts around them
type CleaningOrchestrator struct {
	engine  repository.RuleEngine
	stats   repository.StatsRepository
	timeout time.Duration
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewCleaningOrchestrator creates a new cleaning orchestrator. A zero timeout leaves
// stages bounded only by the caller's context.
func NewCleaningOrchestrator(
	engine repository.RuleEngine,
	stats repository.StatsRepository,
	timeout time.Duration,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *CleaningOrchestrator {
	return &CleaningOrchestrator{
		engine:  engine,
		stats:   stats,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// RunAutomaticChain runs clean-and-process, log-missing-dimensions and clean-and-validate
func (o *CleaningOrchestrator) RunAutomaticChain(ctx context.Context) (*entity.StageRunReport, error) {
	return o.run(ctx,
		stage{entity.StageCleanAndProcess, o.engine.CleanAndProcess},
		stage{entity.StageLogMissingDimensions, o.engine.LogMissingDimensions},
		stage{entity.StageCleanAndValidate, o.engine.CleanAndValidate},
	)
}

// RevalidateErrorData re-attempts promotion of error records
func (o *CleaningOrchestrator) RevalidateErrorData(ctx context.Context) (*entity.StageRunReport, error) {
	return o.run(ctx, stage{entity.StageRevalidateErrorData, o.engine.RevalidateErrorData})
}

// ImportMissingDimensions merges staged backfill rows into the dimension tables
func (o *CleaningOrchestrator) ImportMissingDimensions(ctx context.Context) (*entity.StageRunReport, error) {
	return o.run(ctx, stage{entity.StageImportMissingDimensions, o.engine.ImportMissingDimensions})
}

// run executes stages in order and stops at the first failure. On failure the
// report holds the counts taken before and the stages attempted so far.
func (o *CleaningOrchestrator) run(ctx context.Context, stages ...stage) (*entity.StageRunReport, error) {
	before, err := o.stats.GetProcessingSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read processing summary: %w", err)
	}

	report := &entity.StageRunReport{
		Before: before,
		Stages: make([]entity.StageReport, 0, len(stages)),
	}

	for _, s := range stages {
		stageReport, err := o.runStage(ctx, s)
		report.Stages = append(report.Stages, stageReport)
		if err != nil {
			return report, &StageError{Stage: s.name, Err: err}
		}
	}

	after, err := o.stats.GetProcessingSummary(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read processing summary: %w", err)
	}
	report.After = after

	return report, nil
}

func (o *CleaningOrchestrator) runStage(ctx context.Context, s stage) (entity.StageReport, error) {
	stageCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	startedAt := time.Now()
	o.logger.Info("Running stage", "stage", s.name)

	err := s.run(stageCtx)
	elapsed := time.Since(startedAt)
	o.metrics.StageDuration.WithLabelValues(s.name).Observe(elapsed.Seconds())

	report := entity.StageReport{
		Stage:      s.name,
		StartedAt:  startedAt,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		o.metrics.StageFailures.WithLabelValues(s.name).Inc()
		o.logger.Error("Stage failed",
			"stage", s.name,
			"duration", elapsed,
			"error", err)
		report.Error = err.Error()
		return report, err
	}

	o.logger.Info("Stage completed", "stage", s.name, "duration", elapsed)
	return report, nil
}
