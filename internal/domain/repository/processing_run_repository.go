package repository

import (
	"context"

	"flight-ingest-service/internal/domain/entity"
)

// ProcessingRunRepository defines storage for processing run audit documents
type ProcessingRunRepository interface {
	SaveRun(ctx context.Context, run *entity.ProcessingRun) error
	FindRecentRuns(ctx context.Context, limit int) ([]*entity.ProcessingRun, error)
}
