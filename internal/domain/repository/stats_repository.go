package repository

import (
	"context"

	"flight-ingest-service/internal/domain/entity"
)

// StatsRepository defines aggregate count queries over the stores
type StatsRepository interface {
	GetProcessingSummary(ctx context.Context) (*entity.ProcessingSummary, error)
}
