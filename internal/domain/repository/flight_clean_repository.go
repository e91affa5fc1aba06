package repository

import (
	"context"

	"flight-ingest-service/internal/domain/entity"
)

// FlightCleanRepository defines read access to cleaned movements
type FlightCleanRepository interface {
	// FindEligibleCleaned returns eligible records with convert_date in [fromKey, toKey],
	// ordered by convert_date then flight number
	FindEligibleCleaned(ctx context.Context, fromKey, toKey int) ([]*entity.CleanedMovement, error)
}
