package repository

import (
	"context"

	"flight-ingest-service/internal/domain/entity"
)

// DimensionRepository defines read access to the reference tables
type DimensionRepository interface {
	ListAirports(ctx context.Context) ([]*entity.Airport, error)
	ListAirlines(ctx context.Context) ([]*entity.Airline, error)
	ListCountries(ctx context.Context) ([]*entity.Country, error)
	ListSectorRoutes(ctx context.Context) ([]*entity.SectorRoute, error)
}

// MissingDimensionRepository defines operations on the missing-dimension tracker
// and the staging tables that feed the merge stage
type MissingDimensionRepository interface {
	ListMissing(ctx context.Context, dimensionType string) ([]*entity.MissingDimension, error)
	DistinctMissingValues(ctx context.Context, dimensionType string) ([]string, error)
	StageActypes(ctx context.Context, rows []*entity.StagedActype) error
	StageRoutes(ctx context.Context, rows []*entity.StagedRoute) error
}
