package repository

import (
	"context"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MissingDimensionsLog GORM model for the missing-dimension tracker
type MissingDimensionsLog struct {
	ID          uint      `gorm:"column:ID;primaryKey"`
	Type        string    `gorm:"column:Type"`
	Value       string    `gorm:"column:Value"`
	SourceSheet string    `gorm:"column:SourceSheet"`
	CreatedAt   time.Time `gorm:"column:CreatedAt"`
}

// TableName overrides the default table name
func (MissingDimensionsLog) TableName() string {
	return "Missing_Dimensions_Log"
}

// TempActypeImport GORM model for staged aircraft types
type TempActypeImport struct {
	Actype string `gorm:"column:Actype;primaryKey"`
	Seat   *int64 `gorm:"column:Seat"`
}

// TableName overrides the default table name
func (TempActypeImport) TableName() string {
	return "TempActypeImport"
}

// TempRouteImport GORM model for staged routes
type TempRouteImport struct {
	Route      string   `gorm:"column:Route;primaryKey"`
	AC         string   `gorm:"column:AC"`
	RouteID    string   `gorm:"column:Route_ID"`
	FlightHour *float64 `gorm:"column:FLIGHT HOUR"`
	Taxi       *float64 `gorm:"column:TAXI"`
	BlockHour  *float64 `gorm:"column:BLOCK HOUR"`
	DistanceKm *int64   `gorm:"column:DISTANCE KM"`
	Loai       string   `gorm:"column:Loại"`
	Type       string   `gorm:"column:Type"`
	Country    string   `gorm:"column:Country"`
}

// TableName overrides the default table name
func (TempRouteImport) TableName() string {
	return "TempRouteImport"
}

// GormMissingDimensionRepository implements the MissingDimensionRepository interface
type GormMissingDimensionRepository struct {
	db *gorm.DB
}

// NewGormMissingDimensionRepository creates a new GORM missing-dimension repository
func NewGormMissingDimensionRepository(db *gorm.DB) repository.MissingDimensionRepository {
	return &GormMissingDimensionRepository{
		db: db,
	}
}

// ListMissing returns tracker entries of one type in insertion order
func (r *GormMissingDimensionRepository) ListMissing(ctx context.Context, dimensionType string) ([]*entity.MissingDimension, error) {
	var rows []MissingDimensionsLog
	err := r.db.WithContext(ctx).
		Where(&MissingDimensionsLog{Type: dimensionType}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "ID"}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	missing := make([]*entity.MissingDimension, 0, len(rows))
	for _, row := range rows {
		missing = append(missing, &entity.MissingDimension{
			ID:          row.ID,
			Type:        row.Type,
			Value:       row.Value,
			SourceSheet: row.SourceSheet,
			CreatedAt:   row.CreatedAt,
		})
	}
	return missing, nil
}

// DistinctMissingValues returns the sorted distinct values of one type
func (r *GormMissingDimensionRepository) DistinctMissingValues(ctx context.Context, dimensionType string) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&MissingDimensionsLog{}).
		Where(&MissingDimensionsLog{Type: dimensionType}).
		Distinct().
		Order(clause.OrderByColumn{Column: clause.Column{Name: "Value"}}).
		Pluck("Value", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// StageActypes upserts aircraft types into the staging table
func (r *GormMissingDimensionRepository) StageActypes(ctx context.Context, rows []*entity.StagedActype) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]*TempActypeImport, 0, len(rows))
	for _, row := range rows {
		models = append(models, &TempActypeImport{
			Actype: row.Actype,
			Seat:   row.Seat,
		})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "Actype"}},
			UpdateAll: true,
		}).
		Create(&models).Error
}

// StageRoutes upserts routes into the staging table
func (r *GormMissingDimensionRepository) StageRoutes(ctx context.Context, rows []*entity.StagedRoute) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]*TempRouteImport, 0, len(rows))
	for _, row := range rows {
		models = append(models, &TempRouteImport{
			Route:      row.Route,
			AC:         row.AC,
			RouteID:    row.RouteID,
			FlightHour: row.FlightHour,
			Taxi:       row.Taxi,
			BlockHour:  row.BlockHour,
			DistanceKm: row.DistanceKm,
			Loai:       row.Loai,
			Type:       row.Type,
			Country:    row.Country,
		})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "Route"}},
			UpdateAll: true,
		}).
		Create(&models).Error
}
