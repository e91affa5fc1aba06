package repository

import (
	"context"
	"fmt"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"

	"gorm.io/gorm"
)

// ErrorTable GORM model for rejected movements
type ErrorTable struct {
	ID                    uint      `gorm:"column:id;primaryKey"`
	FlightDate            *string   `gorm:"column:flightdate"`
	FlightNo              string    `gorm:"column:flightno"`
	Route                 string    `gorm:"column:route"`
	Actype                string    `gorm:"column:actype"`
	Seat                  int64     `gorm:"column:seat"`
	Adult                 float64   `gorm:"column:adl"`
	Child                 float64   `gorm:"column:chd"`
	Cargo                 float64   `gorm:"column:cgo"`
	Mail                  float64   `gorm:"column:mail"`
	TotalPax              float64   `gorm:"column:totalpax"`
	Source                string    `gorm:"column:source"`
	AcRegNo               string    `gorm:"column:acregno"`
	SheetName             *string   `gorm:"column:sheet_name"`
	InvalidFlightDate     int       `gorm:"column:Is_InvalidFlightDate"`
	InvalidPassengerCargo int       `gorm:"column:Is_InvalidPassengerCargo"`
	InvalidRoute          int       `gorm:"column:Is_InvalidRoute"`
	InvalidActypeSeat     int       `gorm:"column:Is_InvalidActypeSeat"`
	ErrorReason           string    `gorm:"column:ErrorReason"`
	TotalErrors           int       `gorm:"column:TotalErrors"`
	TimeImport            time.Time `gorm:"column:time_import"`
}

// TableName overrides the default table name
func (ErrorTable) TableName() string {
	return "error_table"
}

// GormStatsRepository implements the StatsRepository interface
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new GORM stats repository
func NewGormStatsRepository(db *gorm.DB) repository.StatsRepository {
	return &GormStatsRepository{
		db: db,
	}
}

// GetProcessingSummary counts the rows of every store
func (r *GormStatsRepository) GetProcessingSummary(ctx context.Context) (*entity.ProcessingSummary, error) {
	summary := &entity.ProcessingSummary{}
	db := r.db.WithContext(ctx)

	counts := []struct {
		name   string
		query  *gorm.DB
		target *int64
	}{
		{"raw", db.Model(&FlightRaw{}), &summary.RawRecords},
		{"processed", db.Model(&FlightDataChot{}), &summary.ProcessedRecords},
		{"error", db.Model(&ErrorTable{}), &summary.ErrorRecords},
		{"missing actype", db.Model(&MissingDimensionsLog{}).Where(&MissingDimensionsLog{Type: entity.DimensionActype}), &summary.MissingActypes},
		{"missing route", db.Model(&MissingDimensionsLog{}).Where(&MissingDimensionsLog{Type: entity.DimensionRoute}), &summary.MissingRoutes},
		{"imported files", db.Model(&ImportLog{}), &summary.ImportedFiles},
	}

	for _, c := range counts {
		if err := c.query.Count(c.target).Error; err != nil {
			return nil, fmt.Errorf("count %s records: %w", c.name, err)
		}
	}
	return summary, nil
}
