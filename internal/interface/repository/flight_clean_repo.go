package repository

import (
	"context"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"

	"gorm.io/gorm"
)

// FlightDataChot GORM model for cleaned movements
type FlightDataChot struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	ConvertDate int       `gorm:"column:convert_date"`
	FlightNo    string    `gorm:"column:flightno"`
	Route       string    `gorm:"column:route"`
	Actype      string    `gorm:"column:actype"`
	TotalPax    float64   `gorm:"column:totalpax"`
	Cargo       float64   `gorm:"column:cgo"`
	Mail        float64   `gorm:"column:mail"`
	AcRegNo     string    `gorm:"column:acregno"`
	Source      string    `gorm:"column:source"`
	SheetName   *string   `gorm:"column:sheet_name"`
	RegionType  int       `gorm:"column:region_type"`
	Seat        int64     `gorm:"column:seat"`
	WeekNumber  int       `gorm:"column:week_number"`
	YearNumber  int       `gorm:"column:year_number"`
	Note        *string   `gorm:"column:note"`
	TypeFilter  int       `gorm:"column:type_filter"`
	InsertedAt  time.Time `gorm:"column:inserted_time"`
}

// TableName overrides the default table name
func (FlightDataChot) TableName() string {
	return "flight_data_chot"
}

// GormFlightCleanRepository implements the FlightCleanRepository interface
type GormFlightCleanRepository struct {
	db *gorm.DB
}

// NewGormFlightCleanRepository creates a new GORM cleaned movement repository
func NewGormFlightCleanRepository(db *gorm.DB) repository.FlightCleanRepository {
	return &GormFlightCleanRepository{
		db: db,
	}
}

// FindEligibleCleaned returns export-eligible movements inside the date key range
func (r *GormFlightCleanRepository) FindEligibleCleaned(ctx context.Context, fromKey, toKey int) ([]*entity.CleanedMovement, error) {
	var rows []FlightDataChot
	err := r.db.WithContext(ctx).
		Where("type_filter > ? AND note IS NULL", 0).
		Where("convert_date BETWEEN ? AND ?", fromKey, toKey).
		Order("convert_date ASC, flightno ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	movements := make([]*entity.CleanedMovement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, &entity.CleanedMovement{
			ID:          row.ID,
			ConvertDate: row.ConvertDate,
			FlightNo:    row.FlightNo,
			Route:       row.Route,
			Actype:      row.Actype,
			TotalPax:    row.TotalPax,
			Cargo:       row.Cargo,
			Mail:        row.Mail,
			Seat:        float64(row.Seat),
			AcRegNo:     row.AcRegNo,
			Source:      row.Source,
			SheetName:   row.SheetName,
			RegionType:  row.RegionType,
			WeekNumber:  row.WeekNumber,
			YearNumber:  row.YearNumber,
			Note:        row.Note,
			TypeFilter:  row.TypeFilter,
			InsertedAt:  row.InsertedAt,
		})
	}
	return movements, nil
}
