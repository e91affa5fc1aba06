package repository

import (
	"context"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"

	"gorm.io/gorm"
)

// DimAirportRef GORM model for the airport dimension
type DimAirportRef struct {
	IATACode string `gorm:"column:IATACode;primaryKey"`
	Name     string `gorm:"column:Airport_Name"`
	City     string `gorm:"column:City"`
	Country  string `gorm:"column:Country"`
}

// TableName overrides the default table name
func (DimAirportRef) TableName() string {
	return "Dim_Airport_Ref"
}

// AirlineRef GORM model for the airline dimension
type AirlineRef struct {
	Carrier string `gorm:"column:CARRIER;primaryKey"`
	Nation  string `gorm:"column:Airline_Nation"`
	Name    string `gorm:"column:Airlines_Name"`
}

// TableName overrides the default table name
func (AirlineRef) TableName() string {
	return "Airline_Ref"
}

// CountryRef GORM model for the country dimension
type CountryRef struct {
	Country         string `gorm:"column:Country;primaryKey"`
	Region          string `gorm:"column:Region"`
	RegionLocal     string `gorm:"column:Region_(VNM)"`
	TwoLetterCode   string `gorm:"column:2_Letter_Code"`
	ThreeLetterCode string `gorm:"column:3_Letter_Code"`
}

// TableName overrides the default table name
func (CountryRef) TableName() string {
	return "Country_Ref"
}

// SectorRouteDomRef GORM model for the domestic sector classification
type SectorRouteDomRef struct {
	Sector string `gorm:"column:Sector;primaryKey"`
	Area   string `gorm:"column:Area_Lv1"`
	DomInt string `gorm:"column:DOM/INT"`
}

// TableName overrides the default table name
func (SectorRouteDomRef) TableName() string {
	return "Sector_Route_DOM_Ref"
}

// GormDimensionRepository implements the DimensionRepository interface
type GormDimensionRepository struct {
	db *gorm.DB
}

// NewGormDimensionRepository creates a new GORM dimension repository
func NewGormDimensionRepository(db *gorm.DB) repository.DimensionRepository {
	return &GormDimensionRepository{
		db: db,
	}
}

// ListAirports returns every airport
func (r *GormDimensionRepository) ListAirports(ctx context.Context) ([]*entity.Airport, error) {
	var rows []DimAirportRef
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	airports := make([]*entity.Airport, 0, len(rows))
	for _, row := range rows {
		airports = append(airports, &entity.Airport{
			IATACode: row.IATACode,
			Name:     row.Name,
			City:     row.City,
			Country:  row.Country,
		})
	}
	return airports, nil
}

// ListAirlines returns every airline
func (r *GormDimensionRepository) ListAirlines(ctx context.Context) ([]*entity.Airline, error) {
	var rows []AirlineRef
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	airlines := make([]*entity.Airline, 0, len(rows))
	for _, row := range rows {
		airlines = append(airlines, &entity.Airline{
			Carrier: row.Carrier,
			Name:    row.Name,
			Nation:  row.Nation,
		})
	}
	return airlines, nil
}

// ListCountries returns every country
func (r *GormDimensionRepository) ListCountries(ctx context.Context) ([]*entity.Country, error) {
	var rows []CountryRef
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	countries := make([]*entity.Country, 0, len(rows))
	for _, row := range rows {
		countries = append(countries, &entity.Country{
			Name:            row.Country,
			Region:          row.Region,
			RegionLocal:     row.RegionLocal,
			TwoLetterCode:   row.TwoLetterCode,
			ThreeLetterCode: row.ThreeLetterCode,
		})
	}
	return countries, nil
}

// ListSectorRoutes returns every domestic sector classification
func (r *GormDimensionRepository) ListSectorRoutes(ctx context.Context) ([]*entity.SectorRoute, error) {
	var rows []SectorRouteDomRef
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	sectors := make([]*entity.SectorRoute, 0, len(rows))
	for _, row := range rows {
		sectors = append(sectors, &entity.SectorRoute{
			Sector: row.Sector,
			Area:   row.Area,
			DomInt: row.DomInt,
		})
	}
	return sectors, nil
}
