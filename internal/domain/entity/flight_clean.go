package entity

import "time"

// CleanedMovement is a raw movement promoted by the cleaning stage
type CleanedMovement struct {
	ID          uint
	RawID       uint
	ConvertDate int // YYYYMMDD
	FlightNo    string
	Route       string
	Actype      string
	TotalPax    float64
	Cargo       float64
	Mail        float64
	Seat        float64
	AcRegNo     string
	Source      string
	SheetName   *string
	RegionType  int
	WeekNumber  int
	YearNumber  int
	Note        *string // non-nil excludes the record from export
	TypeFilter  int     // positive marks the record eligible for export
	InsertedAt  time.Time
}

// Eligible reports whether the record may appear in the enriched export
func (c *CleanedMovement) Eligible() bool {
	return c.TypeFilter > 0 && c.Note == nil
}
