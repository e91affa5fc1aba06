// internal/domain/entity/flight_raw.go
package entity

import (
	"strings"
	"time"
)

// RawMovement is one flight movement row as extracted from a spreadsheet
type RawMovement struct {
	ID         uint
	FlightDate *string // as read from the sheet, forward-filled
	FlightNo   string
	Route      string
	Actype     string
	Seat       float64
	Adult      float64
	Child      float64
	Cargo      float64
	Mail       float64
	TotalPax   float64
	Source     string  // source file name
	AcRegNo    string
	SheetName  *string // sheet or region tag
	CreatedAt  time.Time
}

// HasIdentity reports whether the row carries a flight number or an aircraft type.
// Rows without either cannot be validated later and are not persisted.
func (r *RawMovement) HasIdentity() bool {
	return strings.TrimSpace(r.FlightNo) != "" || strings.TrimSpace(r.Actype) != ""
}
