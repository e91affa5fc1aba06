package entity

import "time"

// ErrorRecord is a movement rejected by validation, with one flag per rule
type ErrorRecord struct {
	ID                    uint
	RawID                 uint
	FlightDate            string
	FlightNo              string
	Route                 string
	Actype                string
	Seat                  float64
	Adult                 float64
	Child                 float64
	Cargo                 float64
	Mail                  float64
	TotalPax              float64
	Source                string
	AcRegNo               string
	SheetName             *string
	InvalidFlightDate     int
	InvalidPassengerCargo int
	InvalidRoute          int
	InvalidActypeSeat     int
	ErrorReason           string
	TotalErrors           int
	TimeImport            time.Time
}
