package entity

import "time"

// Missing dimension types
const (
	DimensionActype = "ACTYPE"
	DimensionRoute  = "ROUTE"
)

// MissingDimension is a reference value seen in movements but absent from the dimension tables
type MissingDimension struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Value       string    `json:"value"`
	SourceSheet string    `json:"source_sheet"`
	CreatedAt   time.Time `json:"created_at_log"`
}

// Backfill workbook contract. Sheet names and column order are consumed by people
// filling in the workbook and must not change.
const (
	BackfillFileName        = "Add_information.xlsx"
	BackfillSheetActypeSeat = "Actype_seat"
	BackfillSheetRoute      = "Route"
	BackfillSheetRouteInfo  = "Airline_Route_Details"
)

var (
	ActypeSeatColumns = []string{"actype", "seat"}
	RouteColumns      = []string{
		"ROUTE", "AC", "Route_ID", "FLIGHT HOUR", "TAXI", "BLOCK HOUR",
		"DISTANCE KM", "Loại", "Type", "Country",
	}
	RouteDetailColumns = []string{
		"ROUTE", "Distance mile GDS", "Distance km GDS", "Sector_2",
		"Country 1", "Country 2", "Country", "DOM/INT", "Area",
	}
)

// SheetView is one named tabular view of an exported workbook
type SheetView struct {
	Name    string
	Columns []string
	Rows    [][]interface{}
}

// StagingResult reports how many backfill rows were staged
type StagingResult struct {
	Actypes int `json:"actypes"`
	Routes  int `json:"routes"`
}
