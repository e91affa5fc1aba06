package entity

// Flight type classification
const (
	FlightTypeCargo     = 0
	FlightTypePassenger = 1
)

// Domestic/international classification
const (
	Domestic      = "DOM"
	International = "INT"
)

// EnrichedFlight is a cleaned movement joined with the dimension tables
type EnrichedFlight struct {
	FlightDate       int     `json:"flight_date"`
	FlightDateFormat string  `json:"flight_date_format"`
	WeekNumber       int     `json:"week_number"`
	YearNumber       int     `json:"year_number"`
	FlightNo         string  `json:"flight_no"`
	Actype           string  `json:"actype"`
	Route            string  `json:"route"`
	Sector           string  `json:"sector"`
	Departure        string  `json:"departure"`
	Arrives          string  `json:"arrives"`
	TotalPax         float64 `json:"total_pax"`
	Cargo            float64 `json:"cgo"`
	Mail             float64 `json:"mail"`
	Seat             float64 `json:"seat"`
	AirlineName      string  `json:"airlines_name"`
	CityDeparture    string  `json:"city_departure"`
	CountryDeparture string  `json:"country_departure"`
	CityArrives      string  `json:"city_arrives"`
	CountryArrives   string  `json:"country_arrives"`
	Country          string  `json:"country"`
	CountryCode      string  `json:"country_code"`
	Region           string  `json:"region"`
	DomInt           string  `json:"dom_int"`
	Area             string  `json:"area"`
	FlightType       *int    `json:"flight_type"`
	Source           string  `json:"source"`
	SheetName        string  `json:"sheet_name"`
}

// EnrichedFlightColumns is the column order of the spreadsheet flight export
var EnrichedFlightColumns = []string{
	"FLIGHT_DATE", "FLIGHT_DATE_FORMAT", "WEEK", "YEAR", "FLIGHT_NO", "ACTYPE", "ROUTE", "SECTOR",
	"DEPARTURE", "ARRIVES", "TOTAL_PAX", "CGO", "MAIL", "SEAT", "AIRLINES NAME",
	"CITY_DEPARTURE", "COUNTRY_DEPARTURE", "CITY_ARRIVES", "COUNTRY_ARRIVES",
	"COUNTRY", "COUNTRY_CODE", "REGION", "DOM/INT", "AREA", "FLIGHT_TYPE", "SOURCE", "SHEET_NAME",
}

// Cells returns the row in EnrichedFlightColumns order
func (f *EnrichedFlight) Cells() []interface{} {
	var flightType interface{}
	if f.FlightType != nil {
		flightType = *f.FlightType
	}
	return []interface{}{
		f.FlightDate, f.FlightDateFormat, f.WeekNumber, f.YearNumber, f.FlightNo, f.Actype, f.Route, f.Sector,
		f.Departure, f.Arrives, f.TotalPax, f.Cargo, f.Mail, f.Seat, f.AirlineName,
		f.CityDeparture, f.CountryDeparture, f.CityArrives, f.CountryArrives,
		f.Country, f.CountryCode, f.Region, f.DomInt, f.Area, flightType, f.Source, f.SheetName,
	}
}
