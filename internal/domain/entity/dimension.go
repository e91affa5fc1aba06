package entity

// Airport is a row of the airport dimension
type Airport struct {
	IATACode string
	Name     string
	City     string
	Country  string
}

// Airline represents an airline entity
type Airline struct {
	Carrier string
	Name    string
	Nation  string
}

// Country is a row of the country dimension
type Country struct {
	Name            string
	Region          string
	RegionLocal     string
	TwoLetterCode   string
	ThreeLetterCode string
}

// SectorRoute classifies a domestic sector
type SectorRoute struct {
	Sector string
	Area   string
	DomInt string
}

// ActypeSeat is the standard seat capacity of an aircraft type
type ActypeSeat struct {
	Actype string
	Seat   int64
}

// Route holds operational details of a route
type Route struct {
	Route      string
	AC         string
	RouteID    string
	FlightHour *float64
	Taxi       *float64
	BlockHour  *float64
	DistanceKm *float64
	Loai       string
	Type       string
	Country    string
}

// StagedActype is a human-supplied aircraft type awaiting merge
type StagedActype struct {
	Actype string
	Seat   *int64
}

// StagedRoute is a human-supplied route awaiting merge
type StagedRoute struct {
	Route      string
	AC         string
	RouteID    string
	FlightHour *float64
	Taxi       *float64
	BlockHour  *float64
	DistanceKm *int64
	Loai       string
	Type       string
	Country    string
}
