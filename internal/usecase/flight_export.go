package usecase

import (
	"context"
	"fmt"
	"strings"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/utils"
)

// FlightExportService joins cleaned movements with the dimension tables for reporting
type FlightExportService struct {
	flights     repository.FlightCleanRepository
	dimensions  repository.DimensionRepository
	writer      WorkbookWriter
	homeCountry string
	logger      logger.Logger
}

// NewFlightExportService creates a new flight export service
func NewFlightExportService(
	flights repository.FlightCleanRepository,
	dimensions repository.DimensionRepository,
	writer WorkbookWriter,
	homeCountry string,
	logger logger.Logger,
) *FlightExportService {
	return &FlightExportService{
		flights:     flights,
		dimensions:  dimensions,
		writer:      writer,
		homeCountry: homeCountry,
		logger:      logger,
	}
}

// ParseDateRange validates an inclusive start/end pair given as text
func ParseDateRange(start, end string) (fromKey, toKey int, err error) {
	from, err := utils.ParseDateParam(start)
	if err != nil {
		return 0, 0, &ValidationError{Field: "start_date", Message: err.Error()}
	}
	to, err := utils.ParseDateParam(end)
	if err != nil {
		return 0, 0, &ValidationError{Field: "end_date", Message: err.Error()}
	}
	if from.After(to) {
		return 0, 0, &ValidationError{Field: "start_date", Message: "start_date must not be after end_date"}
	}
	return utils.DateKey(from), utils.DateKey(to), nil
}

// Query returns enriched movements in [start, end], ordered by date then flight number.
// The range is validated before any store is read.
func (s *FlightExportService) Query(ctx context.Context, start, end string) ([]*entity.EnrichedFlight, error) {
	fromKey, toKey, err := ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}

	records, err := s.flights.FindEligibleCleaned(ctx, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cleaned flights: %w", err)
	}
	if len(records) == 0 {
		return []*entity.EnrichedFlight{}, nil
	}

	lookup, err := s.loadLookup(ctx)
	if err != nil {
		return nil, err
	}

	flights := make([]*entity.EnrichedFlight, 0, len(records))
	for _, rec := range records {
		if !rec.Eligible() {
			continue
		}
		flights = append(flights, lookup.enrich(rec))
	}

	s.logger.Info("Enriched flight export",
		"from", fromKey,
		"to", toKey,
		"rows", len(flights))

	return flights, nil
}

// Export renders the enriched rows of the range into a workbook
func (s *FlightExportService) Export(ctx context.Context, start, end string) ([]byte, int, error) {
	flights, err := s.Query(ctx, start, end)
	if err != nil {
		return nil, 0, err
	}
	view := entity.SheetView{
		Name:    "Flight_Data",
		Columns: entity.EnrichedFlightColumns,
		Rows:    make([][]interface{}, 0, len(flights)),
	}
	for _, f := range flights {
		view.Rows = append(view.Rows, f.Cells())
	}
	content, err := s.writer.Write([]entity.SheetView{view})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to write flight export: %w", err)
	}
	return content, len(flights), nil
}

type dimensionLookup struct {
	homeCountry string
	airports    map[string]*entity.Airport
	airlines    map[string]*entity.Airline
	countries   map[string]*entity.Country
	sectors     map[string]*entity.SectorRoute
}

func (s *FlightExportService) loadLookup(ctx context.Context) (*dimensionLookup, error) {
	airports, err := s.dimensions.ListAirports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load airports: %w", err)
	}
	airlines, err := s.dimensions.ListAirlines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load airlines: %w", err)
	}
	countries, err := s.dimensions.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load countries: %w", err)
	}
	sectors, err := s.dimensions.ListSectorRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sector routes: %w", err)
	}

	l := &dimensionLookup{
		homeCountry: s.homeCountry,
		airports:    make(map[string]*entity.Airport, len(airports)),
		airlines:    make(map[string]*entity.Airline, len(airlines)),
		countries:   make(map[string]*entity.Country, len(countries)),
		sectors:     make(map[string]*entity.SectorRoute, len(sectors)),
	}
	for _, a := range airports {
		l.airports[strings.ToUpper(strings.TrimSpace(a.IATACode))] = a
	}
	for _, a := range airlines {
		l.airlines[strings.ToUpper(strings.TrimSpace(a.Carrier))] = a
	}
	for _, c := range countries {
		l.countries[countryKey(c.Name)] = c
	}
	for _, sr := range sectors {
		key := utils.CanonicalRoute(sr.Sector)
		if _, seen := l.sectors[key]; !seen {
			l.sectors[key] = sr
		}
	}
	return l, nil
}

func (l *dimensionLookup) enrich(rec *entity.CleanedMovement) *entity.EnrichedFlight {
	f := &entity.EnrichedFlight{
		FlightDate: rec.ConvertDate,
		WeekNumber: rec.WeekNumber,
		YearNumber: rec.YearNumber,
		FlightNo:   rec.FlightNo,
		Actype:     rec.Actype,
		Route:      rec.Route,
		Sector:     utils.CanonicalRoute(rec.Route),
		TotalPax:   rec.TotalPax,
		Cargo:      rec.Cargo,
		Mail:       rec.Mail,
		Seat:       rec.Seat,
		Source:     rec.Source,
		FlightType: flightType(rec),
	}
	if rec.ConvertDate > 0 {
		f.FlightDateFormat = utils.FromDateKey(rec.ConvertDate).Format("2006-01-02")
	}
	if rec.SheetName != nil {
		f.SheetName = *rec.SheetName
	}
	if airline := l.airlines[utils.CarrierCode(rec.FlightNo)]; airline != nil {
		f.AirlineName = airline.Name
	}

	departure, arrival, ok := utils.SplitRoute(rec.Route)
	if ok {
		f.Departure, f.Arrives = departure, arrival
	}
	if a := l.airports[departure]; ok && a != nil {
		f.CityDeparture, f.CountryDeparture = a.City, a.Country
	}
	if a := l.airports[arrival]; ok && a != nil {
		f.CityArrives, f.CountryArrives = a.City, a.Country
	}

	if l.isHome(f.CountryDeparture) && l.isHome(f.CountryArrives) {
		f.DomInt = entity.Domestic
		f.Country = l.homeCountry
	} else {
		f.DomInt = entity.International
		f.Country = l.reportingCountry(f.CountryArrives, f.CountryDeparture)
	}

	if c := l.countries[countryKey(f.Country)]; c != nil {
		f.CountryCode = c.TwoLetterCode
		f.Region = c.RegionLocal
		f.Area = c.Region
	}
	if sector := l.sectors[f.Sector]; sector != nil && sector.Area != "" {
		f.Area = sector.Area
	}

	return f
}

// reportingCountry picks the first foreign endpoint country, else the first one that
// resolved. Callers pass the arrival country first.
func (l *dimensionLookup) reportingCountry(countries ...string) string {
	for _, c := range countries {
		if c != "" && !l.isHome(c) {
			return c
		}
	}
	for _, c := range countries {
		if c != "" {
			return c
		}
	}
	return ""
}

func (l *dimensionLookup) isHome(country string) bool {
	return country != "" && strings.EqualFold(strings.TrimSpace(country), l.homeCountry)
}

func countryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// flightType classifies cargo-only (0) and passenger (1) movements; others are untyped
func flightType(rec *entity.CleanedMovement) *int {
	var t int
	switch {
	case rec.TotalPax == 0 && (rec.Cargo > 0 || rec.Mail > 0):
		t = entity.FlightTypeCargo
	case rec.TotalPax > 0:
		t = entity.FlightTypePassenger
	default:
		return nil
	}
	return &t
}
