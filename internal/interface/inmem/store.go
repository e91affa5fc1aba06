// Package inmem provides in-memory implementations of the repositories and the
// rule engine. It backs STORE_BACKEND=memory and the package tests.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/pkg/utils"
)

// Store holds every table of the service in memory
type Store struct {
	mu        sync.RWMutex
	clockFunc func() time.Time
	nextID    uint

	raw     []*entity.RawMovement
	ledger  map[string]*entity.ImportLedgerEntry
	cleaned []*entity.CleanedMovement
	errors  []*entity.ErrorRecord
	missing []*entity.MissingDimension

	airports    map[string]*entity.Airport
	airlines    map[string]*entity.Airline
	countries   map[string]*entity.Country
	sectors     []*entity.SectorRoute
	actypeSeats map[string]*entity.ActypeSeat
	routes      map[string]*entity.Route // key: canonical route

	stagedActypes map[string]*entity.StagedActype
	stagedRoutes  map[string]*entity.StagedRoute

	runs []*entity.ProcessingRun

	// highest raw ID already promoted by the cleaning stage
	processedRawID uint
}

// NewStore creates an empty store
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock creates a store with an injected clock for determinism
func NewStoreWithClock(clockFunc func() time.Time) *Store {
	return &Store{
		clockFunc:     clockFunc,
		ledger:        make(map[string]*entity.ImportLedgerEntry),
		airports:      make(map[string]*entity.Airport),
		airlines:      make(map[string]*entity.Airline),
		countries:     make(map[string]*entity.Country),
		actypeSeats:   make(map[string]*entity.ActypeSeat),
		routes:        make(map[string]*entity.Route),
		stagedActypes: make(map[string]*entity.StagedActype),
		stagedRoutes:  make(map[string]*entity.StagedRoute),
	}
}

func (s *Store) newID() uint {
	s.nextID++
	return s.nextID
}

// Seeding

// UpsertAirport adds or replaces an airport
func (s *Store) UpsertAirport(a entity.Airport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.airports[strings.ToUpper(a.IATACode)] = &a
}

// UpsertAirline adds or replaces an airline
func (s *Store) UpsertAirline(a entity.Airline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.airlines[strings.ToUpper(a.Carrier)] = &a
}

// UpsertCountry adds or replaces a country
func (s *Store) UpsertCountry(c entity.Country) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countries[strings.ToLower(c.Name)] = &c
}

// AddSectorRoute appends a sector classification
func (s *Store) AddSectorRoute(sr entity.SectorRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sectors = append(s.sectors, &sr)
}

// UpsertActypeSeat adds or replaces an aircraft type capacity
func (s *Store) UpsertActypeSeat(a entity.ActypeSeat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Actype = strings.ToUpper(strings.TrimSpace(a.Actype))
	s.actypeSeats[a.Actype] = &a
}

// UpsertRoute adds or replaces a route, keyed by its canonical form
func (s *Store) UpsertRoute(r entity.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[utils.CanonicalRoute(r.Route)] = &r
}

// Snapshots

// RawMovements returns a copy of the raw store
func (s *Store) RawMovements() []entity.RawMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.RawMovement, 0, len(s.raw))
	for _, r := range s.raw {
		out = append(out, *r)
	}
	return out
}

// CleanedMovements returns a copy of the cleaned store
func (s *Store) CleanedMovements() []entity.CleanedMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.CleanedMovement, 0, len(s.cleaned))
	for _, c := range s.cleaned {
		out = append(out, *c)
	}
	return out
}

// ErrorRecords returns a copy of the error store
func (s *Store) ErrorRecords() []entity.ErrorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.ErrorRecord, 0, len(s.errors))
	for _, e := range s.errors {
		out = append(out, *e)
	}
	return out
}

// StatsRepository

// GetProcessingSummary counts every store
func (s *Store) GetProcessingSummary(ctx context.Context) (*entity.ProcessingSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &entity.ProcessingSummary{
		RawRecords:       int64(len(s.raw)),
		ProcessedRecords: int64(len(s.cleaned)),
		ErrorRecords:     int64(len(s.errors)),
		ImportedFiles:    int64(len(s.ledger)),
	}
	for _, m := range s.missing {
		switch m.Type {
		case entity.DimensionActype:
			summary.MissingActypes++
		case entity.DimensionRoute:
			summary.MissingRoutes++
		}
	}
	return summary, nil
}

// DimensionRepository

// ListAirports returns airports ordered by IATA code
func (s *Store) ListAirports(ctx context.Context) ([]*entity.Airport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Airport, 0, len(s.airports))
	for _, a := range s.airports {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IATACode < out[j].IATACode })
	return out, nil
}

// ListAirlines returns airlines ordered by carrier code
func (s *Store) ListAirlines(ctx context.Context) ([]*entity.Airline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Airline, 0, len(s.airlines))
	for _, a := range s.airlines {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Carrier < out[j].Carrier })
	return out, nil
}

// ListCountries returns countries ordered by name
func (s *Store) ListCountries(ctx context.Context) ([]*entity.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Country, 0, len(s.countries))
	for _, c := range s.countries {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListSectorRoutes returns sectors in insertion order
func (s *Store) ListSectorRoutes(ctx context.Context) ([]*entity.SectorRoute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.SectorRoute, 0, len(s.sectors))
	for _, sr := range s.sectors {
		cp := *sr
		out = append(out, &cp)
	}
	return out, nil
}

// MissingDimensionRepository

// ListMissing returns tracked entries in insertion order; an empty type lists all
func (s *Store) ListMissing(ctx context.Context, dimensionType string) ([]*entity.MissingDimension, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.MissingDimension, 0, len(s.missing))
	for _, m := range s.missing {
		if dimensionType != "" && m.Type != dimensionType {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// DistinctMissingValues returns the sorted distinct values tracked for a type
func (s *Store) DistinctMissingValues(ctx context.Context, dimensionType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, m := range s.missing {
		if m.Type != dimensionType || seen[m.Value] {
			continue
		}
		seen[m.Value] = true
		values = append(values, m.Value)
	}
	sort.Strings(values)
	return values, nil
}

// StageActypes upserts staged aircraft types
func (s *Store) StageActypes(ctx context.Context, rows []*entity.StagedActype) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := *r
		s.stagedActypes[strings.ToUpper(cp.Actype)] = &cp
	}
	return nil
}

// StageRoutes upserts staged routes
func (s *Store) StageRoutes(ctx context.Context, rows []*entity.StagedRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := *r
		s.stagedRoutes[strings.ToUpper(cp.Route)] = &cp
	}
	return nil
}

// FlightCleanRepository

// FindEligibleCleaned returns eligible cleaned records in the date key range
func (s *Store) FindEligibleCleaned(ctx context.Context, fromKey, toKey int) ([]*entity.CleanedMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.CleanedMovement, 0)
	for _, c := range s.cleaned {
		if !c.Eligible() || c.ConvertDate < fromKey || c.ConvertDate > toKey {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ConvertDate != out[j].ConvertDate {
			return out[i].ConvertDate < out[j].ConvertDate
		}
		return out[i].FlightNo < out[j].FlightNo
	})
	return out, nil
}

// ProcessingRunRepository

// SaveRun stores or replaces a run by ID
func (s *Store) SaveRun(ctx context.Context, run *entity.ProcessingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	for i, r := range s.runs {
		if r.RunID == run.RunID {
			s.runs[i] = &cp
			return nil
		}
	}
	s.runs = append(s.runs, &cp)
	return nil
}

// FindRecentRuns returns up to limit runs, newest first
func (s *Store) FindRecentRuns(ctx context.Context, limit int) ([]*entity.ProcessingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.ProcessingRun, 0, len(s.runs))
	for _, r := range s.runs {
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
