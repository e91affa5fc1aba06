package inmem

import (
	"context"
	"fmt"
	"strings"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/pkg/utils"
)

// NoteDuplicate marks a cleaned record that repeats an earlier (date, flight, route)
const NoteDuplicate = "DUPLICATE"

// Region type codes stored on cleaned records
var regionTypes = map[string]int{
	"MB": 1,
	"MT": 2,
	"MN": 3,
}

// RuleEngine implements repository.RuleEngine over a Store. Each stage holds the
// store lock for its whole run and either applies all its changes or none.
type RuleEngine struct {
	store *Store
}

// NewRuleEngine creates a rule engine bound to the store
func NewRuleEngine(store *Store) *RuleEngine {
	return &RuleEngine{store: store}
}

// CleanAndProcess promotes raw movements added since the last run
func (e *RuleEngine) CleanAndProcess(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.cleaned))
	for _, c := range s.cleaned {
		seen[duplicateKey(c)] = true
	}

	now := s.clockFunc()
	watermark := s.processedRawID
	var promoted []*entity.CleanedMovement
	for _, r := range s.raw {
		if r.ID <= s.processedRawID {
			continue
		}
		if r.ID > watermark {
			watermark = r.ID
		}
		c := s.cleanRaw(r)
		c.InsertedAt = now
		key := duplicateKey(c)
		if seen[key] {
			note := NoteDuplicate
			c.Note = &note
		}
		seen[key] = true
		promoted = append(promoted, c)
	}

	for _, c := range promoted {
		c.ID = s.newID()
		s.cleaned = append(s.cleaned, c)
	}
	s.processedRawID = watermark
	return nil
}

// LogMissingDimensions tracks aircraft types and routes of cleaned records that the
// dimension tables do not know
func (e *RuleEngine) LogMissingDimensions(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked := make(map[string]bool, len(s.missing))
	for _, m := range s.missing {
		tracked[m.Type+"|"+m.Value] = true
	}

	now := s.clockFunc()
	var added []*entity.MissingDimension
	track := func(dimensionType, value string, sheet *string) {
		key := dimensionType + "|" + value
		if tracked[key] {
			return
		}
		tracked[key] = true
		m := &entity.MissingDimension{Type: dimensionType, Value: value, CreatedAt: now}
		if sheet != nil {
			m.SourceSheet = *sheet
		}
		added = append(added, m)
	}

	for _, c := range s.cleaned {
		if c.Actype != "" && !s.knownActype(c.Actype) {
			track(entity.DimensionActype, c.Actype, c.SheetName)
		}
		if _, _, ok := utils.SplitRoute(c.Route); ok && !s.knownRoute(c.Route) {
			track(entity.DimensionRoute, c.Route, c.SheetName)
		}
	}

	for _, m := range added {
		m.ID = s.newID()
		s.missing = append(s.missing, m)
	}
	return nil
}

// CleanAndValidate moves cleaned records that break a rule into the error store
func (e *RuleEngine) CleanAndValidate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clockFunc()
	kept := make([]*entity.CleanedMovement, 0, len(s.cleaned))
	var rejected []*entity.ErrorRecord
	for _, c := range s.cleaned {
		v := s.validate(c)
		if v.total() == 0 {
			kept = append(kept, c)
			continue
		}
		rejected = append(rejected, s.toErrorRecord(c, v, now))
	}

	for _, r := range rejected {
		r.ID = s.newID()
	}
	s.cleaned = kept
	s.errors = append(s.errors, rejected...)
	return nil
}

// RevalidateErrorData promotes error records that pass every rule against the
// current dimension tables and refreshes the flags of the rest
func (e *RuleEngine) RevalidateErrorData(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clockFunc()
	remaining := make([]*entity.ErrorRecord, 0, len(s.errors))
	var promoted []*entity.CleanedMovement
	for _, er := range s.errors {
		c := s.cleanRaw(&entity.RawMovement{
			ID:         er.RawID,
			FlightDate: &er.FlightDate,
			FlightNo:   er.FlightNo,
			Route:      er.Route,
			Actype:     er.Actype,
			Seat:       er.Seat,
			Adult:      er.Adult,
			Child:      er.Child,
			Cargo:      er.Cargo,
			Mail:       er.Mail,
			TotalPax:   er.TotalPax,
			Source:     er.Source,
			AcRegNo:    er.AcRegNo,
			SheetName:  er.SheetName,
		})
		v := s.validate(c)
		if v.total() == 0 {
			c.InsertedAt = now
			promoted = append(promoted, c)
			continue
		}
		updated := *er
		v.apply(&updated)
		remaining = append(remaining, &updated)
	}

	for _, c := range promoted {
		c.ID = s.newID()
		s.cleaned = append(s.cleaned, c)
	}
	s.errors = remaining
	return nil
}

// ImportMissingDimensions merges staged rows into the dimension tables, clears the
// staging tables and drops tracker entries that are now resolved
func (e *RuleEngine) ImportMissingDimensions(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := e.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, staged := range s.stagedActypes {
		seat := int64(0)
		if staged.Seat != nil {
			seat = *staged.Seat
		}
		s.actypeSeats[key] = &entity.ActypeSeat{Actype: key, Seat: seat}
	}
	for _, staged := range s.stagedRoutes {
		route := &entity.Route{
			Route:      staged.Route,
			AC:         staged.AC,
			RouteID:    staged.RouteID,
			FlightHour: staged.FlightHour,
			Taxi:       staged.Taxi,
			BlockHour:  staged.BlockHour,
			Loai:       staged.Loai,
			Type:       staged.Type,
			Country:    staged.Country,
		}
		if staged.DistanceKm != nil {
			km := float64(*staged.DistanceKm)
			route.DistanceKm = &km
		}
		s.routes[utils.CanonicalRoute(staged.Route)] = route
	}
	s.stagedActypes = make(map[string]*entity.StagedActype)
	s.stagedRoutes = make(map[string]*entity.StagedRoute)

	open := make([]*entity.MissingDimension, 0, len(s.missing))
	for _, m := range s.missing {
		switch {
		case m.Type == entity.DimensionActype && s.knownActype(m.Value):
		case m.Type == entity.DimensionRoute && s.knownRoute(m.Value):
		default:
			open = append(open, m)
		}
	}
	s.missing = open
	return nil
}

// cleanRaw derives a cleaned record from a raw movement. Caller holds s.mu.
func (s *Store) cleanRaw(r *entity.RawMovement) *entity.CleanedMovement {
	c := &entity.CleanedMovement{
		RawID:     r.ID,
		FlightNo:  normalizeCode(r.FlightNo),
		Route:     normalizeCode(r.Route),
		Actype:    normalizeCode(r.Actype),
		TotalPax:  r.TotalPax,
		Cargo:     r.Cargo,
		Mail:      r.Mail,
		Seat:      r.Seat,
		AcRegNo:   normalizeCode(r.AcRegNo),
		Source:    r.Source,
		SheetName: r.SheetName,
	}
	if c.TotalPax == 0 {
		c.TotalPax = r.Adult + r.Child
	}
	if r.FlightDate != nil {
		if date, err := utils.ParseFlightDate(*r.FlightDate); err == nil {
			c.ConvertDate = utils.DateKey(date)
			c.YearNumber, c.WeekNumber = date.ISOWeek()
		}
	}
	if entry, ok := s.ledger[r.Source]; ok {
		c.RegionType = regionTypes[entry.SourceType]
	}
	if c.TotalPax > 0 || c.Cargo > 0 || c.Mail > 0 {
		c.TypeFilter = 1
	}
	return c
}

func (s *Store) knownActype(actype string) bool {
	_, ok := s.actypeSeats[strings.ToUpper(strings.TrimSpace(actype))]
	return ok
}

func (s *Store) knownRoute(route string) bool {
	_, ok := s.routes[utils.CanonicalRoute(route)]
	return ok
}

func normalizeCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func duplicateKey(c *entity.CleanedMovement) string {
	return fmt.Sprintf("%d|%s|%s", c.ConvertDate, c.FlightNo, c.Route)
}
