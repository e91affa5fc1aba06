package inmem

import (
	"strings"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/pkg/utils"
)

// Error reasons recorded on error records
const (
	ReasonInvalidFlightDate     = "Invalid flight date"
	ReasonInvalidPassengerCargo = "Invalid passenger/cargo figures"
	ReasonInvalidRoute          = "Unknown or malformed route"
	ReasonInvalidActypeSeat     = "Unknown aircraft type"
)

type violations struct {
	flightDate     bool
	passengerCargo bool
	route          bool
	actypeSeat     bool
}

func (v violations) total() int {
	n := 0
	for _, b := range []bool{v.flightDate, v.passengerCargo, v.route, v.actypeSeat} {
		if b {
			n++
		}
	}
	return n
}

func (v violations) reasons() string {
	var reasons []string
	if v.flightDate {
		reasons = append(reasons, ReasonInvalidFlightDate)
	}
	if v.passengerCargo {
		reasons = append(reasons, ReasonInvalidPassengerCargo)
	}
	if v.route {
		reasons = append(reasons, ReasonInvalidRoute)
	}
	if v.actypeSeat {
		reasons = append(reasons, ReasonInvalidActypeSeat)
	}
	return strings.Join(reasons, "; ")
}

func (v violations) apply(er *entity.ErrorRecord) {
	er.InvalidFlightDate = flag(v.flightDate)
	er.InvalidPassengerCargo = flag(v.passengerCargo)
	er.InvalidRoute = flag(v.route)
	er.InvalidActypeSeat = flag(v.actypeSeat)
	er.ErrorReason = v.reasons()
	er.TotalErrors = v.total()
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// validate checks the four record rules. Caller holds s.mu.
func (s *Store) validate(c *entity.CleanedMovement) violations {
	var v violations

	v.flightDate = c.ConvertDate == 0

	if c.TotalPax < 0 || c.Cargo < 0 || c.Mail < 0 || c.Seat < 0 {
		v.passengerCargo = true
	}
	capacity := c.Seat
	if capacity == 0 {
		if seat, ok := s.actypeSeats[c.Actype]; ok {
			capacity = float64(seat.Seat)
		}
	}
	if capacity > 0 && c.TotalPax > capacity {
		v.passengerCargo = true
	}

	if _, _, ok := utils.SplitRoute(c.Route); !ok || !s.knownRoute(c.Route) {
		v.route = true
	}

	v.actypeSeat = c.Actype == "" || !s.knownActype(c.Actype)

	return v
}

// toErrorRecord copies a rejected cleaned record with the raw date text it came from
func (s *Store) toErrorRecord(c *entity.CleanedMovement, v violations, now time.Time) *entity.ErrorRecord {
	er := &entity.ErrorRecord{
		RawID:      c.RawID,
		FlightNo:   c.FlightNo,
		Route:      c.Route,
		Actype:     c.Actype,
		Seat:       c.Seat,
		Cargo:      c.Cargo,
		Mail:       c.Mail,
		TotalPax:   c.TotalPax,
		Source:     c.Source,
		AcRegNo:    c.AcRegNo,
		SheetName:  c.SheetName,
		TimeImport: now,
	}
	if raw := s.rawByID(c.RawID); raw != nil {
		if raw.FlightDate != nil {
			er.FlightDate = *raw.FlightDate
		}
		er.Adult = raw.Adult
		er.Child = raw.Child
	} else if c.ConvertDate > 0 {
		er.FlightDate = utils.FromDateKey(c.ConvertDate).Format("2006-01-02")
	}
	v.apply(er)
	return er
}

func (s *Store) rawByID(id uint) *entity.RawMovement {
	// raw IDs are assigned in increasing order
	lo, hi := 0, len(s.raw)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case s.raw[mid].ID == id:
			return s.raw[mid]
		case s.raw[mid].ID < id:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return nil
}
