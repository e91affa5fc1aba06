package usecase

import (
	"strings"

	"flight-ingest-service/internal/infrastructure/config"
)

// SourceHandler defines the interface for one reporting source's file layout
type SourceHandler interface {
	// SourceType is the code stored on the ledger entry (MN, MB, MT)
	SourceType() string

	// CanHandle determines if this handler recognizes the given file name
	CanHandle(fileName string) bool

	// SheetTag returns the region tag stamped on a row of the given sheet
	SheetTag(sheetName, route string) *string
}

// SourceRouter routes files to the handler of their reporting source
type SourceRouter interface {
	// Register registers a handler; handlers are tried in registration order
	Register(handler SourceHandler)

	// GetHandler returns the first handler recognizing the file, or nil
	GetHandler(fileName string) SourceHandler
}

// NewSourceHandlers builds one handler per configured source, in priority order
func NewSourceHandlers(cfg config.IngestionConfig) []SourceHandler {
	handlers := make([]SourceHandler, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		matcher := newMarkerMatcher(src.Markers, src.MatchAnywhere)
		if strings.EqualFold(src.SourceType, cfg.RouteTagSource) {
			handlers = append(handlers, &RouteTaggedSource{
				sourceType: src.SourceType,
				matcher:    matcher,
				whitelist:  cfg.RouteTagWhitelist,
			})
			continue
		}
		handlers = append(handlers, &SheetNameSource{
			sourceType: src.SourceType,
			matcher:    matcher,
		})
	}
	return handlers
}

type markerMatcher struct {
	markers  []string
	anywhere bool
}

func newMarkerMatcher(markers []string, anywhere bool) markerMatcher {
	lowered := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			lowered = append(lowered, m)
		}
	}
	return markerMatcher{markers: lowered, anywhere: anywhere}
}

func (m markerMatcher) matches(fileName string) bool {
	name := strings.ToLower(strings.TrimSpace(fileName))
	for _, marker := range m.markers {
		if m.anywhere && strings.Contains(name, marker) {
			return true
		}
		if !m.anywhere && strings.HasPrefix(name, marker) {
			return true
		}
	}
	return false
}

// SheetNameSource tags every row with the name of the sheet it came from
type SheetNameSource struct {
	sourceType string
	matcher    markerMatcher
}

func (s *SheetNameSource) SourceType() string { return s.sourceType }

func (s *SheetNameSource) CanHandle(fileName string) bool { return s.matcher.matches(fileName) }

func (s *SheetNameSource) SheetTag(sheetName, _ string) *string {
	return &sheetName
}

// RouteTaggedSource tags rows with the first whitelisted airport code found in the route
type RouteTaggedSource struct {
	sourceType string
	matcher    markerMatcher
	whitelist  []string
}

func (s *RouteTaggedSource) SourceType() string { return s.sourceType }

func (s *RouteTaggedSource) CanHandle(fileName string) bool { return s.matcher.matches(fileName) }

func (s *RouteTaggedSource) SheetTag(_, route string) *string {
	route = strings.ToUpper(route)
	for _, code := range s.whitelist {
		if strings.Contains(route, strings.ToUpper(code)) {
			tag := code
			return &tag
		}
	}
	return nil
}
