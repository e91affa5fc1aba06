package utils

import (
	"regexp"
	"strings"
)

// RouteSeparator joins the two legs of a canonical route
const RouteSeparator = "-"

var routePattern = regexp.MustCompile(`^([A-Z]{3})\s*-\s*([A-Z]{3})$`)

// SplitRoute extracts departure and arrival codes from a route such as "SGN-HAN".
func SplitRoute(route string) (departure, arrival string, ok bool) {
	match := routePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(route)))
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}

// CanonicalRoute orders the two legs lexicographically so that both directions
// of a route produce the same key. Routes that are not AAA-BBB are returned
// upper-cased and trimmed.
func CanonicalRoute(route string) string {
	departure, arrival, ok := SplitRoute(route)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(route))
	}
	if arrival < departure {
		departure, arrival = arrival, departure
	}
	return departure + RouteSeparator + arrival
}

// CarrierCode returns the two-character airline prefix of a flight number
func CarrierCode(flightNo string) string {
	prefix := strings.ReplaceAll(flightNo, "/", "")
	prefix = strings.ToUpper(strings.ReplaceAll(prefix, " ", ""))
	if len(prefix) >= 2 {
		prefix = prefix[:2]
	}
	return prefix
}
