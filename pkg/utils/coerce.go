package utils

import (
	"math"
	"strconv"
	"strings"
)

// ToFloat converts a spreadsheet cell value to float64.
// Text has decimal commas replaced by decimal points before parsing.
// Missing, empty or unparsable input resolves to 0.
func ToFloat(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case string:
		return parseFloatText(v)
	case *string:
		if v == nil {
			return 0
		}
		return parseFloatText(*v)
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// ToNullableFloat is ToFloat for optional cells: empty or unparsable text yields nil.
func ToNullableFloat(text string) *float64 {
	text = normalizeNumberText(text)
	if text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ToNullableInt rounds an optional numeric cell to an integer.
func ToNullableInt(text string) *int64 {
	f := ToNullableFloat(text)
	if f == nil {
		return nil
	}
	n := int64(math.Round(*f))
	return &n
}

func parseFloatText(text string) float64 {
	text = normalizeNumberText(text)
	if text == "" {
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func normalizeNumberText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
