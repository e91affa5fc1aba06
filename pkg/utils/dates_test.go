package utils

import (
	"testing"
	"time"
)

func TestParseFlightDate(t *testing.T) {
	cases := map[string]int{
		"2024-03-05":          20240305,
		"2024-03-05 00:00:00": 20240305,
		"05/03/2024":          20240305,
		"5/3/2024":            20240305,
		"05.03.2024":          20240305,
		"45356":               20240305,
	}
	for in, want := range cases {
		got, err := ParseFlightDate(in)
		if err != nil {
			t.Fatalf("ParseFlightDate(%q) error: %v", in, err)
		}
		if DateKey(got) != want {
			t.Errorf("ParseFlightDate(%q) = %d, want %d", in, DateKey(got), want)
		}
	}

	if _, err := ParseFlightDate("not a date"); err == nil {
		t.Fatal("expected error for garbage date")
	}
	if _, err := ParseFlightDate(""); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestParseDateParamDropsTime(t *testing.T) {
	got, err := ParseDateParam("2024-01-31T23:59:59Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight, got %v", got)
	}
	if _, err := ParseDateParam("31/01/2024"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	d := time.Date(2023, 12, 9, 0, 0, 0, 0, time.UTC)
	if key := DateKey(d); key != 20231209 {
		t.Fatalf("unexpected key %d", key)
	}
	if !FromDateKey(20231209).Equal(d) {
		t.Fatalf("unexpected date %v", FromDateKey(20231209))
	}
}

func TestFlightDateText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"45356", "2024-03-05 00:00:00"},
		{" 05/03/2024 ", "05/03/2024"},
		{"", ""},
		{"0", "0"},
	}
	for _, tc := range cases {
		if got := FlightDateText(tc.in); got != tc.want {
			t.Errorf("FlightDateText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
