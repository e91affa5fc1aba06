package utils

import "testing"

func TestCanonicalRouteIsDirectionIndependent(t *testing.T) {
	pairs := [][2]string{
		{"SGN-HAN", "HAN-SGN"},
		{"dad-han", "HAN-DAD"},
		{"PQC - SGN", "SGN-PQC"},
		{"ICN-HAN", "HAN-ICN"},
	}
	for _, p := range pairs {
		a, b := CanonicalRoute(p[0]), CanonicalRoute(p[1])
		if a != b {
			t.Errorf("CanonicalRoute(%q)=%q differs from CanonicalRoute(%q)=%q", p[0], a, p[1], b)
		}
	}

	if got := CanonicalRoute("SGN-HAN"); got != "HAN-SGN" {
		t.Fatalf("expected HAN-SGN, got %s", got)
	}
}

func TestCanonicalRouteLeavesUnrecognizedRoutes(t *testing.T) {
	if got := CanonicalRoute(" sgn-han-dad "); got != "SGN-HAN-DAD" {
		t.Fatalf("unexpected canonical form %q", got)
	}
	if got := CanonicalRoute(""); got != "" {
		t.Fatalf("expected empty route, got %q", got)
	}
}

func TestSplitRoute(t *testing.T) {
	dep, arr, ok := SplitRoute("vii-sgn")
	if !ok || dep != "VII" || arr != "SGN" {
		t.Fatalf("unexpected split %s %s %v", dep, arr, ok)
	}
	if _, _, ok := SplitRoute("SGNHAN"); ok {
		t.Fatal("expected SGNHAN not to split")
	}
}

func TestCarrierCode(t *testing.T) {
	cases := map[string]string{
		"VN123":  "VN",
		"vj 456": "VJ",
		"Q/H12":  "QH",
		"V":      "V",
	}
	for in, want := range cases {
		if got := CarrierCode(in); got != want {
			t.Errorf("CarrierCode(%q) = %q, want %q", in, got, want)
		}
	}
}
