package ruleengine

import (
	"testing"

	"flight-ingest-service/internal/infrastructure/config"
	"flight-ingest-service/pkg/logger"
)

func TestCallStatement(t *testing.T) {
	cases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "usp_CleanAndProcessFlightData", want: `CALL "usp_CleanAndProcessFlightData"()`},
		{name: "etl.usp_LogMissingDimensions", want: `CALL "etl"."usp_LogMissingDimensions"()`},
		{name: "", wantErr: true},
		{name: "a.b.c", wantErr: true},
		{name: `x"; DROP TABLE flight_raw; --`, wantErr: true},
		{name: "1proc", wantErr: true},
		{name: "etl.", wantErr: true},
	}

	for _, tc := range cases {
		got, err := callStatement(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("callStatement(%q) = %q, want error", tc.name, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("callStatement(%q) unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("callStatement(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNewProcedureEngineRejectsBadNames(t *testing.T) {
	procs := config.DefaultIngestionConfig().Procedures
	if _, err := NewProcedureEngine(nil, procs, logger.NewNopLogger()); err != nil {
		t.Fatalf("default procedures rejected: %v", err)
	}

	procs.CleanAndValidate = "bad name"
	if _, err := NewProcedureEngine(nil, procs, logger.NewNopLogger()); err == nil {
		t.Fatal("expected an error for an invalid procedure name")
	}
}
