package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STAGE_TIMEOUT", "")
	t.Setenv("SOURCE_PRIORITY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StoreBackend != BackendPostgres {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendPostgres)
	}
	if cfg.StageTimeout != 600*time.Second {
		t.Errorf("StageTimeout = %v", cfg.StageTimeout)
	}
	if cfg.APIPrefix == "" {
		t.Error("APIPrefix is empty")
	}

	var order []string
	for _, s := range cfg.Ingestion.Sources {
		order = append(order, s.SourceType)
	}
	if !reflect.DeepEqual(order, []string{"MN", "MB", "MT"}) {
		t.Errorf("source order = %v", order)
	}
	if !cfg.Ingestion.Sources[0].MatchAnywhere || cfg.Ingestion.Sources[1].MatchAnywhere {
		t.Error("only MN should match anywhere")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("STAGE_TIMEOUT", "5")
	t.Setenv("SOURCE_PRIORITY", "mt, mb")
	t.Setenv("SOURCE_MARKERS_MN", "toan cang, tcs")
	t.Setenv("MB_ROUTE_WHITELIST", "HAN,,HPH")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.StageTimeout != 5*time.Second {
		t.Errorf("StageTimeout = %v", cfg.StageTimeout)
	}

	var order []string
	for _, s := range cfg.Ingestion.Sources {
		order = append(order, s.SourceType)
	}
	if !reflect.DeepEqual(order, []string{"MT", "MB", "MN"}) {
		t.Errorf("source order = %v", order)
	}
	if got := cfg.Ingestion.Sources[2].Markers; !reflect.DeepEqual(got, []string{"toan cang", "tcs"}) {
		t.Errorf("MN markers = %v", got)
	}
	if got := cfg.Ingestion.RouteTagWhitelist; !reflect.DeepEqual(got, []string{"HAN", "HPH"}) {
		t.Errorf("whitelist = %v", got)
	}
}
