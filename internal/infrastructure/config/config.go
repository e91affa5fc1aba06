// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	APIPrefix      string
	GinMode        string
	MaxUploadBytes int64

	// Store
	StoreBackend string
	PostgresDSN  string
	DBMaxIdle    int
	DBMaxOpen    int

	// MongoDB, empty URI disables the processing run audit log
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Pipeline
	StageTimeout     time.Duration
	MetricsNamespace string

	Ingestion IngestionConfig
}

// SourceMarker identifies the files of one reporting source by a token in the file name
type SourceMarker struct {
	SourceType string
	Markers    []string
	// MatchAnywhere matches the marker at any position; otherwise only as a prefix
	MatchAnywhere bool
}

// Procedures names the stored procedures behind each cleaning stage
type Procedures struct {
	CleanAndProcess         string
	LogMissingDimensions    string
	CleanAndValidate        string
	RevalidateErrorData     string
	ImportMissingDimensions string
}

// IngestionConfig carries the tunables of classification, normalization and enrichment
type IngestionConfig struct {
	// Sources in priority order, first match wins
	Sources               []SourceMarker
	RouteTagSource        string
	RouteTagWhitelist     []string
	CanonicalColumns      []string
	NumericColumns        []string
	SpreadsheetExtensions []string
	HomeCountry           string
	Procedures            Procedures
}

// DefaultIngestionConfig returns the ingestion settings used when no override is set
func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		Sources: []SourceMarker{
			{SourceType: "MN", Markers: []string{"toan cang"}, MatchAnywhere: true},
			{SourceType: "MB", Markers: []string{"NAA"}},
			{SourceType: "MT", Markers: []string{"CV1"}},
		},
		RouteTagSource:    "MB",
		RouteTagWhitelist: []string{"THD", "HPH", "HAN", "VDO", "VDH", "VII", "DIN"},
		CanonicalColumns: []string{
			"flightdate", "flightno", "actype", "route", "cgo", "mail", "seat",
			"adl", "chd", "totalpax", "acregno", "source", "sheet_name",
		},
		NumericColumns:        []string{"cgo", "mail", "adl", "chd", "seat", "totalpax"},
		SpreadsheetExtensions: []string{".xlsx", ".xls"},
		HomeCountry:           "Vietnam",
		Procedures: Procedures{
			CleanAndProcess:         "usp_CleanAndProcessFlightData",
			LogMissingDimensions:    "usp_LogMissingDimensions",
			CleanAndValidate:        "usp_CleanAndValidateFlightData",
			RevalidateErrorData:     "usp_RevalidateErrorData",
			ImportMissingDimensions: "usp_ImportAndUpdateMissingDimensions",
		},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:     getEnv("APP_VERSION", "1.0.0"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnv("PORT", "8080"),
		ReadTimeout:    time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout:   time.Duration(getEnvAsInt("WRITE_TIMEOUT", 300)) * time.Second,
		APIPrefix:      getEnv("API_PREFIX", "/api/v1/data-processing"),
		GinMode:        getEnv("GIN_MODE", "release"),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 200)) << 20,

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		PostgresDSN:  getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=flights port=5432 sslmode=disable"),
		DBMaxIdle:    getEnvAsInt("DB_MAX_IDLE", 10),
		DBMaxOpen:    getEnvAsInt("DB_MAX_OPEN", 50),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "flight_ingest"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		StageTimeout:     time.Duration(getEnvAsInt("STAGE_TIMEOUT", 600)) * time.Second,
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "flight_ingest"),
	}

	config.Ingestion = loadIngestionConfig()

	return config, nil
}

func loadIngestionConfig() IngestionConfig {
	ic := DefaultIngestionConfig()

	for i := range ic.Sources {
		key := "SOURCE_MARKERS_" + ic.Sources[i].SourceType
		ic.Sources[i].Markers = getEnvAsList(key, ic.Sources[i].Markers)
	}

	// SOURCE_PRIORITY reorders the known sources; unknown names are ignored
	if order := getEnvAsList("SOURCE_PRIORITY", nil); len(order) > 0 {
		byType := make(map[string]SourceMarker, len(ic.Sources))
		for _, s := range ic.Sources {
			byType[s.SourceType] = s
		}
		sources := make([]SourceMarker, 0, len(ic.Sources))
		for _, name := range order {
			if s, ok := byType[strings.ToUpper(name)]; ok {
				sources = append(sources, s)
				delete(byType, s.SourceType)
			}
		}
		for _, s := range ic.Sources {
			if _, left := byType[s.SourceType]; left {
				sources = append(sources, s)
			}
		}
		ic.Sources = sources
	}

	ic.RouteTagSource = getEnv("ROUTE_TAG_SOURCE", ic.RouteTagSource)
	ic.RouteTagWhitelist = getEnvAsList("MB_ROUTE_WHITELIST", ic.RouteTagWhitelist)
	ic.SpreadsheetExtensions = getEnvAsList("SPREADSHEET_EXTENSIONS", ic.SpreadsheetExtensions)
	ic.HomeCountry = getEnv("HOME_COUNTRY", ic.HomeCountry)

	ic.Procedures.CleanAndProcess = getEnv("PROC_CLEAN_AND_PROCESS", ic.Procedures.CleanAndProcess)
	ic.Procedures.LogMissingDimensions = getEnv("PROC_LOG_MISSING_DIMENSIONS", ic.Procedures.LogMissingDimensions)
	ic.Procedures.CleanAndValidate = getEnv("PROC_CLEAN_AND_VALIDATE", ic.Procedures.CleanAndValidate)
	ic.Procedures.RevalidateErrorData = getEnv("PROC_REVALIDATE_ERROR_DATA", ic.Procedures.RevalidateErrorData)
	ic.Procedures.ImportMissingDimensions = getEnv("PROC_IMPORT_MISSING_DIMENSIONS", ic.Procedures.ImportMissingDimensions)

	return ic
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blank items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
