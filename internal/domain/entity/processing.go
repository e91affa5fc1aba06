package entity

import "time"

// Rule engine stage names
const (
	StageCleanAndProcess         = "clean_and_process"
	StageLogMissingDimensions    = "log_missing_dimensions"
	StageCleanAndValidate        = "clean_and_validate"
	StageRevalidateErrorData     = "revalidate_error_data"
	StageImportMissingDimensions = "import_missing_dimensions"
)

// Processing run kinds
const (
	RunKindUpload           = "upload"
	RunKindDataCleaning     = "data_cleaning"
	RunKindRevalidate       = "revalidate"
	RunKindImportDimensions = "import_missing_dimensions"
)

// Processing run status
const (
	StatusCompleted = "COMPLETED"
	StatusPartial   = "PARTIAL"
	StatusFailed    = "FAILED"
)

// ProcessingSummary holds store-wide aggregate counts
type ProcessingSummary struct {
	RawRecords       int64 `json:"raw_records" bson:"rawRecords"`
	ProcessedRecords int64 `json:"processed_records" bson:"processedRecords"`
	ErrorRecords     int64 `json:"error_records" bson:"errorRecords"`
	MissingActypes   int64 `json:"missing_actypes" bson:"missingActypes"`
	MissingRoutes    int64 `json:"missing_routes" bson:"missingRoutes"`
	ImportedFiles    int64 `json:"imported_files" bson:"importedFiles"`
}

// FileDetail describes one successfully ingested file
type FileDetail struct {
	FileName     string `json:"file_name" bson:"fileName"`
	FileType     string `json:"file_type" bson:"fileType"`
	Rows         int    `json:"rows" bson:"rows"`
	FilteredRows int    `json:"filtered_rows" bson:"filteredRows"`
}

// BatchResult is the outcome of one ingestion batch
type BatchResult struct {
	ProcessedFiles int          `json:"processed_files" bson:"processedFiles"`
	TotalRows      int          `json:"total_rows" bson:"totalRows"`
	FilteredRows   int          `json:"filtered_rows" bson:"filteredRows"`
	SkippedFiles   int          `json:"skipped_files" bson:"skippedFiles"`
	Errors         []string     `json:"errors" bson:"errors"`
	Warnings       []string     `json:"warnings" bson:"warnings"`
	FileDetails    []FileDetail `json:"file_details" bson:"fileDetails"`
}

// StageReport records the execution of one rule engine stage
type StageReport struct {
	Stage      string    `json:"stage" bson:"stage"`
	StartedAt  time.Time `json:"started_at" bson:"startedAt"`
	DurationMs int64     `json:"duration_ms" bson:"durationMs"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
}

// StageRunReport is the outcome of a sequence of stages with counts around it
type StageRunReport struct {
	Before *ProcessingSummary `json:"before" bson:"before"`
	After  *ProcessingSummary `json:"after" bson:"after"`
	Stages []StageReport      `json:"stages" bson:"stages"`
}

// ProcessingRun is the audit document for one pipeline invocation
type ProcessingRun struct {
	RunID      string          `json:"run_id" bson:"runId"`
	Kind       string          `json:"kind" bson:"kind"`
	Status     string          `json:"status" bson:"status"`
	StartedAt  time.Time       `json:"started_at" bson:"startedAt"`
	FinishedAt time.Time       `json:"finished_at" bson:"finishedAt"`
	Batch      *BatchResult    `json:"batch,omitempty" bson:"batch,omitempty"`
	Stages     *StageRunReport `json:"stages,omitempty" bson:"stages,omitempty"`
	Error      string          `json:"error,omitempty" bson:"error,omitempty"`
}

// UploadResult is the response to an upload batch
type UploadResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	BatchResult
	Cleaning          *StageRunReport    `json:"cleaning,omitempty"`
	StageError        string             `json:"stage_error,omitempty"`
	ProcessingSummary *ProcessingSummary `json:"processing_summary"`
}

// CleaningResult is the response to an on-demand stage run
type CleaningResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Report  *StageRunReport `json:"report"`
}

// MissingCounts are the outstanding missing dimension counts
type MissingCounts struct {
	MissingActypes int64 `json:"missing_actypes"`
	MissingRoutes  int64 `json:"missing_routes"`
}

// ResolvedCounts are the missing dimensions resolved by a merge
type ResolvedCounts struct {
	Actypes int64 `json:"actypes"`
	Routes  int64 `json:"routes"`
}

// ImportMissingResult is the response to a backfill merge
type ImportMissingResult struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	BeforeImport MissingCounts  `json:"before_import"`
	AfterImport  MissingCounts  `json:"after_import"`
	Resolved     ResolvedCounts `json:"resolved"`
}
