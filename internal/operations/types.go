package operations

import (
	"time"
)

// Pipeline stage identifiers
const (
	StageIDIngest    = "ingest"
	StageIDAnalytics = "analytics"
	StageIDForecast  = "forecast"
)

// Pipeline stage names
const (
	StageNameIngest    = "Data Normalization"
	StageNameAnalytics = "Sales Analytics"
	StageNameForecast  = "Sales Forecast"
)

// Context keys for operation state
const (
	ContextKeyInputFile    = "input_file"
	ContextKeyFilesWritten = "files_written"
	ContextKeyDailyRows    = "daily_rows"
	ContextKeyHoldout      = "holdout_metrics"
)

// Step metadata keys
const (
	MetadataKeyRowsIn      = "rows_in"
	MetadataKeyRowsOut     = "rows_out"
	MetadataKeyRowsDropped = "rows_dropped"
	MetadataKeyFiles       = "files"
	MetadataKeyCutoff      = "cutoff"
)

// DefaultStageTimeout bounds a stage when the config leaves it unset
const DefaultStageTimeout = 30 * time.Minute

// OperationRequest selects what a run executes.
// An empty Stages list runs every registered stage in registration order.
type OperationRequest struct {
	ID        string   `json:"id"`
	Stages    []string `json:"stages,omitempty"`
	InputFile string   `json:"input_file,omitempty"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Files    []string              `json:"files,omitempty"`
	Error    string                `json:"error,omitempty"`
}
