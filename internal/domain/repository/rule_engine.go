package repository

import "context"

// RuleEngine runs the named cleaning stages. Each call is atomic: on error nothing
// the stage did is kept.
type RuleEngine interface {
	// CleanAndProcess promotes new raw movements into the cleaned store
	CleanAndProcess(ctx context.Context) error
	// LogMissingDimensions records aircraft types and routes unknown to the dimension tables
	LogMissingDimensions(ctx context.Context) error
	// CleanAndValidate moves rule violators from the cleaned store to the error store
	CleanAndValidate(ctx context.Context) error
	// RevalidateErrorData re-checks error records and promotes those that now pass
	RevalidateErrorData(ctx context.Context) error
	// ImportMissingDimensions merges staged backfill rows into the dimension tables
	ImportMissingDimensions(ctx context.Context) error
}
