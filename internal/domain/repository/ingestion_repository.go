package repository

import (
	"context"

	"flight-ingest-service/internal/domain/entity"
)

// IngestionRepository opens the unit of work used by one ingestion batch
type IngestionRepository interface {
	Begin(ctx context.Context) (IngestionTx, error)
}

// IngestionTx is a batch transaction over the raw store and the import ledger.
// Savepoints scope the writes of a single file so that a failure rolls back only that file.
type IngestionTx interface {
	IsFileImported(ctx context.Context, fileName string) (bool, error)
	AppendRawMovements(ctx context.Context, rows []*entity.RawMovement) error
	MarkFileImported(ctx context.Context, entry *entity.ImportLedgerEntry) error
	SavePoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
