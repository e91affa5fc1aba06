package entity

import "time"

// Import ledger status
const (
	ImportStatusImported = "imported"
)

// ImportLedgerEntry records one ingested file. Its presence blocks re-ingestion.
type ImportLedgerEntry struct {
	ID         uint
	FileName   string
	SourceType string
	RowCount   int
	Status     string
	Checksum   string
	ImportDate time.Time
}
