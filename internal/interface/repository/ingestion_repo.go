package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"

	"gorm.io/gorm"
)

const rawInsertBatchSize = 500

// FlightRaw GORM model for the raw movement store
type FlightRaw struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	FlightDate *string   `gorm:"column:flightdate"`
	FlightNo   string    `gorm:"column:flightno"`
	Route      string    `gorm:"column:route"`
	Actype     string    `gorm:"column:actype"`
	Seat       int64     `gorm:"column:seat"`
	Adult      float64   `gorm:"column:adl"`
	Child      float64   `gorm:"column:chd"`
	Cargo      float64   `gorm:"column:cgo"`
	Mail       float64   `gorm:"column:mail"`
	TotalPax   float64   `gorm:"column:totalpax"`
	Source     string    `gorm:"column:source"`
	AcRegNo    string    `gorm:"column:acregno"`
	SheetName  *string   `gorm:"column:sheet_name"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name
func (FlightRaw) TableName() string {
	return "flight_raw"
}

// ImportLog GORM model for the import ledger
type ImportLog struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	FileName   string    `gorm:"column:file_name;uniqueIndex"`
	ImportDate time.Time `gorm:"column:import_date"`
	SourceType string    `gorm:"column:source_type"`
	Status     string    `gorm:"column:status"`
	RowCount   int       `gorm:"column:row_count"`
	Checksum   string    `gorm:"column:checksum"`
}

// TableName overrides the default table name
func (ImportLog) TableName() string {
	return "import_log"
}

// GormIngestionRepository implements the IngestionRepository interface
type GormIngestionRepository struct {
	db *gorm.DB
}

// NewGormIngestionRepository creates a new GORM ingestion repository
func NewGormIngestionRepository(db *gorm.DB) repository.IngestionRepository {
	return &GormIngestionRepository{
		db: db,
	}
}

// Begin opens the batch transaction
func (r *GormIngestionRepository) Begin(ctx context.Context) (repository.IngestionTx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin ingestion transaction: %w", tx.Error)
	}
	return &gormIngestionTx{tx: tx}, nil
}

type gormIngestionTx struct {
	tx *gorm.DB
}

func (t *gormIngestionTx) IsFileImported(ctx context.Context, fileName string) (bool, error) {
	var count int64
	err := t.tx.WithContext(ctx).Model(&ImportLog{}).Where("file_name = ?", fileName).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *gormIngestionTx) AppendRawMovements(ctx context.Context, rows []*entity.RawMovement) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]*FlightRaw, 0, len(rows))
	for _, row := range rows {
		models = append(models, &FlightRaw{
			FlightDate: row.FlightDate,
			FlightNo:   row.FlightNo,
			Route:      row.Route,
			Actype:     row.Actype,
			Seat:       int64(math.Round(row.Seat)),
			Adult:      row.Adult,
			Child:      row.Child,
			Cargo:      row.Cargo,
			Mail:       row.Mail,
			TotalPax:   row.TotalPax,
			Source:     row.Source,
			AcRegNo:    row.AcRegNo,
			SheetName:  row.SheetName,
			CreatedAt:  row.CreatedAt,
		})
	}

	if err := t.tx.WithContext(ctx).CreateInBatches(models, rawInsertBatchSize).Error; err != nil {
		return err
	}

	for i, model := range models {
		rows[i].ID = model.ID
	}
	return nil
}

func (t *gormIngestionTx) MarkFileImported(ctx context.Context, entry *entity.ImportLedgerEntry) error {
	model := &ImportLog{
		FileName:   entry.FileName,
		ImportDate: entry.ImportDate,
		SourceType: entry.SourceType,
		Status:     entry.Status,
		RowCount:   entry.RowCount,
		Checksum:   entry.Checksum,
	}
	if err := t.tx.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	entry.ID = model.ID
	return nil
}

func (t *gormIngestionTx) SavePoint(ctx context.Context, name string) error {
	return t.tx.WithContext(ctx).SavePoint(name).Error
}

func (t *gormIngestionTx) RollbackTo(ctx context.Context, name string) error {
	return t.tx.WithContext(ctx).RollbackTo(name).Error
}

func (t *gormIngestionTx) Commit(ctx context.Context) error {
	return t.tx.WithContext(ctx).Commit().Error
}

func (t *gormIngestionTx) Rollback(ctx context.Context) error {
	return t.tx.WithContext(ctx).Rollback().Error
}
