package usecase

import "flight-ingest-service/internal/domain/entity"

// Workbook is an opened spreadsheet file
type Workbook interface {
	// SheetNames returns the sheet names in workbook order
	SheetNames() []string

	// Rows returns every row of a sheet as raw cell text, header first
	Rows(sheet string) ([][]string, error)

	Close() error
}

// WorkbookOpener opens uploaded spreadsheet content
type WorkbookOpener interface {
	Open(fileName string, content []byte) (Workbook, error)
}

// WorkbookWriter renders tabular views into a spreadsheet file
type WorkbookWriter interface {
	Write(views []entity.SheetView) ([]byte, error)
}
