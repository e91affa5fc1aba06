package spreadsheet

import (
	"bytes"
	"fmt"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/usecase"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of xlsx downloads
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExcelOpener opens xlsx content with excelize
type ExcelOpener struct{}

// NewExcelOpener creates a new excel opener
func NewExcelOpener() *ExcelOpener {
	return &ExcelOpener{}
}

// Open parses workbook content. Legacy BIFF .xls files are not readable and fail here.
func (o *ExcelOpener) Open(fileName string, content []byte) (usecase.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", fileName, err)
	}
	return &excelWorkbook{file: f}, nil
}

type excelWorkbook struct {
	file *excelize.File
}

func (w *excelWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows reads raw cell values so date cells come back as serial numbers
func (w *excelWorkbook) Rows(sheet string) ([][]string, error) {
	return w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func (w *excelWorkbook) Close() error {
	return w.file.Close()
}

// ExcelWriter renders sheet views into an xlsx file
type ExcelWriter struct{}

// NewExcelWriter creates a new excel writer
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

// Write creates one sheet per view, in order, with the columns as header row
func (wr *ExcelWriter) Write(views []entity.SheetView) ([]byte, error) {
	if len(views) == 0 {
		return nil, fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, view := range views {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), view.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", view.Name, err)
			}
		} else if _, err := f.NewSheet(view.Name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", view.Name, err)
		}

		header := make([]interface{}, len(view.Columns))
		for j, col := range view.Columns {
			header[j] = col
		}
		if err := writeRow(f, view.Name, 1, header); err != nil {
			return nil, err
		}
		for j, row := range view.Rows {
			if err := writeRow(f, view.Name, j+2, row); err != nil {
				return nil, err
			}
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %s: %w", rowNo, sheet, err)
	}
	return nil
}
