package usecase

import (
	"fmt"
	"strings"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/infrastructure/config"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/utils"
)

// NormalizedFile is the flat row set extracted from one workbook
type NormalizedFile struct {
	Rows     []*entity.RawMovement
	Warnings []string
}

// SheetNormalizer reshapes workbook sheets into canonical raw movements
type SheetNormalizer struct {
	columns []string
	numeric map[string]bool
	logger  logger.Logger
}

// NewSheetNormalizer creates a normalizer for the configured canonical columns
func NewSheetNormalizer(cfg config.IngestionConfig, logger logger.Logger) *SheetNormalizer {
	numeric := make(map[string]bool, len(cfg.NumericColumns))
	for _, col := range cfg.NumericColumns {
		numeric[strings.ToLower(col)] = true
	}
	return &SheetNormalizer{
		columns: cfg.CanonicalColumns,
		numeric: numeric,
		logger:  logger,
	}
}

// Normalize extracts every sheet of the workbook. A sheet that cannot be read
// contributes no rows and a warning; the remaining sheets are still processed.
func (n *SheetNormalizer) Normalize(wb Workbook, handler SourceHandler, fileName string) *NormalizedFile {
	result := &NormalizedFile{}

	for _, sheet := range wb.SheetNames() {
		if sheet == "" {
			continue
		}
		rows, err := n.normalizeSheet(wb, sheet, handler, fileName)
		if err != nil {
			n.logger.Warn("Skipping sheet",
				"file", fileName,
				"sheet", sheet,
				"error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("sheet %q of file %s: %v", sheet, fileName, err))
			continue
		}
		result.Rows = append(result.Rows, rows...)
	}

	return result
}

func (n *SheetNormalizer) normalizeSheet(wb Workbook, sheet string, handler SourceHandler, fileName string) (rows []*entity.RawMovement, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed sheet: %v", r)
		}
	}()

	cells, err := wb.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	index := headerIndex(cells[0])
	var lastDate *string

	for _, cellRow := range cells[1:] {
		text := make(map[string]string, len(n.columns))
		values := make(map[string]float64, len(n.numeric))
		for _, col := range n.columns {
			raw := ""
			if i, ok := index[col]; ok && i < len(cellRow) {
				raw = strings.TrimSpace(cellRow[i])
			}
			if n.numeric[col] {
				values[col] = utils.ToFloat(raw)
				continue
			}
			text[col] = raw
		}

		if date := utils.FlightDateText(text["flightdate"]); date != "" {
			lastDate = &date
		}

		row := &entity.RawMovement{
			FlightNo: text["flightno"],
			Actype:   text["actype"],
			Route:    text["route"],
			AcRegNo:  text["acregno"],
			Seat:     values["seat"],
			Adult:    values["adl"],
			Child:    values["chd"],
			Cargo:    values["cgo"],
			Mail:     values["mail"],
			TotalPax: values["totalpax"],
			Source:   fileName,
		}
		if lastDate != nil {
			date := *lastDate
			row.FlightDate = &date
		}
		row.SheetName = handler.SheetTag(sheet, row.Route)
		rows = append(rows, row)
	}

	return rows, nil
}

// headerIndex maps trimmed lower-cased header names to their first column
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := index[name]; !seen && name != "" {
			index[name] = i
		}
	}
	return index
}
