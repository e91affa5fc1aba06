package usecase

import (
	"context"
	"fmt"
	"strings"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/utils"
)

// MissingDimensionService exports tracked missing values for backfill and stages
// the filled-in workbook for the merge stage
type MissingDimensionService struct {
	repo   repository.MissingDimensionRepository
	opener WorkbookOpener
	writer WorkbookWriter
	logger logger.Logger
}

// NewMissingDimensionService creates a new missing dimension service
func NewMissingDimensionService(
	repo repository.MissingDimensionRepository,
	opener WorkbookOpener,
	writer WorkbookWriter,
	logger logger.Logger,
) *MissingDimensionService {
	return &MissingDimensionService{
		repo:   repo,
		opener: opener,
		writer: writer,
		logger: logger,
	}
}

// ExportViews builds the three backfill views from the distinct tracked values
func (s *MissingDimensionService) ExportViews(ctx context.Context) ([]entity.SheetView, error) {
	actypes, err := s.repo.DistinctMissingValues(ctx, entity.DimensionActype)
	if err != nil {
		return nil, fmt.Errorf("failed to load missing aircraft types: %w", err)
	}
	routes, err := s.repo.DistinctMissingValues(ctx, entity.DimensionRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to load missing routes: %w", err)
	}

	return []entity.SheetView{
		{
			Name:    entity.BackfillSheetActypeSeat,
			Columns: entity.ActypeSeatColumns,
			Rows:    leadingValueRows(actypes, len(entity.ActypeSeatColumns)),
		},
		{
			Name:    entity.BackfillSheetRoute,
			Columns: entity.RouteColumns,
			Rows:    leadingValueRows(routes, len(entity.RouteColumns)),
		},
		{
			Name:    entity.BackfillSheetRouteInfo,
			Columns: entity.RouteDetailColumns,
			Rows:    leadingValueRows(routes, len(entity.RouteDetailColumns)),
		},
	}, nil
}

// Export renders the backfill workbook
func (s *MissingDimensionService) Export(ctx context.Context) ([]byte, error) {
	views, err := s.ExportViews(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.writer.Write(views)
	if err != nil {
		return nil, fmt.Errorf("failed to write backfill workbook: %w", err)
	}
	s.logger.Info("Exported missing dimensions",
		"actypes", len(views[0].Rows),
		"routes", len(views[1].Rows))
	return content, nil
}

// List returns tracked entries, optionally restricted to one type
func (s *MissingDimensionService) List(ctx context.Context, dimensionType string) ([]*entity.MissingDimension, error) {
	dimensionType = strings.ToUpper(strings.TrimSpace(dimensionType))
	switch dimensionType {
	case "", entity.DimensionActype, entity.DimensionRoute:
	default:
		return nil, &ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("must be %s or %s", entity.DimensionActype, entity.DimensionRoute),
		}
	}
	return s.repo.ListMissing(ctx, dimensionType)
}

// StageBackfill reads a filled-in backfill workbook into the staging tables.
// Aircraft types without a seat count are not staged.
func (s *MissingDimensionService) StageBackfill(ctx context.Context, fileName string, content []byte) (*entity.StagingResult, error) {
	wb, err := s.opener.Open(fileName, content)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("cannot read workbook: %v", err)}
	}
	defer wb.Close()

	sheets := make(map[string]bool)
	for _, name := range wb.SheetNames() {
		sheets[name] = true
	}
	if !sheets[entity.BackfillSheetActypeSeat] && !sheets[entity.BackfillSheetRoute] {
		return nil, &ValidationError{
			Field: "file",
			Message: fmt.Sprintf("workbook has neither a %s nor a %s sheet",
				entity.BackfillSheetActypeSeat, entity.BackfillSheetRoute),
		}
	}

	var actypes []*entity.StagedActype
	if sheets[entity.BackfillSheetActypeSeat] {
		records, err := readRecords(wb, entity.BackfillSheetActypeSeat)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			actype := strings.ToUpper(rec["actype"])
			seat := utils.ToNullableInt(rec["seat"])
			if actype == "" || seat == nil {
				continue
			}
			actypes = append(actypes, &entity.StagedActype{Actype: actype, Seat: seat})
		}
		actypes = lastByKey(actypes, func(a *entity.StagedActype) string { return a.Actype })
	}

	var routes []*entity.StagedRoute
	if sheets[entity.BackfillSheetRoute] {
		records, err := readRecords(wb, entity.BackfillSheetRoute)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			route := strings.ToUpper(rec["route"])
			if route == "" {
				continue
			}
			routes = append(routes, &entity.StagedRoute{
				Route:      route,
				AC:         rec["ac"],
				RouteID:    rec["route_id"],
				FlightHour: utils.ToNullableFloat(rec["flight hour"]),
				Taxi:       utils.ToNullableFloat(rec["taxi"]),
				BlockHour:  utils.ToNullableFloat(rec["block hour"]),
				DistanceKm: utils.ToNullableInt(rec["distance km"]),
				Loai:       rec["loại"],
				Type:       rec["type"],
				Country:    rec["country"],
			})
		}
		routes = lastByKey(routes, func(r *entity.StagedRoute) string { return r.Route })
	}

	if len(actypes) > 0 {
		if err := s.repo.StageActypes(ctx, actypes); err != nil {
			return nil, fmt.Errorf("failed to stage aircraft types: %w", err)
		}
	}
	if len(routes) > 0 {
		if err := s.repo.StageRoutes(ctx, routes); err != nil {
			return nil, fmt.Errorf("failed to stage routes: %w", err)
		}
	}

	s.logger.Info("Staged backfill workbook",
		"file", fileName,
		"actypes", len(actypes),
		"routes", len(routes))

	return &entity.StagingResult{Actypes: len(actypes), Routes: len(routes)}, nil
}

// lastByKey keeps one row per key. The last row wins but takes the position of the
// first, so one upsert statement never touches the same key twice.
func lastByKey[T any](rows []T, key func(T) string) []T {
	index := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if i, seen := index[k]; seen {
			out[i] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}

// leadingValueRows puts each value in the first column of an otherwise blank row
func leadingValueRows(values []string, width int) [][]interface{} {
	rows := make([][]interface{}, 0, len(values))
	for _, v := range values {
		row := make([]interface{}, width)
		row[0] = v
		rows = append(rows, row)
	}
	return rows
}

// readRecords returns the data rows of a sheet keyed by lower-cased header
func readRecords(wb Workbook, sheet string) ([]map[string]string, error) {
	cells, err := wb.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	index := headerIndex(cells[0])
	records := make([]map[string]string, 0, len(cells)-1)
	for _, row := range cells[1:] {
		rec := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(row) {
				rec[name] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
