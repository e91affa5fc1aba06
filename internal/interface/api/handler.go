package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/interface/spreadsheet"
	"flight-ingest-service/internal/usecase"
	"flight-ingest-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the data processing endpoints
type Handler struct {
	processing     *usecase.DataProcessingService
	missing        *usecase.MissingDimensionService
	export         *usecase.FlightExportService
	maxUploadBytes int64
	version        string
	logger         logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	processing *usecase.DataProcessingService,
	missing *usecase.MissingDimensionService,
	export *usecase.FlightExportService,
	maxUploadBytes int64,
	version string,
	logger logger.Logger,
) *Handler {
	registerValidators()
	return &Handler{
		processing:     processing,
		missing:        missing,
		export:         export,
		maxUploadBytes: maxUploadBytes,
		version:        version,
		logger:         logger,
	}
}

// RegisterRoutes mounts the endpoints under prefix and the health check at the root
func (h *Handler) RegisterRoutes(r gin.IRouter, prefix string) {
	r.GET("/health", h.health)

	g := r.Group(prefix)
	g.POST("/upload-files", h.uploadFiles)
	g.POST("/export-missing-dimensions", h.exportMissingDimensions)
	g.POST("/missing-dimensions/staging", h.stageMissingDimensions)
	g.POST("/import-missing-dimensions", h.importMissingDimensions)
	g.POST("/revalidate-error-data", h.revalidateErrorData)
	g.POST("/run-data-cleaning", h.runDataCleaning)
	g.GET("/processing-summary", h.processingSummary)
	g.GET("/missing-dimensions", h.listMissingDimensions)
	g.GET("/export-flight-data", h.exportFlightData)
	g.GET("/runs", h.recentRuns)
}

type exportFlightQuery struct {
	StartDate string `form:"start_date" binding:"required,flightdate"`
	EndDate   string `form:"end_date" binding:"required,flightdate"`
	Format    string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

type runsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *Handler) uploadFiles(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		h.respondBodyError(c, err)
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		h.respondValidation(c, &usecase.ValidationError{Field: "files", Message: "at least one file is required"})
		return
	}

	files := make([]usecase.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			h.respondBodyError(c, err)
			return
		}
		files = append(files, usecase.UploadedFile{Name: fh.Filename, Content: content})
	}

	result, err := h.processing.UploadFiles(c.Request.Context(), files)
	if err != nil {
		h.respondError(c, "upload_files", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) exportMissingDimensions(c *gin.Context) {
	content, err := h.missing.Export(c.Request.Context())
	if err != nil {
		h.respondError(c, "export_missing_dimensions", err)
		return
	}
	sendWorkbook(c, entity.BackfillFileName, content)
}

func (h *Handler) stageMissingDimensions(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondBodyError(c, err)
			return
		}
		h.respondValidation(c, &usecase.ValidationError{Field: "file", Message: "a workbook file is required"})
		return
	}
	content, err := readPart(fh)
	if err != nil {
		h.respondBodyError(c, err)
		return
	}

	result, err := h.processing.StageBackfill(c.Request.Context(), fh.Filename, content)
	if err != nil {
		h.respondError(c, "stage_missing_dimensions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Staged %d actypes and %d routes", result.Actypes, result.Routes),
		"staged":  result,
	})
}

func (h *Handler) importMissingDimensions(c *gin.Context) {
	result, err := h.processing.ImportMissingDimensions(c.Request.Context())
	if err != nil {
		h.respondError(c, "import_missing_dimensions", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) revalidateErrorData(c *gin.Context) {
	result, err := h.processing.RevalidateErrorData(c.Request.Context())
	if err != nil {
		h.respondError(c, "revalidate_error_data", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) runDataCleaning(c *gin.Context) {
	result, err := h.processing.RunDataCleaning(c.Request.Context())
	if err != nil {
		h.respondError(c, "run_data_cleaning", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) processingSummary(c *gin.Context) {
	summary, err := h.processing.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, "processing_summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) listMissingDimensions(c *gin.Context) {
	items, err := h.missing.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.respondError(c, "list_missing_dimensions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "data": items})
}

func (h *Handler) exportFlightData(c *gin.Context) {
	var q exportFlightQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondValidation(c, err)
		return
	}
	fromKey, toKey, err := usecase.ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		h.respondValidation(c, err)
		return
	}

	if q.Format == "xlsx" {
		content, count, err := h.export.Export(c.Request.Context(), q.StartDate, q.EndDate)
		if err != nil {
			h.respondError(c, "export_flight_data", err)
			return
		}
		if count == 0 {
			noData(c)
			return
		}
		sendWorkbook(c, fmt.Sprintf("flight_data_%d_%d.xlsx", fromKey, toKey), content)
		return
	}

	flights, err := h.export.Query(c.Request.Context(), q.StartDate, q.EndDate)
	if err != nil {
		h.respondError(c, "export_flight_data", err)
		return
	}
	if len(flights) == 0 {
		noData(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(flights),
		"data":    flights,
	})
}

func (h *Handler) recentRuns(c *gin.Context) {
	var q runsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondValidation(c, err)
		return
	}
	runs, err := h.processing.RecentRuns(c.Request.Context(), q.Limit)
	if err != nil {
		h.respondError(c, "recent_runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(runs), "data": runs})
}

func noData(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "No data found for the selected date range",
		"count":   0,
		"data":    []*entity.EnrichedFlight{},
	})
}

func sendWorkbook(c *gin.Context, fileName string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, spreadsheet.ContentType, content)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"detail": "validation failed",
		"errors": fieldErrors(err),
	})
}

func (h *Handler) respondBodyError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"detail": fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid multipart form: " + err.Error()})
}

// respondError maps usecase errors to responses
func (h *Handler) respondError(c *gin.Context, operation string, err error) {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		h.respondValidation(c, err)
		return
	}

	var stageErr *usecase.StageError
	if errors.As(err, &stageErr) {
		h.logger.Error("Stage failed", "operation", operation, "stage", stageErr.Stage, "error", stageErr.Err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": stageErr.Error(),
			"stage":   stageErr.Stage,
		})
		return
	}

	h.logger.Error("Request failed", "operation", operation, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"detail":  err.Error(),
	})
}
