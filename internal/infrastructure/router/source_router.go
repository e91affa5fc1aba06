package router

import (
	"fmt"

	"flight-ingest-service/internal/infrastructure/config"
	"flight-ingest-service/internal/usecase"
	"flight-ingest-service/pkg/logger"
)

// SourceRouter resolves the reporting source of an uploaded workbook from its file name.
// Sources are tried in registration order, so the order is the classification priority.
type SourceRouter struct {
	handlers []usecase.SourceHandler
	byType   map[string]usecase.SourceHandler
	logger   logger.Logger
}

// NewSourceRouter creates an empty source router
func NewSourceRouter(logger logger.Logger) *SourceRouter {
	return &SourceRouter{
		handlers: make([]usecase.SourceHandler, 0),
		byType:   make(map[string]usecase.SourceHandler),
		logger:   logger,
	}
}

// NewSourceRouterFromConfig registers one handler per configured source, in priority order
func NewSourceRouterFromConfig(cfg config.IngestionConfig, logger logger.Logger) (*SourceRouter, error) {
	r := NewSourceRouter(logger)
	for _, h := range usecase.NewSourceHandlers(cfg) {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a handler at the lowest priority. A source type can be registered once.
func (r *SourceRouter) Register(handler usecase.SourceHandler) error {
	sourceType := handler.SourceType()
	if _, exists := r.byType[sourceType]; exists {
		return fmt.Errorf("source %s registered twice", sourceType)
	}
	r.byType[sourceType] = handler
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered source handler", "sourceType", sourceType, "priority", len(r.handlers))
	return nil
}

// GetHandler returns the highest-priority source whose markers match the file name,
// or nil when the file belongs to no known source
func (r *SourceRouter) GetHandler(fileName string) usecase.SourceHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(fileName) {
			return handler
		}
	}
	r.logger.Debug("No source matches file", "file", fileName, "sources", r.SourceTypes())
	return nil
}

// Handler returns the handler of one source type
func (r *SourceRouter) Handler(sourceType string) (usecase.SourceHandler, bool) {
	h, ok := r.byType[sourceType]
	return h, ok
}

// SourceTypes lists the registered source types in priority order
func (r *SourceRouter) SourceTypes() []string {
	types := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		types = append(types, h.SourceType())
	}
	return types
}
