package ruleengine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/internal/infrastructure/config"
	"flight-ingest-service/pkg/logger"

	"gorm.io/gorm"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ProcedureEngine runs each cleaning stage as a stored procedure inside its own transaction
type ProcedureEngine struct {
	db     *gorm.DB
	procs  config.Procedures
	logger logger.Logger
}

// NewProcedureEngine creates a rule engine backed by database procedures.
// Every configured procedure name is checked up front.
func NewProcedureEngine(db *gorm.DB, procs config.Procedures, logger logger.Logger) (repository.RuleEngine, error) {
	for _, name := range []string{
		procs.CleanAndProcess,
		procs.LogMissingDimensions,
		procs.CleanAndValidate,
		procs.RevalidateErrorData,
		procs.ImportMissingDimensions,
	} {
		if _, err := callStatement(name); err != nil {
			return nil, err
		}
	}

	return &ProcedureEngine{
		db:     db,
		procs:  procs,
		logger: logger,
	}, nil
}

func (e *ProcedureEngine) CleanAndProcess(ctx context.Context) error {
	return e.call(ctx, e.procs.CleanAndProcess)
}

func (e *ProcedureEngine) LogMissingDimensions(ctx context.Context) error {
	return e.call(ctx, e.procs.LogMissingDimensions)
}

func (e *ProcedureEngine) CleanAndValidate(ctx context.Context) error {
	return e.call(ctx, e.procs.CleanAndValidate)
}

func (e *ProcedureEngine) RevalidateErrorData(ctx context.Context) error {
	return e.call(ctx, e.procs.RevalidateErrorData)
}

func (e *ProcedureEngine) ImportMissingDimensions(ctx context.Context) error {
	return e.call(ctx, e.procs.ImportMissingDimensions)
}

func (e *ProcedureEngine) call(ctx context.Context, name string) error {
	stmt, err := callStatement(name)
	if err != nil {
		return err
	}

	start := time.Now()
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Exec(stmt).Error
	})
	if err != nil {
		return fmt.Errorf("procedure %s: %w", name, err)
	}

	e.logger.Debug("Procedure finished", "procedure", name, "duration", time.Since(start))
	return nil
}

// callStatement builds a CALL statement for a possibly schema-qualified procedure name
func callStatement(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty procedure name")
	}

	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid procedure name %q", name)
	}

	quoted := make([]string, 0, len(parts))
	for _, part := range parts {
		if !identifierPattern.MatchString(part) {
			return "", fmt.Errorf("invalid procedure name %q", name)
		}
		quoted = append(quoted, `"`+part+`"`)
	}

	return "CALL " + strings.Join(quoted, ".") + "()", nil
}
