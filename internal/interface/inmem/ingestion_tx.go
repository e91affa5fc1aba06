package inmem

import (
	"context"
	"errors"
	"fmt"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"
)

// ErrTxDone is returned when a finished transaction is used again
var ErrTxDone = errors.New("transaction already committed or rolled back")

type savepoint struct {
	raw    int
	ledger int
}

// ingestionTx buffers writes until Commit. Only one writer applies at a time,
// reads see the committed store plus the buffered writes.
type ingestionTx struct {
	store      *Store
	raw        []*entity.RawMovement
	ledger     []*entity.ImportLedgerEntry
	savepoints map[string]savepoint
	done       bool
}

// Begin opens a buffered ingestion transaction
func (s *Store) Begin(ctx context.Context) (repository.IngestionTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ingestionTx{
		store:      s,
		savepoints: make(map[string]savepoint),
	}, nil
}

func (t *ingestionTx) IsFileImported(ctx context.Context, fileName string) (bool, error) {
	if t.done {
		return false, ErrTxDone
	}
	for _, e := range t.ledger {
		if e.FileName == fileName {
			return true, nil
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	_, ok := t.store.ledger[fileName]
	return ok, nil
}

func (t *ingestionTx) AppendRawMovements(ctx context.Context, rows []*entity.RawMovement) error {
	if t.done {
		return ErrTxDone
	}
	for _, r := range rows {
		cp := *r
		t.raw = append(t.raw, &cp)
	}
	return nil
}

func (t *ingestionTx) MarkFileImported(ctx context.Context, entry *entity.ImportLedgerEntry) error {
	if t.done {
		return ErrTxDone
	}
	imported, err := t.IsFileImported(ctx, entry.FileName)
	if err != nil {
		return err
	}
	if imported {
		return fmt.Errorf("file %s is already in the import ledger", entry.FileName)
	}
	cp := *entry
	t.ledger = append(t.ledger, &cp)
	return nil
}

func (t *ingestionTx) SavePoint(ctx context.Context, name string) error {
	if t.done {
		return ErrTxDone
	}
	t.savepoints[name] = savepoint{raw: len(t.raw), ledger: len(t.ledger)}
	return nil
}

func (t *ingestionTx) RollbackTo(ctx context.Context, name string) error {
	if t.done {
		return ErrTxDone
	}
	sp, ok := t.savepoints[name]
	if !ok {
		return fmt.Errorf("unknown savepoint %s", name)
	}
	t.raw = t.raw[:sp.raw]
	t.ledger = t.ledger[:sp.ledger]
	return nil
}

func (t *ingestionTx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range t.ledger {
		if _, exists := s.ledger[e.FileName]; exists {
			return fmt.Errorf("file %s is already in the import ledger", e.FileName)
		}
	}

	now := s.clockFunc()
	for _, r := range t.raw {
		r.ID = s.newID()
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		s.raw = append(s.raw, r)
	}
	for _, e := range t.ledger {
		e.ID = s.newID()
		s.ledger[e.FileName] = e
	}
	return nil
}

func (t *ingestionTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.raw, t.ledger = nil, nil
	return nil
}
