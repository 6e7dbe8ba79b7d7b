package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/procurement-tracker/internal/matching"
	"github.com/joseph-ayodele/procurement-tracker/internal/pipeline"
)

var (
	_ pipeline.Store           = (*Store)(nil)
	_ matching.EquipmentSource = (*Store)(nil)
)

// Store is the SQL adapter behind the pipeline's persistence port. Queries are written
// with ? placeholders and rebound for the active driver.
type Store struct {
	db  *sqlx.DB
	log *slog.Logger
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db.DB, log: logger}
}

func (s *Store) q(query string) string { return s.db.Rebind(query) }

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("db.tx.rollback_failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
