package service

import (
	"context"
	"fmt"

	"scan_bot/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// PgStore keeps the universe in a single table:
//
//	CREATE TABLE bist_symbols (symbol text PRIMARY KEY, active boolean NOT NULL DEFAULT true);
type PgStore struct {
	db    db.TxManager
	table string
}

func NewPgStore(tx db.TxManager, table string) *PgStore {
	if table == "" {
		table = "bist_symbols"
	}
	return &PgStore{db: tx, table: pgx.Identifier{table}.Sanitize()}
}

// Symbols lists active codes in alphabetical order.
func (s *PgStore) Symbols(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT symbol FROM %s WHERE active ORDER BY symbol", s.table)

	rows, err := s.db.Conn().Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "query universe")
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "scan universe")
	}
	return out, nil
}

// Replace makes codes the active universe in one transaction; codes not listed are deactivated.
func (s *PgStore) Replace(ctx context.Context, codes []string) error {
	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctxTx, fmt.Sprintf("UPDATE %s SET active = false", s.table)); err != nil {
			return errors.Wrap(err, "deactivate universe")
		}

		upsert := fmt.Sprintf(
			"INSERT INTO %s (symbol, active) VALUES ($1, true) ON CONFLICT (symbol) DO UPDATE SET active = true",
			s.table,
		)
		batch := &pgx.Batch{}
		for _, c := range codes {
			batch.Queue(upsert, Code(c))
		}
		if err := tx.SendBatch(ctxTx, batch).Close(); err != nil {
			return errors.Wrap(err, "upsert universe")
		}
		return nil
	})
}
