package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk-inserts rows over the COPY protocol. The catalog
// replace import is the main user; COPY beats row-by-row INSERT once the
// spreadsheet grows past a few hundred products.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a batch inserter bound to the transaction
// manager.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice inserts rows into table and returns the inserted count.
// Must run inside a transaction so a partial COPY rolls back with the
// rest of the operation.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}

	return tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// BatchExecutor queues multiple statements into a single round-trip.
type BatchExecutor struct {
	txManager *TxManager
}

// NewBatchExecutor creates a batch executor bound to the transaction
// manager.
func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// BatchQuery is one statement of a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// ExecAll runs the queries in one round-trip and returns each statement's
// affected row count in order. Must run inside a transaction.
func (e *BatchExecutor) ExecAll(ctx context.Context, queries []BatchQuery) ([]int64, error) {
	tx := e.txManager.GetTx(ctx)
	if tx == nil {
		return nil, fmt.Errorf("ExecAll requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	affected := make([]int64, 0, len(queries))
	for range queries {
		tag, err := results.Exec()
		if err != nil {
			return nil, fmt.Errorf("batch query failed: %w", err)
		}
		affected = append(affected, tag.RowsAffected())
	}

	return affected, nil
}
