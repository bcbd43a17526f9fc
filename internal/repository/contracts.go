package repository

import (
	"context"

	"github.com/maxviazov/query-explorer/internal/model"
)

// Pinger represents a minimal readiness check capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// TableRepository stores query result tables and serves their rows page by page.
// Rows keep their insertion order; Rows returns them in that order.
type TableRepository interface {
	// Save stores t, replacing any table with the same name.
	Save(ctx context.Context, t model.ResultTable) error
	// Summary returns columns and row count; ErrNotFound if the table is unknown.
	Summary(ctx context.Context, name string) (model.TableSummary, error)
	// Rows returns one limit/offset window of rows plus the total row count.
	Rows(ctx context.Context, name string, p Page) (PageResult[[]string], error)
	// List returns summaries of all stored tables ordered by name.
	List(ctx context.Context) ([]model.TableSummary, error)
	// Delete removes a table; ErrNotFound if it does not exist.
	Delete(ctx context.Context, name string) error
	// Reset removes every stored table.
	Reset(ctx context.Context) error
}
