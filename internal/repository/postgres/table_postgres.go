package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/query-explorer/internal/model"
	"github.com/maxviazov/query-explorer/internal/repository"
)

type tableRepository struct{ pool *pgxpool.Pool }

func NewTableRepository(pool *pgxpool.Pool) repository.TableRepository {
	return &tableRepository{pool: pool}
}

// begin opens a transaction, or a savepoint when ctx already carries one
// from TxManager.WithinTx.
func (r *tableRepository) begin(ctx context.Context) (pgx.Tx, error) {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok && tx != nil {
		return tx.Begin(ctx)
	}
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

// Save upserts the table header and replaces all of its rows in one transaction.
func (r *tableRepository) Save(ctx context.Context, t model.ResultTable) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	columns := t.Columns
	if columns == nil {
		columns = []string{}
	}

	tx, err := r.begin(ctx)
	if err != nil {
		return repository.MapPgError(err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO result_tables (name, columns, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET columns = EXCLUDED.columns, created_at = EXCLUDED.created_at`,
		t.Name, columns, createdAt,
	); err != nil {
		return repository.MapPgError(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM result_rows WHERE table_name = $1`, t.Name); err != nil {
		return repository.MapPgError(err)
	}
	if len(t.Rows) > 0 {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"result_rows"},
			[]string{"table_name", "row_index", "cells"},
			pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
				return []any{t.Name, i, t.Rows[i]}, nil
			}),
		)
		if err != nil {
			return repository.MapPgError(err)
		}
	}
	return repository.MapPgError(tx.Commit(ctx))
}

func (r *tableRepository) Summary(ctx context.Context, name string) (model.TableSummary, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.TableSummary{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT t.name, t.columns, t.created_at, COUNT(r.row_index)
		 FROM result_tables t
		 LEFT JOIN result_rows r ON r.table_name = t.name
		 WHERE t.name = $1
		 GROUP BY t.name, t.columns, t.created_at`,
		name,
	)
	var out model.TableSummary
	if err := row.Scan(&out.Name, &out.Columns, &out.CreatedAt, &out.RowCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TableSummary{}, repository.ErrNotFound
		}
		return model.TableSummary{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *tableRepository) Rows(ctx context.Context, name string, p repository.Page) (repository.PageResult[[]string], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[[]string]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)

	// the total comes from a separate count so an offset past the end still
	// reports it, which COUNT(*) OVER() over zero rows cannot
	var total int
	err := exec.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM result_rows WHERE table_name = t.name)
		 FROM result_tables t WHERE t.name = $1`,
		name,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.PageResult[[]string]{}, repository.ErrNotFound
		}
		return repository.PageResult[[]string]{}, repository.MapPgError(err)
	}

	rows, err := exec.Query(ctx,
		`SELECT cells FROM result_rows
		 WHERE table_name = $1
		 ORDER BY row_index
		 LIMIT $2 OFFSET $3`,
		name, limit, offset,
	)
	if err != nil {
		return repository.PageResult[[]string]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[[]string]{Items: make([][]string, 0, min(limit, total)), Total: total}
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return repository.PageResult[[]string]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, cells)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[[]string]{}, repository.MapPgError(err)
	}
	return res, nil
}

func (r *tableRepository) List(ctx context.Context) ([]model.TableSummary, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT t.name, t.columns, t.created_at, COUNT(r.row_index)
		 FROM result_tables t
		 LEFT JOIN result_rows r ON r.table_name = t.name
		 GROUP BY t.name, t.columns, t.created_at
		 ORDER BY t.name`,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.TableSummary, 0)
	for rows.Next() {
		var s model.TableSummary
		if err := rows.Scan(&s.Name, &s.Columns, &s.CreatedAt, &s.RowCount); err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, s)
	}
	return out, repository.MapPgError(rows.Err())
}

func (r *tableRepository) Delete(ctx context.Context, name string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM result_tables WHERE name = $1`, name)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Reset drops every table; rows go with them through ON DELETE CASCADE.
func (r *tableRepository) Reset(ctx context.Context) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	_, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM result_tables`)
	return repository.MapPgError(err)
}

var _ repository.TableRepository = (*tableRepository)(nil)
