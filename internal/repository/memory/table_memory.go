package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/maxviazov/query-explorer/internal/model"
	"github.com/maxviazov/query-explorer/internal/repository"
)

// TableRepository keeps result tables in process memory. It is the default
// store and what the tests run against.
type TableRepository struct {
	mu     sync.RWMutex
	tables map[string]model.ResultTable
	now    func() time.Time
}

func NewTableRepository() *TableRepository {
	return &TableRepository{
		tables: make(map[string]model.ResultTable),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// txState marks a context as running inside one of r's transactions.
type txState struct {
	repo     *TableRepository
	readOnly bool
}

type txKey struct{}

func (r *TableRepository) txFrom(ctx context.Context) (txState, bool) {
	st, ok := ctx.Value(txKey{}).(txState)
	return st, ok && st.repo == r
}

// rlock read-locks r unless ctx already holds one of r's transactions.
func (r *TableRepository) rlock(ctx context.Context) func() {
	if _, ok := r.txFrom(ctx); ok {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

// lock write-locks r unless ctx already holds a read-write transaction on it.
func (r *TableRepository) lock(ctx context.Context) (func(), error) {
	if st, ok := r.txFrom(ctx); ok {
		if st.readOnly {
			return nil, repository.ErrReadOnly
		}
		return func() {}, nil
	}
	r.mu.Lock()
	return r.mu.Unlock, nil
}

// WithinTx runs fn with exclusive access to the store and restores the
// previous tables when fn fails. Nested calls run inside the outer unit.
func (r *TableRepository) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st, ok := r.txFrom(ctx); ok {
		if st.readOnly {
			return repository.ErrReadOnly
		}
		return r.runRestoring(ctx, fn)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runRestoring(context.WithValue(ctx, txKey{}, txState{repo: r}), fn)
}

// Stored tables are replaced, never mutated, so a shallow clone is a snapshot.
func (r *TableRepository) runRestoring(ctx context.Context, fn repository.TxFunc) error {
	snapshot := maps.Clone(r.tables)
	if err := fn(ctx); err != nil {
		r.tables = snapshot
		return err
	}
	return nil
}

// ReadTx returns a TxManager whose units of work see one consistent view of
// the store. Writes inside them fail with repository.ErrReadOnly.
func (r *TableRepository) ReadTx() repository.TxManager { return readTx{r} }

type readTx struct{ r *TableRepository }

func (t readTx) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.r.txFrom(ctx); ok {
		return fn(ctx)
	}
	t.r.mu.RLock()
	defer t.r.mu.RUnlock()
	return fn(context.WithValue(ctx, txKey{}, txState{repo: t.r, readOnly: true}))
}

func (r *TableRepository) Save(ctx context.Context, t model.ResultTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// copy so later caller mutations do not leak into the store
	stored := model.ResultTable{
		Name:      t.Name,
		Columns:   slices.Clone(t.Columns),
		Rows:      make([][]string, len(t.Rows)),
		CreatedAt: t.CreatedAt,
	}
	for i, row := range t.Rows {
		stored.Rows[i] = slices.Clone(row)
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	r.tables[t.Name] = stored
	return nil
}

func (r *TableRepository) Summary(ctx context.Context, name string) (model.TableSummary, error) {
	if err := ctx.Err(); err != nil {
		return model.TableSummary{}, err
	}
	defer r.rlock(ctx)()
	t, ok := r.tables[name]
	if !ok {
		return model.TableSummary{}, repository.ErrNotFound
	}
	return summarize(t), nil
}

func (r *TableRepository) Rows(ctx context.Context, name string, p repository.Page) (repository.PageResult[[]string], error) {
	if err := ctx.Err(); err != nil {
		return repository.PageResult[[]string]{}, err
	}
	defer r.rlock(ctx)()
	t, ok := r.tables[name]
	if !ok {
		return repository.PageResult[[]string]{}, repository.ErrNotFound
	}

	limit, offset := p.Limit, p.Offset
	if limit <= 0 {
		limit = len(t.Rows)
	}
	offset = min(max(offset, 0), len(t.Rows))
	end := min(offset+limit, len(t.Rows))

	res := repository.PageResult[[]string]{Items: make([][]string, 0, end-offset), Total: len(t.Rows)}
	for _, row := range t.Rows[offset:end] {
		res.Items = append(res.Items, slices.Clone(row))
	}
	return res, nil
}

func (r *TableRepository) List(ctx context.Context) ([]model.TableSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := r.rlock(ctx)
	out := make([]model.TableSummary, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, summarize(t))
	}
	unlock()

	slices.SortFunc(out, func(a, b model.TableSummary) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *TableRepository) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.tables[name]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tables, name)
	return nil
}

func (r *TableRepository) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	clear(r.tables)
	return nil
}

// Ping always succeeds; the memory store has nothing to reach.
func (r *TableRepository) Ping(ctx context.Context) error { return ctx.Err() }

func summarize(t model.ResultTable) model.TableSummary {
	return model.TableSummary{
		Name:      t.Name,
		Columns:   slices.Clone(t.Columns),
		RowCount:  len(t.Rows),
		CreatedAt: t.CreatedAt,
	}
}

var (
	_ repository.TableRepository = (*TableRepository)(nil)
	_ repository.Pinger          = (*TableRepository)(nil)
	_ repository.TxManager       = (*TableRepository)(nil)
)
