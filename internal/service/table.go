package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maxviazov/query-explorer/internal/cache"
	applog "github.com/maxviazov/query-explorer/internal/logger"
	"github.com/maxviazov/query-explorer/internal/model"
	"github.com/maxviazov/query-explorer/internal/pagination"
	"github.com/maxviazov/query-explorer/internal/repository"
	"github.com/rs/zerolog"
)

// tableService holds table use-case logic: validation, rendering and caching; no transport / SQL details.
type tableService struct {
	repo  repository.TableRepository
	tx    repository.TxManager
	cache cache.FragmentCache
	log   zerolog.Logger
}

// NewTableService wires the store, the transaction manager its reads run in
// and the fragment cache. A nil tx runs reads directly on repo; a nil cache
// disables caching.
func NewTableService(repo repository.TableRepository, tx repository.TxManager, fragments cache.FragmentCache, logger zerolog.Logger) TableService {
	if tx == nil {
		tx = directTx{}
	}
	if fragments == nil {
		fragments = cache.Nop{}
	}
	l := applog.Component(logger, "service", "table")
	return &tableService{repo: repo, tx: tx, cache: fragments, log: l}
}

// directTx runs units of work without a transaction.
type directTx struct{}

func (directTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

func (s *tableService) GetTablePage(ctx context.Context, name string, page, perPage int) (model.TablePage, error) {
	if err := validatePageRequest(name, page, perPage); err != nil {
		s.log.Debug().Str("table", name).Int("page", page).Int("per_page", perPage).
			Interface("field_errors", FieldErrors(err)).Msg("page request validation failed")
		return model.TablePage{}, err
	}

	// The generation is read before the store so a page rendered from data
	// replaced meanwhile is cached under a retired key.
	useCache := true
	gen, err := s.cache.Generation(ctx, name)
	if err != nil {
		useCache = false
		s.log.Warn().Err(err).Str("table", name).Msg("fragment cache generation read failed; bypassing cache")
	}
	key := cache.FragmentKey{Table: name, Generation: gen, Page: page, RecordsPerPage: perPage}
	if useCache {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			// fall through to the store
			s.log.Warn().Err(err).Str("key", key.String()).Msg("fragment cache read failed")
		}
	}

	start := time.Now()
	offset := pagination.Offset(page, perPage)
	var (
		summary model.TableSummary
		rows    repository.PageResult[[]string]
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		summary, err = s.repo.Summary(ctx, name)
		if err != nil {
			return err
		}
		totalPages := pagination.TotalPagesFor(summary.RowCount, perPage)
		if page > totalPages {
			return newInvalidInput([]FieldError{{
				Field:   "page_number",
				Message: fmt.Sprintf("must be between 1 and %d", totalPages),
			}})
		}
		rows, err = s.repo.Rows(ctx, name, repository.Page{Limit: perPage, Offset: offset})
		if err != nil {
			s.log.Error().Err(err).Str("table", name).Int("limit", perPage).Int("offset", offset).Msg("load rows failed")
		}
		return err
	})
	if err != nil {
		return model.TablePage{}, err
	}

	html, err := renderFragment(name, summary.Columns, rows.Items, offset+1)
	if err != nil {
		s.log.Error().Err(err).Str("table", name).Msg("render fragment failed")
		return model.TablePage{}, err
	}

	out := model.TablePage{
		TableName:      name,
		HTML:           html,
		PageNumber:     page,
		TotalPages:     pagination.TotalPagesFor(rows.Total, perPage),
		TotalRecords:   rows.Total,
		RecordsPerPage: perPage,
	}
	if useCache {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.log.Warn().Err(err).Str("key", key.String()).Msg("fragment cache write failed")
		}
	}
	s.log.Debug().Dur("took", time.Since(start)).Str("table", name).Int("page", page).
		Int("total_pages", out.TotalPages).Msg("table page rendered")
	return out, nil
}

// ExportTable loads a whole table, header and every row, from one read of
// the store.
func (s *tableService) ExportTable(ctx context.Context, name string) (model.ResultTable, error) {
	if err := newInvalidInput(validateTableName(name)); err != nil {
		return model.ResultTable{}, err
	}
	start := time.Now()
	var out model.ResultTable
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		summary, err := s.repo.Summary(ctx, name)
		if err != nil {
			return err
		}
		out = model.ResultTable{
			Name:      summary.Name,
			Columns:   summary.Columns,
			Rows:      make([][]string, 0, summary.RowCount),
			CreatedAt: summary.CreatedAt,
		}
		for len(out.Rows) < summary.RowCount {
			chunk, err := s.repo.Rows(ctx, name, repository.Page{Limit: MaxRecordsPerPage, Offset: len(out.Rows)})
			if err != nil {
				return err
			}
			if len(chunk.Items) == 0 {
				break
			}
			out.Rows = append(out.Rows, chunk.Items...)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("table", name).Msg("export table failed")
		}
		return model.ResultTable{}, err
	}
	s.log.Debug().Dur("took", time.Since(start)).Str("table", name).Int("rows", len(out.Rows)).Msg("table exported")
	return out, nil
}

func (s *tableService) GetColumns(ctx context.Context, name string) ([]string, error) {
	if err := newInvalidInput(validateTableName(name)); err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, name)
	if err != nil {
		return nil, err
	}
	return summary.Columns, nil
}

func (s *tableService) ListTables(ctx context.Context) ([]model.TableSummary, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list tables failed")
		return nil, err
	}
	return out, nil
}

func (s *tableService) PublishTable(ctx context.Context, t model.ResultTable) (model.TableSummary, error) {
	start := time.Now()
	if err := validateResultTable(t); err != nil {
		s.log.Debug().Str("table", t.Name).Interface("field_errors", FieldErrors(err)).Msg("table validation failed")
		return model.TableSummary{}, err
	}

	if err := s.repo.Save(ctx, t); err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Str("table", t.Name).Msg("save table failed")
		return model.TableSummary{}, err
	}
	s.invalidate(ctx, t.Name)

	out, err := s.repo.Summary(ctx, t.Name)
	if err != nil {
		return model.TableSummary{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("table", out.Name).Int("rows", out.RowCount).Msg("table published")
	return out, nil
}

func (s *tableService) DeleteTable(ctx context.Context, name string) error {
	if err := newInvalidInput(validateTableName(name)); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.invalidate(ctx, name)
	s.log.Info().Str("table", name).Msg("table deleted")
	return nil
}

func (s *tableService) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		s.log.Error().Err(err).Msg("reset store failed")
		return err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Error().Err(err).Msg("fragment cache flush failed; stale pages expire by ttl")
	}
	s.log.Info().Msg("session state cleared")
	return nil
}

// invalidate drops cached pages of name. The write already succeeded, so a
// cache failure is logged and left to the ttl.
func (s *tableService) invalidate(ctx context.Context, name string) {
	if err := s.cache.InvalidateTable(ctx, name); err != nil {
		s.log.Error().Err(err).Str("table", name).Msg("fragment cache invalidation failed; stale pages expire by ttl")
	}
}
