package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/maxviazov/query-explorer/internal/model"
	"github.com/maxviazov/query-explorer/internal/repository"
)

// Table contracts

type TableFactory func(t *testing.T) (repository.TableRepository, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, tables repository.TableRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// seedTable builds a table with n rows whose first cell is the 0-based row index.
func seedTable(name string, n int) model.ResultTable {
	t := model.ResultTable{Name: name, Columns: []string{"id", "label"}}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, []string{fmt.Sprint(i), fmt.Sprintf("row-%d", i)})
	}
	return t
}

func RunTableRepositoryContract(t *testing.T, makeRepo TableFactory) {
	t.Helper()

	t.Run("save_and_summary", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Save(ctx, seedTable("sales", 3)); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := repo.Summary(ctx, "sales")
		if err != nil {
			t.Fatalf("summary failed: %v", err)
		}
		if got.Name != "sales" || got.RowCount != 3 || len(got.Columns) != 2 || got.Columns[0] != "id" {
			t.Fatalf("mismatch: %+v", got)
		}
		if got.CreatedAt.IsZero() {
			t.Fatalf("expected created_at to be set")
		}
	})

	t.Run("summary_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Summary(context.Background(), "missing")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rows_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Save(ctx, seedTable("big", 7)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		res, err := repo.Rows(ctx, "big", repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("rows: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 || res.Items[0][0] != "0" {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		res2, err := repo.Rows(ctx, "big", repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("rows2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 || res2.Items[0][1] != "row-6" {
			t.Fatalf("unexpected last page: %+v", res2)
		}
	})

	t.Run("rows_preserve_insertion_order", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		tbl := model.ResultTable{Name: "ordered", Columns: []string{"v"}, Rows: [][]string{{"c"}, {"a"}, {"b"}}}
		if err := repo.Save(ctx, tbl); err != nil {
			t.Fatalf("seed: %v", err)
		}
		res, err := repo.Rows(ctx, "ordered", repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("rows: %v", err)
		}
		if len(res.Items) != 3 || res.Items[0][0] != "c" || res.Items[1][0] != "a" || res.Items[2][0] != "b" {
			t.Fatalf("order not preserved: %+v", res.Items)
		}
	})

	t.Run("rows_offset_past_end", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Save(ctx, seedTable("short", 2)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		res, err := repo.Rows(ctx, "short", repository.Page{Limit: 5, Offset: 10})
		if err != nil {
			t.Fatalf("rows: %v", err)
		}
		if len(res.Items) != 0 || res.Total != 2 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("rows_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Rows(context.Background(), "nope", repository.Page{Limit: 5})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save_replaces_existing", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Save(ctx, seedTable("swap", 10)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := repo.Save(ctx, seedTable("swap", 4)); err != nil {
			t.Fatalf("replace: %v", err)
		}
		got, err := repo.Summary(ctx, "swap")
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if got.RowCount != 4 {
			t.Fatalf("expected 4 rows after replace, got %d", got.RowCount)
		}
	})

	t.Run("empty_table", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Save(ctx, seedTable("empty", 0)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		res, err := repo.Rows(ctx, "empty", repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("rows: %v", err)
		}
		if len(res.Items) != 0 || res.Total != 0 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("list_delete_reset", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for _, name := range []string{"b", "a", "c"} {
			if err := repo.Save(ctx, seedTable(name, 1)); err != nil {
				t.Fatalf("seed %s: %v", name, err)
			}
		}
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 || list[0].Name != "a" || list[2].Name != "c" {
			t.Fatalf("unexpected list: %+v", list)
		}

		if err := repo.Delete(ctx, "b"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.Delete(ctx, "b"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}

		if err := repo.Reset(ctx); err != nil {
			t.Fatalf("reset: %v", err)
		}
		list, err = repo.List(ctx)
		if err != nil {
			t.Fatalf("list after reset: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty store after reset, got %d tables", len(list))
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, tables, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			return tables.Save(ctx, seedTable("tx_commit", 2))
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := tables.Summary(ctx, "tx_commit"); err != nil {
			t.Fatalf("expected committed table visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, tables, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		errMarker := assertErr("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := tables.Save(ctx, seedTable("tx_rollback", 2)); err != nil {
				return err
			}
			return errMarker
		})
		if err == nil || err.Error() != errMarker.Error() {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := tables.Summary(ctx, "tx_rollback"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected rollback to discard table, got err=%v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// assertErr builds a sentinel error local to the suite.
func assertErr(msg string) error { return &sentinel{msg} }

type sentinel struct{ s string }

func (e *sentinel) Error() string { return e.s }
