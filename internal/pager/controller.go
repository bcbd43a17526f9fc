// Package pager drives paginated result tables: it tracks the page state of
// every mounted table, fetches pages from the table-data backend and patches
// only the affected table's container.
package pager

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/rs/zerolog"

	applog "github.com/maxviazov/query-explorer/internal/logger"
	"github.com/maxviazov/query-explorer/internal/pagination"
	"github.com/maxviazov/query-explorer/internal/tabledata"
)

// Status is the per-table lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Fetcher retrieves one page of a table from the backend.
type Fetcher interface {
	FetchPage(ctx context.Context, tableID string, page, recordsPerPage int) (tabledata.PageResponse, error)
}

// Surface is a Container that tables can be mounted on and removed from.
type Surface interface {
	Container
	Mount(tableID string, fragment template.HTML)
	Unmount(tableID string)
}

type tableEntry struct {
	state   pagination.PageState
	status  Status
	seq     uint64
	lastErr error
}

// Controller owns the pagination state of one UI session. It is safe for
// concurrent use; overlapping requests for the same table resolve in favour
// of the most recently issued one.
type Controller struct {
	fetcher Fetcher
	surface Surface
	log     zerolog.Logger

	mu     sync.Mutex
	tables map[string]*tableEntry
}

// New wires a controller to its backend and display surface.
func New(fetcher Fetcher, surface Surface, logger zerolog.Logger) *Controller {
	return &Controller{
		fetcher: fetcher,
		surface: surface,
		log:     applog.Component(logger, "pager", "controller"),
		tables:  make(map[string]*tableEntry),
	}
}

// Mount displays the first page of a freshly returned table and renders its
// controls. Mounting an already mounted table resets it.
func (c *Controller) Mount(tableID string, fragment template.HTML, totalPages, recordsPerPage int) error {
	state, err := pagination.NewPageState(tableID, totalPages, recordsPerPage)
	if err != nil {
		return fmt.Errorf("mount %q: %w", tableID, err)
	}
	controls, err := pagination.RenderControls(state)
	if err != nil {
		return fmt.Errorf("mount %q: %w", tableID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.Mount(tableID, fragment)
	if err := c.surface.ReplaceControls(tableID, controls); err != nil {
		return fmt.Errorf("mount %q: %w", tableID, err)
	}
	c.tables[tableID] = &tableEntry{state: state, status: StatusIdle}
	c.log.Debug().Str("table", tableID).Int("total_pages", state.TotalPages).Msg("table mounted")
	return nil
}

// Unmount removes a table from view and forgets its state. Responses still
// in flight for it are discarded.
func (c *Controller) Unmount(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, tableID)
	c.surface.Unmount(tableID)
}

// PageState returns the current state of a mounted table.
func (c *Controller) PageState(tableID string) (pagination.PageState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.tables[tableID]
	if !ok {
		return pagination.PageState{}, false
	}
	return e.state, true
}

// Status returns the lifecycle state of a table and the error of its last
// failed request, if the table is in StatusError.
func (c *Controller) Status(tableID string) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.tables[tableID]
	if !ok {
		return StatusIdle, ErrTargetNotFound
	}
	if e.status == StatusError {
		return e.status, e.lastErr
	}
	return e.status, nil
}

// Controls returns the navigation controls currently displayed for a table.
func (c *Controller) Controls(tableID string) ([]pagination.Control, bool) {
	st, ok := c.PageState(tableID)
	if !ok {
		return nil, false
	}
	return pagination.BuildControls(st), true
}

// Activate behaves like a click on ctl: interactive controls request their
// page, everything else is ignored.
func (c *Controller) Activate(ctx context.Context, tableID string, ctl pagination.Control) error {
	if !ctl.Interactive() {
		return nil
	}
	st, ok := c.PageState(tableID)
	if !ok {
		return fmt.Errorf("activate %q: %w", tableID, ErrTargetNotFound)
	}
	return c.RequestPage(ctx, tableID, ctl.Page, st.RecordsPerPage)
}

// RequestPage fetches one page of a table and, on success, replaces the
// table's fragment and re-renders its controls with the returned page count.
//
// Page numbers below 1 are ignored without touching the network. A page past
// the known last page is clamped to it when recordsPerPage is unchanged.
// On failure the displayed content and page state are left as they were and
// the table moves to StatusError until the next request.
func (c *Controller) RequestPage(ctx context.Context, tableID string, page, recordsPerPage int) error {
	if page < 1 {
		pageRequests.WithLabelValues("skipped").Inc()
		c.log.Debug().Str("table", tableID).Int("page", page).Msg("ignoring request for page below 1")
		return nil
	}

	c.mu.Lock()
	entry, ok := c.tables[tableID]
	if !ok {
		c.mu.Unlock()
		pageRequests.WithLabelValues("target_missing").Inc()
		c.log.Error().Str("table", tableID).Int("page", page).Msg("page requested for unmounted table")
		return fmt.Errorf("request page %d of %q: %w", page, tableID, ErrTargetNotFound)
	}
	if recordsPerPage <= 0 {
		recordsPerPage = entry.state.RecordsPerPage
	}
	if recordsPerPage == entry.state.RecordsPerPage {
		page = entry.state.ClampPage(page)
	}
	entry.seq++
	seq := entry.seq
	entry.status = StatusLoading
	c.mu.Unlock()

	start := time.Now()
	resp, fetchErr := c.fetcher.FetchPage(ctx, tableID, page, recordsPerPage)
	fetchDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.log.With().
		Str("table", tableID).
		Int("page", page).
		Int("records_per_page", recordsPerPage).
		Uint64("seq", seq).
		Dur("duration", time.Since(start)).
		Logger()

	current, ok := c.tables[tableID]
	if !ok {
		pageRequests.WithLabelValues("target_missing").Inc()
		logger.Error().Err(fetchErr).Msg("table removed while page was loading")
		return fmt.Errorf("request page %d of %q: %w", page, tableID, ErrTargetNotFound)
	}
	// A remount replaces the entry; the response belongs to the old one.
	if current != entry {
		staleResponses.Inc()
		pageRequests.WithLabelValues("stale").Inc()
		logger.Debug().Err(fetchErr).Msg("discarding page response for a remounted table")
		return nil
	}
	if seq != entry.seq {
		staleResponses.Inc()
		pageRequests.WithLabelValues("stale").Inc()
		logger.Debug().Err(fetchErr).Uint64("latest_seq", entry.seq).Msg("discarding superseded page response")
		return nil
	}
	if fetchErr != nil {
		return c.fail(entry, logger, page, tableID, fetchErr)
	}

	total := max(1, resp.TotalPages)
	currentPage := page
	if resp.PageNumber > 0 {
		currentPage = resp.PageNumber
	}
	next := pagination.PageState{
		TableID:        tableID,
		CurrentPage:    min(currentPage, total),
		TotalPages:     total,
		RecordsPerPage: recordsPerPage,
	}
	controls, err := pagination.RenderControls(next)
	if err != nil {
		return c.fail(entry, logger, page, tableID, fmt.Errorf("%w: %v", tabledata.ErrMalformedResponse, err))
	}
	if err := c.surface.ReplaceFragment(tableID, template.HTML(resp.TableHTML)); err != nil {
		return c.fail(entry, logger, page, tableID, err)
	}
	if err := c.surface.ReplaceControls(tableID, controls); err != nil {
		return c.fail(entry, logger, page, tableID, err)
	}

	entry.state = next
	entry.status = StatusLoaded
	entry.lastErr = nil
	pageRequests.WithLabelValues("loaded").Inc()
	logger.Info().Int("total_pages", total).Msg("table page loaded")
	return nil
}

// fail records a failed request. The caller holds c.mu.
func (c *Controller) fail(entry *tableEntry, logger zerolog.Logger, page int, tableID string, err error) error {
	entry.status = StatusError
	entry.lastErr = err
	pageRequests.WithLabelValues(outcome(err)).Inc()
	logger.Error().Err(err).Str("outcome", outcome(err)).Msg("table page request failed")
	return fmt.Errorf("request page %d of %q: %w", page, tableID, err)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, tabledata.ErrNetworkFailure):
		return "network"
	case errors.Is(err, tabledata.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrTargetNotFound):
		return "target_missing"
	default:
		return "error"
	}
}
