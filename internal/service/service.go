// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/query-explorer/internal/model"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// InvalidField builds an ErrInvalidInput for one field; handlers use it for
// query parameters that fail to parse.
func InvalidField(field, message string) error {
	return newInvalidInput([]FieldError{{Field: field, Message: message}})
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// TableService defines the result-table use cases behind the explorer UI.
type TableService interface {
	// GetTablePage renders one page of a table. Pages run from 1 to
	// TotalPagesFor(rows, perPage); an empty table still has page 1.
	GetTablePage(ctx context.Context, name string, page, perPage int) (model.TablePage, error)
	GetColumns(ctx context.Context, name string) ([]string, error)
	// ExportTable returns the whole table for download; ErrNotFound if unknown.
	ExportTable(ctx context.Context, name string) (model.ResultTable, error)
	ListTables(ctx context.Context) ([]model.TableSummary, error)
	// PublishTable stores t, replacing a table of the same name, and drops its cached pages.
	PublishTable(ctx context.Context, t model.ResultTable) (model.TableSummary, error)
	DeleteTable(ctx context.Context, name string) error
	// Reset clears every table and every cached page.
	Reset(ctx context.Context) error
}
