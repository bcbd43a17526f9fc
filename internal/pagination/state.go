package pagination

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidState is returned when a PageState violates its invariants.
var ErrInvalidState = errors.New("invalid page state")

var validate = validator.New()

// PageState is the pagination position of one displayed table.
type PageState struct {
	TableID        string `json:"table_id" validate:"required"`
	CurrentPage    int    `json:"current_page" validate:"gte=1,ltefield=TotalPages"`
	TotalPages     int    `json:"total_pages" validate:"gte=1"`
	RecordsPerPage int    `json:"records_per_page" validate:"gt=0"`
}

// NewPageState builds the state of a freshly rendered table (page 1).
func NewPageState(tableID string, totalPages, recordsPerPage int) (PageState, error) {
	s := PageState{
		TableID:        tableID,
		CurrentPage:    1,
		TotalPages:     max(1, totalPages),
		RecordsPerPage: recordsPerPage,
	}
	if err := s.Validate(); err != nil {
		return PageState{}, err
	}
	return s, nil
}

// Validate checks the state invariants.
func (s PageState) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}

// Window returns the page window for the state.
func (s PageState) Window() Window { return ComputeWindow(s.CurrentPage, s.TotalPages) }

// HasPrevious reports whether a previous page exists.
func (s PageState) HasPrevious() bool { return s.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (s PageState) HasNext() bool { return s.CurrentPage < s.TotalPages }

// ClampPage maps a requested page into [1, TotalPages].
func (s PageState) ClampPage(page int) int { return clamp(page, 1, max(1, s.TotalPages)) }

// TotalPagesFor returns how many pages totalRecords need at recordsPerPage.
// An empty table still occupies one (empty) page.
func TotalPagesFor(totalRecords, recordsPerPage int) int {
	if recordsPerPage <= 0 || totalRecords <= 0 {
		return 1
	}
	return (totalRecords + recordsPerPage - 1) / recordsPerPage
}

// Offset returns the zero-based index of the first record on page.
func Offset(page, recordsPerPage int) int {
	if page <= 1 || recordsPerPage <= 0 {
		return 0
	}
	return (page - 1) * recordsPerPage
}
