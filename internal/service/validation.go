package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/maxviazov/query-explorer/internal/model"
)

const (
	MaxRecordsPerPage = 500
	maxTableNameLen   = 128
	maxColumns        = 256
)

func validateTableName(name string) []FieldError {
	switch {
	case name == "":
		return []FieldError{{Field: "table_name", Message: "must not be empty"}}
	case utf8.RuneCountInString(name) > maxTableNameLen:
		return []FieldError{{Field: "table_name", Message: fmt.Sprintf("length must be at most %d", maxTableNameLen)}}
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return []FieldError{{Field: "table_name", Message: "must not contain control characters"}}
	}
	return nil
}

func validatePageRequest(name string, page, perPage int) error {
	ferrs := validateTableName(name)
	if page < 1 {
		ferrs = append(ferrs, FieldError{Field: "page_number", Message: "must be >= 1"})
	}
	if perPage < 1 || perPage > MaxRecordsPerPage {
		ferrs = append(ferrs, FieldError{Field: "records_per_page", Message: fmt.Sprintf("must be between 1 and %d", MaxRecordsPerPage)})
	}
	return newInvalidInput(ferrs)
}

// validateResultTable checks a table before it is stored; every row must be
// exactly as wide as the header.
func validateResultTable(t model.ResultTable) error {
	ferrs := validateTableName(t.Name)
	switch {
	case len(t.Columns) == 0:
		ferrs = append(ferrs, FieldError{Field: "columns", Message: "must not be empty"})
	case len(t.Columns) > maxColumns:
		ferrs = append(ferrs, FieldError{Field: "columns", Message: fmt.Sprintf("must have at most %d entries", maxColumns)})
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == "" {
			ferrs = append(ferrs, FieldError{Field: fmt.Sprintf("columns[%d]", i), Message: "must not be blank"})
			continue
		}
		if _, dup := seen[c]; dup {
			ferrs = append(ferrs, FieldError{Field: fmt.Sprintf("columns[%d]", i), Message: "duplicate column " + c})
		}
		seen[c] = struct{}{}
	}
	if len(t.Columns) > 0 {
		for i, row := range t.Rows {
			if len(row) != len(t.Columns) {
				ferrs = append(ferrs, FieldError{
					Field:   fmt.Sprintf("rows[%d]", i),
					Message: fmt.Sprintf("has %d cells, want %d", len(row), len(t.Columns)),
				})
				// one bad row is enough to reject; skip listing thousands
				break
			}
		}
	}
	return newInvalidInput(ferrs)
}
