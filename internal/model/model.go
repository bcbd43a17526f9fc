// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// ResultTable is a named query result: ordered columns and string cells.
type ResultTable struct {
	Name      string     `json:"table_name"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	CreatedAt time.Time  `json:"created_at"`
}

// TablePage is one rendered page of a result table, as served to the UI.
type TablePage struct {
	TableName      string `json:"-"`
	HTML           string `json:"table_html"`
	PageNumber     int    `json:"page_number"`
	TotalPages     int    `json:"total_pages"`
	TotalRecords   int    `json:"total_records"`
	RecordsPerPage int    `json:"-"`
}

// TableSummary describes a stored table without its rows.
type TableSummary struct {
	Name      string    `json:"table_name"`
	Columns   []string  `json:"columns"`
	RowCount  int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at"`
}
