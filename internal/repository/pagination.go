package repository

// Page is a limit/offset window over a table's rows. A Limit of zero or less
// means "all rows" for the memory store; the Postgres store substitutes a
// default and caps large limits.
// Page numbers are translated to offsets by the service layer.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries one window of items and the total count behind it.
// I return the total so the caller can compute total pages without an extra round trip.
type PageResult[T any] struct {
	Items []T
	Total int
}
