package model

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// PageParams selects a page of a paginated list. Zero values are omitted
// from the request.
type PageParams struct {
	Page int
	Size int
}
