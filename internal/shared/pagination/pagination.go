// Package pagination slices an already-ordered result set into pages.
// It is pure: validation of page/per_page happens in the caller before
// this runs, and the store's ordering is taken as given.
package pagination

// MaxPerPage is the hard cap on page size; larger requests are clamped,
// not rejected.
const MaxPerPage = 100

// Meta describes the position of a page within the full result set.
type Meta struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	NextPage     *int `json:"next_page"`
	PreviousPage *int `json:"previous_page"`
}

// Paginate returns the 1-indexed page of items and its Meta. perPage is
// clamped to MaxPerPage. A page past the end yields an empty slice with
// a nil NextPage. Both page and perPage must already be positive.
func Paginate[T any](items []T, page, perPage int) ([]T, Meta) {
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total := len(items)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	meta := Meta{
		CurrentPage: page,
		PerPage:     perPage,
		TotalItems:  total,
		TotalPages:  totalPages,
	}
	if end < total {
		next := page + 1
		meta.NextPage = &next
	}
	if start > 0 {
		prev := page - 1
		meta.PreviousPage = &prev
	}

	return items[start:end], meta
}
