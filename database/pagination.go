package database

import "strconv"

// Page is one page of a listing. Page numbers start at 1 and an empty
// listing still has a single, empty page.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	PerPage  int
	Total    int64
}

func newPage[T any](total int64, perPage int, param string) Page[T] {
	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}
	return Page[T]{
		Number:   PageNumber(param, numPages),
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
	}
}

// PageNumber resolves the raw ?page= value: anything that is not an integer
// selects the first page, "last" and out-of-range integers select the last.
func PageNumber(param string, numPages int) int {
	if param == "last" {
		return numPages
	}
	n, err := strconv.Atoi(param)
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

func (p Page[T]) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page[T]) HasOtherPages() bool {
	return p.NumPages > 1
}

func (p Page[T]) PreviousNumber() int {
	return p.Number - 1
}

func (p Page[T]) NextNumber() int {
	return p.Number + 1
}
