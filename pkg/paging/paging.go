// Package paging implements page/size/sort request handling shared by every
// paged listing, independent of the store that serves it.
package paging

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

var ErrInvalidField = errors.New("invalid sort field")

// InvalidFieldError reports a sort field that is not in an entity's whitelist.
type InvalidFieldError struct {
	Field   string
	Allowed []string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid sort field %q, allowed: [%s]", e.Field, strings.Join(e.Allowed, ", "))
}

func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidField
}

// Query is the request side of a paged listing.
type Query struct {
	PageNumber int
	PageSize   int
	SortBy     string
	Ascending  bool
}

// Normalize coerces page number and page size to at least 1.
func (q Query) Normalize() Query {
	q.PageNumber = max(q.PageNumber, 1)
	q.PageSize = max(q.PageSize, 1)
	q.SortBy = strings.TrimSpace(q.SortBy)
	return q
}

// Offset returns the number of entries to skip. The query must be normalized.
func (q Query) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}

// Limit returns the maximum number of entries on the page.
func (q Query) Limit() int {
	return q.PageSize
}

// Direction returns the SQL sort direction keyword.
func (q Query) Direction() string {
	if q.Ascending {
		return "ASC"
	}
	return "DESC"
}

// Page is the pagination envelope returned by every paged query.
type Page[T any] struct {
	Items      []T
	TotalCount int
	PageNumber int
	PageSize   int
}

// NewPage builds a page echoing the query's page number and size.
func NewPage[T any](items []T, totalCount int, q Query) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		TotalCount: totalCount,
		PageNumber: q.PageNumber,
		PageSize:   q.PageSize,
	}
}

// TotalPages is ceil(TotalCount / PageSize).
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, f(item))
	}
	return Page[U]{
		Items:      items,
		TotalCount: p.TotalCount,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}
}

// Field is one sortable field of T: the column it maps to in a relational
// store and the comparator used by in-memory stores.
type Field[T any] struct {
	Column  string
	Compare func(a, b T) int
}

// Fields is the whitelist of sortable fields of T, keyed by lower-case name.
type Fields[T any] map[string]Field[T]

// Lookup resolves a field name case-insensitively.
func (f Fields[T]) Lookup(name string) (Field[T], error) {
	field, ok := f[strings.ToLower(name)]
	if !ok {
		return Field[T]{}, &InvalidFieldError{Field: name, Allowed: f.Names()}
	}
	return field, nil
}

// Names returns the sorted field names.
func (f Fields[T]) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OrderBy returns the ORDER BY clause for q, always ending with tiebreak so
// ordering is stable between calls.
func (f Fields[T]) OrderBy(q Query, tiebreak string) (string, error) {
	if q.SortBy == "" {
		return tiebreak, nil
	}

	field, err := f.Lookup(q.SortBy)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s, %s", field.Column, q.Direction(), tiebreak), nil
}

// Apply pages an in-memory collection. Without a sort field the items are
// ordered by tiebreak alone; with one, ties are broken by tiebreak.
func Apply[T any](items []T, q Query, fields Fields[T], tiebreak func(a, b T) int) (Page[T], error) {
	q = q.Normalize()

	sorted := slices.Clone(items)
	compare := tiebreak
	if q.SortBy != "" {
		field, err := fields.Lookup(q.SortBy)
		if err != nil {
			return Page[T]{}, err
		}

		compare = func(a, b T) int {
			c := field.Compare(a, b)
			if !q.Ascending {
				c = -c
			}
			return cmp.Or(c, tiebreak(a, b))
		}
	}
	slices.SortStableFunc(sorted, compare)

	total := len(sorted)
	start := min(q.Offset(), total)
	end := min(start+q.Limit(), total)

	return NewPage(sorted[start:end], total, q), nil
}
