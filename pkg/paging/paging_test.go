package paging_test

import (
	"cmp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

type item struct {
	ID    int
	Name  string
	Price int
}

var itemFields = paging.Fields[item]{
	"name":  {Column: "name", Compare: func(a, b item) int { return strings.Compare(a.Name, b.Name) }},
	"price": {Column: "price", Compare: func(a, b item) int { return cmp.Compare(a.Price, b.Price) }},
}

func byID(a, b item) int { return cmp.Compare(a.ID, b.ID) }

func makeItems(n int) []item {
	items := make([]item, 0, n)
	for i := n; i >= 1; i-- {
		items = append(items, item{ID: i, Name: string(rune('a' + i%26)), Price: i % 3})
	}
	return items
}

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       paging.Query
		wantPage int
		wantSize int
	}{
		{"zero values", paging.Query{}, 1, 1},
		{"negative values", paging.Query{PageNumber: -3, PageSize: -10}, 1, 1},
		{"valid values", paging.Query{PageNumber: 4, PageSize: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, q.PageNumber)
			assert.Equal(t, tt.wantSize, q.PageSize)
			assert.GreaterOrEqual(t, q.Offset(), 0)
		})
	}
}

func TestPageTotalPages(t *testing.T) {
	assert.Equal(t, 0, paging.Page[int]{TotalCount: 0, PageSize: 10}.TotalPages())
	assert.Equal(t, 1, paging.Page[int]{TotalCount: 10, PageSize: 10}.TotalPages())
	assert.Equal(t, 2, paging.Page[int]{TotalCount: 11, PageSize: 10}.TotalPages())
	assert.Equal(t, 7, paging.Page[int]{TotalCount: 7, PageSize: 1}.TotalPages())
}

func TestApplyPageLength(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 37} {
		items := makeItems(n)
		for _, size := range []int{1, 3, 10, 50} {
			for page := 1; page <= 6; page++ {
				got, err := paging.Apply(items, paging.Query{PageNumber: page, PageSize: size}, itemFields, byID)
				require.NoError(t, err)

				want := min(size, max(0, n-(page-1)*size))
				assert.Len(t, got.Items, want, "n=%d size=%d page=%d", n, size, page)
				assert.Equal(t, n, got.TotalCount)
				assert.Equal(t, page, got.PageNumber)
				assert.Equal(t, size, got.PageSize)
			}
		}
	}
}

func TestApplyDefaultOrderIsStable(t *testing.T) {
	items := makeItems(20)

	first, err := paging.Apply(items, paging.Query{PageNumber: 1, PageSize: 20}, itemFields, byID)
	require.NoError(t, err)
	second, err := paging.Apply(items, paging.Query{PageNumber: 1, PageSize: 20}, itemFields, byID)
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, 1, first.Items[0].ID)
	assert.Equal(t, 20, first.Items[19].ID)
}

func TestApplySorting(t *testing.T) {
	items := []item{
		{ID: 1, Name: "b", Price: 20},
		{ID: 2, Name: "a", Price: 10},
		{ID: 3, Name: "c", Price: 10},
	}

	t.Run("Should sort ascending with id tiebreak", func(t *testing.T) {
		got, err := paging.Apply(items, paging.Query{PageNumber: 1, PageSize: 10, SortBy: "Price", Ascending: true}, itemFields, byID)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 1}, ids(got.Items))
	})

	t.Run("Should sort descending", func(t *testing.T) {
		got, err := paging.Apply(items, paging.Query{PageNumber: 1, PageSize: 10, SortBy: "name"}, itemFields, byID)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, ids(got.Items))
	})

	t.Run("Should fail on unknown field", func(t *testing.T) {
		_, err := paging.Apply(items, paging.Query{PageNumber: 1, PageSize: 10, SortBy: "Password"}, itemFields, byID)
		require.Error(t, err)
		assert.ErrorIs(t, err, paging.ErrInvalidField)

		var fieldErr *paging.InvalidFieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "Password", fieldErr.Field)
		assert.Equal(t, []string{"name", "price"}, fieldErr.Allowed)
	})

	t.Run("Should not mutate input", func(t *testing.T) {
		_, err := paging.Apply(items, paging.Query{PageNumber: 1, PageSize: 10, SortBy: "name", Ascending: true}, itemFields, byID)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, ids(items))
	})
}

func TestFieldsOrderBy(t *testing.T) {
	clause, err := itemFields.OrderBy(paging.Query{}, "id ASC")
	require.NoError(t, err)
	assert.Equal(t, "id ASC", clause)

	clause, err = itemFields.OrderBy(paging.Query{SortBy: "PRICE", Ascending: true}, "id ASC")
	require.NoError(t, err)
	assert.Equal(t, "price ASC, id ASC", clause)

	clause, err = itemFields.OrderBy(paging.Query{SortBy: "name"}, "id ASC")
	require.NoError(t, err)
	assert.Equal(t, "name DESC, id ASC", clause)

	_, err = itemFields.OrderBy(paging.Query{SortBy: "name; DROP TABLE items"}, "id ASC")
	assert.ErrorIs(t, err, paging.ErrInvalidField)
}

func TestMap(t *testing.T) {
	page := paging.Page[int]{Items: []int{1, 2}, TotalCount: 12, PageNumber: 2, PageSize: 2}

	mapped := paging.Map(page, func(v int) string { return strings.Repeat("x", v) })

	assert.Equal(t, []string{"x", "xx"}, mapped.Items)
	assert.Equal(t, 12, mapped.TotalCount)
	assert.Equal(t, 2, mapped.PageNumber)
	assert.Equal(t, 6, mapped.TotalPages())
}

func ids(items []item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
