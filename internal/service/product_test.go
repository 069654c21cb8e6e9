package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/event"
	"github.com/tuanvumaihuynh/storefront/internal/service"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

func validProductParams() service.CreateProductParams {
	return service.CreateProductParams{
		Name:        "Widget",
		Description: "A widget",
		Price:       dec("10.00"),
		Quantity:    50,
		ImageURL:    "https://cdn.example.com/widget.png",
	}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store the product and enqueue an event", func(t *testing.T) {
		env := newTestEnv(t)

		product, err := env.products.CreateProduct(ctx, validProductParams())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, product.ID)

		got, err := env.products.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
		assert.True(t, dec("10.00").Equal(got.Price))

		assert.Equal(t, []string{event.TopicProductCreated}, outboxTopics(t, env.store))
	})

	t.Run("Should report every violated rule and store nothing", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.products.CreateProduct(ctx, service.CreateProductParams{
			Name:        "",
			Description: "ok",
			Price:       dec("-1"),
			Quantity:    -1,
			ImageURL:    "not a url",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.ElementsMatch(t, []string{"Name", "Price", "Quantity", "ImageURL"}, fieldErrors(t, err))

		page, err := env.products.ListProducts(ctx, paging.Query{PageNumber: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Zero(t, page.TotalCount)
		assert.Empty(t, outboxTopics(t, env.store))
	})

	t.Run("Should reject a zero price", func(t *testing.T) {
		env := newTestEnv(t)

		params := validProductParams()
		params.Price = dec("0")

		_, err := env.products.CreateProduct(ctx, params)
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.Equal(t, []string{"Price"}, fieldErrors(t, err))
	})

	t.Run("Should accept a zero quantity", func(t *testing.T) {
		env := newTestEnv(t)

		params := validProductParams()
		params.Quantity = 0

		_, err := env.products.CreateProduct(ctx, params)
		assert.NoError(t, err)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	product, err := env.products.CreateProduct(ctx, validProductParams())
	require.NoError(t, err)

	t.Run("Should update the product", func(t *testing.T) {
		updated, err := env.products.UpdateProduct(ctx, service.UpdateProductParams{
			ID:          product.ID,
			Name:        "Widget v2",
			Description: "A better widget",
			Price:       dec("12.50"),
			Quantity:    10,
			ImageURL:    "https://cdn.example.com/widget2.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "Widget v2", updated.Name)
		assert.Equal(t, product.CreatedAt, updated.CreatedAt)

		got, err := env.products.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.True(t, dec("12.50").Equal(got.Price))
	})

	t.Run("Should fail with not found for an unknown id", func(t *testing.T) {
		params := service.UpdateProductParams{
			ID:          uuid.New(),
			Name:        "Ghost",
			Description: "Ghost",
			Price:       dec("1"),
			ImageURL:    "https://cdn.example.com/ghost.png",
		}
		_, err := env.products.UpdateProduct(ctx, params)
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})

	t.Run("Should require an id", func(t *testing.T) {
		_, err := env.products.UpdateProduct(ctx, service.UpdateProductParams{
			Name:        "Widget",
			Description: "Widget",
			Price:       dec("1"),
			ImageURL:    "https://cdn.example.com/widget.png",
		})
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.Equal(t, []string{"ID"}, fieldErrors(t, err))
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	product, err := env.products.CreateProduct(ctx, validProductParams())
	require.NoError(t, err)

	deleted, err := env.products.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = env.products.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = env.products.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, apperr.ProductNotFoundErr)

	assert.Equal(t, []string{event.TopicProductCreated, event.TopicProductDeleted}, outboxTopics(t, env.store))

	t.Run("Should report false for an id that never existed", func(t *testing.T) {
		id := uuid.New()
		for range 2 {
			deleted, err := env.products.DeleteProduct(ctx, id)
			require.NoError(t, err)
			assert.False(t, deleted)
		}
		assert.Equal(t, []string{event.TopicProductCreated, event.TopicProductDeleted}, outboxTopics(t, env.store))
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for _, name := range []string{"b", "a", "c"} {
		params := validProductParams()
		params.Name = name
		_, err := env.products.CreateProduct(ctx, params)
		require.NoError(t, err)
	}

	t.Run("Should sort by name", func(t *testing.T) {
		page, err := env.products.ListProducts(ctx, paging.Query{PageNumber: 1, PageSize: 2, SortBy: "Name", Ascending: true})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "a", page.Items[0].Name)
		assert.Equal(t, "b", page.Items[1].Name)
		assert.Equal(t, 3, page.TotalCount)
		assert.Equal(t, 2, page.TotalPages())
	})

	t.Run("Should coerce page number and size", func(t *testing.T) {
		page, err := env.products.ListProducts(ctx, paging.Query{PageNumber: 0, PageSize: -5})
		require.NoError(t, err)
		assert.Equal(t, 1, page.PageNumber)
		assert.Equal(t, 1, page.PageSize)
		assert.Len(t, page.Items, 1)
	})

	t.Run("Should reject an unknown sort field", func(t *testing.T) {
		_, err := env.products.ListProducts(ctx, paging.Query{PageNumber: 1, PageSize: 10, SortBy: "password"})
		assert.ErrorIs(t, err, apperr.InvalidSortFieldErr)
		assert.ErrorIs(t, err, paging.ErrInvalidField)
	})
}
