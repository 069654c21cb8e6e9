package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/event"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/service"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

func createProduct(t *testing.T, env testEnv, name, price string) model.Product {
	t.Helper()

	params := validProductParams()
	params.Name = name
	params.Price = dec(price)

	product, err := env.products.CreateProduct(context.Background(), params)
	require.NoError(t, err)
	return product
}

func TestCreateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("Should snapshot the products", func(t *testing.T) {
		env := newTestEnv(t)
		widget := createProduct(t, env, "Widget", "10.00")

		sale, err := env.sales.CreateSale(ctx, service.CreateSaleParams{
			CustomerID: "customer-1",
			Items:      []service.SaleItemParams{{ProductID: widget.ID, Quantity: 3}},
		})
		require.NoError(t, err)
		require.Len(t, sale.Items, 1)
		assert.Equal(t, 3, sale.TotalQuantity())
		assert.True(t, dec("30.00").Equal(sale.TotalPrice()))

		_, err = env.products.UpdateProduct(ctx, service.UpdateProductParams{
			ID:          widget.ID,
			Name:        "Renamed",
			Description: widget.Description,
			Price:       dec("99.99"),
			Quantity:    widget.Quantity,
			ImageURL:    widget.ImageURL,
		})
		require.NoError(t, err)

		got, err := env.sales.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Items[0].Name)
		assert.True(t, dec("10.00").Equal(got.Items[0].Price))

		assert.Contains(t, outboxTopics(t, env.store), event.TopicSaleCreated)
	})

	t.Run("Should fail with not found for an unknown product", func(t *testing.T) {
		env := newTestEnv(t)
		widget := createProduct(t, env, "Widget", "10.00")

		_, err := env.sales.CreateSale(ctx, service.CreateSaleParams{
			CustomerID: "customer-1",
			Items: []service.SaleItemParams{
				{ProductID: widget.ID, Quantity: 1},
				{ProductID: uuid.New(), Quantity: 1},
			},
		})
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)

		page, err := env.sales.ListSales(ctx, paging.Query{PageNumber: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Zero(t, page.TotalCount)
	})

	t.Run("Should report every violated rule", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.sales.CreateSale(ctx, service.CreateSaleParams{})
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.ElementsMatch(t, []string{"CustomerID", "Items"}, fieldErrors(t, err))

		_, err = env.sales.CreateSale(ctx, service.CreateSaleParams{
			CustomerID: "customer-1",
			Items:      []service.SaleItemParams{{Quantity: 0}},
		})
		assert.ElementsMatch(t, []string{"ProductID", "Quantity"}, fieldErrors(t, err))
	})
}

func TestUpdateAndDeleteSale(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	widget := createProduct(t, env, "Widget", "10.00")
	gadget := createProduct(t, env, "Gadget", "2.50")

	sale, err := env.sales.CreateSale(ctx, service.CreateSaleParams{
		CustomerID: "customer-1",
		Items:      []service.SaleItemParams{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.sales.UpdateSale(ctx, service.UpdateSaleParams{
		ID:         sale.ID,
		CustomerID: "customer-2",
		Items: []service.SaleItemParams{
			{ProductID: widget.ID, Quantity: 2},
			{ProductID: gadget.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "customer-2", updated.CustomerID)
	assert.Equal(t, sale.CreatedAt, updated.CreatedAt)
	assert.True(t, dec("30.00").Equal(updated.TotalPrice()))

	_, err = env.sales.UpdateSale(ctx, service.UpdateSaleParams{
		ID:         uuid.New(),
		CustomerID: "customer-2",
		Items:      []service.SaleItemParams{{ProductID: widget.ID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, apperr.SaleNotFoundErr)

	deleted, err := env.sales.DeleteSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = env.sales.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, apperr.SaleNotFoundErr)
}

func TestGetSalesByPeriod(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	widget := uuid.MustParse("00000000-0000-7000-8000-00000000000a")
	gadget := uuid.MustParse("00000000-0000-7000-8000-00000000000b")

	for _, s := range []model.Sale{
		{CustomerID: "c1", CreatedAt: day.Add(-time.Second), Items: []model.SaleItem{
			{ProductID: widget, Name: "Widget", Price: dec("100"), Quantity: 1},
		}},
		{CustomerID: "c1", CreatedAt: day.Add(time.Hour), Items: []model.SaleItem{
			{ProductID: widget, Name: "Widget", Price: dec("10.00"), Quantity: 2},
			{ProductID: gadget, Name: "Gadget", Price: dec("2.50"), Quantity: 4},
		}},
		{CustomerID: "c2", CreatedAt: day.Add(2 * time.Hour), Items: []model.SaleItem{
			{ProductID: widget, Name: "Widget (renamed)", Price: dec("12.00"), Quantity: 1},
		}},
		{CustomerID: "c3", CreatedAt: day.Add(3 * time.Hour), Items: []model.SaleItem{
			{ProductID: gadget, Name: "Gadget", Price: dec("0.10"), Quantity: 3},
		}},
	} {
		_, err := env.store.Sales().Create(ctx, s)
		require.NoError(t, err)
	}

	t.Run("Should page sales and total every sale of the period", func(t *testing.T) {
		report, err := env.sales.GetSalesByPeriod(ctx, service.GetSalesByPeriodParams{
			StartDate: day,
			EndDate:   day.Add(24 * time.Hour),
			Query:     paging.Query{PageNumber: 1, PageSize: 2},
		})
		require.NoError(t, err)

		assert.Equal(t, 3, report.Sales.TotalCount)
		assert.Equal(t, 2, report.Sales.TotalPages())
		require.Len(t, report.Sales.Items, 2)
		assert.Equal(t, day.Add(time.Hour), report.Sales.Items[0].CreatedAt)

		assert.Equal(t, 3, report.TotalSalesCount)
		assert.True(t, dec("42.30").Equal(report.TotalRevenue), "got %s", report.TotalRevenue)

		require.Len(t, report.ProductRevenues, 2)
		assert.Equal(t, widget, report.ProductRevenues[0].ProductID)
		assert.Equal(t, "Widget", report.ProductRevenues[0].ProductName)
		assert.True(t, dec("32.00").Equal(report.ProductRevenues[0].Revenue))
		assert.Equal(t, gadget, report.ProductRevenues[1].ProductID)
		assert.True(t, dec("10.30").Equal(report.ProductRevenues[1].Revenue))

		sum := decimal.Zero
		for _, pr := range report.ProductRevenues {
			sum = sum.Add(pr.Revenue)
		}
		assert.True(t, sum.Equal(report.TotalRevenue))
	})

	t.Run("Should return an empty report for a period without sales", func(t *testing.T) {
		report, err := env.sales.GetSalesByPeriod(ctx, service.GetSalesByPeriodParams{
			StartDate: day.AddDate(1, 0, 0),
			EndDate:   day.AddDate(1, 0, 1),
			Query:     paging.Query{PageNumber: 1, PageSize: 10},
		})
		require.NoError(t, err)
		assert.Zero(t, report.TotalSalesCount)
		assert.True(t, report.TotalRevenue.IsZero())
		assert.Empty(t, report.ProductRevenues)
		assert.Empty(t, report.Sales.Items)
	})

	t.Run("Should accept a period one tick long", func(t *testing.T) {
		_, err := env.sales.GetSalesByPeriod(ctx, service.GetSalesByPeriodParams{
			StartDate: day.Add(-time.Nanosecond),
			EndDate:   day,
			Query:     paging.Query{PageNumber: 1, PageSize: 10},
		})
		require.NoError(t, err)
	})

	t.Run("Should reject an inverted or empty period", func(t *testing.T) {
		_, err := env.sales.GetSalesByPeriod(ctx, service.GetSalesByPeriodParams{
			StartDate: day.Add(time.Nanosecond),
			EndDate:   day,
		})
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.Equal(t, []string{"StartDate"}, fieldErrors(t, err))

		_, err = env.sales.GetSalesByPeriod(ctx, service.GetSalesByPeriodParams{StartDate: day, EndDate: day})
		assert.ErrorIs(t, err, apperr.ValidationErr)

		_, err = env.sales.GetSalesByPeriod(ctx, service.GetSalesByPeriodParams{})
		assert.ElementsMatch(t, []string{"StartDate", "EndDate"}, fieldErrors(t, err))
	})
}

func TestDeleteSale(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	widget := createProduct(t, env, "Widget", "10.00")

	sale, err := env.sales.CreateSale(ctx, service.CreateSaleParams{
		CustomerID: "customer-1",
		Items:      []service.SaleItemParams{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	deleted, err := env.sales.DeleteSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = env.sales.DeleteSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = env.sales.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, apperr.SaleNotFoundErr)

	id := uuid.New()
	for range 2 {
		deleted, err := env.sales.DeleteSale(ctx, id)
		require.NoError(t, err)
		assert.False(t, deleted)
	}
}

func TestListCustomerSales(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	widget := createProduct(t, env, "Widget", "10.00")

	for _, customer := range []string{"bob", "eve", "bob"} {
		_, err := env.sales.CreateSale(ctx, service.CreateSaleParams{
			CustomerID: customer,
			Items:      []service.SaleItemParams{{ProductID: widget.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	page, err := env.sales.ListCustomerSales(ctx, "bob", paging.Query{PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	for _, sale := range page.Items {
		assert.Equal(t, "bob", sale.CustomerID)
	}

	page, err = env.sales.ListCustomerSales(ctx, "nobody", paging.Query{PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Items)

	_, err = env.sales.ListCustomerSales(ctx, "bob", paging.Query{PageNumber: 1, PageSize: 10, SortBy: "password"})
	assert.ErrorIs(t, err, apperr.InvalidSortFieldErr)
}
