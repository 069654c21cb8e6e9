package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSaleTotals(t *testing.T) {
	sale := model.Sale{
		Items: []model.SaleItem{
			{ProductID: uuid.New(), Price: dec("0.10"), Quantity: 3},
			{ProductID: uuid.New(), Price: dec("19.99"), Quantity: 2},
		},
	}

	assert.Equal(t, 5, sale.TotalQuantity())
	assert.True(t, dec("40.28").Equal(sale.TotalPrice()), "got %s", sale.TotalPrice())
}

func TestSaleTotalsEmpty(t *testing.T) {
	var sale model.Sale

	assert.Equal(t, 0, sale.TotalQuantity())
	assert.True(t, sale.TotalPrice().IsZero())
}

func TestSummarize(t *testing.T) {
	widget := uuid.MustParse("00000000-0000-7000-8000-000000000001")
	gadget := uuid.MustParse("00000000-0000-7000-8000-000000000002")
	widgetClone := uuid.MustParse("00000000-0000-7000-8000-000000000003")

	sales := []model.Sale{
		{Items: []model.SaleItem{
			{ProductID: gadget, Name: "Gadget", Price: dec("2.50"), Quantity: 4},
			{ProductID: widget, Name: "Widget", Price: dec("10.00"), Quantity: 1},
		}},
		{Items: []model.SaleItem{
			{ProductID: widget, Name: "Widget v2", Price: dec("12.00"), Quantity: 2},
			{ProductID: widgetClone, Name: "Widget", Price: dec("0.01"), Quantity: 3},
		}},
	}

	summary := model.Summarize(sales)

	assert.Equal(t, 2, summary.TotalSalesCount)
	assert.True(t, dec("44.03").Equal(summary.TotalRevenue), "got %s", summary.TotalRevenue)
	require.Len(t, summary.ProductRevenues, 3)

	assert.Equal(t, widget, summary.ProductRevenues[0].ProductID)
	assert.Equal(t, "Widget", summary.ProductRevenues[0].ProductName)
	assert.True(t, dec("34.00").Equal(summary.ProductRevenues[0].Revenue))

	assert.Equal(t, gadget, summary.ProductRevenues[1].ProductID)
	assert.True(t, dec("10.00").Equal(summary.ProductRevenues[1].Revenue))

	assert.Equal(t, widgetClone, summary.ProductRevenues[2].ProductID)
	assert.Equal(t, "Widget", summary.ProductRevenues[2].ProductName)
	assert.True(t, dec("0.03").Equal(summary.ProductRevenues[2].Revenue))

	sum := decimal.Zero
	for _, r := range summary.ProductRevenues {
		sum = sum.Add(r.Revenue)
	}
	assert.True(t, summary.TotalRevenue.Equal(sum))
}

func TestSummarizeEmpty(t *testing.T) {
	summary := model.Summarize(nil)

	assert.Equal(t, 0, summary.TotalSalesCount)
	assert.True(t, summary.TotalRevenue.IsZero())
	assert.NotNil(t, summary.ProductRevenues)
	assert.Empty(t, summary.ProductRevenues)
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	p := model.Period{Start: start, End: end}

	assert.True(t, p.Contains(start))
	assert.True(t, p.Contains(end))
	assert.False(t, p.Contains(start.Add(-time.Nanosecond)))
	assert.False(t, p.Contains(end.Add(time.Nanosecond)))
}

func TestProductSnapshot(t *testing.T) {
	p := model.Product{ID: uuid.New(), Name: "Widget", Description: "d", Price: dec("10.00"), Quantity: 50, ImageURL: "https://x/img.png"}

	item := p.Snapshot(3)

	assert.Equal(t, p.ID, item.ProductID)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, dec("30").Equal(item.Subtotal()))
}

func TestParseRole(t *testing.T) {
	r, err := model.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, r)

	_, err = model.ParseRole("root")
	assert.Error(t, err)
	assert.Error(t, model.Role("root").Validate())
	assert.NoError(t, model.RoleCustomer.Validate())
}
