package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

// SaleItem is a product snapshot taken when the sale was made.
type SaleItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url"`
}

// Subtotal is price × quantity.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Sale struct {
	ID         uuid.UUID  `json:"id"`
	Items      []SaleItem `json:"items"`
	CustomerID string     `json:"customer_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TotalQuantity is the sum of the item quantities. It is never stored.
func (s Sale) TotalQuantity() int {
	var total int
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of the item subtotals. It is never stored.
func (s Sale) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// SaleSortFields is the whitelist of fields a sale listing can be sorted by.
var SaleSortFields = paging.Fields[Sale]{
	"customerid": {
		Column:  "customer_id",
		Compare: func(a, b Sale) int { return strings.Compare(a.CustomerID, b.CustomerID) },
	},
	"createdat": {
		Column:  "created_at",
		Compare: func(a, b Sale) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	"updatedat": {
		Column:  "updated_at",
		Compare: func(a, b Sale) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
}

func CompareSaleID(a, b Sale) int {
	return CompareID(a.ID, b.ID)
}

// Period is an inclusive creation-time range.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ProductRevenue is the revenue one product contributed to a set of sales.
type ProductRevenue struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SalesSummary aggregates every sale of a period, regardless of paging.
type SalesSummary struct {
	TotalSalesCount int
	TotalRevenue    decimal.Decimal
	ProductRevenues []ProductRevenue
}

// SalesReport is a page of sales of a period together with the period totals.
type SalesReport struct {
	Sales paging.Page[Sale]
	SalesSummary
}

// Summarize aggregates sales in memory. Revenue is grouped by product id and
// the breakdown is ordered by product id; the product name is taken from the
// first snapshot seen, so sales should be passed in creation order.
func Summarize(sales []Sale) SalesSummary {
	summary := SalesSummary{
		TotalSalesCount: len(sales),
		TotalRevenue:    decimal.Zero,
		ProductRevenues: []ProductRevenue{},
	}

	index := make(map[uuid.UUID]int)
	for _, sale := range sales {
		for _, item := range sale.Items {
			subtotal := item.Subtotal()
			summary.TotalRevenue = summary.TotalRevenue.Add(subtotal)

			i, ok := index[item.ProductID]
			if !ok {
				index[item.ProductID] = len(summary.ProductRevenues)
				summary.ProductRevenues = append(summary.ProductRevenues, ProductRevenue{
					ProductID:   item.ProductID,
					ProductName: item.Name,
					Revenue:     subtotal,
				})
				continue
			}
			summary.ProductRevenues[i].Revenue = summary.ProductRevenues[i].Revenue.Add(subtotal)
		}
	}

	SortProductRevenues(summary.ProductRevenues)

	return summary
}

// SortProductRevenues orders a breakdown by product id.
func SortProductRevenues(revenues []ProductRevenue) {
	slices.SortFunc(revenues, func(a, b ProductRevenue) int {
		return CompareID(a.ProductID, b.ProductID)
	})
}
