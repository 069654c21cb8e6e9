package model

import (
	"cmp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Snapshot captures the product as sold, decoupled from later edits.
func (p Product) Snapshot(quantity int) SaleItem {
	return SaleItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    quantity,
		ImageURL:    p.ImageURL,
	}
}

// ProductSortFields is the whitelist of fields a product listing can be sorted by.
var ProductSortFields = paging.Fields[Product]{
	"name": {
		Column:  "name",
		Compare: func(a, b Product) int { return strings.Compare(a.Name, b.Name) },
	},
	"description": {
		Column:  "description",
		Compare: func(a, b Product) int { return strings.Compare(a.Description, b.Description) },
	},
	"price": {
		Column:  "price",
		Compare: func(a, b Product) int { return a.Price.Cmp(b.Price) },
	},
	"quantity": {
		Column:  "quantity",
		Compare: func(a, b Product) int { return cmp.Compare(a.Quantity, b.Quantity) },
	},
	"createdat": {
		Column:  "created_at",
		Compare: func(a, b Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	"updatedat": {
		Column:  "updated_at",
		Compare: func(a, b Product) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
}

func CompareProductID(a, b Product) int {
	return CompareID(a.ID, b.ID)
}

// CompareID orders uuids bytewise, which for v7 ids is creation order.
func CompareID(a, b uuid.UUID) int {
	return strings.Compare(a.String(), b.String())
}
