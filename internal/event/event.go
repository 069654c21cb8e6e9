package event

import "github.com/shopspring/decimal"

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
	TopicSaleCreated    = "sale.created"
	TopicUserRegistered = "user.registered"
)

type ProductCreatedEvent struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type ProductUpdatedEvent struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type ProductDeletedEvent struct {
	ProductID string `json:"product_id"`
}

type SaleCreatedEvent struct {
	SaleID        string          `json:"sale_id"`
	CustomerID    string          `json:"customer_id"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

type UserRegisteredEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
