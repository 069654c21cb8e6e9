package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}

type pageResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func newPageResponse[T, U any](p paging.Page[T], f func(T) U) pageResponse[U] {
	mapped := paging.Map(p, f)
	return pageResponse[U]{
		Items:      mapped.Items,
		TotalCount: mapped.TotalCount,
		PageNumber: mapped.PageNumber,
		PageSize:   mapped.PageSize,
		TotalPages: mapped.TotalPages(),
	}
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func newProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type saleItemResponse struct {
	ProductID   uuid.UUID       `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type saleResponse struct {
	ID            uuid.UUID          `json:"id"`
	CustomerID    string             `json:"customerId"`
	Items         []saleItemResponse `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalPrice    decimal.Decimal    `json:"totalPrice"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func newSaleResponse(s model.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, saleItemResponse{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Quantity:    item.Quantity,
			ImageURL:    item.ImageURL,
			Subtotal:    item.Subtotal(),
		})
	}

	return saleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		Items:         items,
		TotalQuantity: s.TotalQuantity(),
		TotalPrice:    s.TotalPrice(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

type productRevenueResponse struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type salesReportResponse struct {
	pageResponse[saleResponse]

	TotalSalesCount int                      `json:"totalSalesCount"`
	TotalRevenue    decimal.Decimal          `json:"totalRevenue"`
	ProductRevenues []productRevenueResponse `json:"productRevenues"`
}

func newSalesReportResponse(r model.SalesReport) salesReportResponse {
	revenues := make([]productRevenueResponse, 0, len(r.ProductRevenues))
	for _, pr := range r.ProductRevenues {
		revenues = append(revenues, productRevenueResponse{
			ProductID:   pr.ProductID,
			ProductName: pr.ProductName,
			Revenue:     pr.Revenue,
		})
	}

	return salesReportResponse{
		pageResponse:    newPageResponse(r.Sales, newSaleResponse),
		TotalSalesCount: r.TotalSalesCount,
		TotalRevenue:    r.TotalRevenue,
		ProductRevenues: revenues,
	}
}

type userResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	Role        model.Role `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type loginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	Roles        []model.Role `json:"roles"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}
