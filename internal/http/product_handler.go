package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/service"
)

type productHandler struct {
	productSvc service.ProductService
}

func newProductHandler(productSvc service.ProductService) *productHandler {
	return &productHandler{
		productSvc: productSvc,
	}
}

type productRequest struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl"`
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	q, err := pagingQuery(r)
	if err != nil {
		return err
	}

	page, err := h.productSvc.ListProducts(r.Context(), q)
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}

	writeJSON(w, http.StatusOK, newPageResponse(page, newProductResponse))
	return nil
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}

	writeJSON(w, http.StatusOK, newProductResponse(product))
	return nil
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	writeJSON(w, http.StatusCreated, newProductResponse(product))
	return nil
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), service.UpdateProductParams{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	writeJSON(w, http.StatusOK, newProductResponse(product))
	return nil
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	deleted, err := h.productSvc.DeleteProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}
	if !deleted {
		return apperr.ProductNotFoundErr.WithMsgf("product %s not found", id)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
