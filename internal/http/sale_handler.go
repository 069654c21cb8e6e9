package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/service"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

type saleHandler struct {
	saleSvc service.SaleService
}

func newSaleHandler(saleSvc service.SaleService) *saleHandler {
	return &saleHandler{
		saleSvc: saleSvc,
	}
}

type saleItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type saleRequest struct {
	ID         uuid.UUID         `json:"id"`
	CustomerID string            `json:"customerId"`
	Items      []saleItemRequest `json:"items"`
}

func (req saleRequest) itemParams() []service.SaleItemParams {
	if req.Items == nil {
		return nil
	}

	items := make([]service.SaleItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.SaleItemParams{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return items
}

func (h *saleHandler) ListSales(w http.ResponseWriter, r *http.Request) error {
	q, err := pagingQuery(r)
	if err != nil {
		return err
	}

	customerID, scoped, err := customerScope(r)
	if err != nil {
		return err
	}

	var page paging.Page[model.Sale]
	if scoped {
		page, err = h.saleSvc.ListCustomerSales(r.Context(), customerID, q)
	} else {
		page, err = h.saleSvc.ListSales(r.Context(), q)
	}
	if err != nil {
		return fmt.Errorf("sale service list sales: %w", err)
	}

	writeJSON(w, http.StatusOK, newPageResponse(page, newSaleResponse))
	return nil
}

func (h *saleHandler) GetSale(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	sale, err := h.ownedSale(r, id)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, newSaleResponse(sale))
	return nil
}

func (h *saleHandler) GetSalesByPeriod(w http.ResponseWriter, r *http.Request) error {
	start, end, err := periodQuery(r)
	if err != nil {
		return err
	}

	q, err := pagingQuery(r)
	if err != nil {
		return err
	}

	report, err := h.saleSvc.GetSalesByPeriod(r.Context(), service.GetSalesByPeriodParams{
		StartDate: start,
		EndDate:   end,
		Query:     q,
	})
	if err != nil {
		return fmt.Errorf("sale service get sales by period: %w", err)
	}

	writeJSON(w, http.StatusOK, newSalesReportResponse(report))
	return nil
}

func (h *saleHandler) CreateSale(w http.ResponseWriter, r *http.Request) error {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	customerID, scoped, err := customerScope(r)
	if err != nil {
		return err
	}
	if !scoped {
		customerID = req.CustomerID
	}

	sale, err := h.saleSvc.CreateSale(r.Context(), service.CreateSaleParams{
		CustomerID: customerID,
		Items:      req.itemParams(),
	})
	if err != nil {
		return fmt.Errorf("sale service create sale: %w", err)
	}

	writeJSON(w, http.StatusCreated, newSaleResponse(sale))
	return nil
}

func (h *saleHandler) UpdateSale(w http.ResponseWriter, r *http.Request) error {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	customerID, scoped, err := customerScope(r)
	if err != nil {
		return err
	}
	if !scoped {
		customerID = req.CustomerID
	} else if req.ID != uuid.Nil {
		if _, err := h.ownedSale(r, req.ID); err != nil {
			return err
		}
	}

	sale, err := h.saleSvc.UpdateSale(r.Context(), service.UpdateSaleParams{
		ID:         req.ID,
		CustomerID: customerID,
		Items:      req.itemParams(),
	})
	if err != nil {
		return fmt.Errorf("sale service update sale: %w", err)
	}

	writeJSON(w, http.StatusOK, newSaleResponse(sale))
	return nil
}

func (h *saleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	_, scoped, err := customerScope(r)
	if err != nil {
		return err
	}
	if scoped {
		if _, err := h.ownedSale(r, id); err != nil {
			return err
		}
	}

	deleted, err := h.saleSvc.DeleteSale(r.Context(), id)
	if err != nil {
		return fmt.Errorf("sale service delete sale: %w", err)
	}
	if !deleted {
		return apperr.SaleNotFoundErr.WithMsgf("sale %s not found", id)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ownedSale loads the sale and fails with ForbiddenErr when a non-admin
// caller does not own it.
func (h *saleHandler) ownedSale(r *http.Request, id uuid.UUID) (model.Sale, error) {
	customerID, scoped, err := customerScope(r)
	if err != nil {
		return model.Sale{}, err
	}

	sale, err := h.saleSvc.GetSale(r.Context(), id)
	if err != nil {
		return model.Sale{}, fmt.Errorf("sale service get sale: %w", err)
	}

	if scoped && sale.CustomerID != customerID {
		return model.Sale{}, apperr.ForbiddenErr.WithMsgf("sale %s belongs to another customer", id)
	}
	return sale, nil
}

// customerScope returns the caller's user id and true when the caller is
// limited to its own sales. Admins are not limited.
func customerScope(r *http.Request) (string, bool, error) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return "", false, apperr.MissingTokenErr
	}

	if claims.HasRole(model.RoleAdmin) {
		return "", false, nil
	}
	return claims.Subject, true, nil
}
