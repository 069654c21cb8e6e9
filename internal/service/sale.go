package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/event"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

type SaleItemParams struct {
	ProductID uuid.UUID `validate:"required"`
	Quantity  int       `validate:"gte=1"`
}

type CreateSaleParams struct {
	CustomerID string           `validate:"required,max=100"`
	Items      []SaleItemParams `validate:"min=1,dive"`
}

type UpdateSaleParams struct {
	ID         uuid.UUID        `validate:"required"`
	CustomerID string           `validate:"required,max=100"`
	Items      []SaleItemParams `validate:"min=1,dive"`
}

type GetSalesByPeriodParams struct {
	StartDate time.Time    `validate:"required,ltfield=EndDate"`
	EndDate   time.Time    `validate:"required"`
	Query     paging.Query `validate:"-"`
}

type SaleService interface {
	CreateSale(ctx context.Context, params CreateSaleParams) (model.Sale, error)
	UpdateSale(ctx context.Context, params UpdateSaleParams) (model.Sale, error)
	// DeleteSale reports whether a sale was removed.
	DeleteSale(ctx context.Context, id uuid.UUID) (bool, error)
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	ListSales(ctx context.Context, q paging.Query) (paging.Page[model.Sale], error)
	ListCustomerSales(ctx context.Context, customerID string, q paging.Query) (paging.Page[model.Sale], error)
	// GetSalesByPeriod returns one page of the sales created within the
	// inclusive period together with the totals of every sale in it.
	GetSalesByPeriod(ctx context.Context, params GetSalesByPeriodParams) (model.SalesReport, error)
}

type saleService struct {
	store     repository.Store
	validator validator.Validator
}

func NewSaleService(
	store repository.Store,
	validator validator.Validator,
) SaleService {
	return &saleService{
		store:     store,
		validator: validator,
	}
}

func (s *saleService) CreateSale(ctx context.Context, params CreateSaleParams) (model.Sale, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Sale{}, err
	}

	var sale model.Sale
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		items, err := snapshotItems(ctx, tx, params.Items)
		if err != nil {
			return err
		}

		sale, err = tx.Sales().Create(ctx, model.Sale{
			CustomerID: params.CustomerID,
			Items:      items,
		})
		if err != nil {
			return fmt.Errorf("sale repository create: %w", err)
		}

		return enqueue(ctx, tx, event.TopicSaleCreated, sale.ID.String(), event.SaleCreatedEvent{
			SaleID:        sale.ID.String(),
			CustomerID:    sale.CustomerID,
			ItemCount:     len(sale.Items),
			TotalQuantity: sale.TotalQuantity(),
			TotalPrice:    sale.TotalPrice(),
		})
	}); err != nil {
		return model.Sale{}, fmt.Errorf("store with tx: %w", err)
	}

	return sale, nil
}

func (s *saleService) UpdateSale(ctx context.Context, params UpdateSaleParams) (model.Sale, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Sale{}, err
	}

	var sale model.Sale
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Sales().GetByID(ctx, params.ID)
		if err != nil {
			return saleLookupErr(params.ID, err)
		}

		items, err := snapshotItems(ctx, tx, params.Items)
		if err != nil {
			return err
		}

		existing.CustomerID = params.CustomerID
		existing.Items = items
		existing.UpdatedAt = time.Now().UTC()

		if err := tx.Sales().Update(ctx, existing); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return apperr.UpdateFailedErr.WithMsgf("failed to update sale %s", params.ID).WrapParent(err)
			}
			return fmt.Errorf("sale repository update: %w", err)
		}
		sale = existing

		return nil
	}); err != nil {
		return model.Sale{}, fmt.Errorf("store with tx: %w", err)
	}

	return sale, nil
}

func (s *saleService) DeleteSale(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.store.Sales().Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("sale repository delete: %w", err)
	}

	return deleted, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := s.store.Sales().GetByID(ctx, id)
	if err != nil {
		return model.Sale{}, saleLookupErr(id, err)
	}

	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, q paging.Query) (paging.Page[model.Sale], error) {
	page, err := s.store.Sales().ListPaged(ctx, q)
	if err != nil {
		return paging.Page[model.Sale]{}, fmt.Errorf("sale repository list paged: %w", mapListErr(err))
	}

	return page, nil
}

func (s *saleService) ListCustomerSales(ctx context.Context, customerID string, q paging.Query) (paging.Page[model.Sale], error) {
	page, err := s.store.Sales().ListByCustomer(ctx, customerID, q)
	if err != nil {
		return paging.Page[model.Sale]{}, fmt.Errorf("sale repository list by customer: %w", mapListErr(err))
	}

	return page, nil
}

func (s *saleService) GetSalesByPeriod(ctx context.Context, params GetSalesByPeriodParams) (model.SalesReport, error) {
	if err := validate(s.validator, params); err != nil {
		return model.SalesReport{}, err
	}

	period := model.Period{Start: params.StartDate, End: params.EndDate}
	q := params.Query.Normalize()

	var report model.SalesReport
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		page, err := tx.Sales().ListByPeriod(ctx, period, q)
		if err != nil {
			return fmt.Errorf("sale repository list by period: %w", mapListErr(err))
		}

		summary, err := tx.Sales().SummarizePeriod(ctx, period)
		if err != nil {
			return fmt.Errorf("sale repository summarize period: %w", err)
		}

		report = model.SalesReport{
			Sales:        page,
			SalesSummary: summary,
		}
		return nil
	}); err != nil {
		return model.SalesReport{}, fmt.Errorf("store with tx: %w", err)
	}

	return report, nil
}

// snapshotItems copies the current name, description, price and image of
// every referenced product into the sale items.
func snapshotItems(ctx context.Context, tx repository.Store, params []SaleItemParams) ([]model.SaleItem, error) {
	items := make([]model.SaleItem, 0, len(params))
	for _, p := range params {
		product, err := tx.Products().GetByID(ctx, p.ProductID)
		if err != nil {
			return nil, productLookupErr(p.ProductID, err)
		}
		items = append(items, product.Snapshot(p.Quantity))
	}
	return items, nil
}

func saleLookupErr(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.SaleNotFoundErr.WithMsgf("sale %s not found", id)
	}
	return fmt.Errorf("sale repository get by id: %w", err)
}
