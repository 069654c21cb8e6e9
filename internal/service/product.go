package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/event"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

type CreateProductParams struct {
	Name        string          `validate:"required,max=100"`
	Description string          `validate:"required,max=500"`
	Price       decimal.Decimal `validate:"gt=0"`
	Quantity    int             `validate:"gte=0"`
	ImageURL    string          `validate:"required,absurl,max=2048"`
}

type UpdateProductParams struct {
	ID          uuid.UUID       `validate:"required"`
	Name        string          `validate:"required,max=100"`
	Description string          `validate:"required,max=500"`
	Price       decimal.Decimal `validate:"gt=0"`
	Quantity    int             `validate:"gte=0"`
	ImageURL    string          `validate:"required,absurl,max=2048"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error)
	// DeleteProduct reports whether a product was removed.
	DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, q paging.Query) (paging.Page[model.Product], error)
}

type productService struct {
	store     repository.Store
	validator validator.Validator
}

func NewProductService(
	store repository.Store,
	validator validator.Validator,
) ProductService {
	return &productService{
		store:     store,
		validator: validator,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}

	product := model.Product{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Quantity:    params.Quantity,
		ImageURL:    params.ImageURL,
	}

	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		created, err := tx.Products().Create(ctx, product)
		if err != nil {
			return fmt.Errorf("product repository create: %w", err)
		}
		product = created

		return enqueue(ctx, tx, event.TopicProductCreated, product.ID.String(), event.ProductCreatedEvent{
			ProductID: product.ID.String(),
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  product.Quantity,
		})
	}); err != nil {
		return model.Product{}, fmt.Errorf("store with tx: %w", err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}

	var product model.Product
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Products().GetByID(ctx, params.ID)
		if err != nil {
			return productLookupErr(params.ID, err)
		}

		existing.Name = params.Name
		existing.Description = params.Description
		existing.Price = params.Price
		existing.Quantity = params.Quantity
		existing.ImageURL = params.ImageURL
		existing.UpdatedAt = time.Now().UTC()

		if err := tx.Products().Update(ctx, existing); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return apperr.UpdateFailedErr.WithMsgf("failed to update product %s", params.ID).WrapParent(err)
			}
			return fmt.Errorf("product repository update: %w", err)
		}
		product = existing

		return enqueue(ctx, tx, event.TopicProductUpdated, product.ID.String(), event.ProductUpdatedEvent{
			ProductID: product.ID.String(),
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  product.Quantity,
		})
	}); err != nil {
		return model.Product{}, fmt.Errorf("store with tx: %w", err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		deleted, err = tx.Products().Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository delete: %w", err)
		}
		if !deleted {
			return nil
		}

		return enqueue(ctx, tx, event.TopicProductDeleted, id.String(), event.ProductDeletedEvent{
			ProductID: id.String(),
		})
	}); err != nil {
		return false, fmt.Errorf("store with tx: %w", err)
	}

	return deleted, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return model.Product{}, productLookupErr(id, err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, q paging.Query) (paging.Page[model.Product], error) {
	page, err := s.store.Products().ListPaged(ctx, q)
	if err != nil {
		return paging.Page[model.Product]{}, fmt.Errorf("product repository list paged: %w", mapListErr(err))
	}

	return page, nil
}

func productLookupErr(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ProductNotFoundErr.WithMsgf("product %s not found", id)
	}
	return fmt.Errorf("product repository get by id: %w", err)
}
