package memstore

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

type productRepository struct {
	s *Store
}

func (r *productRepository) ListPaged(_ context.Context, q paging.Query) (paging.Page[model.Product], error) {
	defer r.s.lock()()

	products := slices.Collect(maps.Values(r.s.state().products))
	return paging.Apply(products, q, model.ProductSortFields, model.CompareProductID)
}

func (r *productRepository) GetByID(_ context.Context, id uuid.UUID) (model.Product, error) {
	defer r.s.lock()()

	p, ok := r.s.state().products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *productRepository) Create(_ context.Context, p model.Product) (model.Product, error) {
	defer r.s.lock()()

	id, err := newID(p.ID)
	if err != nil {
		return model.Product{}, err
	}
	p.ID = id

	st := r.s.state()
	if _, exists := st.products[p.ID]; exists {
		return model.Product{}, repository.ErrConflict
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt

	st.products[p.ID] = p
	return p, nil
}

func (r *productRepository) Update(_ context.Context, p model.Product) error {
	defer r.s.lock()()

	st := r.s.state()
	old, ok := st.products[p.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}

	p.CreatedAt = old.CreatedAt
	st.products[p.ID] = p
	return nil
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lock()()

	st := r.s.state()
	if _, ok := st.products[id]; !ok {
		return false, nil
	}

	delete(st.products, id)
	return true, nil
}
