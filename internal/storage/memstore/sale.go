package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

type saleRepository struct {
	s *Store
}

func (r *saleRepository) ListPaged(_ context.Context, q paging.Query) (paging.Page[model.Sale], error) {
	defer r.s.lock()()

	sales := slices.Collect(maps.Values(r.s.state().sales))
	page, err := paging.Apply(sales, q, model.SaleSortFields, model.CompareSaleID)
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}
	return paging.Map(page, cloneSale), nil
}

func (r *saleRepository) ListByCustomer(_ context.Context, customerID string, q paging.Query) (paging.Page[model.Sale], error) {
	defer r.s.lock()()

	var sales []model.Sale
	for _, sale := range r.s.state().sales {
		if sale.CustomerID == customerID {
			sales = append(sales, sale)
		}
	}

	page, err := paging.Apply(sales, q, model.SaleSortFields, model.CompareSaleID)
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}
	return paging.Map(page, cloneSale), nil
}

func (r *saleRepository) ListByPeriod(_ context.Context, period model.Period, q paging.Query) (paging.Page[model.Sale], error) {
	defer r.s.lock()()

	page, err := paging.Apply(r.inPeriod(period), q, model.SaleSortFields, compareSaleCreated)
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}
	return paging.Map(page, cloneSale), nil
}

func (r *saleRepository) SummarizePeriod(_ context.Context, period model.Period) (model.SalesSummary, error) {
	defer r.s.lock()()

	sales := r.inPeriod(period)
	slices.SortFunc(sales, compareSaleCreated)

	return model.Summarize(sales), nil
}

func (r *saleRepository) inPeriod(period model.Period) []model.Sale {
	var sales []model.Sale
	for _, sale := range r.s.state().sales {
		if period.Contains(sale.CreatedAt) {
			sales = append(sales, sale)
		}
	}
	return sales
}

func (r *saleRepository) GetByID(_ context.Context, id uuid.UUID) (model.Sale, error) {
	defer r.s.lock()()

	sale, ok := r.s.state().sales[id]
	if !ok {
		return model.Sale{}, repository.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (r *saleRepository) Create(_ context.Context, sale model.Sale) (model.Sale, error) {
	defer r.s.lock()()

	id, err := newID(sale.ID)
	if err != nil {
		return model.Sale{}, err
	}
	sale.ID = id

	st := r.s.state()
	if _, exists := st.sales[sale.ID]; exists {
		return model.Sale{}, repository.ErrConflict
	}

	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	sale.UpdatedAt = sale.CreatedAt

	sale = cloneSale(sale)
	st.sales[sale.ID] = sale
	return cloneSale(sale), nil
}

func (r *saleRepository) Update(_ context.Context, sale model.Sale) error {
	defer r.s.lock()()

	st := r.s.state()
	old, ok := st.sales[sale.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}

	sale.CreatedAt = old.CreatedAt
	st.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *saleRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lock()()

	st := r.s.state()
	if _, ok := st.sales[id]; !ok {
		return false, nil
	}

	delete(st.sales, id)
	return true, nil
}

func compareSaleCreated(a, b model.Sale) int {
	return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), model.CompareSaleID(a, b))
}

func cloneSale(s model.Sale) model.Sale {
	s.Items = slices.Clone(s.Items)
	if s.Items == nil {
		s.Items = []model.SaleItem{}
	}
	return s
}
