package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/storage/db"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

const saleColumns = `id, customer_id, created_at, updated_at`

var saleItemColumns = []string{"sale_id", "position", "product_id", "name", "description", "price", "quantity", "image_url"}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) ListPaged(ctx context.Context, q paging.Query) (paging.Page[model.Sale], error) {
	q = q.Normalize()

	orderBy, err := model.SaleSortFields.OrderBy(q, "id ASC")
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return paging.Page[model.Sale]{}, fmt.Errorf("count sales: %w", err)
	}

	sales, err := r.listSales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		ORDER BY `+orderBy+`
		LIMIT @limit OFFSET @offset
	`, pgx.NamedArgs{
		"limit":  q.Limit(),
		"offset": q.Offset(),
	})
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}

	return paging.NewPage(sales, total, q), nil
}

func (r saleRepository) ListByCustomer(ctx context.Context, customerID string, q paging.Query) (paging.Page[model.Sale], error) {
	q = q.Normalize()

	orderBy, err := model.SaleSortFields.OrderBy(q, "id ASC")
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}

	args := pgx.NamedArgs{"customer_id": customerID}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE customer_id = @customer_id`, args).Scan(&total); err != nil {
		return paging.Page[model.Sale]{}, fmt.Errorf("count customer sales: %w", err)
	}

	args["limit"] = q.Limit()
	args["offset"] = q.Offset()
	sales, err := r.listSales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE customer_id = @customer_id
		ORDER BY `+orderBy+`
		LIMIT @limit OFFSET @offset
	`, args)
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}

	return paging.NewPage(sales, total, q), nil
}

func (r saleRepository) ListByPeriod(ctx context.Context, period model.Period, q paging.Query) (paging.Page[model.Sale], error) {
	q = q.Normalize()

	orderBy, err := model.SaleSortFields.OrderBy(q, "created_at ASC, id ASC")
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}

	args := pgx.NamedArgs{
		"start": period.Start,
		"end":   period.End,
	}

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM sales
		WHERE created_at BETWEEN @start AND @end
	`, args).Scan(&total); err != nil {
		return paging.Page[model.Sale]{}, fmt.Errorf("count sales by period: %w", err)
	}

	args["limit"] = q.Limit()
	args["offset"] = q.Offset()
	sales, err := r.listSales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at BETWEEN @start AND @end
		ORDER BY `+orderBy+`
		LIMIT @limit OFFSET @offset
	`, args)
	if err != nil {
		return paging.Page[model.Sale]{}, err
	}

	return paging.NewPage(sales, total, q), nil
}

func (r saleRepository) SummarizePeriod(ctx context.Context, period model.Period) (model.SalesSummary, error) {
	args := pgx.NamedArgs{
		"start": period.Start,
		"end":   period.End,
	}

	summary := model.SalesSummary{
		TotalRevenue:    decimal.Zero,
		ProductRevenues: []model.ProductRevenue{},
	}

	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM sales
		WHERE created_at BETWEEN @start AND @end
	`, args).Scan(&summary.TotalSalesCount); err != nil {
		return model.SalesSummary{}, fmt.Errorf("count sales by period: %w", err)
	}

	// The product name is the one of the earliest snapshot in the period.
	rows, err := r.db.Query(ctx, `
		SELECT
			i.product_id,
			(ARRAY_AGG(i.name ORDER BY s.created_at, s.id, i.position))[1] AS product_name,
			SUM(i.price * i.quantity)                                     AS revenue
		FROM sale_items AS i
		JOIN sales AS s ON s.id = i.sale_id
		WHERE s.created_at BETWEEN @start AND @end
		GROUP BY i.product_id
		ORDER BY i.product_id
	`, args)
	if err != nil {
		return model.SalesSummary{}, fmt.Errorf("summarize sales by period: %w", err)
	}

	revenues, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ProductRevenue, error) {
		var pr model.ProductRevenue
		err := row.Scan(&pr.ProductID, &pr.ProductName, &pr.Revenue)
		return pr, err
	})
	if err != nil {
		return model.SalesSummary{}, fmt.Errorf("collect product revenues: %w", err)
	}

	for _, pr := range revenues {
		summary.TotalRevenue = summary.TotalRevenue.Add(pr.Revenue)
	}
	if len(revenues) > 0 {
		summary.ProductRevenues = revenues
	}

	return summary, nil
}

func (r saleRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sales, err := r.listSales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Sale{}, err
	}

	if len(sales) == 0 {
		return model.Sale{}, ErrNotFound
	}

	return sales[0], nil
}

func (r saleRepository) Create(ctx context.Context, sale model.Sale) (model.Sale, error) {
	id, err := ensureID(sale.ID)
	if err != nil {
		return model.Sale{}, err
	}
	sale.ID = id

	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	sale.UpdatedAt = sale.CreatedAt

	if err := r.db.WithTx(ctx, func(tx db.DB) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sales (`+saleColumns+`)
			VALUES (@id, @customer_id, @created_at, @updated_at)
		`, saleArgs(sale)); err != nil {
			return fmt.Errorf("insert sale: %w", mapPgError(err))
		}

		return insertSaleItems(ctx, tx, sale)
	}); err != nil {
		return model.Sale{}, fmt.Errorf("create sale: %w", err)
	}

	return sale, nil
}

func (r saleRepository) Update(ctx context.Context, sale model.Sale) error {
	return r.db.WithTx(ctx, func(tx db.DB) error {
		tag, err := tx.Exec(ctx, `
			UPDATE sales
			SET
				customer_id = @customer_id,
				updated_at  = @updated_at
			WHERE id = @id
		`, saleArgs(sale))
		if err != nil {
			return fmt.Errorf("update sale: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return ErrNoRowsAffected
		}

		if _, err := tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = @id`, pgx.NamedArgs{"id": sale.ID}); err != nil {
			return fmt.Errorf("delete sale items: %w", err)
		}

		return insertSaleItems(ctx, tx, sale)
	})
}

func (r saleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete sale: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// listSales runs a query selecting sale columns and loads the items of every
// returned sale with one extra query.
func (r saleRepository) listSales(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Sale, error) {
	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Sale, error) {
		var s model.Sale
		err := row.Scan(&s.ID, &s.CustomerID, &s.CreatedAt, &s.UpdatedAt)
		s.Items = []model.SaleItem{}
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect sales: %w", err)
	}

	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]uuid.UUID, 0, len(sales))
	index := make(map[uuid.UUID]int, len(sales))
	for i, s := range sales {
		ids = append(ids, s.ID)
		index[s.ID] = i
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT sale_id, product_id, name, description, price, quantity, image_url
		FROM sale_items
		WHERE sale_id = ANY(@ids)
		ORDER BY sale_id, position
	`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}

	type saleItemRow struct {
		saleID uuid.UUID
		item   model.SaleItem
	}

	items, err := pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (saleItemRow, error) {
		var ir saleItemRow
		err := row.Scan(
			&ir.saleID,
			&ir.item.ProductID,
			&ir.item.Name,
			&ir.item.Description,
			&ir.item.Price,
			&ir.item.Quantity,
			&ir.item.ImageURL,
		)
		return ir, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect sale items: %w", err)
	}

	for _, ir := range items {
		i := index[ir.saleID]
		sales[i].Items = append(sales[i].Items, ir.item)
	}

	return sales, nil
}

func insertSaleItems(ctx context.Context, tx db.DB, sale model.Sale) error {
	if len(sale.Items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(sale.Items))
	for i, item := range sale.Items {
		rows = append(rows, []any{
			sale.ID,
			i,
			item.ProductID,
			item.Name,
			item.Description,
			item.Price,
			item.Quantity,
			item.ImageURL,
		})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sale_items"}, saleItemColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy sale items: %w", err)
	}

	return nil
}

func saleArgs(s model.Sale) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          s.ID,
		"customer_id": s.CustomerID,
		"created_at":  s.CreatedAt,
		"updated_at":  s.UpdatedAt,
	}
}
