package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/storage/db"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

const productColumns = `id, name, description, price, quantity, image_url, created_at, updated_at`

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) ListPaged(ctx context.Context, q paging.Query) (paging.Page[model.Product], error) {
	q = q.Normalize()

	orderBy, err := model.ProductSortFields.OrderBy(q, "id ASC")
	if err != nil {
		return paging.Page[model.Product]{}, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return paging.Page[model.Product]{}, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY `+orderBy+`
		LIMIT @limit OFFSET @offset
	`, pgx.NamedArgs{
		"limit":  q.Limit(),
		"offset": q.Offset(),
	})
	if err != nil {
		return paging.Page[model.Product]{}, fmt.Errorf("list products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return paging.Page[model.Product]{}, fmt.Errorf("collect products: %w", err)
	}

	return paging.NewPage(products, total, q), nil
}

func (r productRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return model.Product{}, mapPgError(err)
	}

	return product, nil
}

func (r productRepository) Create(ctx context.Context, product model.Product) (model.Product, error) {
	id, err := ensureID(product.ID)
	if err != nil {
		return model.Product{}, err
	}
	product.ID = id

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = product.CreatedAt

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (@id, @name, @description, @price, @quantity, @image_url, @created_at, @updated_at)
	`, productArgs(product)); err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", mapPgError(err))
	}

	return product, nil
}

func (r productRepository) Update(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET
			name        = @name,
			description = @description,
			price       = @price,
			quantity    = @quantity,
			image_url   = @image_url,
			updated_at  = @updated_at
		WHERE id = @id
	`, productArgs(product))
	if err != nil {
		return fmt.Errorf("update product: %w", mapPgError(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (r productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func productArgs(p model.Product) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"quantity":    p.Quantity,
		"image_url":   p.ImageURL,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func scanProduct(row pgx.CollectableRow) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
