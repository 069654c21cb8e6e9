package repository

import (
	"context"

	"github.com/tuanvumaihuynh/storefront/internal/storage/db"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore is a Store backed by a postgres connection or transaction.
type PostgresStore struct {
	db db.DB
}

func NewPostgresStore(db db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Products() ProductRepository {
	return NewProductRepository(s.db)
}

func (s *PostgresStore) Sales() SaleRepository {
	return NewSaleRepository(s.db)
}

func (s *PostgresStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *PostgresStore) OutboxMsgs() OutboxMsgRepository {
	return NewOutboxMsgRepository(s.db)
}

func (s *PostgresStore) WithTx(ctx context.Context, txFunc func(Store) error) error {
	return s.db.WithTx(ctx, func(tx db.DB) error {
		return txFunc(&PostgresStore{db: tx})
	})
}
