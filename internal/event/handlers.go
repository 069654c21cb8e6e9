package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event", slog.Any("event", ev))
	return nil
}

func (s *Service) handleProductUpdatedEvent(ctx context.Context, ev ProductUpdatedEvent) error {
	s.logger.InfoContext(ctx, "handling product updated event", slog.Any("event", ev))
	return nil
}

func (s *Service) handleProductDeletedEvent(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling product deleted event", slog.String("product_id", ev.ProductID))
	return nil
}

func (s *Service) handleSaleCreatedEvent(ctx context.Context, ev SaleCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling sale created event",
		slog.String("sale_id", ev.SaleID),
		slog.Int("total_quantity", ev.TotalQuantity),
		slog.String("total_price", ev.TotalPrice.String()),
	)
	return nil
}

func (s *Service) handleUserRegisteredEvent(ctx context.Context, ev UserRegisteredEvent) error {
	s.logger.InfoContext(ctx, "handling user registered event",
		slog.String("user_id", ev.UserID),
		slog.String("username", ev.Username),
	)
	return nil
}
