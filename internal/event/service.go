package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/storefront/internal/storage/mq"
)

// Service is the event service.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	registrations := []func() error{
		func() error { return register(s.mqConsumer, TopicProductCreated, s.handleProductCreatedEvent) },
		func() error { return register(s.mqConsumer, TopicProductUpdated, s.handleProductUpdatedEvent) },
		func() error { return register(s.mqConsumer, TopicProductDeleted, s.handleProductDeletedEvent) },
		func() error { return register(s.mqConsumer, TopicSaleCreated, s.handleSaleCreatedEvent) },
		func() error { return register(s.mqConsumer, TopicUserRegistered, s.handleUserRegisteredEvent) },
	}
	for _, reg := range registrations {
		if err := reg(); err != nil {
			return nil, err
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// register decodes the payload of topic into T before calling handle.
func register[T any](consumer mq.Consumer, topic string, handle func(context.Context, T) error) error {
	if err := consumer.RegisterHandler(
		topic,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev T
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal %s event: %w", topic, err)
			}

			if err := handle(ctx, ev); err != nil {
				return fmt.Errorf("handle %s event: %w", topic, err)
			}

			return nil
		},
	); err != nil {
		return fmt.Errorf("register %s event handler: %w", topic, err)
	}

	return nil
}
