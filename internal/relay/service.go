package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/internal/storage/mq"
	"github.com/tuanvumaihuynh/storefront/pkg/ptr"
)

// Service publishes unprocessed outbox messages to the message broker.
type Service struct {
	cfg        config.Relay
	logger     *slog.Logger
	store      repository.Store
	mqProducer mq.Producer
	shortTx    bool

	stopChan chan struct{}
}

type Option func(*Service)

// WithShortTransactions lists and marks messages outside of a store
// transaction, so the store stays available while the batch is produced.
// Only one relay may run against the store.
func WithShortTransactions() Option {
	return func(s *Service) {
		s.shortTx = true
	}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	store repository.Store,
	mqProducer mq.Producer,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "relay")),
		store:      store,
		mqProducer: mqProducer,
		stopChan:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.Interval):
			if _, err := s.RelayBatch(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
			}
		}
	}
}

// RelayBatch publishes one batch of unprocessed outbox messages and marks
// them processed, recording the produce error of each failed message.
// It returns the number of messages handled.
func (s *Service) RelayBatch(ctx context.Context) (int, error) {
	if s.shortTx {
		return s.relayBatch(ctx, s.store)
	}

	var count int
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		count, err = s.relayBatch(ctx, tx)
		return err
	}); err != nil {
		return 0, fmt.Errorf("store with tx: %w", err)
	}

	return count, nil
}

func (s *Service) relayBatch(ctx context.Context, store repository.Store) (int, error) {
	outboxMsgs, err := store.OutboxMsgs().ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
		//nolint:gosec
		BatchSize: int32(s.cfg.BatchSize),
	})
	if err != nil {
		return 0, fmt.Errorf("list unprocessed outbox msgs: %w", err)
	}

	if len(outboxMsgs) == 0 {
		return 0, nil
	}

	s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", len(outboxMsgs)))

	items := s.produce(ctx, outboxMsgs)

	if err := store.OutboxMsgs().BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
		Items: items,
	}); err != nil {
		return 0, fmt.Errorf("bulk update outbox msgs: %w", err)
	}

	return len(items), nil
}

// produce publishes msgs concurrently and returns one update item per message.
func (s *Service) produce(ctx context.Context, msgs []repository.ListUnprocessedOutboxMsgsResult) []repository.BulkUpdateOutboxMsgsItem {
	if s.cfg.ProduceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ProduceTimeout)
		defer cancel()
	}

	items := make([]repository.BulkUpdateOutboxMsgsItem, 0, len(msgs))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, msg := range msgs {
		wg.Go(func() {
			item := repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}

			if err := s.mqProducer.Produce(ctx, mq.ProduceMsg{
				Topic:        msg.Topic,
				Headers:      msg.Headers,
				Payload:      msg.Payload,
				PartitionKey: msg.PartitionKey,
			}); err != nil {
				s.logger.ErrorContext(ctx,
					"error producing message",
					slog.String("outbox_msg_id", msg.ID.String()),
					slog.String("topic", msg.Topic),
					slog.Any("error", err),
				)
				item.Error = ptr.New(fmt.Sprintf("produce message: %s", err))
			}

			mu.Lock()
			items = append(items, item)
			mu.Unlock()
		})
	}

	wg.Wait()
	return items
}
