package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/pkg/outbox"
)

type HandlerFunc func(ctx context.Context, topic string, payload []byte) error

type CleanupFunc func()

type Consumer interface {
	RegisterHandler(topic string, handler HandlerFunc) error
	Run(ctx context.Context) (CleanupFunc, error)
}

var _ Consumer = (*KafkaConsumer)(nil)

type KafkaConsumer struct {
	cl       *kgo.Client
	handlers map[string]HandlerFunc
	log      *slog.Logger
}

func NewKafkaConsumer(ctx context.Context, cfg config.Kafka, logger *slog.Logger) (*KafkaConsumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumerGroup(cfg.Group),
		kgo.AllowAutoTopicCreation(),
		kgo.DisableAutoCommit(),
		kgo.WithContext(ctx),
		kgo.WithHooks(kTracer),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := cl.Ping(pingCtx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	return &KafkaConsumer{
		cl:       cl,
		handlers: make(map[string]HandlerFunc),
		log:      logger,
	}, nil
}

func (c *KafkaConsumer) RegisterHandler(topic string, handler HandlerFunc) error {
	if _, exists := c.handlers[topic]; exists {
		return fmt.Errorf("handler for topic %s already registered", topic)
	}

	c.cl.AddConsumeTopics(topic)
	c.handlers[topic] = handler
	return nil
}

// Run polls the subscribed topics until ctx is done or the returned cleanup
// is called. Offsets are committed after every fetch, so a failed handler
// does not redeliver its record.
func (c *KafkaConsumer) Run(ctx context.Context) (CleanupFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		for ctx.Err() == nil {
			fetches := c.cl.PollFetches(ctx)
			if errs := fetches.Errors(); len(errs) > 0 {
				if !errors.Is(errs[0].Err, context.Canceled) {
					c.log.ErrorContext(ctx, "error fetching messages", slog.Any("error", errs))
				}
				continue
			}

			fetches.EachRecord(func(rec *kgo.Record) {
				c.handleRecord(ctx, rec)
			})

			if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
				c.log.ErrorContext(ctx, "error committing offsets", slog.Any("error", err))
			}
		}
	}()

	cleanup := func() {
		cancel()
		<-doneChan
	}

	return cleanup, nil
}

// handleRecord dispatches rec to the handler of its topic inside a consumer
// span. Handler errors and panics are logged and swallowed.
func (c *KafkaConsumer) handleRecord(ctx context.Context, rec *kgo.Record) {
	ctx, span := tracer.Start(recordContext(ctx, rec), "KafkaConsumer.Handle "+rec.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", rec.Topic),
			attribute.Int64("messaging.kafka.partition", int64(rec.Partition)),
			attribute.Int64("messaging.kafka.offset", rec.Offset),
		),
	)
	defer span.End()

	logger := c.log.With(slog.String("topic", rec.Topic), slog.String("key", string(rec.Key)))

	defer func() {
		if rvr := recover(); rvr != nil {
			span.RecordError(fmt.Errorf("panic: %v", rvr))
			span.SetStatus(codes.Error, "panic in handler")
			logger.ErrorContext(ctx, "panic in message handler",
				slog.Any("recover", rvr),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	fn, ok := c.handlers[rec.Topic]
	if !ok {
		logger.WarnContext(ctx, "no handler registered for topic")
		return
	}

	if err := fn(ctx, rec.Topic, rec.Value); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handle message")
		logger.ErrorContext(ctx, "error handling message", slog.Any("error", err))
	}
}

// recordContext restores the trace context and correlation id the producer
// stored in the record headers.
func recordContext(ctx context.Context, rec *kgo.Record) context.Context {
	headers := make(outbox.Headers, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers.Context(ctx)
}

func (c *KafkaConsumer) Close() {
	c.cl.Close()
}
