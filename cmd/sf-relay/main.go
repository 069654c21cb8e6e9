package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/log"
	"github.com/tuanvumaihuynh/storefront/internal/relay"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/internal/storage/db"
	"github.com/tuanvumaihuynh/storefront/internal/storage/mq"
	"github.com/tuanvumaihuynh/storefront/internal/telemetry"
	"github.com/tuanvumaihuynh/storefront/pkg/cmdutil"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Printf("error running relay application: %v\n", err)
		os.Exit(1)
	}
}

// run publishes the storefront outbox to Kafka until interrupted. With
// --drain it relays batches until the outbox is empty and exits.
func run(args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	flags := pflag.NewFlagSet("sf-relay", pflag.ContinueOnError)
	drain := flags.Bool("drain", false, "relay pending outbox messages once and exit")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	store := repository.NewPostgresStore(db.NewClient(pgxPool))
	svc := relay.NewService(cfg.Relay, logger, store, kafkaProducer)

	if *drain {
		total, err := drainOutbox(ctx, svc)
		if err != nil {
			return fmt.Errorf("error draining outbox: %w", err)
		}
		logger.InfoContext(ctx, "outbox drained", slog.Int("count", total))
		return nil
	}

	interruptChan := cmdutil.InterruptChan()

	cleanup := svc.Run(ctx)
	logger.InfoContext(ctx, "relay service started",
		slog.Uint64("batch_size", uint64(cfg.Relay.BatchSize)),
		slog.Duration("interval", cfg.Relay.Interval),
		slog.Any("brokers", cfg.Kafka.Addresses),
	)

	<-interruptChan

	logger.InfoContext(ctx, "relay service is shutting down")
	cleanup()

	logger.InfoContext(ctx, "relay service is stopped")

	return nil
}

func drainOutbox(ctx context.Context, svc *relay.Service) (int, error) {
	var total int
	for {
		n, err := svc.RelayBatch(ctx)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}
}
