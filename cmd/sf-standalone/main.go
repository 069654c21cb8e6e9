package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/event"
	"github.com/tuanvumaihuynh/storefront/internal/http"
	"github.com/tuanvumaihuynh/storefront/internal/identity"
	"github.com/tuanvumaihuynh/storefront/internal/log"
	"github.com/tuanvumaihuynh/storefront/internal/relay"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/internal/service"
	"github.com/tuanvumaihuynh/storefront/internal/storage/db"
	"github.com/tuanvumaihuynh/storefront/internal/storage/memstore"
	"github.com/tuanvumaihuynh/storefront/internal/storage/mq"
	"github.com/tuanvumaihuynh/storefront/internal/telemetry"
	"github.com/tuanvumaihuynh/storefront/pkg/cmdutil"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log     config.Log
		HTTP    config.HTTP
		Relay   config.Relay
		Kafka   config.Kafka
		Otel    config.Otel
		Auth    config.Auth
		Storage config.Storage
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

	store, health, closeStore, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.InfoContext(ctx, "store ready", slog.String("driver", cfg.Storage.Driver.String()))

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	identityProvider := identity.NewProvider(store, hasher)
	tokenIssuer := auth.NewTokenIssuer(cfg.Auth)

	services := http.Services{
		Product: service.NewProductService(store, v),
		Sale:    service.NewSaleService(store, v),
		User:    service.NewUserService(store, identityProvider, hasher, v),
		Auth:    service.NewAuthService(logger, identityProvider, tokenIssuer, v),
		Health:  health,
	}

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	if cfg.Kafka.Enabled {
		kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}
		defer kafkaConsumer.Close()

		wg.Go(func() {
			svc := event.New(logger, kafkaConsumer)
			cleanup, err := svc.Run(ctx)
			if err != nil {
				panic(fmt.Errorf("error running event service: %w", err))
			}
			logger.InfoContext(ctx, "event service started")

			<-interruptChan

			logger.InfoContext(ctx, "event service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "event service is stopped")
		})

		wg.Go(func() {
			var opts []relay.Option
			if cfg.Storage.Driver == config.StorageDriverMemory {
				opts = append(opts, relay.WithShortTransactions())
			}

			svc := relay.NewService(cfg.Relay, logger, store, kafkaProducer, opts...)
			cleanup := svc.Run(ctx)
			logger.InfoContext(ctx, "relay service started")

			<-interruptChan

			logger.InfoContext(ctx, "relay service is shutting down")
			cleanup()

			logger.InfoContext(ctx, "relay service is stopped")
		})
	} else {
		logger.WarnContext(ctx, "kafka disabled, outbox messages stay unpublished")
	}

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, services)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Wait()

	return nil
}

// newStore opens the store selected by the storage driver. Postgres settings
// are only read when the postgres driver is selected.
func newStore(ctx context.Context, cfg config.Storage) (repository.Store, http.HealthChecker, func(), error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		return memstore.New(), nil, func() {}, nil
	case config.StorageDriverPostgres:
		pgCfg, err := config.New[config.Postgres]()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("error loading postgres config: %w", err)
		}

		pgxPool, err := db.NewPgxPool(ctx, pgCfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("error creating pgx pool: %w", err)
		}

		dbClient := db.NewClient(pgxPool)
		return repository.NewPostgresStore(dbClient), dbClient, pgxPool.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
