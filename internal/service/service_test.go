package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/identity"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/internal/service"
	"github.com/tuanvumaihuynh/storefront/internal/storage/memstore"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

type testEnv struct {
	store    *memstore.Store
	products service.ProductService
	sales    service.SaleService
	users    service.UserService
	auth     service.AuthService
	tokens   *auth.TokenIssuer
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	store := memstore.New()
	v := validator.MustNewDefaultValidator()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	idp := identity.NewProvider(store, hasher)
	tokens := auth.NewTokenIssuer(config.Auth{
		JWTSecret:      "test-secret",
		JWTIssuer:      "storefront",
		JWTAudience:    "storefront",
		AccessTokenTTL: time.Hour,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return testEnv{
		store:    store,
		products: service.NewProductService(store, v),
		sales:    service.NewSaleService(store, v),
		users:    service.NewUserService(store, idp, hasher, v),
		auth:     service.NewAuthService(logger, idp, tokens, v),
		tokens:   tokens,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fieldErrors returns the failing field names of a validation error.
func fieldErrors(t *testing.T, err error) []string {
	t.Helper()

	var validationErrs govalidator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs), "expected validation errors, got %v", err)

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func outboxTopics(t *testing.T, store repository.Store) []string {
	t.Helper()

	msgs, err := store.OutboxMsgs().ListUnprocessedOutboxMsgs(context.Background(), repository.ListUnprocessedOutboxMsgsParams{BatchSize: 100})
	require.NoError(t, err)

	topics := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		topics = append(topics, msg.Topic)
	}
	return topics
}
