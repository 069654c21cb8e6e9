package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/config"
	apihttp "github.com/tuanvumaihuynh/storefront/internal/http"
	"github.com/tuanvumaihuynh/storefront/internal/http/apierr"
	"github.com/tuanvumaihuynh/storefront/internal/identity"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/service"
	"github.com/tuanvumaihuynh/storefront/internal/storage/memstore"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

type testServer struct {
	t        *testing.T
	handler  http.Handler
	products service.ProductService
	users    service.UserService
}

func newTestServer(t *testing.T, validateRequests bool) *testServer {
	t.Helper()
	return newTestServerWithHealth(t, validateRequests, nil)
}

func newTestServerWithHealth(t *testing.T, validateRequests bool, health apihttp.HealthChecker) *testServer {
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

	svcs := apihttp.Services{
		Product: service.NewProductService(store, v),
		Sale:    service.NewSaleService(store, v),
		User:    service.NewUserService(store, idp, hasher, v),
		Auth:    service.NewAuthService(logger, idp, tokens, v),
		Health:  health,
	}

	svc := apihttp.New(config.HTTP{
		Swagger:          true,
		ValidateRequests: validateRequests,
		AllowedOrigins:   []string{"*"},
	}, logger, svcs)

	handler, err := svc.Handler(context.Background())
	require.NoError(t, err)

	return &testServer{
		t:        t,
		handler:  handler,
		products: svcs.Product,
		users:    svcs.User,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

// register creates a user directly through the service and logs it in over
// HTTP, returning the user and its access token.
func (s *testServer) register(username string, role model.Role) (model.User, string) {
	s.t.Helper()

	user, err := s.users.CreateUser(context.Background(), service.CreateUserParams{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
		Role:     role,
	})
	require.NoError(s.t, err)

	resp := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "secret1",
	})
	require.Equal(s.t, http.StatusOK, resp.Code, resp.Body.String())

	var login struct {
		AccessToken string `json:"accessToken"`
	}
	decode(s.t, resp, &login)

	return user, login.AccessToken
}

type healthFunc func(ctx context.Context) (bool, error)

func (f healthFunc) IsHealthy(ctx context.Context) (bool, error) { return f(ctx) }

func decode(t *testing.T, resp *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), dst), resp.Body.String())
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()

	var res apierr.ErrorResponse
	decode(t, resp, &res)
	return res
}

func detailFields(res apierr.ErrorResponse) []string {
	if res.Details == nil {
		return nil
	}

	fields := make([]string, 0, len(*res.Details))
	for _, d := range *res.Details {
		fields = append(fields, d.Field)
	}
	return fields
}
