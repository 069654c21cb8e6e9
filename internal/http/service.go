package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/storefront/api-contract"
	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/http/apierr"
	"github.com/tuanvumaihuynh/storefront/internal/http/metric"
	"github.com/tuanvumaihuynh/storefront/internal/http/middleware"
	"github.com/tuanvumaihuynh/storefront/internal/http/swagger"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/service"
)

var tracer = otel.Tracer("internal/http")

// Services are the command and query handlers exposed over HTTP.
type Services struct {
	Product service.ProductService
	Sale    service.SaleService
	User    service.UserService
	Auth    service.AuthService

	// Health reports the backing store state on /healthz. Optional.
	Health HealthChecker
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	svcs Services
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	svcs Services,
) *Service {
	return &Service{
		cfg:     cfg,
		logger:  log.With(slog.String("service", "http")),
		metrics: metric.New(),
		svcs:    svcs,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with every middleware and route mounted.
func (s *Service) Handler(ctx context.Context) (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	if err := s.RegisterHandlers(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(ctx context.Context, r chi.Router) error {
	validate := func(next http.Handler) http.Handler { return next }
	if s.cfg.ValidateRequests {
		doc, err := apicontract.Load(ctx)
		if err != nil {
			return fmt.Errorf("load api contract: %w", err)
		}

		validate, err = middleware.ValidateRequest(doc, s.handleRequestError)
		if err != nil {
			return fmt.Errorf("create request validator: %w", err)
		}
	}

	authenticate := middleware.Authenticate(s.svcs.Auth, s.handleResponseError)
	identify := middleware.OptionalAuthenticate(s.svcs.Auth, s.handleResponseError)
	requireAdmin := middleware.RequireRole(s.handleResponseError, model.RoleAdmin)

	h := s.newHandler()

	r.Get("/healthz", s.healthz)
	r.Handle(middleware.MetricsPath, s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// public
		r.Group(func(r chi.Router) {
			r.Use(validate)

			r.Post("/auth/login", s.handle(h.Login))
			r.Get("/products", s.handle(h.ListProducts))
			r.Get("/products/{id}", s.handle(h.GetProduct))
			r.With(identify).Post("/users", s.handle(h.CreateUser))
		})

		// any authenticated caller
		r.Group(func(r chi.Router) {
			r.Use(authenticate, validate)

			r.Get("/sales", s.handle(h.ListSales))
			r.Post("/sales", s.handle(h.CreateSale))
			r.Put("/sales", s.handle(h.UpdateSale))
			r.Get("/sales/{id}", s.handle(h.GetSale))
			r.Delete("/sales/{id}", s.handle(h.DeleteSale))
			r.Put("/users", s.handle(h.UpdateUser))
			r.Get("/users/{id}", s.handle(h.GetUser))
		})

		// admin only
		r.Group(func(r chi.Router) {
			r.Use(authenticate, requireAdmin, validate)

			r.Post("/products", s.handle(h.CreateProduct))
			r.Put("/products", s.handle(h.UpdateProduct))
			r.Delete("/products/{id}", s.handle(h.DeleteProduct))
			r.Get("/sales/period", s.handle(h.GetSalesByPeriod))
			r.Get("/users", s.handle(h.ListUsers))
			r.Delete("/users/{id}", s.handle(h.DeleteUser))
		})
	})

	return nil
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) {
	if s.svcs.Health != nil {
		if ok, err := s.svcs.Health.IsHealthy(r.Context()); !ok {
			s.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlerFunc is an HTTP handler whose error is written as the response.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	s.logger.WarnContext(r.Context(), "http request rejected", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.WarnContext(r.Context(), "error encoding error request",
			slog.Any("error", err))
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

type handler struct {
	*authHandler
	*productHandler
	*saleHandler
	*userHandler
}

func (s *Service) newHandler() *handler {
	return &handler{
		authHandler:    newAuthHandler(s.svcs.Auth),
		productHandler: newProductHandler(s.svcs.Product),
		saleHandler:    newSaleHandler(s.svcs.Sale),
		userHandler:    newUserHandler(s.svcs.User),
	}
}
