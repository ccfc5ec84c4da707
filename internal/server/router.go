package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"storefront/internal/api"
)

const (
	requestTimeout = 15 * time.Second
	healthTimeout  = 2 * time.Second
)

type ProductHandlers interface {
	HandleSearchVariants(w http.ResponseWriter, r *http.Request)
}

type OrderHandlers interface {
	CreateB2C(w http.ResponseWriter, r *http.Request)
	CreateB2B(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	GetNextStates(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
	Refund(w http.ResponseWriter, r *http.Request)
}

type BalanceHandlers interface {
	AdjustBalance(w http.ResponseWriter, r *http.Request)
	ListTransactions(w http.ResponseWriter, r *http.Request)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Routes struct {
	Products ProductHandlers
	Orders   OrderHandlers
	Balances BalanceHandlers
	Metrics  http.Handler
	DB       Pinger
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewRouter mounts every module on one chi router wrapped by otelhttp.
func NewRouter(routes Routes, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), healthTimeout)
		defer cancel()

		if err := routes.DB.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			api.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"}, logger)
			return
		}
		api.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"}, logger)
	})

	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	r.Post("/variants/search", routes.Products.HandleSearchVariants)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/b2c", routes.Orders.CreateB2C)
		r.Post("/b2b", routes.Orders.CreateB2B)
		r.Route("/{orderId}", func(r chi.Router) {
			r.Get("/", routes.Orders.GetOrder)
			r.Get("/history", routes.Orders.GetHistory)
			r.Get("/next-states", routes.Orders.GetNextStates)
			r.Post("/transitions", routes.Orders.Transition)
			r.Post("/refund", routes.Orders.Refund)
		})
	})

	r.Route("/companies/{companyId}", func(r chi.Router) {
		r.Post("/balance", routes.Balances.AdjustBalance)
		r.Get("/credit-transactions", routes.Balances.ListTransactions)
	})

	return otelhttp.NewHandler(r, "storefront")
}
