package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iflow-pos/iflow/internal/auth"
	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/categories"
	"github.com/iflow-pos/iflow/internal/clients"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/observability"
	"github.com/iflow-pos/iflow/internal/platform/httpx"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/sales"
	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/stream"
	"github.com/iflow-pos/iflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler       *auth.Handler
	ProfileHandler    *profile.Handler
	CapitalHandler    *capital.Handler
	StockHandler      *stock.Handler
	SalesHandler      *sales.Handler
	DebtsHandler      *debts.Handler
	ClientsHandler    *clients.Handler
	CategoriesHandler *categories.Handler
	StreamHandler     *stream.Handler
	JobsHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with iFlow defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(chimw.Timeout(params.Config.AppRequestTimeout))
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(params.Config.AppRequestTimeout))
			r.Route("/profile", params.ProfileHandler.MountRoutes)
			r.Route("/capital", params.CapitalHandler.MountRoutes)
			r.Route("/stock", params.StockHandler.MountRoutes)
			r.Route("/sales", params.SalesHandler.MountRoutes)
			r.Route("/debts", params.DebtsHandler.MountRoutes)
			r.Route("/clients", params.ClientsHandler.MountRoutes)
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		})

		// The event stream stays open indefinitely, so no request timeout here.
		r.Route("/stream", params.StreamHandler.MountRoutes)
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// RequireAuth rejects requests without an authenticated session and binds
// the account identity onto the request context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			httpx.RespondError(w, shared.ErrNoIdentity)
			return
		}
		identity, ok := sess.Identity()
		if !ok {
			httpx.RespondError(w, shared.ErrNoIdentity)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
