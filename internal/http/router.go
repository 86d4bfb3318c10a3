package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authn "github.com/MrJamesThe3rd/finsight/internal/auth"
	"github.com/MrJamesThe3rd/finsight/internal/cache"
	"github.com/MrJamesThe3rd/finsight/internal/http/advice"
	"github.com/MrJamesThe3rd/finsight/internal/http/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/budget"
	"github.com/MrJamesThe3rd/finsight/internal/http/category"
	"github.com/MrJamesThe3rd/finsight/internal/http/export"
	"github.com/MrJamesThe3rd/finsight/internal/http/goal"
	"github.com/MrJamesThe3rd/finsight/internal/http/importcsv"
	"github.com/MrJamesThe3rd/finsight/internal/http/matching"
	"github.com/MrJamesThe3rd/finsight/internal/http/notification"
	"github.com/MrJamesThe3rd/finsight/internal/http/recurring"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/http/transaction"
)

type Handlers struct {
	Auth          *auth.Handler
	Transactions  *transaction.Handler
	Categories    *category.Handler
	Budgets       *budget.Handler
	Goals         *goal.Handler
	Recurring     *recurring.Handler
	Analytics     *analytics.Handler
	Export        *export.Handler
	Import        *importcsv.Handler
	Matching      *matching.Handler
	Advice        *advice.Handler
	Notifications *notification.Handler
}

type Options struct {
	// Authenticate guards every route except registration, login and health.
	Authenticate       func(http.Handler) http.Handler
	// AuthenticateSocket guards /ws and may read the token from the query.
	AuthenticateSocket func(http.Handler) http.Handler
	// Cache, when set, loses the caller's entries after every successful write.
	Cache              cache.Cache
	AllowedOrigins     []string
	Timeout            time.Duration
	DB                 *sql.DB
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthz(opts.DB))

	// Long-lived; kept out of the request timeout below.
	router.With(opts.AuthenticateSocket).Get("/ws", h.Notifications.Socket)

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r, opts.Authenticate)
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticate)

			if opts.Cache != nil {
				r.Use(invalidate(opts.Cache))
			}

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Transactions.Routes(r)
			})

			r.Route("/categories", h.Categories.Routes)
			r.Route("/budgets", h.Budgets.Routes)
			r.Route("/goals", h.Goals.Routes)
			r.Route("/recurring", h.Recurring.Routes)
			r.Route("/analytics", h.Analytics.Routes)
			r.Route("/export", h.Export.Routes)
			r.Route("/import", h.Import.Routes)
			r.Route("/matching", h.Matching.Routes)
			r.Route("/advice", h.Advice.Routes)
			r.Route("/notifications", h.Notifications.Routes)
		})
	})

	return router
}

// invalidate drops the caller's cached analytics after a successful write.
// It must run inside the authentication middleware.
func invalidate(c cache.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return
			}

			if ww.Status() >= http.StatusBadRequest {
				return
			}

			if userID, ok := authn.UserID(r.Context()); ok {
				c.DeletePrefix(context.WithoutCancel(r.Context()), cache.UserPrefix(userID))
			}
		})
	}
}

type health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			respond.OK(w, health{Status: "ok", Database: "unknown"})
			return
		}

		if err := db.PingContext(r.Context()); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, health{Status: "degraded", Database: "unreachable"})
			return
		}

		respond.OK(w, health{Status: "ok", Database: "ok"})
	}
}
