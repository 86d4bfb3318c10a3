package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/cache"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

// Handler serves analytics reads. Results are cached per user and resolved
// range; the API invalidates a user's entries whenever their data changes.
type Handler struct {
	engine *analytics.Engine
	cache  cache.Cache
	now    func() time.Time
}

// NewHandler builds the handler; c may be nil to disable caching.
func NewHandler(engine *analytics.Engine, c cache.Cache) *Handler {
	return &Handler{engine: engine, cache: c, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/categories", h.categories)
	r.Get("/trends/daily", h.dailyTrend)
	r.Get("/trends/monthly", h.monthlyTrend)
	r.Get("/budgets", h.budgets)
	r.Get("/goals", h.goals)
	r.Get("/insights", h.insights)
	r.Get("/compare", h.compare)
	r.Get("/dashboard", h.dashboard)
}

// serve answers from the cache when possible and stores fresh results.
func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, key string, fetch func(ctx context.Context) (T, error)) {
	ctx := r.Context()

	if h.cache != nil {
		if body, ok := h.cache.Get(ctx, key); ok {
			respond.OK(w, json.RawMessage(body))
			return
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if h.cache != nil {
		if body, err := json.Marshal(data); err == nil {
			h.cache.Set(ctx, key, body)
		} else {
			slog.Warn("failed to cache analytics response", "key", key, "error", err)
		}
	}

	respond.OK(w, data)
}

func (h *Handler) rangeOf(w http.ResponseWriter, r *http.Request) (period.Range, bool) {
	rng, err := period.ParseRequest(r.URL.Query(), h.now())
	if err != nil {
		respond.Error(w, r, err)
		return period.Range{}, false
	}

	return rng, true
}

func key(userID uuid.UUID, endpoint string, rng period.Range, extra ...string) string {
	parts := append([]string{"analytics", endpoint, rng.String()}, extra...)
	return cache.Key(userID, parts...)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}

	userID := respond.UserID(r)

	serve(h, w, r, key(userID, "overview", rng), func(ctx context.Context) (analytics.Overview, error) {
		return h.engine.Overview(ctx, userID, rng)
	})
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}

	typ := transaction.TypeExpense
	if s := r.URL.Query().Get("type"); s != "" {
		typ = transaction.Type(strings.ToLower(s))
	}

	userID := respond.UserID(r)

	serve(h, w, r, key(userID, "categories", rng, string(typ)), func(ctx context.Context) ([]analytics.CategoryTotal, error) {
		return h.engine.CategoryBreakdown(ctx, userID, rng, typ)
	})
}

func (h *Handler) dailyTrend(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}

	fillGaps := r.URL.Query().Get("fillGaps") == "true"
	userID := respond.UserID(r)

	serve(h, w, r, key(userID, "daily", rng, strconv.FormatBool(fillGaps)), func(ctx context.Context) ([]analytics.DailyPoint, error) {
		return h.engine.DailyTrend(ctx, userID, rng, fillGaps)
	})
}

func (h *Handler) monthlyTrend(w http.ResponseWriter, r *http.Request) {
	months := analytics.DefaultMonthsBack

	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respond.Error(w, r, apperr.Validation("months must be a positive integer"))
			return
		}

		months = n
	}

	now := h.now()
	userID := respond.UserID(r)
	k := cache.Key(userID, "analytics", "monthly", now.Format("2006-01"), strconv.Itoa(months))

	serve(h, w, r, k, func(ctx context.Context) ([]analytics.MonthlyPoint, error) {
		return h.engine.MonthlyComparison(ctx, userID, months, now)
	})
}

func (h *Handler) budgets(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}

	userID := respond.UserID(r)

	serve(h, w, r, key(userID, "budgets", rng), func(ctx context.Context) ([]analytics.BudgetPerformance, error) {
		return h.engine.BudgetPerformance(ctx, userID, rng)
	})
}

// goals is not cached: days left moves with the clock.
func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.GoalProgress(r.Context(), respond.UserID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, report)
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}

	userID := respond.UserID(r)

	serve(h, w, r, key(userID, "insights", rng), func(ctx context.Context) ([]analytics.Insight, error) {
		return h.engine.Insights(ctx, userID, rng)
	})
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}

	userID := respond.UserID(r)

	serve(h, w, r, key(userID, "compare", rng), func(ctx context.Context) (analytics.Comparison, error) {
		return h.engine.PeriodComparison(ctx, userID, rng)
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}

	userID := respond.UserID(r)

	serve(h, w, r, key(userID, "dashboard", rng), func(ctx context.Context) (analytics.Dashboard, error) {
		return h.engine.Dashboard(ctx, userID, rng)
	})
}
