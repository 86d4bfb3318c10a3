package analytics_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/auth"
	"github.com/MrJamesThe3rd/finsight/internal/cache"
	analyticsHTTP "github.com/MrJamesThe3rd/finsight/internal/http/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

func newServer(t *testing.T, c cache.Cache, userID uuid.UUID) (http.Handler, *analytics.MockTransactionSource) {
	t.Helper()

	ctrl := gomock.NewController(t)
	txs := analytics.NewMockTransactionSource(ctrl)
	engine := analytics.NewEngine(txs, analytics.NewMockBudgetSource(ctrl), analytics.NewMockGoalSource(ctrl))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
		})
	})
	r.Route("/analytics", analyticsHTTP.NewHandler(engine, c).Routes)

	return r, txs
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func sample() []*transaction.Transaction {
	return []*transaction.Transaction{
		{Amount: 300000, Type: transaction.TypeIncome, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: 100000, Type: transaction.TypeExpense, Category: "Rent", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestHandler_Overview_Cached(t *testing.T) {
	userID := uuid.New()
	h, txs := newServer(t, cache.NewLRU(10, time.Minute), userID)

	txs.EXPECT().List(gomock.Any(), gomock.Any()).Return(sample(), nil).Times(1)

	const target = "/analytics/overview?startDate=2026-03-01&endDate=2026-03-31"

	first := get(h, target)
	second := get(h, target)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	var env struct {
		Success bool               `json:"success"`
		Data    analytics.Overview `json:"data"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, int64(300000), env.Data.TotalIncome)
	assert.Equal(t, int64(200000), env.Data.NetSavings)
}

func TestHandler_InvalidateOnChange(t *testing.T) {
	userID := uuid.New()
	c := cache.NewLRU(10, time.Minute)
	h, txs := newServer(t, c, userID)

	txs.EXPECT().List(gomock.Any(), gomock.Any()).Return(sample(), nil).Times(2)

	const target = "/analytics/categories?startDate=2026-03-01&endDate=2026-03-31"

	get(h, target)
	c.DeletePrefix(t.Context(), cache.UserPrefix(userID))
	get(h, target)
}

func TestHandler_NoCache(t *testing.T) {
	h, txs := newServer(t, nil, uuid.New())

	txs.EXPECT().List(gomock.Any(), gomock.Any()).Return(sample(), nil).Times(2)

	get(h, "/analytics/trends/daily?period=month")
	get(h, "/analytics/trends/daily?period=month")
}

func TestHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"malformed date", "/analytics/overview?startDate=2026-13-45&endDate=2026-03-01"},
		{"inverted custom range", "/analytics/overview?startDate=2026-03-31&endDate=2026-03-01"},
		{"bad months", "/analytics/trends/monthly?months=zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newServer(t, nil, uuid.New())

			rec := get(h, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_Categories_InvalidType(t *testing.T) {
	h, txs := newServer(t, nil, uuid.New())
	txs.EXPECT().List(gomock.Any(), gomock.Any()).Return(sample(), nil).AnyTimes()

	rec := get(h, "/analytics/categories?period=month&type=transfer")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
