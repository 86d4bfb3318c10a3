package export_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/auth"
	"github.com/MrJamesThe3rd/finsight/internal/export"
	exportHTTP "github.com/MrJamesThe3rd/finsight/internal/http/export"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond/respondtest"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type mocks struct {
	txs   *export.MockTransactionSource
	an    *export.MockAnalytics
	users *export.MockUserSource
}

func newServer(t *testing.T, userID uuid.UUID) (http.Handler, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		txs:   export.NewMockTransactionSource(ctrl),
		an:    export.NewMockAnalytics(ctrl),
		users: export.NewMockUserSource(ctrl),
	}

	h := exportHTTP.NewHandler(export.NewService(m.txs, m.an, m.users))

	return respondtest.Router("/export", userID, h.Routes), m
}

func expectReport(t *testing.T, m mocks, userID uuid.UUID) {
	t.Helper()

	m.users.EXPECT().Me(gomock.Any(), userID).Return(&auth.User{ID: userID, Name: "Ana", Email: "ana@example.com"}, nil)
	m.txs.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{
		{ID: uuid.New(), UserID: userID, Type: transaction.TypeExpense, Amount: 4599, Category: "Food", Description: "Groceries", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}, nil)
	m.an.EXPECT().Dashboard(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, r period.Range) (analytics.Dashboard, error) {
			assert.Equal(t, 1, r.Start.Day())
			assert.Equal(t, time.March, r.Start.Month())
			assert.Equal(t, 31, r.End.Day())

			return analytics.Dashboard{}, nil
		})
	m.an.EXPECT().DailyTrend(gomock.Any(), userID, gomock.Any(), true).Return(nil, nil)
	m.an.EXPECT().MonthlyComparison(gomock.Any(), userID, analytics.DefaultMonthsBack, gomock.Any()).Return(nil, nil)
}

func TestHandler_Download(t *testing.T) {
	userID := uuid.New()
	h, m := newServer(t, userID)

	expectReport(t, m, userID)

	rec := respondtest.Do(h, http.MethodGet, "/export?format=csv&startDate=2024-03-01&endDate=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="finsight_20240301_20240331.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Groceries")
}

func TestHandler_Download_Errors(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		target     string
		setupMock  func(m mocks)
		wantStatus int
	}{
		{
			name:       "unsupported format",
			target:     "/export?format=xlsx&period=month",
			setupMock:  func(mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad date",
			target:     "/export?format=csv&startDate=03/01/2024&endDate=2024-03-31",
			setupMock:  func(mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "analytics fails",
			target: "/export?format=json&startDate=2024-03-01&endDate=2024-03-31",
			setupMock: func(m mocks) {
				m.users.EXPECT().Me(gomock.Any(), userID).Return(&auth.User{ID: userID}, nil)
				m.txs.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.an.EXPECT().Dashboard(gomock.Any(), userID, gomock.Any()).
					Return(analytics.Dashboard{}, apperr.DataAccess("list budgets", errors.New("boom")))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newServer(t, userID)
			tt.setupMock(m)

			rec := respondtest.Do(h, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.False(t, respondtest.Decode(t, rec).Success)
		})
	}
}
