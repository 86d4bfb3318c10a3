package transaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/auth"
	txHTTP "github.com/MrJamesThe3rd/finsight/internal/http/transaction"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

func serve(t *testing.T, repo transaction.Repository, userID uuid.UUID, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
		})
	})
	r.Route("/transactions", txHTTP.NewHandler(transaction.NewService(repo)).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return env
}

func TestHandler_Create(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       string
		setupMock  func(repo *transaction.MockRepository)
		wantStatus int
		wantError  string
	}{
		{
			name: "created with defaults",
			body: `{"amount":1250,"type":"expense","description":"Lunch","date":"2026-03-10T12:00:00Z"}`,
			setupMock: func(repo *transaction.MockRepository) {
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, userID, tx.UserID)
						assert.Equal(t, transaction.DefaultCategory, tx.Category)
						assert.Equal(t, "Lunch", tx.RawDescription)

						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "non-positive amount",
			body:       `{"amount":0,"type":"expense","date":"2026-03-10T12:00:00Z"}`,
			setupMock:  func(*transaction.MockRepository) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "amount must be greater than 0",
		},
		{
			name:       "unknown type",
			body:       `{"amount":10,"type":"transfer","date":"2026-03-10T12:00:00Z"}`,
			setupMock:  func(*transaction.MockRepository) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "type must be one of [income expense]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			rec := serve(t, repo, userID, http.MethodPost, "/transactions/", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			env := decode(t, rec)
			if tt.wantError != "" {
				assert.False(t, env.Success)
				assert.Contains(t, env.Error, tt.wantError)

				return
			}

			var got txHTTP.Response
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, int64(1250), got.Amount)
			assert.Equal(t, transaction.PaymentOther, got.PaymentMethod)
			assert.Empty(t, got.Tags)
		})
	}
}

func TestHandler_List_Filters(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	userID := uuid.New()

	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			assert.Equal(t, userID, f.UserID)
			require.NotNil(t, f.Type)
			assert.Equal(t, transaction.TypeExpense, *f.Type)
			require.NotNil(t, f.Category)
			assert.Equal(t, "Food", *f.Category)
			require.NotNil(t, f.StartDate)
			require.NotNil(t, f.EndDate)
			assert.Equal(t, 31, f.EndDate.Day())
			assert.Equal(t, 23, f.EndDate.Hour())

			return []*transaction.Transaction{{ID: uuid.New(), UserID: userID, Amount: 500, Type: transaction.TypeExpense}}, nil
		})

	rec := serve(t, repo, userID, http.MethodGet, "/transactions/?type=expense&category=Food&startDate=2026-03-01&endDate=2026-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []txHTTP.Response
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
	assert.Len(t, got, 1)
}

func TestHandler_List_BadType(t *testing.T) {
	ctrl := gomock.NewController(t)

	rec := serve(t, transaction.NewMockRepository(ctrl), uuid.New(), http.MethodGet, "/transactions/?type=transfer", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Ownership(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	id := uuid.New()
	stored := &transaction.Transaction{ID: id, UserID: owner, Amount: 100, Type: transaction.TypeExpense, Date: time.Now()}

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"get foreign is not found", http.MethodGet, "", http.StatusNotFound},
		{"update foreign is forbidden", http.MethodPatch, `{"amount":200}`, http.StatusForbidden},
		{"delete foreign is forbidden", http.MethodDelete, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored, nil)

			rec := serve(t, repo, other, tt.method, "/transactions/"+id.String(), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Get_BadID(t *testing.T) {
	ctrl := gomock.NewController(t)

	rec := serve(t, transaction.NewMockRepository(ctrl), uuid.New(), http.MethodGet, "/transactions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
