package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	authn "github.com/MrJamesThe3rd/finsight/internal/auth"
	"github.com/MrJamesThe3rd/finsight/internal/cache"
)

func TestInvalidate(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		method    string
		status    int
		wantEvict bool
	}{
		{"successful write", http.MethodPost, http.StatusCreated, true},
		{"successful delete", http.MethodDelete, http.StatusNoContent, true},
		{"failed write", http.MethodPost, http.StatusBadRequest, false},
		{"read", http.MethodGet, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cache.NewLRU(10, time.Minute)
			key := cache.Key(userID, "analytics", "overview")
			c.Set(t.Context(), key, []byte(`{}`))

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(tt.method, "/", nil)
			req = req.WithContext(authn.WithUserID(req.Context(), userID))

			invalidate(c)(next).ServeHTTP(httptest.NewRecorder(), req)

			_, ok := c.Get(t.Context(), key)
			assert.Equal(t, tt.wantEvict, !ok)
		})
	}
}

func TestHealthz_NoDB(t *testing.T) {
	rec := httptest.NewRecorder()
	healthz(nil)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok","database":"unknown"}}`, rec.Body.String())
}
