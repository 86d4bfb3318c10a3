// Package respondtest serves handler routes for tests and decodes the
// response envelope.
package respondtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/auth"
)

// Envelope mirrors the JSON body written by the respond package.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Router mounts routes under prefix behind a middleware that authenticates
// every request as userID.
func Router(prefix string, userID uuid.UUID, routes func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
		})
	})
	r.Route(prefix, routes)

	return r
}

// Do sends a request with a string body through h.
func Do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func Decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

// Data decodes the envelope's data field into dst.
func Data(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	env := Decode(t, rec)
	require.True(t, env.Success, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
