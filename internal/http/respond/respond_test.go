package respond_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/advisor"
	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/period"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad"), http.StatusBadRequest},
		{"invalid range", &period.InvalidRangeError{Reason: "x"}, http.StatusBadRequest},
		{"unauthenticated", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden},
		{"not found", auth.ErrNotFound, http.StatusNotFound},
		{"conflict", auth.ErrEmailTaken, http.StatusConflict},
		{"external", apperr.External("llm", errors.New("down")), http.StatusBadGateway},
		{"advisor disabled", advisor.ErrDisabled, http.StatusServiceUnavailable},
		{"data access", apperr.DataAccess("q", errors.New("down")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, respond.Status(tt.err))
		})
	}
}

func TestError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(rec, req, apperr.DataAccess("list", errors.New("connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal Server Error"}`, rec.Body.String())
}

func TestError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(rec, req, apperr.Validation("amount must be positive"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"validation failed: amount must be positive"}`, rec.Body.String())
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.OK(rec, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, rec.Body.String())
}

type decodeTarget struct {
	Name   string `json:"name" validate:"required"`
	Amount int64  `json:"amount" validate:"gt=0"`
	Kind   string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"x","amount":5,"kind":"a"}`},
		{name: "malformed", body: `{"name":`, wantErr: "invalid request body"},
		{name: "unknown field", body: `{"name":"x","amount":5,"extra":1}`, wantErr: "unknown field"},
		{name: "missing name", body: `{"amount":5}`, wantErr: "name is required"},
		{name: "bad amount and kind", body: `{"name":"x","amount":0,"kind":"c"}`, wantErr: "amount must be greater than 0; kind must be one of [a b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst decodeTarget
			err := respond.Decode(rec, req, &dst)

			if tt.wantErr != "" {
				require.ErrorIs(t, err, apperr.ErrValidation)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "x", dst.Name)
		})
	}
}

func TestUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Unauthorized(rec, req, errors.New("token expired"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
