package importcsv_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/http/importcsv"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond/respondtest"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

const statement = `date,description,amount,category
2026-03-01,CONTINENTE LISBOA,-32.50,
2026-03-02,NETFLIX.COM,-12.99,Entertainment
`

func newServer(t *testing.T, userID uuid.UUID) (http.Handler, *importer.MockTransactionWriter, *importer.MockRuleSource) {
	t.Helper()

	ctrl := gomock.NewController(t)
	w := importer.NewMockTransactionWriter(ctrl)
	rules := importer.NewMockRuleSource(ctrl)

	return respondtest.Router("/import", userID, importcsv.NewHandler(importer.NewService(w, rules)).Routes), w, rules
}

func upload(t *testing.T, h http.Handler, format, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	if format != "" {
		require.NoError(t, mw.WriteField("format", format))
	}

	if content != "" {
		part, err := mw.CreateFormFile("file", "statement.csv")
		require.NoError(t, err)

		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Import_Conflict(t *testing.T) {
	userID := uuid.New()
	h, w, rules := newServer(t, userID)

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      1299,
		Type:        transaction.TypeExpense,
		Category:    "Entertainment",
		Description: "Netflix",
		Date:        time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
	}

	rules.EXPECT().Rules(gomock.Any(), userID).
		Return(matching.NewRules([]*matching.Rule{{Pattern: "continente", Category: "Groceries"}}), nil)
	w.EXPECT().ImportBatch(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, params []transaction.CreateParams) (*transaction.ImportResult, error) {
			require.Len(t, params, 2)

			return &transaction.ImportResult{
				New:       params[:1],
				Conflicts: []transaction.Conflict{{Incoming: params[1], Existing: existing}},
			}, nil
		})

	rec := upload(t, h, "generic", statement)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	env := respondtest.Decode(t, rec)
	assert.False(t, env.Success)
	assert.JSONEq(t, `{
		"profile": "generic",
		"charset": "UTF-8",
		"new": [{
			"amount": 3250,
			"type": "expense",
			"category": "Groceries",
			"description": "CONTINENTE LISBOA",
			"raw_description": "CONTINENTE LISBOA",
			"date": "2026-03-01T00:00:00Z"
		}],
		"conflicts": [{
			"incoming": {
				"amount": 1299,
				"type": "expense",
				"category": "Entertainment",
				"description": "NETFLIX.COM",
				"raw_description": "NETFLIX.COM",
				"date": "2026-03-02T00:00:00Z"
			},
			"existing": {
				"id": "`+existing.ID.String()+`",
				"amount": 1299,
				"type": "expense",
				"category": "Entertainment",
				"description": "Netflix",
				"date": "2026-03-02T00:00:00Z",
				"payment_method": "",
				"tags": [],
				"created_at": "0001-01-01T00:00:00Z"
			}
		}]
	}`, string(env.Data))
}

func TestHandler_Import(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		format     string
		content    string
		setupMock  func(w *importer.MockTransactionWriter, rules *importer.MockRuleSource)
		wantStatus int
	}{
		{
			name:    "all rows new",
			format:  "generic",
			content: statement,
			setupMock: func(w *importer.MockTransactionWriter, rules *importer.MockRuleSource) {
				rules.EXPECT().Rules(gomock.Any(), userID).Return(nil, nil)
				w.EXPECT().ImportBatch(gomock.Any(), userID, gomock.Any()).
					Return(&transaction.ImportResult{Imported: []*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown format",
			format:     "ofx",
			content:    statement,
			setupMock:  func(*importer.MockTransactionWriter, *importer.MockRuleSource) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing file",
			format:     "generic",
			setupMock:  func(*importer.MockTransactionWriter, *importer.MockRuleSource) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, w, rules := newServer(t, userID)
			tt.setupMock(w, rules)

			rec := upload(t, h, tt.format, tt.content)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Confirm(t *testing.T) {
	userID := uuid.New()
	h, w, _ := newServer(t, userID)

	w.EXPECT().CreateBatch(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
			require.Len(t, params, 1)
			assert.Equal(t, userID, params[0].UserID)
			assert.Equal(t, "NETFLIX.COM", params[0].RawDescription)

			return []*transaction.Transaction{{ID: uuid.New(), UserID: userID, Amount: params[0].Amount}}, nil
		})

	rec := respondtest.Do(h, http.MethodPost, "/import/confirm",
		`{"params":[{"amount":1299,"type":"expense","description":"NETFLIX.COM","raw_description":"NETFLIX.COM","date":"2026-03-02T00:00:00Z"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got struct {
		Imported int `json:"imported"`
	}
	respondtest.Data(t, rec, &got)
	assert.Equal(t, 1, got.Imported)

	rec = respondtest.Do(h, http.MethodPost, "/import/confirm", `{"params":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
