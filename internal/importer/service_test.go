package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

const statement = `date,description,amount,category
2026-03-01,CONTINENTE LISBOA,-32.50,
2026-03-02,NETFLIX.COM,-12.99,Entertainment
2026-03-03,UNKNOWN SHOP,-5.00,
`

func TestService_Import(t *testing.T) {
	userID := uuid.New()
	rules := matching.NewRules([]*matching.Rule{
		{Pattern: "continente", Category: "Groceries"},
		{Pattern: "netflix", Category: "Subscriptions"},
	})

	tests := []struct {
		name      string
		setupMock func(w *importer.MockTransactionWriter, r *importer.MockRuleSource)
		wantErr   error
	}{
		{
			name: "categorizes only empty categories",
			setupMock: func(w *importer.MockTransactionWriter, r *importer.MockRuleSource) {
				r.EXPECT().Rules(gomock.Any(), userID).Return(rules, nil)
				w.EXPECT().ImportBatch(gomock.Any(), userID, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, params []transaction.CreateParams) (*transaction.ImportResult, error) {
						require.Len(t, params, 3)
						assert.Equal(t, "Groceries", params[0].Category)
						assert.Equal(t, "Entertainment", params[1].Category)
						assert.Empty(t, params[2].Category)

						return &transaction.ImportResult{New: params}, nil
					})
			},
		},
		{
			name: "rule lookup fails",
			setupMock: func(_ *importer.MockTransactionWriter, r *importer.MockRuleSource) {
				r.EXPECT().Rules(gomock.Any(), userID).Return(nil, apperr.DataAccess("list rules", errors.New("boom")))
			},
			wantErr: apperr.ErrDataAccess,
		},
		{
			name: "write fails",
			setupMock: func(w *importer.MockTransactionWriter, r *importer.MockRuleSource) {
				r.EXPECT().Rules(gomock.Any(), userID).Return(nil, nil)
				w.EXPECT().ImportBatch(gomock.Any(), userID, gomock.Any()).
					Return(nil, apperr.DataAccess("import", errors.New("boom")))
			},
			wantErr: apperr.ErrDataAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			w := importer.NewMockTransactionWriter(ctrl)
			r := importer.NewMockRuleSource(ctrl)
			tt.setupMock(w, r)

			svc := importer.NewService(w, r)
			res, err := svc.Import(context.Background(), userID, importer.FormatGeneric, strings.NewReader(statement))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "generic", res.Profile)
			assert.Equal(t, "UTF-8", res.Charset)
			assert.Len(t, res.New, 3)
		})
	}
}

func TestService_ImportRejectsBadFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := importer.NewService(importer.NewMockTransactionWriter(ctrl), importer.NewMockRuleSource(ctrl))

	_, err := svc.Import(context.Background(), uuid.New(), importer.FormatCGD, strings.NewReader(statement))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Confirm(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := importer.NewMockTransactionWriter(ctrl)
	userID := uuid.New()
	rows := []transaction.CreateParams{{Description: "A", Amount: 100, Type: transaction.TypeExpense}}
	created := []*transaction.Transaction{{ID: uuid.New(), Description: "A"}}

	w.EXPECT().CreateBatch(gomock.Any(), userID, rows).Return(created, nil)

	svc := importer.NewService(w, importer.NewMockRuleSource(ctrl))
	got, err := svc.Confirm(context.Background(), userID, rows)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestService_Preview(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := importer.NewMockTransactionWriter(ctrl)
	r := importer.NewMockRuleSource(ctrl)
	userID := uuid.New()

	r.EXPECT().Rules(gomock.Any(), userID).Return(matching.NewRules([]*matching.Rule{
		{Pattern: "continente", Category: "Groceries"},
	}), nil)

	existing := &transaction.Transaction{ID: uuid.New(), Description: "Netflix", Category: "Entertainment"}

	w.EXPECT().ImportBatch(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	w.EXPECT().CheckBatch(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, params []transaction.CreateParams) (*transaction.ImportResult, error) {
			require.Len(t, params, 3)

			return &transaction.ImportResult{
				New:       []transaction.CreateParams{params[0], params[2]},
				Conflicts: []transaction.Conflict{{Incoming: params[1], Existing: existing}},
			}, nil
		})

	preview, err := importer.NewService(w, r).Preview(context.Background(), userID, importer.FormatGeneric, strings.NewReader(statement))
	require.NoError(t, err)
	assert.Equal(t, "generic", preview.Profile)
	require.Len(t, preview.Rows, 3)

	assert.Equal(t, "CONTINENTE LISBOA", preview.Rows[0].Params.RawDescription)
	assert.Equal(t, "Groceries", preview.Rows[0].Params.Category)
	assert.Equal(t, importer.SourceRule, preview.Rows[0].Source)
	assert.Nil(t, preview.Rows[0].Existing)

	assert.Equal(t, "NETFLIX.COM", preview.Rows[1].Params.RawDescription)
	assert.Equal(t, importer.SourceFile, preview.Rows[1].Source)
	assert.Equal(t, existing, preview.Rows[1].Existing)

	assert.Equal(t, "UNKNOWN SHOP", preview.Rows[2].Params.RawDescription)
	assert.Equal(t, importer.SourceNone, preview.Rows[2].Source)
	assert.Nil(t, preview.Rows[2].Existing)
}
