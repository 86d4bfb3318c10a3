package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

var userID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

func TestService_Create(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)

	type testCase struct {
		name          string
		params        budget.CreateParams
		setupMock     func(m *budget.MockRepository)
		wantEnd       time.Time
		wantThreshold int
		wantErr       error
	}

	tests := []testCase{
		{
			name: "DerivesEndDate",
			params: budget.CreateParams{
				UserID:    userID,
				Category:  "Food",
				Amount:    50000,
				Period:    budget.PeriodMonthly,
				StartDate: start,
			},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().CreateBudget(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantEnd:       time.Date(2024, time.March, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
			wantThreshold: budget.DefaultAlertThreshold,
		},
		{
			name: "ExplicitThreshold",
			params: budget.CreateParams{
				UserID:         userID,
				Category:       "Food",
				Amount:         50000,
				Period:         budget.PeriodWeekly,
				StartDate:      start,
				AlertThreshold: new(50),
			},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().CreateBudget(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantEnd:       time.Date(2024, time.March, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC),
			wantThreshold: 50,
		},
		{
			name: "EndBeforeStart",
			params: budget.CreateParams{
				UserID:    userID,
				Category:  "Food",
				Amount:    50000,
				Period:    budget.PeriodMonthly,
				StartDate: start,
				EndDate:   &before,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "ThresholdOutOfRange",
			params: budget.CreateParams{
				UserID:         userID,
				Category:       "Food",
				Amount:         50000,
				StartDate:      start,
				AlertThreshold: new(120),
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "MissingCategory",
			params: budget.CreateParams{
				UserID:    userID,
				Amount:    50000,
				StartDate: start,
			},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo, budget.NewMockTransactionSource(ctrl))
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEnd, got.EndDate)
			assert.Equal(t, tt.wantThreshold, got.AlertThreshold)
		})
	}
}

func TestService_RefreshSpent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	b := &budget.Budget{
		ID:             id,
		UserID:         userID,
		Category:       "Food",
		Amount:         50000,
		Spent:          100,
		StartDate:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		AlertThreshold: 80,
	}

	repo := budget.NewMockRepository(ctrl)
	txs := budget.NewMockTransactionSource(ctrl)

	repo.EXPECT().GetBudget(gomock.Any(), id).Return(b, nil)
	txs.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			assert.Equal(t, userID, f.UserID)
			assert.Equal(t, transaction.TypeExpense, *f.Type)
			assert.Equal(t, "Food", *f.Category)
			assert.Equal(t, b.StartDate, *f.StartDate)

			return []*transaction.Transaction{{Amount: 20000}, {Amount: 25000}}, nil
		})
	repo.EXPECT().UpdateSpent(gomock.Any(), id, int64(45000)).Return(nil)

	svc := budget.NewService(repo, txs)

	got, err := svc.RefreshSpent(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), got.Spent)
	assert.Equal(t, budget.StatusWarning, got.Status())
}

func TestService_RefreshSpent_Unchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	b := &budget.Budget{ID: id, UserID: userID, Category: "Food", Amount: 100, Spent: 40}

	repo := budget.NewMockRepository(ctrl)
	txs := budget.NewMockTransactionSource(ctrl)

	repo.EXPECT().GetBudget(gomock.Any(), id).Return(b, nil)
	txs.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{{Amount: 40}}, nil)

	_, err := budget.NewService(repo, txs).RefreshSpent(context.Background(), userID, id)
	require.NoError(t, err)
}

func TestService_RefreshSpent_SourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := budget.NewMockRepository(ctrl)
	txs := budget.NewMockTransactionSource(ctrl)

	repo.EXPECT().GetBudget(gomock.Any(), id).Return(&budget.Budget{ID: id, UserID: userID}, nil)
	txs.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, apperr.DataAccess("listing", errors.New("boom")))

	_, err := budget.NewService(repo, txs).RefreshSpent(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperr.ErrDataAccess)
}

func TestService_Ownership(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	foreign := &budget.Budget{ID: id, UserID: uuid.New()}

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().GetBudget(gomock.Any(), id).Return(foreign, nil).Times(3)

	svc := budget.NewService(repo, budget.NewMockTransactionSource(ctrl))

	_, err := svc.Get(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Update(context.Background(), userID, id, budget.UpdateParams{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = svc.Delete(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	b := &budget.Budget{
		ID:             id,
		UserID:         userID,
		Category:       "Food",
		Amount:         1000,
		Period:         budget.PeriodMonthly,
		StartDate:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		AlertThreshold: 80,
	}

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().GetBudget(gomock.Any(), id).Return(b, nil)
	repo.EXPECT().UpdateBudget(gomock.Any(), b).Return(nil)

	got, err := budget.NewService(repo, nil).Update(context.Background(), userID, id, budget.UpdateParams{
		Amount:         new(int64(2000)),
		AlertThreshold: new(90),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.Amount)
	assert.Equal(t, 90, got.AlertThreshold)
}
