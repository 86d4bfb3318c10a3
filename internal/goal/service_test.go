package goal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
)

var userID = uuid.MustParse("33333333-3333-3333-3333-333333333333")

func TestService_Contribute(t *testing.T) {
	type testCase struct {
		name         string
		goal         goal.Goal
		amount       int64
		setupMock    func(m *goal.MockRepository)
		wantStatus   goal.Status
		wantCurrent  int64
		wantProgress float64
		wantErr      error
	}

	tests := []testCase{
		{
			name:   "ReachesTarget",
			goal:   goal.Goal{TargetAmount: 1000, CurrentAmount: 600, Status: goal.StatusActive},
			amount: 400,
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus:   goal.StatusCompleted,
			wantCurrent:  1000,
			wantProgress: 100,
		},
		{
			name:   "Partial",
			goal:   goal.Goal{TargetAmount: 1000, CurrentAmount: 100, Status: goal.StatusActive},
			amount: 150,
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus:   goal.StatusActive,
			wantCurrent:  250,
			wantProgress: 25,
		},
		{
			name:    "Cancelled",
			goal:    goal.Goal{TargetAmount: 1000, Status: goal.StatusCancelled},
			amount:  100,
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "NonPositive",
			goal:    goal.Goal{TargetAmount: 1000, Status: goal.StatusActive},
			amount:  0,
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			id := uuid.New()
			g := tt.goal
			g.ID = id
			g.UserID = userID

			repo := goal.NewMockRepository(ctrl)
			repo.EXPECT().GetGoal(gomock.Any(), id).Return(&g, nil).MaxTimes(1)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := goal.NewService(repo).Contribute(context.Background(), userID, id, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCurrent, got.CurrentAmount)
			assert.Equal(t, tt.wantProgress, got.Progress())
		})
	}
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := goal.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateGoal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g *goal.Goal) error {
			g.ID = uuid.New()
			return nil
		})

	got, err := goal.NewService(repo).Create(context.Background(), goal.CreateParams{
		UserID:       userID,
		Name:         " Emergency fund ",
		TargetAmount: 500000,
		TargetDate:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Emergency fund", got.Name)
	assert.Equal(t, goal.PriorityMedium, got.Priority)
	assert.Equal(t, goal.StatusActive, got.Status)
}

func TestService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params goal.CreateParams
	}{
		{name: "MissingName", params: goal.CreateParams{UserID: userID, TargetAmount: 10, TargetDate: time.Now()}},
		{name: "ZeroTarget", params: goal.CreateParams{UserID: userID, Name: "x", TargetDate: time.Now()}},
		{name: "NegativeCurrent", params: goal.CreateParams{UserID: userID, Name: "x", TargetAmount: 10, CurrentAmount: -1, TargetDate: time.Now()}},
		{name: "BadPriority", params: goal.CreateParams{UserID: userID, Name: "x", TargetAmount: 10, TargetDate: time.Now(), Priority: "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			_, err := goal.NewService(goal.NewMockRepository(ctrl)).Create(context.Background(), tt.params)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestService_Update_CompletesGoal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	g := &goal.Goal{
		ID:           id,
		UserID:       userID,
		Name:         "Bike",
		TargetAmount: 1000,
		TargetDate:   time.Now(),
		Priority:     goal.PriorityLow,
		Status:       goal.StatusActive,
	}

	repo := goal.NewMockRepository(ctrl)
	repo.EXPECT().GetGoal(gomock.Any(), id).Return(g, nil)
	repo.EXPECT().UpdateGoal(gomock.Any(), g).Return(nil)

	got, err := goal.NewService(repo).Update(context.Background(), userID, id, goal.UpdateParams{
		CurrentAmount: new(int64(1000)),
	})
	require.NoError(t, err)
	assert.Equal(t, goal.StatusCompleted, got.Status)
	assert.Equal(t, float64(100), got.Progress())
}

func TestService_Ownership(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := goal.NewMockRepository(ctrl)
	repo.EXPECT().GetGoal(gomock.Any(), id).Return(&goal.Goal{ID: id, UserID: uuid.New()}, nil).Times(3)

	svc := goal.NewService(repo)

	_, err := svc.Get(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Contribute(context.Background(), userID, id, 10)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(context.Background(), userID, id), apperr.ErrForbidden)
}

func TestGoal_Derived(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	g := &goal.Goal{
		TargetAmount:  1000,
		CurrentAmount: 1200,
		TargetDate:    time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, int64(0), g.Remaining())
	assert.Equal(t, float64(120), g.Progress())
	assert.Equal(t, 10, g.DaysLeft(now))
}
