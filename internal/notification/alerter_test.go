package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	"github.com/MrJamesThe3rd/finsight/internal/notification"
)

func TestBudgetAlert(t *testing.T) {
	tests := []struct {
		name         string
		budget       budget.Budget
		wantType     notification.Type
		wantPriority notification.Priority
		wantNil      bool
	}{
		{
			name:         "Exceeded",
			budget:       budget.Budget{Category: "Food", Amount: 500, Spent: 600, AlertThreshold: 80},
			wantType:     notification.TypeBudgetExceeded,
			wantPriority: notification.PriorityHigh,
		},
		{
			name:         "Warning",
			budget:       budget.Budget{Category: "Food", Amount: 500, Spent: 450, AlertThreshold: 80},
			wantType:     notification.TypeBudgetWarning,
			wantPriority: notification.PriorityMedium,
		},
		{
			name:    "Good",
			budget:  budget.Budget{Category: "Food", Amount: 500, Spent: 100, AlertThreshold: 80},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.budget
			b.ID = uuid.New()
			b.UserID = userID

			got := notification.BudgetAlert(&b)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantPriority, got.Priority)
			assert.Equal(t, b.ID, *got.Related.ID)
			assert.Equal(t, userID, got.UserID)
		})
	}
}

func TestAlerter_CheckBudgets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	budgets := notification.NewMockBudgetSource(ctrl)
	notifier := notification.NewMockNotifier(ctrl)

	budgets.EXPECT().RefreshAll(gomock.Any(), userID, gomock.Any()).Return([]*budget.Budget{
		{ID: uuid.New(), UserID: userID, Category: "Food", Amount: 500, Spent: 600, AlertThreshold: 80},
		{ID: uuid.New(), UserID: userID, Category: "Fun", Amount: 500, Spent: 450, AlertThreshold: 80},
		{ID: uuid.New(), UserID: userID, Category: "Rent", Amount: 500, Spent: 10, AlertThreshold: 80},
	}, nil)

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(true, nil)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(false, nil)

	sent, err := notification.NewAlerter(budgets, nil, notifier).CheckBudgets(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestAlerter_CheckGoals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	goals := notification.NewMockGoalSource(ctrl)
	notifier := notification.NewMockNotifier(ctrl)

	goals.EXPECT().List(gomock.Any(), userID).Return([]*goal.Goal{
		{ID: uuid.New(), UserID: userID, Name: "Car", Status: goal.StatusCompleted},
		{ID: uuid.New(), UserID: userID, Name: "House", Status: goal.StatusActive},
	}, nil)

	notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *notification.Notification) (bool, error) {
			assert.Equal(t, notification.TypeGoalAchieved, n.Type)
			assert.Contains(t, n.Message, "Car")

			return true, nil
		})

	sent, err := notification.NewAlerter(nil, goals, notifier).CheckGoals(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestAlerter_CheckBudgets_SourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	budgets := notification.NewMockBudgetSource(ctrl)
	budgets.EXPECT().RefreshAll(gomock.Any(), userID, gomock.Any()).Return(nil, errors.New("db down"))

	_, err := notification.NewAlerter(budgets, nil, notification.NewMockNotifier(ctrl)).CheckBudgets(context.Background(), userID)
	assert.Error(t, err)
}
