package goal_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/goal"
	goalHTTP "github.com/MrJamesThe3rd/finsight/internal/http/goal"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond/respondtest"
)

func newServer(t *testing.T, userID uuid.UUID) (http.Handler, *goal.MockRepository) {
	t.Helper()

	repo := goal.NewMockRepository(gomock.NewController(t))

	return respondtest.Router("/goals", userID, goalHTTP.NewHandler(goal.NewService(repo)).Routes), repo
}

func emergencyFund(id, userID uuid.UUID, status goal.Status) *goal.Goal {
	return &goal.Goal{
		ID:            id,
		UserID:        userID,
		Name:          "Emergency fund",
		TargetAmount:  100000,
		CurrentAmount: 90000,
		TargetDate:    time.Now().AddDate(1, 0, 0),
		Priority:      goal.PriorityHigh,
		Status:        status,
	}
}

type goalBody struct {
	CurrentAmount int64       `json:"current_amount"`
	Remaining     int64       `json:"remaining"`
	Progress      float64     `json:"progress"`
	Status        goal.Status `json:"status"`
}

func TestHandler_Contribute(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	target := "/goals/" + id.String() + "/contribute"

	tests := []struct {
		name       string
		target     string
		body       string
		setupMock  func(repo *goal.MockRepository)
		wantStatus int
		want       *goalBody
	}{
		{
			name:   "partial contribution",
			target: target,
			body:   `{"amount":5000}`,
			setupMock: func(repo *goal.MockRepository) {
				repo.EXPECT().GetGoal(gomock.Any(), id).Return(emergencyFund(id, userID, goal.StatusActive), nil)
				repo.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
			want:       &goalBody{CurrentAmount: 95000, Remaining: 5000, Progress: 95, Status: goal.StatusActive},
		},
		{
			name:   "reaching the target completes the goal",
			target: target,
			body:   `{"amount":15000}`,
			setupMock: func(repo *goal.MockRepository) {
				repo.EXPECT().GetGoal(gomock.Any(), id).Return(emergencyFund(id, userID, goal.StatusActive), nil)
				repo.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, g *goal.Goal) error {
						assert.Equal(t, goal.StatusCompleted, g.Status)
						return nil
					})
			},
			wantStatus: http.StatusOK,
			want:       &goalBody{CurrentAmount: 105000, Remaining: 0, Progress: 105, Status: goal.StatusCompleted},
		},
		{
			name:       "zero amount",
			target:     target,
			body:       `{"amount":0}`,
			setupMock:  func(*goal.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			target:     target,
			body:       `{"amount":100,"note":"bonus"}`,
			setupMock:  func(*goal.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "cancelled goal",
			target: target,
			body:   `{"amount":100}`,
			setupMock: func(repo *goal.MockRepository) {
				repo.EXPECT().GetGoal(gomock.Any(), id).Return(emergencyFund(id, userID, goal.StatusCancelled), nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "other user's goal",
			target: target,
			body:   `{"amount":100}`,
			setupMock: func(repo *goal.MockRepository) {
				repo.EXPECT().GetGoal(gomock.Any(), id).Return(emergencyFund(id, uuid.New(), goal.StatusActive), nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "missing goal",
			target: target,
			body:   `{"amount":100}`,
			setupMock: func(repo *goal.MockRepository) {
				repo.EXPECT().GetGoal(gomock.Any(), id).Return(nil, goal.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			target:     "/goals/42/contribute",
			body:       `{"amount":100}`,
			setupMock:  func(*goal.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo := newServer(t, userID)
			tt.setupMock(repo)

			rec := respondtest.Do(h, http.MethodPost, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.want == nil {
				assert.NotEmpty(t, respondtest.Decode(t, rec).Error)
				return
			}

			var got goalBody
			respondtest.Data(t, rec, &got)
			assert.Equal(t, *tt.want, got)
		})
	}
}

func TestHandler_List(t *testing.T) {
	userID := uuid.New()
	h, repo := newServer(t, userID)

	repo.EXPECT().ListGoals(gomock.Any(), userID).Return([]*goal.Goal{emergencyFund(uuid.New(), userID, goal.StatusActive)}, nil)

	rec := respondtest.Do(h, http.MethodGet, "/goals", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []goalBody
	respondtest.Data(t, rec, &got)
	require.Len(t, got, 1)
	assert.InDelta(t, 90.0, got[0].Progress, 0.001)
}
