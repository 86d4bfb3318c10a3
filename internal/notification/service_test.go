package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/notification"
)

var userID = uuid.MustParse("55555555-5555-5555-5555-555555555555")

func TestService_Notify(t *testing.T) {
	relatedID := uuid.New()

	type testCase struct {
		name      string
		n         notification.Notification
		setupMock func(repo *notification.MockRepository, push *notification.MockPusher, pub *notification.MockPublisher)
		wantSent  bool
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Sent",
			n: notification.Notification{
				UserID:  userID,
				Type:    notification.TypeBudgetWarning,
				Related: notification.Related{Kind: "budget", ID: &relatedID},
			},
			setupMock: func(repo *notification.MockRepository, push *notification.MockPusher, pub *notification.MockPublisher) {
				repo.EXPECT().ExistsSince(gomock.Any(), userID, notification.TypeBudgetWarning, relatedID, gomock.Any()).Return(false, nil)
				repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
				push.EXPECT().Send(userID, gomock.Any()).Return(true)
				pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantSent: true,
		},
		{
			name: "Deduplicated",
			n: notification.Notification{
				UserID:  userID,
				Type:    notification.TypeBudgetWarning,
				Related: notification.Related{Kind: "budget", ID: &relatedID},
			},
			setupMock: func(repo *notification.MockRepository, _ *notification.MockPusher, _ *notification.MockPublisher) {
				repo.EXPECT().ExistsSince(gomock.Any(), userID, notification.TypeBudgetWarning, relatedID, gomock.Any()).Return(true, nil)
			},
			wantSent: false,
		},
		{
			name: "NoRelatedEntitySkipsDedup",
			n: notification.Notification{
				UserID: userID,
				Type:   notification.TypeInsight,
			},
			setupMock: func(repo *notification.MockRepository, push *notification.MockPusher, pub *notification.MockPublisher) {
				repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)
				push.EXPECT().Send(userID, gomock.Any()).Return(false)
				pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			wantSent: true,
		},
		{
			name: "StoreError",
			n: notification.Notification{
				UserID:  userID,
				Type:    notification.TypeBudgetExceeded,
				Related: notification.Related{Kind: "budget", ID: &relatedID},
			},
			setupMock: func(repo *notification.MockRepository, _ *notification.MockPusher, _ *notification.MockPublisher) {
				repo.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := notification.NewMockRepository(ctrl)
			push := notification.NewMockPusher(ctrl)
			pub := notification.NewMockPublisher(ctrl)
			tt.setupMock(repo, push, pub)

			svc := notification.NewService(repo, push, pub)

			n := tt.n
			sent, err := svc.Notify(context.Background(), &n)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSent, sent)
		})
	}
}

func TestService_Notify_DedupWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	relatedID := uuid.New()
	repo := notification.NewMockRepository(ctrl)

	before := time.Now()

	repo.EXPECT().
		ExistsSince(gomock.Any(), userID, notification.TypeBudgetExceeded, relatedID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, _ notification.Type, _ uuid.UUID, since time.Time) (bool, error) {
			assert.WithinDuration(t, before.Add(-notification.DedupWindow), since, time.Minute)
			return true, nil
		})
	repo.EXPECT().
		ExistsSince(gomock.Any(), userID, notification.TypeGoalAchieved, relatedID, time.Time{}).
		Return(true, nil)

	svc := notification.NewService(repo, nil, nil)

	for _, typ := range []notification.Type{notification.TypeBudgetExceeded, notification.TypeGoalAchieved} {
		sent, err := svc.Notify(context.Background(), &notification.Notification{
			UserID:  userID,
			Type:    typ,
			Related: notification.Related{ID: &relatedID},
		})
		require.NoError(t, err)
		assert.False(t, sent)
	}
}

func TestService_List_ClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := notification.NewMockRepository(ctrl)
	repo.EXPECT().ListNotifications(gomock.Any(), userID, true, 50).Return(nil, nil)

	_, err := notification.NewService(repo, nil, nil).List(context.Background(), userID, true, 1000)
	require.NoError(t, err)
}
