package notification_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	notificationHTTP "github.com/MrJamesThe3rd/finsight/internal/http/notification"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond/respondtest"
	"github.com/MrJamesThe3rd/finsight/internal/notification"
	"github.com/MrJamesThe3rd/finsight/internal/ws"
)

func newServer(t *testing.T, userID uuid.UUID) (http.Handler, *notification.MockRepository, *notification.Service, *ws.Registry) {
	t.Helper()

	repo := notification.NewMockRepository(gomock.NewController(t))

	reg := ws.NewRegistry(nil)
	t.Cleanup(reg.Close)

	svc := notification.NewService(repo, reg, nil)
	h := notificationHTTP.NewHandler(svc, reg)

	return respondtest.Router("/notifications", userID, func(r chi.Router) {
		h.Routes(r)
		r.Get("/ws", h.Socket)
	}), repo, svc, reg
}

func TestHandler_List(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		target     string
		wantUnread bool
		wantLimit  int
	}{
		{name: "defaults", target: "/notifications", wantLimit: 50},
		{name: "unread with limit", target: "/notifications?unread=true&limit=10", wantUnread: true, wantLimit: 10},
		{name: "limit above maximum", target: "/notifications?limit=500", wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo, _, _ := newServer(t, userID)

			repo.EXPECT().ListNotifications(gomock.Any(), userID, tt.wantUnread, tt.wantLimit).
				Return([]*notification.Notification{{ID: uuid.New(), UserID: userID, Type: notification.TypeBudgetWarning, Title: "Groceries at 80%"}}, nil)

			rec := respondtest.Do(h, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got []struct {
				Title string `json:"title"`
				Read  bool   `json:"read"`
			}
			respondtest.Data(t, rec, &got)
			require.Len(t, got, 1)
			assert.Equal(t, "Groceries at 80%", got[0].Title)
		})
	}
}

func TestHandler_MarkRead(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()

	t.Run("marked", func(t *testing.T) {
		h, repo, _, _ := newServer(t, userID)
		repo.EXPECT().MarkRead(gomock.Any(), userID, id).Return(nil)

		rec := respondtest.Do(h, http.MethodPatch, "/notifications/"+id.String()+"/read", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		h, repo, _, _ := newServer(t, userID)
		repo.EXPECT().MarkRead(gomock.Any(), userID, id).Return(notification.ErrNotFound)

		rec := respondtest.Do(h, http.MethodPatch, "/notifications/"+id.String()+"/read", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Socket_ReceivesNotification(t *testing.T) {
	userID := uuid.New()
	h, repo, svc, reg := newServer(t, userID)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return reg.Connected(userID) }, time.Second, 10*time.Millisecond)

	repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *notification.Notification) error {
			n.ID = uuid.New()
			return nil
		})

	sent, err := svc.Notify(context.Background(), &notification.Notification{
		UserID: userID,
		Type:   notification.TypeBudgetExceeded,
		Title:  "Budget exceeded",
	})
	require.NoError(t, err)
	require.True(t, sent)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	var got notification.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "Budget exceeded", got.Title)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, notification.PriorityMedium, got.Priority)
}
