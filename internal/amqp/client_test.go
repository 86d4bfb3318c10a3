package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/notification"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{40, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

type ack struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ack) Ack(uint64, bool) error { a.acked = true; return nil }

func (a *ack) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue

	return nil
}

func (a *ack) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

func TestHandle(t *testing.T) {
	msg := notification.Message{ID: uuid.New(), UserID: uuid.New(), Type: notification.TypeBudgetExceeded}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	type testCase struct {
		name    string
		body    []byte
		handler Handler
		want    ack
	}

	tests := []testCase{
		{
			name: "Handled",
			body: body,
			handler: func(_ context.Context, got notification.Message) error {
				assert.Equal(t, msg.ID, got.ID)
				return nil
			},
			want: ack{acked: true},
		},
		{
			name:    "HandlerFails",
			body:    body,
			handler: func(context.Context, notification.Message) error { return errors.New("boom") },
			want:    ack{nacked: true, requeue: true},
		},
		{
			name: "Garbage",
			body: []byte("{"),
			handler: func(context.Context, notification.Message) error {
				t.Fatal("handler must not run")
				return nil
			},
			want: ack{nacked: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &ack{}
			handle(context.Background(), amqp091.Delivery{Acknowledger: a, Body: tt.body}, tt.handler)
			assert.Equal(t, tt.want, *a)
		})
	}
}
