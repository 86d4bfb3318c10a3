package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

type Type string

const (
	TypeBudgetWarning      Type = "budget_warning"
	TypeBudgetExceeded     Type = "budget_exceeded"
	TypeGoalAchieved       Type = "goal_achieved"
	TypeRecurringProcessed Type = "recurring_processed"
	TypeInsight            Type = "insight"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var ErrNotFound = fmt.Errorf("notification %w", apperr.ErrNotFound)

// Related points at the entity a notification is about.
type Related struct {
	Kind string     `json:"kind,omitempty"`
	ID   *uuid.UUID `json:"id,omitempty"`
}

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      Type
	Priority  Priority
	Title     string
	Message   string
	Related   Related
	Read      bool
	CreatedAt time.Time
}

// Message is the wire form pushed to clients and published to the broker.
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      Type      `json:"type"`
	Priority  Priority  `json:"priority"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Related   Related   `json:"related_entity"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) ToMessage() Message {
	return Message{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Priority:  n.Priority,
		Title:     n.Title,
		Message:   n.Message,
		Related:   n.Related,
		CreatedAt: n.CreatedAt,
	}
}
