package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// PaymentMethod is how the money moved.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOther        PaymentMethod = "other"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentBankTransfer, PaymentOther:
		return true
	}

	return false
}

// DefaultCategory is assigned when a transaction arrives without one.
const DefaultCategory = "Uncategorized"

var ErrNotFound = fmt.Errorf("transaction %w", apperr.ErrNotFound)

// Transaction represents a financial transaction owned by a single user.
type Transaction struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Amount         int64 // Amount in cents, always positive
	Type           Type
	Category       string
	Description    string
	RawDescription string
	Date           time.Time
	PaymentMethod  PaymentMethod
	Tags           []string
	Notes          string
	RecurringID    *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
}

// Signed returns the amount with expenses negated.
func (t *Transaction) Signed() int64 {
	if t.Type == TypeExpense {
		return -t.Amount
	}

	return t.Amount
}
