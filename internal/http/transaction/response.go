package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

// Response is the wire form of a transaction, shared with the import handler.
type Response struct {
	ID             uuid.UUID                 `json:"id"`
	Amount         int64                     `json:"amount"`
	Type           transaction.Type          `json:"type"`
	Category       string                    `json:"category"`
	Description    string                    `json:"description"`
	RawDescription string                    `json:"raw_description,omitempty"`
	Date           time.Time                 `json:"date"`
	PaymentMethod  transaction.PaymentMethod `json:"payment_method"`
	Tags           []string                  `json:"tags"`
	Notes          string                    `json:"notes,omitempty"`
	RecurringID    *uuid.UUID                `json:"recurring_id,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      *time.Time                `json:"updated_at,omitempty"`
}

func ToResponse(tx *transaction.Transaction) Response {
	tags := tx.Tags
	if tags == nil {
		tags = []string{}
	}

	return Response{
		ID:             tx.ID,
		Amount:         tx.Amount,
		Type:           tx.Type,
		Category:       tx.Category,
		Description:    tx.Description,
		RawDescription: tx.RawDescription,
		Date:           tx.Date,
		PaymentMethod:  tx.PaymentMethod,
		Tags:           tags,
		Notes:          tx.Notes,
		RecurringID:    tx.RecurringID,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

// Params is the wire form of a not yet persisted transaction.
type Params struct {
	Amount         int64                     `json:"amount" validate:"gt=0"`
	Type           transaction.Type          `json:"type" validate:"oneof=income expense"`
	Category       string                    `json:"category,omitempty"`
	Description    string                    `json:"description" validate:"max=500"`
	RawDescription string                    `json:"raw_description,omitempty"`
	Date           time.Time                 `json:"date" validate:"required"`
	PaymentMethod  transaction.PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card bank_transfer other"`
	Tags           []string                  `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	Notes          string                    `json:"notes,omitempty" validate:"max=1000"`
}

func ToParams(p transaction.CreateParams) Params {
	return Params{
		Amount:         p.Amount,
		Type:           p.Type,
		Category:       p.Category,
		Description:    p.Description,
		RawDescription: p.RawDescription,
		Date:           p.Date,
		PaymentMethod:  p.PaymentMethod,
		Tags:           p.Tags,
		Notes:          p.Notes,
	}
}

func ToParamsList(params []transaction.CreateParams) []Params {
	resp := make([]Params, len(params))
	for i, p := range params {
		resp[i] = ToParams(p)
	}

	return resp
}

func (p Params) CreateParams(userID uuid.UUID) transaction.CreateParams {
	raw := p.RawDescription
	if raw == "" {
		raw = p.Description
	}

	return transaction.CreateParams{
		UserID:         userID,
		Amount:         p.Amount,
		Type:           p.Type,
		Category:       p.Category,
		Description:    p.Description,
		RawDescription: raw,
		Date:           p.Date,
		PaymentMethod:  p.PaymentMethod,
		Tags:           p.Tags,
		Notes:          p.Notes,
	}
}
