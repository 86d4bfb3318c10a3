package recurring

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/recurring"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Handler struct {
	svc       *recurring.Service
	processor *recurring.Processor
	now       func() time.Time
}

func NewHandler(svc *recurring.Service, processor *recurring.Processor) *Handler {
	return &Handler{svc: svc, processor: processor, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/process", h.process)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type response struct {
	ID              uuid.UUID                 `json:"id"`
	Type            transaction.Type          `json:"type"`
	Amount          int64                     `json:"amount"`
	Category        string                    `json:"category"`
	Description     string                    `json:"description"`
	PaymentMethod   transaction.PaymentMethod `json:"payment_method"`
	Frequency       recurring.Frequency       `json:"frequency"`
	StartDate       time.Time                 `json:"start_date"`
	NextOccurrence  time.Time                 `json:"next_occurrence"`
	EndDate         *time.Time                `json:"end_date,omitempty"`
	IsActive        bool                      `json:"is_active"`
	AutoProcess     bool                      `json:"auto_process"`
	LastProcessedAt *time.Time                `json:"last_processed_at,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

func toResponse(rt *recurring.Recurring) response {
	return response{
		ID:              rt.ID,
		Type:            rt.Type,
		Amount:          rt.Amount,
		Category:        rt.Category,
		Description:     rt.Description,
		PaymentMethod:   rt.PaymentMethod,
		Frequency:       rt.Frequency,
		StartDate:       rt.StartDate,
		NextOccurrence:  rt.NextOccurrence,
		EndDate:         rt.EndDate,
		IsActive:        rt.IsActive,
		AutoProcess:     rt.AutoProcess,
		LastProcessedAt: rt.LastProcessedAt,
		CreatedAt:       rt.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), respond.UserID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]response, len(items))
	for i, rt := range items {
		resp[i] = toResponse(rt)
	}

	respond.OK(w, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rt, err := h.svc.Get(r.Context(), respond.UserID(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(rt))
}

type createRequest struct {
	Type          transaction.Type          `json:"type" validate:"oneof=income expense"`
	Amount        int64                     `json:"amount" validate:"gt=0"`
	Category      string                    `json:"category" validate:"required,max=50"`
	Description   string                    `json:"description" validate:"max=500"`
	PaymentMethod transaction.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=cash card bank_transfer other"`
	Frequency     recurring.Frequency       `json:"frequency" validate:"oneof=daily weekly biweekly monthly quarterly yearly"`
	StartDate     time.Time                 `json:"start_date" validate:"required"`
	EndDate       *time.Time                `json:"end_date,omitempty"`
	AutoProcess   *bool                     `json:"auto_process,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	rt, err := h.svc.Create(r.Context(), recurring.CreateParams{
		UserID:        respond.UserID(r),
		Type:          req.Type,
		Amount:        req.Amount,
		Category:      req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Frequency:     req.Frequency,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		AutoProcess:   req.AutoProcess,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toResponse(rt))
}

type updateRequest struct {
	Amount        *int64                     `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Category      *string                    `json:"category,omitempty" validate:"omitempty,max=50"`
	Description   *string                    `json:"description,omitempty" validate:"omitempty,max=500"`
	PaymentMethod *transaction.PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card bank_transfer other"`
	Frequency     *recurring.Frequency       `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly biweekly monthly quarterly yearly"`
	EndDate       *time.Time                 `json:"end_date,omitempty"`
	IsActive      *bool                      `json:"is_active,omitempty"`
	AutoProcess   *bool                      `json:"auto_process,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	rt, err := h.svc.Update(r.Context(), respond.UserID(r), id, recurring.UpdateParams{
		Amount:        req.Amount,
		Category:      req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Frequency:     req.Frequency,
		EndDate:       req.EndDate,
		IsActive:      req.IsActive,
		AutoProcess:   req.AutoProcess,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(rt))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), respond.UserID(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.NoContent(w)
}

type processResponse struct {
	Processed int `json:"processed"`
}

// process materializes the caller's due templates now instead of waiting
// for the worker.
func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	n, err := h.processor.ProcessUser(r.Context(), respond.UserID(r), h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, processResponse{Processed: n})
}
