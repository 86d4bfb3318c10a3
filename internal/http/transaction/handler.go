package transaction

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req Params
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), req.CreateParams(respond.UserID(r)))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponseList(txs))
}

func parseFilter(r *http.Request) (transaction.ListFilter, error) {
	q := r.URL.Query()
	filter := transaction.ListFilter{UserID: respond.UserID(r)}

	if s := q.Get("type"); s != "" {
		typ := transaction.Type(strings.ToLower(s))
		if !typ.Valid() {
			return filter, apperr.Validation("invalid transaction type %q", s)
		}

		filter.Type = &typ
	}

	if s := strings.TrimSpace(q.Get("category")); s != "" {
		filter.Category = &s
	}

	if s := q.Get("startDate"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return filter, apperr.Validation("startDate: expected YYYY-MM-DD")
		}

		filter.StartDate = &t
	}

	if s := q.Get("endDate"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return filter, apperr.Validation("endDate: expected YYYY-MM-DD")
		}

		filter.EndDate = new(t.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), respond.UserID(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponse(tx))
}

type updateRequest struct {
	Amount        *int64                     `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Type          *transaction.Type          `json:"type,omitempty" validate:"omitempty,oneof=income expense"`
	Category      *string                    `json:"category,omitempty"`
	Description   *string                    `json:"description,omitempty" validate:"omitempty,max=500"`
	Date          *time.Time                 `json:"date,omitempty"`
	PaymentMethod *transaction.PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card bank_transfer other"`
	Tags          []string                   `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	Notes         *string                    `json:"notes,omitempty" validate:"omitempty,max=1000"`
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

	tx, err := h.svc.Update(r.Context(), respond.UserID(r), id, transaction.UpdateParams{
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		Description:   req.Description,
		Date:          req.Date,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
		Notes:         req.Notes,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponse(tx))
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
