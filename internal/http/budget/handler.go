package budget

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
)

type Handler struct {
	svc *budget.Service
	now func() time.Time
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/refresh", h.refresh)
}

type response struct {
	ID             uuid.UUID     `json:"id"`
	Category       string        `json:"category"`
	Amount         int64         `json:"amount"`
	Spent          int64         `json:"spent"`
	Remaining      int64         `json:"remaining"`
	PercentUsed    float64       `json:"percent_used"`
	Status         budget.Status `json:"status"`
	Period         budget.Period `json:"period"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	AlertThreshold int           `json:"alert_threshold"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      *time.Time    `json:"updated_at,omitempty"`
}

func toResponse(b *budget.Budget) response {
	return response{
		ID:             b.ID,
		Category:       b.Category,
		Amount:         b.Amount,
		Spent:          b.Spent,
		Remaining:      b.Remaining(),
		PercentUsed:    b.PercentUsed(),
		Status:         b.Status(),
		Period:         b.Period,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		AlertThreshold: b.AlertThreshold,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// list returns all budgets, or with ?active=true only those covering now.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := budget.ListFilter{UserID: respond.UserID(r)}

	if r.URL.Query().Get("active") == "true" {
		now := h.now()
		filter.From, filter.To = &now, &now
	}

	budgets, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]response, len(budgets))
	for i, b := range budgets {
		resp[i] = toResponse(b)
	}

	respond.OK(w, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), respond.UserID(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(b))
}

type createRequest struct {
	Category       string        `json:"category" validate:"required,max=50"`
	Amount         int64         `json:"amount" validate:"gt=0"`
	Period         budget.Period `json:"period" validate:"oneof=weekly monthly yearly"`
	StartDate      time.Time     `json:"start_date" validate:"required"`
	EndDate        *time.Time    `json:"end_date,omitempty"`
	AlertThreshold *int          `json:"alert_threshold,omitempty" validate:"omitempty,min=0,max=100"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Create(r.Context(), budget.CreateParams{
		UserID:         respond.UserID(r),
		Category:       req.Category,
		Amount:         req.Amount,
		Period:         req.Period,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toResponse(b))
}

type updateRequest struct {
	Category       *string    `json:"category,omitempty" validate:"omitempty,max=50"`
	Amount         *int64     `json:"amount,omitempty" validate:"omitempty,gt=0"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	AlertThreshold *int       `json:"alert_threshold,omitempty" validate:"omitempty,min=0,max=100"`
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

	b, err := h.svc.Update(r.Context(), respond.UserID(r), id, budget.UpdateParams{
		Category:       req.Category,
		Amount:         req.Amount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(b))
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

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.RefreshSpent(r.Context(), respond.UserID(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(b))
}
