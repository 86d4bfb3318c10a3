package goal

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/goal"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
)

type Handler struct {
	svc *goal.Service
	now func() time.Time
}

func NewHandler(svc *goal.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/contribute", h.contribute)
}

type response struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	TargetAmount  int64         `json:"target_amount"`
	CurrentAmount int64         `json:"current_amount"`
	Remaining     int64         `json:"remaining"`
	Progress      float64       `json:"progress"`
	DaysLeft      int           `json:"days_left"`
	TargetDate    time.Time     `json:"target_date"`
	Priority      goal.Priority `json:"priority"`
	Status        goal.Status   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"`
}

func (h *Handler) toResponse(g *goal.Goal) response {
	return response{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Remaining:     g.Remaining(),
		Progress:      g.Progress(),
		DaysLeft:      g.DaysLeft(h.now()),
		TargetDate:    g.TargetDate,
		Priority:      g.Priority,
		Status:        g.Status,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.List(r.Context(), respond.UserID(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]response, len(goals))
	for i, g := range goals {
		resp[i] = h.toResponse(g)
	}

	respond.OK(w, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.svc.Get(r.Context(), respond.UserID(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, h.toResponse(g))
}

type createRequest struct {
	Name          string        `json:"name" validate:"required,max=100"`
	TargetAmount  int64         `json:"target_amount" validate:"gt=0"`
	CurrentAmount int64         `json:"current_amount" validate:"min=0"`
	TargetDate    time.Time     `json:"target_date" validate:"required"`
	Priority      goal.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.svc.Create(r.Context(), goal.CreateParams{
		UserID:        respond.UserID(r),
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate,
		Priority:      req.Priority,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, h.toResponse(g))
}

type updateRequest struct {
	Name          *string        `json:"name,omitempty" validate:"omitempty,max=100"`
	TargetAmount  *int64         `json:"target_amount,omitempty" validate:"omitempty,gt=0"`
	CurrentAmount *int64         `json:"current_amount,omitempty" validate:"omitempty,min=0"`
	TargetDate    *time.Time     `json:"target_date,omitempty"`
	Priority      *goal.Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status        *goal.Status   `json:"status,omitempty" validate:"omitempty,oneof=active completed cancelled"`
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

	g, err := h.svc.Update(r.Context(), respond.UserID(r), id, goal.UpdateParams{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate,
		Priority:      req.Priority,
		Status:        req.Status,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, h.toResponse(g))
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

type contributeRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req contributeRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.svc.Contribute(r.Context(), respond.UserID(r), id, req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, h.toResponse(g))
}
