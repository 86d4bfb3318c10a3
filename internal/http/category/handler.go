package category

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/category"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type response struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Type      transaction.Type `json:"type"`
	Icon      string           `json:"icon,omitempty"`
	Color     string           `json:"color,omitempty"`
	IsDefault bool             `json:"is_default"`
}

func toResponse(c *category.Category) response {
	return response{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Icon:      c.Icon,
		Color:     c.Color,
		IsDefault: c.IsDefault(),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var typ *transaction.Type

	if s := r.URL.Query().Get("type"); s != "" {
		t := transaction.Type(strings.ToLower(s))
		if !t.Valid() {
			respond.Error(w, r, apperr.Validation("invalid category type %q", s))
			return
		}

		typ = &t
	}

	cats, err := h.svc.List(r.Context(), respond.UserID(r), typ)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]response, len(cats))
	for i, c := range cats {
		resp[i] = toResponse(c)
	}

	respond.OK(w, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Get(r.Context(), respond.UserID(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(c))
}

type createRequest struct {
	Name  string           `json:"name" validate:"required,max=50"`
	Type  transaction.Type `json:"type" validate:"oneof=income expense"`
	Icon  string           `json:"icon" validate:"max=50"`
	Color string           `json:"color" validate:"omitempty,hexcolor"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		UserID: respond.UserID(r),
		Name:   req.Name,
		Type:   req.Type,
		Icon:   req.Icon,
		Color:  req.Color,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toResponse(c))
}

type updateRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=50"`
	Icon  *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
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

	c, err := h.svc.Update(r.Context(), respond.UserID(r), id, category.UpdateParams{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(c))
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
