package notification

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/notification"
	"github.com/MrJamesThe3rd/finsight/internal/ws"
)

type Handler struct {
	svc      *notification.Service
	registry *ws.Registry
}

func NewHandler(svc *notification.Service, registry *ws.Registry) *Handler {
	return &Handler{svc: svc, registry: registry}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{id}/read", h.markRead)
}

type response struct {
	ID        uuid.UUID             `json:"id"`
	Type      notification.Type     `json:"type"`
	Priority  notification.Priority `json:"priority"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Related   notification.Related  `json:"related_entity"`
	Read      bool                  `json:"read"`
	CreatedAt time.Time             `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	items, err := h.svc.List(r.Context(), respond.UserID(r), q.Get("unread") == "true", limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]response, len(items))
	for i, n := range items {
		resp[i] = response{
			ID:        n.ID,
			Type:      n.Type,
			Priority:  n.Priority,
			Title:     n.Title,
			Message:   n.Message,
			Related:   n.Related,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}

	respond.OK(w, resp)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.MarkRead(r.Context(), respond.UserID(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.NoContent(w)
}

// Socket upgrades the connection and registers it for push delivery. Browsers
// cannot set headers on WebSocket requests, so the token comes in ?token=.
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	h.registry.Serve(w, r, respond.UserID(r))
}
