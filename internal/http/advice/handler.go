package advice

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finsight/internal/advisor"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/period"
)

type Handler struct {
	svc *advisor.Service
	now func() time.Time
}

func NewHandler(svc *advisor.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.advise)
}

func (h *Handler) advise(w http.ResponseWriter, r *http.Request) {
	rng, err := period.ParseRequest(r.URL.Query(), h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	advice, err := h.svc.Advise(r.Context(), respond.UserID(r), rng)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, advice)
}
