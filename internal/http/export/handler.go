package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finsight/internal/export"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/period"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download renders the caller's report for ?period (or startDate/endDate) in
// ?format and sends it as an attachment.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rng, err := period.ParseRequest(q, h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	doc, err := h.svc.Export(r.Context(), respond.UserID(r), rng, format)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))

	if _, err := w.Write(doc.Body); err != nil {
		slog.Error("failed to write export", "error", err, "format", doc.Format)
	}
}
