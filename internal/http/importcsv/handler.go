package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	txHTTP "github.com/MrJamesThe3rd/finsight/internal/http/transaction"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Profile      string            `json:"profile"`
	Charset      string            `json:"charset"`
	Imported     int               `json:"imported"`
	Transactions []txHTTP.Response `json:"transactions"`
}

type conflictDTO struct {
	Incoming txHTTP.Params   `json:"incoming"`
	Existing txHTTP.Response `json:"existing"`
}

type importConflictResponse struct {
	Profile   string          `json:"profile"`
	Charset   string          `json:"charset"`
	New       []txHTTP.Params `json:"new"`
	Conflicts []conflictDTO   `json:"conflicts"`
}

type confirmRequest struct {
	Params []txHTTP.Params `json:"params" validate:"required,min=1,max=5000,dive"`
}

// importCSV takes a multipart upload with a "file" part and an optional
// "format" field. When some rows already exist nothing is written and the
// response is 409 with the rows for the client to confirm.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, r, apperr.Validation("failed to parse form: %v", err))
		return
	}

	format, err := importer.ParseFormat(r.FormValue("format"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), respond.UserID(r), format, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			Profile:   result.Profile,
			Charset:   result.Charset,
			New:       txHTTP.ToParamsList(result.New),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: txHTTP.ToParams(c.Incoming),
				Existing: txHTTP.ToResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.Created(w, importSuccessResponse{
		Profile:      result.Profile,
		Charset:      result.Charset,
		Imported:     len(result.Imported),
		Transactions: txHTTP.ToResponseList(result.Imported),
	})
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	userID := respond.UserID(r)

	params := make([]transaction.CreateParams, len(req.Params))
	for i, p := range req.Params {
		params[i] = p.CreateParams(userID)
	}

	txs, err := h.svc.Confirm(r.Context(), userID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, importSuccessResponse{
		Imported:     len(txs),
		Transactions: txHTTP.ToResponseList(txs),
	})
}
