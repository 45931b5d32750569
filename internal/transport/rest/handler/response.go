package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"evalforge/internal/service"
)

// ResponseHandler handles the public respondent endpoints
type ResponseHandler struct {
	templateSvc *service.TemplateService
	responseSvc *service.ResponseService
	log         *zap.Logger
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(templateSvc *service.TemplateService, responseSvc *service.ResponseService, log *zap.Logger) *ResponseHandler {
	return &ResponseHandler{
		templateSvc: templateSvc,
		responseSvc: responseSvc,
		log:         log,
	}
}

// GetForm handles GET /v1/forms/{templateId}
func (h *ResponseHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	t, err := h.templateSvc.GetPublic(r.Context(), mux.Vars(r)["templateId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	t.HostID = ""

	writeJSON(w, http.StatusOK, t)
}

// Submit handles POST /v1/templates/{templateId}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.responseSvc.Submit(r.Context(), mux.Vars(r)["templateId"], req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"responseId": resp.ID,
		"totalScore": resp.TotalScore,
		"scores":     resp.Scores,
	})
}
