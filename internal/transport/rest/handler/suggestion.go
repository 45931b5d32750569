package handler

import (
	"net/http"

	"go.uber.org/zap"

	"evalforge/internal/model"
	"evalforge/internal/service"
	"evalforge/internal/transport/rest/middleware"
)

// SuggestionHandler handles AI suggestion endpoints
type SuggestionHandler struct {
	suggestionSvc *service.SuggestionService
	templateSvc   *service.TemplateService
	editorSvc     *service.EditorService
	log           *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(
	suggestionSvc *service.SuggestionService,
	templateSvc *service.TemplateService,
	editorSvc *service.EditorService,
	log *zap.Logger,
) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionSvc: suggestionSvc,
		templateSvc:   templateSvc,
		editorSvc:     editorSvc,
		log:           log,
	}
}

type TemplateSuggestionRequest struct {
	Prompt string `json:"prompt"`
}

// FormulaSuggestionRequest names the template whose variables the formula may use.
// An open session takes precedence so unsaved items are included.
type FormulaSuggestionRequest struct {
	SessionID  string `json:"sessionId"`
	TemplateID string `json:"templateId"`
	Goal       string `json:"goal"`
}

// SuggestTemplate handles POST /v1/ai/templates
func (h *SuggestionHandler) SuggestTemplate(w http.ResponseWriter, r *http.Request) {
	if middleware.GetHostID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TemplateSuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	suggestion, err := h.suggestionSvc.SuggestTemplate(r.Context(), req.Prompt)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestion)
}

// SuggestFormula handles POST /v1/ai/formulas
func (h *SuggestionHandler) SuggestFormula(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FormulaSuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var t model.Template
	switch {
	case req.SessionID != "":
		sess, err := h.editorSvc.Get(r.Context(), hostID, req.SessionID)
		if err != nil {
			writeServiceError(w, h.log, err)
			return
		}
		t = sess.Template
	case req.TemplateID != "":
		stored, err := h.templateSvc.Get(r.Context(), hostID, req.TemplateID)
		if err != nil {
			writeServiceError(w, h.log, err)
			return
		}
		t = *stored
	default:
		writeError(w, http.StatusBadRequest, "sessionId or templateId is required")
		return
	}

	suggestion, err := h.suggestionSvc.SuggestFormula(r.Context(), t, req.Goal)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestion)
}
