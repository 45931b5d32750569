package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"evalforge/internal/model"
	"evalforge/internal/service"
	"evalforge/internal/transport/rest/middleware"
)

// TemplateHandler handles template endpoints
type TemplateHandler struct {
	templateSvc *service.TemplateService
	responseSvc *service.ResponseService
	log         *zap.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateSvc *service.TemplateService, responseSvc *service.ResponseService, log *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateSvc: templateSvc,
		responseSvc: responseSvc,
		log:         log,
	}
}

// Create handles POST /v1/templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var t model.Template
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	t.ID = ""

	saved, err := h.templateSvc.Save(r.Context(), hostID, t)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// Update handles PUT /v1/templates/{templateId}
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["templateId"]
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var t model.Template
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	t.ID = templateID

	saved, err := h.templateSvc.Save(r.Context(), hostID, t)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// Get handles GET /v1/templates/{templateId}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["templateId"]
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	t, err := h.templateSvc.Get(r.Context(), hostID, templateID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// List handles GET /v1/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	templates, err := h.templateSvc.List(r.Context(), hostID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

// Delete handles DELETE /v1/templates/{templateId}
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["templateId"]
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.templateSvc.Delete(r.Context(), hostID, templateID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if err := h.responseSvc.DeleteForTemplate(r.Context(), templateID); err != nil {
		h.log.Warn("template deleted but responses remain", zap.String("templateId", templateID), zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}
