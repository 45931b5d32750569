package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"evalforge/internal/service"
	"evalforge/internal/transport/rest/middleware"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
	log       *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, log: log}
}

// Get handles GET /v1/templates/{templateId}/report
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["templateId"]
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.reportSvc.GetReport(r.Context(), hostID, templateID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
