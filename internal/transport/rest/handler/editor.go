package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"evalforge/internal/editor"
	"evalforge/internal/model"
	"evalforge/internal/service"
	"evalforge/internal/transport/rest/middleware"
)

// EditorHandler handles editor session endpoints. Every command answers with the
// session as it stands after the command.
type EditorHandler struct {
	editorSvc *service.EditorService
	log       *zap.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorSvc *service.EditorService, log *zap.Logger) *EditorHandler {
	return &EditorHandler{
		editorSvc: editorSvc,
		log:       log,
	}
}

// OpenSessionRequest opens a stored template, or the default template when TemplateID is empty
type OpenSessionRequest struct {
	TemplateID string `json:"templateId"`
}

type AddItemRequest struct {
	Type  model.ItemType `json:"type"`
	Label string         `json:"label"`
}

type MoveItemRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type SelectRequest struct {
	ItemID string `json:"itemId"`
}

type DragStartRequest struct {
	Source string `json:"source"`
}

type DropRequest struct {
	Target string `json:"target"`
}

type ImportRequest struct {
	Suggestion model.TemplateSuggestion `json:"suggestion"`
	Mode       editor.ImportMode        `json:"mode"`
}

// Open handles POST /v1/editor/sessions
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req OpenSessionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.editorSvc.Open(r.Context(), hostID, req.TemplateID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// List handles GET /v1/editor/sessions
func (h *EditorHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ids, err := h.editorSvc.List(r.Context(), hostID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": ids})
}

// Get handles GET /v1/editor/sessions/{sessionId}
func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sess, err := h.editorSvc.Get(r.Context(), hostID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// Close handles DELETE /v1/editor/sessions/{sessionId}
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.editorSvc.Close(r.Context(), hostID, mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// run decodes body into req (when non-nil) and executes one editor command
func (h *EditorHandler) run(w http.ResponseWriter, r *http.Request, req interface{},
	cmd func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error)) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if req != nil {
		if err := decodeJSON(r, req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	res, err := cmd(r.Context(), hostID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// AddItem handles POST /v1/editor/sessions/{sessionId}/items
func (h *EditorHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	h.run(w, r, &req, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.AddItem(ctx, hostID, sessionID, req.Type, req.Label)
	})
}

// UpdateItem handles PATCH /v1/editor/sessions/{sessionId}/items/{itemId}
func (h *EditorHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch editor.ItemPatch
	itemID := mux.Vars(r)["itemId"]
	h.run(w, r, &patch, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.UpdateItem(ctx, hostID, sessionID, itemID, patch)
	})
}

// DeleteItem handles DELETE /v1/editor/sessions/{sessionId}/items/{itemId}
func (h *EditorHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]
	h.run(w, r, nil, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.DeleteItem(ctx, hostID, sessionID, itemID)
	})
}

// MoveItem handles POST /v1/editor/sessions/{sessionId}/move
func (h *EditorHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req MoveItemRequest
	h.run(w, r, &req, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.MoveItem(ctx, hostID, sessionID, req.From, req.To)
	})
}

// UpdateMetadata handles PATCH /v1/editor/sessions/{sessionId}/metadata
func (h *EditorHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	var patch editor.MetadataPatch
	h.run(w, r, &patch, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.UpdateMetadata(ctx, hostID, sessionID, patch)
	})
}

// Select handles POST /v1/editor/sessions/{sessionId}/select
func (h *EditorHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	h.run(w, r, &req, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.Select(ctx, hostID, sessionID, req.ItemID)
	})
}

// DragStart handles POST /v1/editor/sessions/{sessionId}/drag/start
func (h *EditorHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req DragStartRequest
	h.run(w, r, &req, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.BeginDrag(ctx, hostID, sessionID, req.Source)
	})
}

// Drop handles POST /v1/editor/sessions/{sessionId}/drag/drop
func (h *EditorHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req DropRequest
	h.run(w, r, &req, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.Drop(ctx, hostID, sessionID, req.Target)
	})
}

// DragCancel handles POST /v1/editor/sessions/{sessionId}/drag/cancel
func (h *EditorHandler) DragCancel(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, nil, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.CancelDrag(ctx, hostID, sessionID)
	})
}

// Import handles POST /v1/editor/sessions/{sessionId}/import
func (h *EditorHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	h.run(w, r, &req, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		mode := req.Mode
		if mode == "" {
			mode = editor.ImportAppend
		}
		return h.editorSvc.Import(ctx, hostID, sessionID, req.Suggestion, mode)
	})
}

// Save handles POST /v1/editor/sessions/{sessionId}/save
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, nil, func(ctx context.Context, hostID, sessionID string) (*service.CommandResult, error) {
		return h.editorSvc.Save(ctx, hostID, sessionID)
	})
}
