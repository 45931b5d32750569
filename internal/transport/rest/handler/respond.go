package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"evalforge/internal/editor"
	"evalforge/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses. Anything unrecognised is an
// I/O failure: it is logged and reported without details.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, editor.ErrDuplicateVariableID),
		errors.Is(err, editor.ErrDragInProgress):
		status = http.StatusConflict
	case errors.Is(err, editor.ErrUnknownItemType),
		errors.Is(err, editor.ErrIndexOutOfRange),
		errors.Is(err, editor.ErrConfigMismatch),
		errors.Is(err, editor.ErrInvalidDragSource),
		errors.Is(err, editor.ErrInvalidTemplate),
		errors.Is(err, service.ErrMissingAnswer),
		errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, service.ErrEmptyPrompt),
		errors.Is(err, service.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrAIUnavailable):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
		if status == http.StatusInternalServerError {
			writeError(w, status, "internal server error")
			return
		}
	}
	writeError(w, status, err.Error())
}

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// decodeOptionalJSON treats an empty body as an empty object
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
