package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"notesapi/core"
	"notesapi/errs"
	"notesapi/logger"
	"notesapi/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; titles are short.
const maxBodyBytes = 1 << 20

// Deps are the services the route groups are built from.
type Deps struct {
	Notes        *core.NoteService
	Tags         *core.TagService
	DefaultLimit int
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("writeJSON: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Message: message})
}

// writeServiceError maps a coded error onto its HTTP status. Server-side
// failures are logged with their cause; the client only sees a generic message.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := errs.HTTPStatus(errs.CodeOf(err))
	if status >= http.StatusInternalServerError {
		logger.Error("%s: %v", op, err)
	} else {
		logger.Debug("%s: %v", op, err)
	}
	writeError(w, status, errs.MessageOf(err))
}

// NotFoundHandler answers unknown routes with a JSON 404.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Unhandled route: %s %s", r.Method, r.URL.Path)
	writeError(w, http.StatusNotFound, fmt.Sprintf("%s %s: no such route", r.Method, r.URL.Path))
}

// MethodNotAllowedHandler answers known routes used with the wrong method.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.Newf(errs.Validation, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errs.Wrap(errs.Validation, "reading request body", err)
	}
	return body, nil
}

// pathID parses a chi URL parameter as an identity.
func pathID(r *http.Request, param string) (uuid.UUID, error) {
	return models.ParseID(chi.URLParam(r, param))
}

// parsePagination reads limit and offset. Absent values fall back to
// defaultLimit and zero; anything that is not a non-negative integer is a
// validation error.
func parsePagination(r *http.Request, defaultLimit int) (limit, offset int, err error) {
	limit, err = queryInt(r, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	offset, err = queryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errs.Newf(errs.Validation, "%s must be a non-negative integer, got %q", name, raw)
	}
	return v, nil
}
