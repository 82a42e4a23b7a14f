package handlers

import (
	"net/http"

	"notesapi/logger"

	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"
)

// RegisterDocsRoutes serves the registered OpenAPI document.
func RegisterDocsRoutes(r chi.Router) {
	r.Get("/swagger/doc.json", swaggerDocHandler)
}

func swaggerDocHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		logger.Error("swaggerDocHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		logger.Error("swaggerDocHandler: writing response: %v", err)
	}
}
