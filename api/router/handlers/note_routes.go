package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterNoteRoutes sets up the routes for note management.
func RegisterNoteRoutes(r chi.Router, deps Deps) {
	h := &NoteHandlers{notes: deps.Notes, defaultLimit: deps.DefaultLimit}

	r.Route("/notes", func(subRouter chi.Router) {
		subRouter.Get("/", h.ListNotes)
		subRouter.Post("/", h.CreateNote)

		subRouter.Route("/{noteID}", func(item chi.Router) {
			item.Get("/", h.GetNote)
			item.Patch("/", h.UpdateNote)
			item.Delete("/", h.DeleteNote)

			item.Put("/tags/{tagID}", h.AttachTag)
			item.Delete("/tags/{tagID}", h.DetachTag)
		})
	})
}
