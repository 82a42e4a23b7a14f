package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterTagRoutes sets up the routes for tag management.
func RegisterTagRoutes(r chi.Router, deps Deps) {
	h := &TagHandlers{tags: deps.Tags, defaultLimit: deps.DefaultLimit}

	r.Route("/tags", func(subRouter chi.Router) {
		subRouter.Get("/", h.ListTags)
		subRouter.Post("/", h.CreateTag)

		subRouter.Route("/{tagID}", func(item chi.Router) {
			item.Get("/", h.GetTag)
			item.Patch("/", h.UpdateTag)
			item.Delete("/", h.DeleteTag)
			item.Get("/notes", h.ListTagNotes)
		})
	})
}
