package handlers

import (
	"net/http"

	"notesapi/core"
	"notesapi/models"
)

// TagHandlers serves the /tags resource.
type TagHandlers struct {
	tags         *core.TagService
	defaultLimit int
}

// ListTags handles GET /tags.
// @Summary List tags
// @Tags Tags
// @Produce json
// @Param limit query int false "Page size (default 20)" minimum(0)
// @Param offset query int false "Number of tags to skip" minimum(0)
// @Success 200 {object} models.TagPage
// @Failure 400 {object} models.ErrorResponse
// @Router /tags [get]
func (h *TagHandlers) ListTags(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r, h.defaultLimit)
	if err != nil {
		writeServiceError(w, "ListTags", err)
		return
	}

	page, err := h.tags.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, "ListTags", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateTag handles POST /tags.
// @Summary Create a tag
// @Tags Tags
// @Accept json
// @Produce json
// @Param tag body models.TagCreate true "Tag to create"
// @Success 201 {object} models.Tag
// @Failure 400 {object} models.ErrorResponse
// @Router /tags [post]
func (h *TagHandlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeServiceError(w, "CreateTag", err)
		return
	}
	in, err := models.DecodeTagCreate(body)
	if err != nil {
		writeServiceError(w, "CreateTag", err)
		return
	}

	tag, err := h.tags.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, "CreateTag", err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// GetTag handles GET /tags/{tagID}.
// @Summary Get a tag
// @Tags Tags
// @Produce json
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 200 {object} models.Tag
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{tagID} [get]
func (h *TagHandlers) GetTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "tagID")
	if err != nil {
		writeServiceError(w, "GetTag", err)
		return
	}

	tag, err := h.tags.Get(r.Context(), tagID)
	if err != nil {
		writeServiceError(w, "GetTag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// UpdateTag handles PATCH /tags/{tagID}.
// @Summary Rename a tag
// @Tags Tags
// @Accept json
// @Produce json
// @Param tagID path string true "Tag ID" format(uuid)
// @Param tag body models.TagUpdate false "Fields to change"
// @Success 200 {object} models.Tag
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{tagID} [patch]
func (h *TagHandlers) UpdateTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "tagID")
	if err != nil {
		writeServiceError(w, "UpdateTag", err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeServiceError(w, "UpdateTag", err)
		return
	}
	in, err := models.DecodeTagUpdate(body)
	if err != nil {
		writeServiceError(w, "UpdateTag", err)
		return
	}

	tag, err := h.tags.Update(r.Context(), tagID, in)
	if err != nil {
		writeServiceError(w, "UpdateTag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/{tagID}. Notes carrying the tag lose it but
// are otherwise untouched.
// @Summary Delete a tag
// @Tags Tags
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{tagID} [delete]
func (h *TagHandlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "tagID")
	if err != nil {
		writeServiceError(w, "DeleteTag", err)
		return
	}

	if err := h.tags.Delete(r.Context(), tagID); err != nil {
		writeServiceError(w, "DeleteTag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTagNotes handles GET /tags/{tagID}/notes.
// @Summary List notes carrying a tag
// @Tags Tags
// @Produce json
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 200 {array} models.Note
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{tagID}/notes [get]
func (h *TagHandlers) ListTagNotes(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "tagID")
	if err != nil {
		writeServiceError(w, "ListTagNotes", err)
		return
	}

	notes, err := h.tags.Notes(r.Context(), tagID)
	if err != nil {
		writeServiceError(w, "ListTagNotes", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}
