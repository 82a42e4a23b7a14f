package handlers

import (
	"net/http"

	"notesapi/core"
	"notesapi/logger"
	"notesapi/models"
)

// NoteHandlers serves the /notes resource.
type NoteHandlers struct {
	notes        *core.NoteService
	defaultLimit int
}

// ListNotes handles GET /notes.
// @Summary List notes
// @Description Returns one page of notes, each with its tags, plus the total number of notes.
// @Tags Notes
// @Produce json
// @Param limit query int false "Page size (default 20)" minimum(0)
// @Param offset query int false "Number of notes to skip" minimum(0)
// @Success 200 {object} models.NotePage
// @Failure 400 {object} models.ErrorResponse
// @Router /notes [get]
func (h *NoteHandlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r, h.defaultLimit)
	if err != nil {
		writeServiceError(w, "ListNotes", err)
		return
	}

	page, err := h.notes.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, "ListNotes", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateNote handles POST /notes.
// @Summary Create a note
// @Tags Notes
// @Accept json
// @Produce json
// @Param note body models.NoteCreate true "Note to create"
// @Success 201 {object} models.Note
// @Failure 400 {object} models.ErrorResponse
// @Router /notes [post]
func (h *NoteHandlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeServiceError(w, "CreateNote", err)
		return
	}
	in, err := models.DecodeNoteCreate(body)
	if err != nil {
		writeServiceError(w, "CreateNote", err)
		return
	}

	note, err := h.notes.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, "CreateNote", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /notes/{noteID}.
// @Summary Get a note
// @Tags Notes
// @Produce json
// @Param noteID path string true "Note ID" format(uuid)
// @Success 200 {object} models.Note
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notes/{noteID} [get]
func (h *NoteHandlers) GetNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeServiceError(w, "GetNote", err)
		return
	}

	note, err := h.notes.Get(r.Context(), noteID)
	if err != nil {
		writeServiceError(w, "GetNote", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PATCH /notes/{noteID}. Omitted fields keep their value;
// an empty body is a no-op that still returns the note.
// @Summary Update a note
// @Tags Notes
// @Accept json
// @Produce json
// @Param noteID path string true "Note ID" format(uuid)
// @Param note body models.NoteUpdate false "Fields to change"
// @Success 200 {object} models.Note
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notes/{noteID} [patch]
func (h *NoteHandlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeServiceError(w, "UpdateNote", err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeServiceError(w, "UpdateNote", err)
		return
	}
	in, err := models.DecodeNoteUpdate(body)
	if err != nil {
		writeServiceError(w, "UpdateNote", err)
		return
	}

	note, err := h.notes.Update(r.Context(), noteID, in)
	if err != nil {
		writeServiceError(w, "UpdateNote", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{noteID}.
// @Summary Delete a note
// @Description Removes the note and its tag associations. Tags themselves are kept.
// @Tags Notes
// @Param noteID path string true "Note ID" format(uuid)
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notes/{noteID} [delete]
func (h *NoteHandlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeServiceError(w, "DeleteNote", err)
		return
	}

	if err := h.notes.Delete(r.Context(), noteID); err != nil {
		writeServiceError(w, "DeleteNote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachTag handles PUT /notes/{noteID}/tags/{tagID}.
// @Summary Tag a note
// @Tags Notes
// @Produce json
// @Param noteID path string true "Note ID" format(uuid)
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 200 {object} models.Note
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notes/{noteID}/tags/{tagID} [put]
func (h *NoteHandlers) AttachTag(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeServiceError(w, "AttachTag", err)
		return
	}
	tagID, err := pathID(r, "tagID")
	if err != nil {
		writeServiceError(w, "AttachTag", err)
		return
	}

	note, err := h.notes.AttachTag(r.Context(), noteID, tagID)
	if err != nil {
		writeServiceError(w, "AttachTag", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
	logger.Info("AttachTag: tagged note %s with %s", noteID, tagID)
}

// DetachTag handles DELETE /notes/{noteID}/tags/{tagID}.
// @Summary Untag a note
// @Tags Notes
// @Param noteID path string true "Note ID" format(uuid)
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notes/{noteID}/tags/{tagID} [delete]
func (h *NoteHandlers) DetachTag(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "noteID")
	if err != nil {
		writeServiceError(w, "DetachTag", err)
		return
	}
	tagID, err := pathID(r, "tagID")
	if err != nil {
		writeServiceError(w, "DetachTag", err)
		return
	}

	if err := h.notes.DetachTag(r.Context(), noteID, tagID); err != nil {
		writeServiceError(w, "DetachTag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("DetachTag: removed tag %s from note %s", tagID, noteID)
}
