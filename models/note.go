package models

import (
	"github.com/google/uuid"
)

// NoteRecord is a row of the notes table. Tags is only populated when the
// caller asked the repository to load them.
type NoteRecord struct {
	ID    uuid.UUID
	Title string
	Tags  []TagRecord
}

// Note is the API representation of a note.
type Note struct {
	ID    uuid.UUID `json:"id" readOnly:"true" swaggertype:"string" format:"uuid"`
	Title string    `json:"title" example:"Groceries"`
	Tags  []Tag     `json:"tags"`
}

// NoteCreate is the accepted body for creating a note. Identity and tags are
// assigned by the server and never read from input.
type NoteCreate struct {
	Title string `json:"title"`
}

// NoteUpdate is a partial update; a nil Title leaves the stored title alone.
type NoteUpdate struct {
	Title *string `json:"title,omitempty"`
}

// NoteFromRecord builds the API shape of a stored note.
func NoteFromRecord(rec NoteRecord) Note {
	tags := make([]Tag, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		tags = append(tags, TagFromRecord(t))
	}
	return Note{ID: rec.ID, Title: rec.Title, Tags: tags}
}

// NotesFromRecords maps a page of records, never returning nil.
func NotesFromRecords(recs []NoteRecord) []Note {
	notes := make([]Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, NoteFromRecord(rec))
	}
	return notes
}

// Record returns a new, identity-less record for insertion.
func (c NoteCreate) Record() NoteRecord {
	return NoteRecord{Title: c.Title}
}

// IsEmpty reports whether the update carries no fields.
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil
}

// Apply copies the supplied fields onto rec.
func (u NoteUpdate) Apply(rec *NoteRecord) {
	if u.Title != nil {
		rec.Title = *u.Title
	}
}

// DecodeNoteCreate reads a NoteCreate body. Title must be present and a string.
func DecodeNoteCreate(body []byte) (NoteCreate, error) {
	var raw struct {
		Title *string `json:"title"`
	}
	if err := decodeBody(body, &raw, false); err != nil {
		return NoteCreate{}, err
	}
	if raw.Title == nil {
		return NoteCreate{}, requiredField("title")
	}
	return NoteCreate{Title: *raw.Title}, nil
}

// DecodeNoteUpdate reads a NoteUpdate body. An empty body is a valid no-op.
func DecodeNoteUpdate(body []byte) (NoteUpdate, error) {
	var u NoteUpdate
	if err := decodeBody(body, &u, true); err != nil {
		return NoteUpdate{}, err
	}
	return u, nil
}
