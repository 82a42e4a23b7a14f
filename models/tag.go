package models

import (
	"github.com/google/uuid"
)

// TagRecord is a row of the tags table.
type TagRecord struct {
	ID    uuid.UUID
	Title string
}

// Tag represents a single tag that can be applied to notes.
type Tag struct {
	ID    uuid.UUID `json:"id" readOnly:"true" swaggertype:"string" format:"uuid"`
	Title string    `json:"title" example:"shopping"`
}

// TagCreate is the accepted body for creating a tag.
type TagCreate struct {
	Title string `json:"title"`
}

// TagUpdate is a partial tag update.
type TagUpdate struct {
	Title *string `json:"title,omitempty"`
}

func TagFromRecord(rec TagRecord) Tag {
	return Tag{ID: rec.ID, Title: rec.Title}
}

func TagsFromRecords(recs []TagRecord) []Tag {
	tags := make([]Tag, 0, len(recs))
	for _, rec := range recs {
		tags = append(tags, TagFromRecord(rec))
	}
	return tags
}

func (c TagCreate) Record() TagRecord {
	return TagRecord{Title: c.Title}
}

func (u TagUpdate) Apply(rec *TagRecord) {
	if u.Title != nil {
		rec.Title = *u.Title
	}
}

// DecodeTagCreate reads a TagCreate body.
func DecodeTagCreate(body []byte) (TagCreate, error) {
	var raw struct {
		Title *string `json:"title"`
	}
	if err := decodeBody(body, &raw, false); err != nil {
		return TagCreate{}, err
	}
	if raw.Title == nil {
		return TagCreate{}, requiredField("title")
	}
	return TagCreate{Title: *raw.Title}, nil
}

// DecodeTagUpdate reads a TagUpdate body.
func DecodeTagUpdate(body []byte) (TagUpdate, error) {
	var u TagUpdate
	if err := decodeBody(body, &u, true); err != nil {
		return TagUpdate{}, err
	}
	return u, nil
}
