package database

import (
	"context"
	"fmt"

	"notesapi/models"

	"github.com/google/uuid"
)

var notesTable = Table[models.NoteRecord]{
	Name:    "notes",
	Entity:  "note",
	Columns: []string{"id", "title"},
	Scan: func(row rowScanner) (models.NoteRecord, error) {
		var n models.NoteRecord
		err := row.Scan(&n.ID, &n.Title)
		return n, err
	},
	Values: func(n models.NoteRecord) []any {
		return []any{n.ID, n.Title}
	},
	Identity: func(n *models.NoteRecord) *uuid.UUID { return &n.ID },
}

// NoteRepository stores notes. Reads take includeTags to choose between the
// plain row and the row with its tags loaded in one extra query per call.
type NoteRepository struct {
	rows  *Repository[models.NoteRecord]
	assoc *AssociationRepository
}

func NewNoteRepository(db DBTX, assoc *AssociationRepository) *NoteRepository {
	return &NoteRepository{rows: NewRepository(db, notesTable), assoc: assoc}
}

func (r *NoteRepository) Get(ctx context.Context, id uuid.UUID, includeTags bool) (models.NoteRecord, error) {
	note, err := r.rows.Get(ctx, id)
	if err != nil || !includeTags {
		return note, err
	}
	notes := []models.NoteRecord{note}
	if err := r.loadTags(ctx, notes); err != nil {
		return note, err
	}
	return notes[0], nil
}

func (r *NoteRepository) ListAndCount(ctx context.Context, limit, offset int, includeTags bool) ([]models.NoteRecord, int64, error) {
	notes, total, err := r.rows.ListAndCount(ctx, limit, offset)
	if err != nil || !includeTags {
		return notes, total, err
	}
	if err := r.loadTags(ctx, notes); err != nil {
		return nil, total, err
	}
	return notes, total, nil
}

// ListByTag returns every note carrying tagID, in association order.
func (r *NoteRepository) ListByTag(ctx context.Context, tagID uuid.UUID, includeTags bool) ([]models.NoteRecord, error) {
	rows, err := r.rows.db.QueryContext(ctx, `
		SELECT n.id, n.title
		FROM notes n
		JOIN note_tags nt ON nt.note_id = n.id
		WHERE nt.tag_id = ?
		ORDER BY nt.rowid ASC`, tagID)
	if err != nil {
		return nil, fmt.Errorf("querying notes for tag %s: %w", tagID, err)
	}
	defer rows.Close()

	notes := make([]models.NoteRecord, 0)
	for rows.Next() {
		note, err := notesTable.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if includeTags {
		if err := r.loadTags(ctx, notes); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

func (r *NoteRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.rows.Exists(ctx, id)
}

// Add inserts the note. Tags on rec are ignored; associations are made with
// AssociationRepository.Link.
func (r *NoteRepository) Add(ctx context.Context, rec models.NoteRecord) (models.NoteRecord, error) {
	rec.Tags = nil
	return r.rows.Add(ctx, rec)
}

// Update writes the title. Associations are left untouched.
func (r *NoteRepository) Update(ctx context.Context, rec models.NoteRecord) (models.NoteRecord, error) {
	return r.rows.Update(ctx, rec)
}

func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rows.Delete(ctx, id)
}

func (r *NoteRepository) loadTags(ctx context.Context, notes []models.NoteRecord) error {
	ids := make([]uuid.UUID, len(notes))
	for i := range notes {
		ids[i] = notes[i].ID
	}
	byNote, err := r.assoc.TagsFor(ctx, ids...)
	if err != nil {
		return err
	}
	for i := range notes {
		tags := byNote[notes[i].ID]
		if tags == nil {
			tags = []models.TagRecord{}
		}
		notes[i].Tags = tags
	}
	return nil
}
