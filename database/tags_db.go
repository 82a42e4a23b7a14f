package database

import (
	"context"
	"fmt"
	"strings"

	"notesapi/errs"
	"notesapi/models"

	"github.com/google/uuid"
)

var tagsTable = Table[models.TagRecord]{
	Name:    "tags",
	Entity:  "tag",
	Columns: []string{"id", "title"},
	Scan: func(row rowScanner) (models.TagRecord, error) {
		var t models.TagRecord
		err := row.Scan(&t.ID, &t.Title)
		return t, err
	},
	Values: func(t models.TagRecord) []any {
		return []any{t.ID, t.Title}
	},
	Identity: func(t *models.TagRecord) *uuid.UUID { return &t.ID },
}

// TagRepository stores tags. Deleting a tag removes its note_tags rows but
// never the notes themselves.
type TagRepository struct {
	*Repository[models.TagRecord]
}

func NewTagRepository(db DBTX) *TagRepository {
	return &TagRepository{Repository: NewRepository(db, tagsTable)}
}

// AssociationRepository manages note_tags rows keyed by (note_id, tag_id).
type AssociationRepository struct {
	db DBTX
}

func NewAssociationRepository(db DBTX) *AssociationRepository {
	return &AssociationRepository{db: db}
}

// Link associates a note with a tag. Linking an existing pair is a no-op.
func (r *AssociationRepository) Link(ctx context.Context, noteID, tagID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)", noteID, tagID)
	if err != nil {
		return translateErr(err, fmt.Sprintf("linking note %s to tag %s", noteID, tagID))
	}
	return nil
}

// Unlink removes the pair, failing with NotFound when it was not present.
func (r *AssociationRepository) Unlink(ctx context.Context, noteID, tagID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?", noteID, tagID)
	if err != nil {
		return fmt.Errorf("unlinking note %s from tag %s: %w", noteID, tagID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected unlinking note %s: %w", noteID, err)
	}
	if n == 0 {
		return errs.Newf(errs.NotFound, "note %s is not tagged with %s", noteID, tagID)
	}
	return nil
}

// maxTagBatch caps the identities bound per TagsFor query, well under
// SQLite's limit on host parameters.
var maxTagBatch = 500

// TagsFor loads the tags of every given note, one query per batch of
// maxTagBatch notes. Each note's tags come back in the order they were
// attached. Notes without tags are absent from the result.
func (r *AssociationRepository) TagsFor(ctx context.Context, noteIDs ...uuid.UUID) (map[uuid.UUID][]models.TagRecord, error) {
	byNote := make(map[uuid.UUID][]models.TagRecord, len(noteIDs))
	for start := 0; start < len(noteIDs); start += maxTagBatch {
		end := min(start+maxTagBatch, len(noteIDs))
		if err := r.tagsForBatch(ctx, noteIDs[start:end], byNote); err != nil {
			return nil, err
		}
	}
	return byNote, nil
}

func (r *AssociationRepository) tagsForBatch(ctx context.Context, noteIDs []uuid.UUID, byNote map[uuid.UUID][]models.TagRecord) error {
	args := make([]any, len(noteIDs))
	for i, id := range noteIDs {
		args[i] = id
	}
	query := fmt.Sprintf(`
		SELECT nt.note_id, t.id, t.title
		FROM note_tags nt
		JOIN tags t ON t.id = nt.tag_id
		WHERE nt.note_id IN (%s)
		ORDER BY nt.rowid ASC`, strings.TrimSuffix(strings.Repeat("?, ", len(noteIDs)), ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying tags for notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID uuid.UUID
		var tag models.TagRecord
		if err := rows.Scan(&noteID, &tag.ID, &tag.Title); err != nil {
			return fmt.Errorf("scanning note tag row: %w", err)
		}
		byNote[noteID] = append(byNote[noteID], tag)
	}
	return rows.Err()
}

// Count returns the number of association rows.
func (r *AssociationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM note_tags").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting note tags: %w", err)
	}
	return n, nil
}
