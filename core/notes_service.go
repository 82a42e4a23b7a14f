package core

import (
	"context"

	"notesapi/database"
	"notesapi/logger"
	"notesapi/models"

	"github.com/google/uuid"
)

// NoteService runs every operation in its own database session: validated
// input goes in, the session commits, and a freshly built API shape comes out.
type NoteService struct {
	store *database.Store
}

func NewNoteService(store *database.Store) *NoteService {
	return &NoteService{store: store}
}

// List returns one page of notes with their tags.
func (s *NoteService) List(ctx context.Context, limit, offset int) (models.Page[models.Note], error) {
	var page models.Page[models.Note]
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		recs, total, err := sess.Notes.ListAndCount(ctx, limit, offset, true)
		if err != nil {
			return err
		}
		page = models.Page[models.Note]{
			Items:  models.NotesFromRecords(recs),
			Total:  total,
			Limit:  limit,
			Offset: offset,
		}
		return nil
	})
	return page, err
}

// Create stores a new note. It never has tags yet.
func (s *NoteService) Create(ctx context.Context, in models.NoteCreate) (models.Note, error) {
	var rec models.NoteRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		var err error
		rec, err = sess.Notes.Add(ctx, in.Record())
		return err
	})
	if err != nil {
		return models.Note{}, err
	}
	logger.Info("NoteService: created note %s", rec.ID)
	return models.NoteFromRecord(rec), nil
}

// Get returns the note with its tags.
func (s *NoteService) Get(ctx context.Context, id uuid.UUID) (models.Note, error) {
	var rec models.NoteRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		var err error
		rec, err = sess.Notes.Get(ctx, id, true)
		return err
	})
	if err != nil {
		return models.Note{}, err
	}
	return models.NoteFromRecord(rec), nil
}

// Update applies the supplied fields. An empty update succeeds and returns
// the note unchanged.
func (s *NoteService) Update(ctx context.Context, id uuid.UUID, in models.NoteUpdate) (models.Note, error) {
	var rec models.NoteRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		var err error
		rec, err = sess.Notes.Get(ctx, id, true)
		if err != nil || in.IsEmpty() {
			return err
		}
		in.Apply(&rec)
		rec, err = sess.Notes.Update(ctx, rec)
		return err
	})
	if err != nil {
		return models.Note{}, err
	}
	logger.Debug("NoteService: updated note %s", id)
	return models.NoteFromRecord(rec), nil
}

// Delete removes the note and its tag associations.
func (s *NoteService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		return sess.Notes.Delete(ctx, id)
	})
	if err == nil {
		logger.Info("NoteService: deleted note %s", id)
	}
	return err
}

// AttachTag associates an existing tag with an existing note and returns the
// note with its tags. Attaching twice is harmless.
func (s *NoteService) AttachTag(ctx context.Context, noteID, tagID uuid.UUID) (models.Note, error) {
	var rec models.NoteRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		if err := requireNoteAndTag(ctx, sess, noteID, tagID); err != nil {
			return err
		}
		if err := sess.Associations.Link(ctx, noteID, tagID); err != nil {
			return err
		}
		var err error
		rec, err = sess.Notes.Get(ctx, noteID, true)
		return err
	})
	if err != nil {
		return models.Note{}, err
	}
	return models.NoteFromRecord(rec), nil
}

// DetachTag removes one association.
func (s *NoteService) DetachTag(ctx context.Context, noteID, tagID uuid.UUID) error {
	return s.store.InSession(ctx, func(sess *database.Session) error {
		if err := requireNoteAndTag(ctx, sess, noteID, tagID); err != nil {
			return err
		}
		return sess.Associations.Unlink(ctx, noteID, tagID)
	})
}

func requireNoteAndTag(ctx context.Context, sess *database.Session, noteID, tagID uuid.UUID) error {
	if _, err := sess.Notes.Get(ctx, noteID, false); err != nil {
		return err
	}
	_, err := sess.Tags.Get(ctx, tagID)
	return err
}
