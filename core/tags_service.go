package core

import (
	"context"

	"notesapi/database"
	"notesapi/logger"
	"notesapi/models"

	"github.com/google/uuid"
)

// TagService manages tags. Deleting a tag detaches it from every note.
type TagService struct {
	store *database.Store
}

func NewTagService(store *database.Store) *TagService {
	return &TagService{store: store}
}

func (s *TagService) List(ctx context.Context, limit, offset int) (models.Page[models.Tag], error) {
	var page models.Page[models.Tag]
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		recs, total, err := sess.Tags.ListAndCount(ctx, limit, offset)
		if err != nil {
			return err
		}
		page = models.Page[models.Tag]{Items: models.TagsFromRecords(recs), Total: total, Limit: limit, Offset: offset}
		return nil
	})
	return page, err
}

func (s *TagService) Create(ctx context.Context, in models.TagCreate) (models.Tag, error) {
	var rec models.TagRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		var err error
		rec, err = sess.Tags.Add(ctx, in.Record())
		return err
	})
	if err != nil {
		return models.Tag{}, err
	}
	logger.Info("TagService: created tag %s", rec.ID)
	return models.TagFromRecord(rec), nil
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (models.Tag, error) {
	var rec models.TagRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		var err error
		rec, err = sess.Tags.Get(ctx, id)
		return err
	})
	if err != nil {
		return models.Tag{}, err
	}
	return models.TagFromRecord(rec), nil
}

func (s *TagService) Update(ctx context.Context, id uuid.UUID, in models.TagUpdate) (models.Tag, error) {
	var rec models.TagRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		var err error
		rec, err = sess.Tags.Get(ctx, id)
		if err != nil || in.Title == nil {
			return err
		}
		in.Apply(&rec)
		rec, err = sess.Tags.Update(ctx, rec)
		return err
	})
	if err != nil {
		return models.Tag{}, err
	}
	return models.TagFromRecord(rec), nil
}

func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		return sess.Tags.Delete(ctx, id)
	})
	if err == nil {
		logger.Info("TagService: deleted tag %s and its note associations", id)
	}
	return err
}

// Notes lists the notes carrying the tag, each with its full tag set.
func (s *TagService) Notes(ctx context.Context, id uuid.UUID) ([]models.Note, error) {
	var recs []models.NoteRecord
	err := s.store.InSession(ctx, func(sess *database.Session) error {
		if _, err := sess.Tags.Get(ctx, id); err != nil {
			return err
		}
		var err error
		recs, err = sess.Notes.ListByTag(ctx, id, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.NotesFromRecords(recs), nil
}
