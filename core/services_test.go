package core

import (
	"context"
	"testing"

	"notesapi/database/testdb"
	"notesapi/errs"
	"notesapi/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newServices(t *testing.T) (*NoteService, *TagService) {
	t.Helper()
	store := testdb.NewInMemory(t)
	t.Cleanup(func() { store.Close() })
	return NewNoteService(store), NewTagService(store)
}

func titleGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9 ]{0,40}`)
}

func testCreateGetRoundtrip(t *rapid.T) {
	store := testdb.NewInMemory(t)
	defer store.Close()
	notes := NewNoteService(store)
	ctx := context.Background()

	title := titleGenerator().Draw(t, "title")
	created, err := notes.Create(ctx, models.NoteCreate{Title: title})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("created note has no identity")
	}
	if created.Title != title || created.Tags == nil || len(created.Tags) != 0 {
		t.Fatalf("unexpected created note: %+v", created)
	}

	got, err := notes.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != created.ID || got.Title != title {
		t.Fatalf("Get mismatch: got %+v want %+v", got, created)
	}

	newTitle := titleGenerator().Draw(t, "newTitle")
	updated, err := notes.Update(ctx, created.ID, models.NoteUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != created.ID || updated.Title != newTitle {
		t.Fatalf("Update mismatch: %+v", updated)
	}

	unchanged, err := notes.Update(ctx, created.ID, models.NoteUpdate{})
	if err != nil {
		t.Fatalf("empty Update failed: %v", err)
	}
	if unchanged.Title != newTitle {
		t.Fatalf("empty update changed title: %q", unchanged.Title)
	}

	if err := notes.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := notes.Get(ctx, created.ID); !errs.Is(err, errs.NotFound) {
		t.Fatalf("Get after Delete: want not found, got %v", err)
	}
}

func TestCreateGetRoundtrip_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testCreateGetRoundtrip)
}

func testPagination(t *rapid.T) {
	store := testdb.NewInMemory(t)
	defer store.Close()
	notes := NewNoteService(store)
	ctx := context.Background()

	n := rapid.IntRange(0, 15).Draw(t, "n")
	limit := rapid.IntRange(0, 20).Draw(t, "limit")
	offset := rapid.IntRange(0, 20).Draw(t, "offset")

	for i := 0; i < n; i++ {
		if _, err := notes.Create(ctx, models.NoteCreate{Title: "note"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	page, err := notes.List(ctx, limit, offset)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := min(limit, max(0, n-offset))
	if len(page.Items) != want {
		t.Fatalf("items: got %d want %d (n=%d limit=%d offset=%d)", len(page.Items), want, n, limit, offset)
	}
	if page.Total != int64(n) {
		t.Fatalf("total: got %d want %d", page.Total, n)
	}
	if page.Limit != limit || page.Offset != offset {
		t.Fatalf("envelope echoes wrong window: %+v", page)
	}
}

func TestPagination_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testPagination)
}

func TestNoteService_NotFound(t *testing.T) {
	notes, _ := newServices(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := notes.Get(ctx, missing)
	assert.True(t, errs.Is(err, errs.NotFound))

	title := "x"
	_, err = notes.Update(ctx, missing, models.NoteUpdate{Title: &title})
	assert.True(t, errs.Is(err, errs.NotFound))

	_, err = notes.Update(ctx, missing, models.NoteUpdate{})
	assert.True(t, errs.Is(err, errs.NotFound), "a no-op update still needs the note to exist")

	assert.True(t, errs.Is(notes.Delete(ctx, missing), errs.NotFound))
}

func TestNoteService_ListRejectsNegativeWindow(t *testing.T) {
	notes, tags := newServices(t)
	_, err := notes.List(context.Background(), -1, 0)
	assert.True(t, errs.Is(err, errs.Validation))
	_, err = tags.List(context.Background(), 0, -5)
	assert.True(t, errs.Is(err, errs.Validation))
}

func TestTags_AttachUpdateKeepsTags(t *testing.T) {
	notes, tags := newServices(t)
	ctx := context.Background()

	note, err := notes.Create(ctx, models.NoteCreate{Title: "trip"})
	require.NoError(t, err)
	tag, err := tags.Create(ctx, models.TagCreate{Title: "travel"})
	require.NoError(t, err)

	withTag, err := notes.AttachTag(ctx, note.ID, tag.ID)
	require.NoError(t, err)
	require.Len(t, withTag.Tags, 1)
	assert.Equal(t, tag, withTag.Tags[0])

	_, err = notes.AttachTag(ctx, note.ID, tag.ID)
	require.NoError(t, err)

	title := "road trip"
	updated, err := notes.Update(ctx, note.ID, models.NoteUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "road trip", updated.Title)
	assert.Equal(t, withTag.Tags, updated.Tags, "update leaves tags alone")

	_, err = notes.AttachTag(ctx, note.ID, uuid.New())
	assert.True(t, errs.Is(err, errs.NotFound))
	_, err = notes.AttachTag(ctx, uuid.New(), tag.ID)
	assert.True(t, errs.Is(err, errs.NotFound))

	require.NoError(t, notes.DetachTag(ctx, note.ID, tag.ID))
	assert.True(t, errs.Is(notes.DetachTag(ctx, note.ID, tag.ID), errs.NotFound))

	got, err := notes.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestTags_DeleteSharedTag(t *testing.T) {
	notes, tags := newServices(t)
	ctx := context.Background()

	a, err := notes.Create(ctx, models.NoteCreate{Title: "a"})
	require.NoError(t, err)
	b, err := notes.Create(ctx, models.NoteCreate{Title: "b"})
	require.NoError(t, err)
	tag, err := tags.Create(ctx, models.TagCreate{Title: "shared"})
	require.NoError(t, err)

	_, err = notes.AttachTag(ctx, a.ID, tag.ID)
	require.NoError(t, err)
	_, err = notes.AttachTag(ctx, b.ID, tag.ID)
	require.NoError(t, err)

	tagged, err := tags.Notes(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, a.ID, tagged[0].ID)
	assert.Equal(t, b.ID, tagged[1].ID)

	require.NoError(t, tags.Delete(ctx, tag.ID))

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		got, err := notes.Get(ctx, id)
		require.NoError(t, err, "notes survive tag deletion")
		assert.Empty(t, got.Tags)
	}

	_, err = tags.Get(ctx, tag.ID)
	assert.True(t, errs.Is(err, errs.NotFound))
	_, err = tags.Notes(ctx, tag.ID)
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestTagService_CRUD(t *testing.T) {
	_, tags := newServices(t)
	ctx := context.Background()

	tag, err := tags.Create(ctx, models.TagCreate{Title: "work"})
	require.NoError(t, err)

	same, err := tags.Update(ctx, tag.ID, models.TagUpdate{})
	require.NoError(t, err)
	assert.Equal(t, tag, same)

	title := "job"
	renamed, err := tags.Update(ctx, tag.ID, models.TagUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "job", renamed.Title)

	page, err := tags.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, []models.Tag{renamed}, page.Items)

	require.NoError(t, tags.Delete(ctx, tag.ID))
	assert.True(t, errs.Is(tags.Delete(ctx, tag.ID), errs.NotFound))
}
