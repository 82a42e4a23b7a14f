package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"notesapi/core"
	"notesapi/database/testdb"
	"notesapi/ratelimit"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := testdb.NewInMemory(t)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewRouter(core.NewNoteService(store), core.NewTagService(store), Options{DefaultLimit: 20}))
	t.Cleanup(srv.Close)
	return srv
}

// do sends a request and returns the status and the decoded body.
func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func createNote(t *testing.T, srv *httptest.Server, title string) string {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/notes", `{"title":"`+title+`"}`)
	require.Equal(t, http.StatusCreated, status, body)
	return gjson.Get(body, "id").String()
}

func createTag(t *testing.T, srv *httptest.Server, title string) string {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/tags", `{"title":"`+title+`"}`)
	require.Equal(t, http.StatusCreated, status, body)
	return gjson.Get(body, "id").String()
}

func TestCreateNote(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, srv, http.MethodPost, "/notes", `{"title":"test title"}`)
	require.Equal(t, http.StatusCreated, status)

	_, err := uuid.Parse(gjson.Get(body, "id").String())
	assert.NoError(t, err, "id must be a UUID")
	assert.Equal(t, "test title", gjson.Get(body, "title").String())
	tags := gjson.Get(body, "tags")
	assert.True(t, tags.IsArray(), "tags must be an array, got %s", tags.Raw)
	assert.Empty(t, tags.Array())
}

func TestCreateNote_Validation(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"missing title": `{}`,
		"wrong type":    `{"title": 7}`,
		"malformed":     `{"title":`,
		"empty body":    ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, resp := do(t, srv, http.MethodPost, "/notes", body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, gjson.Get(resp, "message").String())
		})
	}

	status, body := do(t, srv, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), gjson.Get(body, "total").Int(), "rejected creates store nothing")
}

func TestCreateNote_IgnoresClientIdentity(t *testing.T) {
	srv := newTestServer(t)
	supplied := uuid.New().String()

	status, body := do(t, srv, http.MethodPost, "/notes", `{"id":"`+supplied+`","title":"t","tags":[{"title":"x"}]}`)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEqual(t, supplied, gjson.Get(body, "id").String())
	assert.Empty(t, gjson.Get(body, "tags").Array())
}

func TestNoteRoundtrip(t *testing.T) {
	srv := newTestServer(t)
	id := createNote(t, srv, "first")

	status, body := do(t, srv, http.MethodGet, "/notes/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, gjson.Get(body, "id").String())
	assert.Equal(t, "first", gjson.Get(body, "title").String())

	status, body = do(t, srv, http.MethodPatch, "/notes/"+id, `{"title":"second"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "second", gjson.Get(body, "title").String())

	status, _ = do(t, srv, http.MethodDelete, "/notes/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, srv, http.MethodGet, "/notes/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, gjson.Get(body, "message").String(), "not found")
}

func TestUpdateNote_EmptyBodyIsNoop(t *testing.T) {
	srv := newTestServer(t)
	id := createNote(t, srv, "unchanged")

	for _, body := range []string{``, `{}`, `{"title":null}`} {
		status, resp := do(t, srv, http.MethodPatch, "/notes/"+id, body)
		require.Equal(t, http.StatusOK, status, "body %q", body)
		assert.Equal(t, "unchanged", gjson.Get(resp, "title").String())
	}

	status, _ := do(t, srv, http.MethodPatch, "/notes/"+uuid.New().String(), `{}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteNote_UnknownAndInvalidIDs(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, srv, http.MethodDelete, "/notes/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, gjson.Get(body, "message").String())

	status, body = do(t, srv, http.MethodDelete, "/notes/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, gjson.Get(body, "message").String())
}

func TestListNotes_Pagination(t *testing.T) {
	srv := newTestServer(t)
	var ids []string
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, createNote(t, srv, title))
	}

	status, body := do(t, srv, http.MethodGet, "/notes?limit=2&offset=1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(5), gjson.Get(body, "total").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "limit").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "offset").Int())
	items := gjson.Get(body, "items").Array()
	require.Len(t, items, 2)
	assert.Equal(t, ids[1], items[0].Get("id").String())
	assert.Equal(t, ids[2], items[1].Get("id").String())
	assert.True(t, items[0].Get("tags").IsArray())

	status, body = do(t, srv, http.MethodGet, "/notes?offset=10", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(5), gjson.Get(body, "total").Int())
	assert.Equal(t, "[]", gjson.Get(body, "items").Raw)

	status, body = do(t, srv, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(20), gjson.Get(body, "limit").Int(), "default page size")
	assert.Len(t, gjson.Get(body, "items").Array(), 5)

	for _, q := range []string{"limit=-1", "offset=-3", "limit=abc"} {
		status, _ := do(t, srv, http.MethodGet, "/notes?"+q, "")
		assert.Equal(t, http.StatusBadRequest, status, q)
	}
}

func TestNoteTags_AttachDetach(t *testing.T) {
	srv := newTestServer(t)
	noteID := createNote(t, srv, "n")
	tagID := createTag(t, srv, "t")

	status, body := do(t, srv, http.MethodPut, "/notes/"+noteID+"/tags/"+tagID, "")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, tagID, gjson.Get(body, "tags.0.id").String())
	assert.Equal(t, "t", gjson.Get(body, "tags.0.title").String())

	status, _ = do(t, srv, http.MethodPut, "/notes/"+noteID+"/tags/"+tagID, "")
	require.Equal(t, http.StatusOK, status, "attaching twice is idempotent")

	status, body = do(t, srv, http.MethodPatch, "/notes/"+noteID, `{"title":"renamed"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, gjson.Get(body, "tags").Array(), 1, "title update keeps tags")

	status, body = do(t, srv, http.MethodGet, "/tags/"+tagID+"/notes", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, noteID, gjson.Get(body, "0.id").String())

	status, _ = do(t, srv, http.MethodPut, "/notes/"+noteID+"/tags/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, srv, http.MethodDelete, "/notes/"+noteID+"/tags/"+tagID, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, srv, http.MethodDelete, "/notes/"+noteID+"/tags/"+tagID, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, srv, http.MethodGet, "/notes/"+noteID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", gjson.Get(body, "tags").Raw)
}

func TestDeleteSharedTag(t *testing.T) {
	srv := newTestServer(t)
	n1 := createNote(t, srv, "one")
	n2 := createNote(t, srv, "two")
	shared := createTag(t, srv, "shared")
	other := createTag(t, srv, "other")

	for _, path := range []string{
		"/notes/" + n1 + "/tags/" + shared,
		"/notes/" + n2 + "/tags/" + shared,
		"/notes/" + n1 + "/tags/" + other,
	} {
		status, body := do(t, srv, http.MethodPut, path, "")
		require.Equal(t, http.StatusOK, status, body)
	}

	status, _ := do(t, srv, http.MethodDelete, "/tags/"+shared, "")
	require.Equal(t, http.StatusNoContent, status)

	status, body := do(t, srv, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), gjson.Get(body, "total").Int(), "notes survive tag deletion")
	assert.Equal(t, []interface{}{"other"}, gjson.Get(body, "items.0.tags.#.title").Value())
	assert.Equal(t, "[]", gjson.Get(body, "items.1.tags").Raw)

	status, body = do(t, srv, http.MethodGet, "/tags", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "total").Int())
	assert.Equal(t, other, gjson.Get(body, "items.0.id").String())
}

func TestTagCRUD(t *testing.T) {
	srv := newTestServer(t)
	id := createTag(t, srv, "draft")

	status, body := do(t, srv, http.MethodGet, "/tags/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "draft", gjson.Get(body, "title").String())

	status, body = do(t, srv, http.MethodPatch, "/tags/"+id, `{"title":"final"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "final", gjson.Get(body, "title").String())

	status, _ = do(t, srv, http.MethodPost, "/tags", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodDelete, "/tags/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, srv, http.MethodGet, "/tags/"+id+"/notes", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServiceRoutes(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "ok").Bool())

	status, body = do(t, srv, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, gjson.Get(body, "version").String())

	status, body = do(t, srv, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, gjson.Valid(body))
	assert.Equal(t, "Notes API", gjson.Get(body, "info.title").String())
	assert.True(t, gjson.Get(body, "paths./notes.post").Exists())

	status, body = do(t, srv, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, gjson.Get(body, "message").String())

	status, _ = do(t, srv, http.MethodPut, "/notes", "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestResponsesAreBrotliCompressed(t *testing.T) {
	srv := newTestServer(t)
	createNote(t, srv, "compressed")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "br")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "br", resp.Header.Get("Content-Encoding"))
	raw, err := io.ReadAll(brotli.NewReader(resp.Body))
	require.NoError(t, err)
	assert.Equal(t, "compressed", gjson.GetBytes(raw, "items.0.title").String())
}

func TestRateLimitedRouter(t *testing.T) {
	store := testdb.NewInMemory(t)
	t.Cleanup(func() { store.Close() })
	limiter := ratelimit.New(ratelimit.Config{RPS: 0.001, Burst: 2})
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(NewRouter(core.NewNoteService(store), core.NewTagService(store),
		Options{DefaultLimit: 20, Limiter: limiter}))
	t.Cleanup(srv.Close)

	for i := 0; i < 2; i++ {
		status, _ := do(t, srv, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, status)
	}
	status, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "too many requests", gjson.Get(body, "message").String())
}
