package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/mflix-browser/internal/catalog"
	"github.com/handsomefox/mflix-browser/internal/store"
)

func newTestApp(t *testing.T, docs []store.Document) http.Handler {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "movies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.InsertMovies(context.Background(), docs))

	session := catalog.NewSession(st)
	t.Cleanup(session.Close)

	h, err := New(&Config{Session: session})
	require.NoError(t, err)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, app http.Handler, method, path, body string) (*httptest.ResponseRecorder, StateResponse) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	var state StateResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	}
	return w, state
}

func dramaDocs(n int) []store.Document {
	docs := make([]store.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, store.Document{
			"title":  fmt.Sprintf("Movie %02d", i),
			"year":   2000,
			"genres": []string{"Drama"},
		})
	}
	return docs
}

func TestNewRequiresSession(t *testing.T) {
	_, err := New(&Config{})
	require.Error(t, err)
}

func TestGetHealth(t *testing.T) {
	app := newTestApp(t, nil)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetStateDefaults(t *testing.T) {
	app := newTestApp(t, nil)

	w, state := doJSON(t, app, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 25, state.PageSize)
	assert.Equal(t, 0, state.Page)
	assert.Equal(t, []string{"All"}, state.Genres)
	assert.NotNil(t, state.Movies)
	assert.Empty(t, state.Movies)
	assert.Equal(t, "Page 1 / 1 • 0 results", state.PageLabel)
	assert.False(t, state.HasPrev)
	assert.False(t, state.HasNext)
}

func TestPostFiltersBadBody(t *testing.T) {
	app := newTestApp(t, nil)

	w, _ := doJSON(t, app, http.MethodPost, "/api/filters", `{"q":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad request"}`, w.Body.String())
}

func TestPostPageSizeFallback(t *testing.T) {
	app := newTestApp(t, nil)

	w, state := doJSON(t, app, http.MethodPost, "/api/page-size", `{"page_size":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, state.PageSize)
	assert.Equal(t, 0, state.Page)
}

func TestBrowseFlow(t *testing.T) {
	app := newTestApp(t, dramaDocs(30))

	_, _ = doJSON(t, app, http.MethodPost, "/api/filters",
		`{"q":"","genre":"Drama","min_year":"","max_year":""}`)

	state := waitForState(t, app, func(s StateResponse) bool { return s.Total == 30 })
	assert.Len(t, state.Movies, 25)
	assert.True(t, state.HasNext)
	assert.False(t, state.HasPrev)
	assert.Equal(t, "Page 1 / 2 • 30 results", state.PageLabel)
	assert.Equal(t, []string{"All", "Drama"}, state.Genres)
	assert.Equal(t, "Movie 00", state.Movies[0].Title)

	_, _ = doJSON(t, app, http.MethodPost, "/api/page/next", "")

	state = waitForState(t, app, func(s StateResponse) bool { return s.Page == 1 && len(s.Movies) == 5 })
	assert.Equal(t, "Movie 25", state.Movies[0].Title)
	assert.False(t, state.HasNext)
	assert.Equal(t, "Page 2 / 2 • 30 results", state.PageLabel)
}

func waitForState(t *testing.T, app http.Handler, cond func(StateResponse) bool) StateResponse {
	t.Helper()

	// The condition runs on Eventually's goroutine, so no require in here.
	var state StateResponse
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			return false
		}
		var s StateResponse
		if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
			return false
		}
		if s.Loading || s.Error != "" {
			return false
		}
		state = s
		return cond(s)
	}, 5*time.Second, 10*time.Millisecond)
	return state
}
