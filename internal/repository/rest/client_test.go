package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"routinetracker/internal/model"
	"routinetracker/internal/repository"
)

// fakeTables is a tiny in-memory stand-in for the REST table API.
type fakeTables struct {
	mu       sync.Mutex
	routines map[string]routineRow
	profiles map[string]profileRow
	keys     []string
}

func newFakeServer(t *testing.T) (*fakeTables, *httptest.Server) {
	t.Helper()
	f := &fakeTables{routines: map[string]routineRow{}, profiles: map[string]profileRow{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeTables) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keys = append(f.keys, r.Header.Get("apikey"))
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")

	switch {
	case table == routinesTable && r.Method == http.MethodGet:
		rows := make([]routineRow, 0, len(f.routines))
		for _, row := range f.routines {
			rows = append(rows, row)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(*rows[j].CreatedAt) })
		_ = json.NewEncoder(w).Encode(rows)
	case table == routinesTable && r.Method == http.MethodPost:
		var row routineRow
		_ = json.NewDecoder(r.Body).Decode(&row)
		if _, dup := f.routines[row.ID]; dup {
			http.Error(w, `{"message":"duplicate key"}`, http.StatusConflict)
			return
		}
		f.routines[row.ID] = row
		w.WriteHeader(http.StatusCreated)
	case table == routinesTable && r.Method == http.MethodPatch:
		cur, ok := f.routines[id]
		if !ok {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		var row routineRow
		_ = json.NewDecoder(r.Body).Decode(&row)
		row.CreatedAt = cur.CreatedAt
		f.routines[id] = row
		_ = json.NewEncoder(w).Encode([]routineRow{row})
	case table == routinesTable && r.Method == http.MethodDelete:
		delete(f.routines, id)
		w.WriteHeader(http.StatusNoContent)
	case table == profilesTable && r.Method == http.MethodGet:
		rows := []profileRow{}
		if p, ok := f.profiles[id]; ok {
			rows = append(rows, p)
		}
		_ = json.NewEncoder(w).Encode(rows)
	case table == profilesTable && r.Method == http.MethodPost:
		var row profileRow
		_ = json.NewDecoder(r.Body).Decode(&row)
		f.profiles[row.ID] = row
		w.WriteHeader(http.StatusCreated)
	default:
		http.Error(w, "unsupported", http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(url, "anon-key", nil, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClientValidatesCredentials(t *testing.T) {
	_, err := NewClient("", "key", nil, zap.NewNop())
	assert.Error(t, err)
	_, err = NewClient("https://db.example.test", " ", nil, zap.NewNop())
	assert.Error(t, err)
	_, err = NewClient("not a url", "key", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestRoutineRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeServer(t)
	c := newTestClient(t, srv.URL+"/")

	days, err := model.NewDaySet(model.Monday, model.Thursday)
	require.NoError(t, err)
	created := time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC)
	r := model.Routine{ID: "r1", Content: "Stretch", Category: model.CategoryHealth, Days: days, CreatedAt: created}

	require.NoError(t, c.Insert(ctx, r))

	r.CompletedDays = r.CompletedDays.Add(model.Thursday)
	require.NoError(t, c.Update(ctx, r))

	list, err := c.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r, list[0])

	require.NoError(t, c.Delete(ctx, "r1"))
	list, err = c.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = c.Update(ctx, r)
	assert.ErrorIs(t, err, repository.ErrRowNotFound)

	for _, k := range fake.keys {
		assert.Equal(t, "anon-key", k)
	}
}

func TestInsertConflictReturnsStatusError(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeServer(t)
	c := newTestClient(t, srv.URL)

	r := model.Routine{ID: "dup", Content: "x", Category: model.CategoryHabit, CreatedAt: time.Now()}
	require.NoError(t, c.Insert(ctx, r))

	err := c.Insert(ctx, r)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.Status)
}

func TestThemeUpsert(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeServer(t)
	c := newTestClient(t, srv.URL)

	_, found, err := c.GetTheme(ctx, "me")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetTheme(ctx, "me", model.ThemeForest))
	theme, found, err := c.GetTheme(ctx, "me")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.ThemeForest, theme)
}

func TestUnreachableDatastore(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	_, err := c.ListAll(context.Background())
	assert.Error(t, err)
}
