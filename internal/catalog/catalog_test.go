package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/catalog"
	"github.com/lullapp/lull/internal/model"
)

func TestDefaultCatalogParses(t *testing.T) {
	items, err := catalog.Default()
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.Title)
	}

	sleep := catalog.ByKind(items, model.KindSleepSound)
	assert.NotEmpty(t, sleep)
	for _, item := range sleep {
		assert.True(t, item.Playable())
	}

	breathing := catalog.ByKind(items, model.KindBreathing)
	require.NotEmpty(t, breathing)
	assert.False(t, breathing[0].Playable(), "breathing exercises have no audio")
}

func TestFindByID(t *testing.T) {
	items, err := catalog.Default()
	require.NoError(t, err)

	found := catalog.FindByID(items, "gentle-rain")
	require.NotNil(t, found)
	assert.Equal(t, "Gentle Rain", found.Title)

	assert.Nil(t, catalog.FindByID(items, "does-not-exist"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": 1,
		"items": [
			{"id": "custom", "kind": "sleep_sound", "title": "Custom", "audio_url": "https://example.com/c.mp3"}
		]
	}`), 0o644))

	items, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "custom", items[0].ID)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadFileRejectsItemsWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": 1,
		"items": [{"title": "No ID"}]
	}`), 0o644))

	_, err := catalog.LoadFile(path)
	assert.Error(t, err)
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"version": 1,
			"items": [
				{"id": "remote", "kind": "meditation", "title": "Remote", "audio_url": "https://example.com/r.mp3"}
			]
		}`))
	}))
	t.Cleanup(srv.Close)

	items, err := catalog.NewClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "remote", items[0].ID)
}

func TestClientFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := catalog.NewClient(srv.URL).Fetch(context.Background())
	assert.Error(t, err)
}
