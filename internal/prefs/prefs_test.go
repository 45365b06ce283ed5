package prefs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/prefs"
)

func newTestPrefs(t *testing.T) (*prefs.Prefs, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := prefs.Open(path)
	require.NoError(t, err)
	return p, path
}

func TestPrefsRoundTripAcrossReopen(t *testing.T) {
	p, path := newTestPrefs(t)

	require.NoError(t, p.SetString(prefs.KeyUILanguage, "en"))
	require.NoError(t, p.SetBool(prefs.KeyOnboardingComplete, true))
	require.NoError(t, p.SetStringSlice(prefs.KeyAudioLanguages, []string{"en", "de"}))

	reopened, err := prefs.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "en", reopened.GetString(prefs.KeyUILanguage))
	assert.True(t, reopened.GetBool(prefs.KeyOnboardingComplete))
	assert.Equal(t, []string{"en", "de"}, reopened.GetStringSlice(prefs.KeyAudioLanguages))
}

func TestPrefsUnsetDefaults(t *testing.T) {
	p, _ := newTestPrefs(t)

	assert.Equal(t, "", p.GetString(prefs.KeyTheme))
	assert.False(t, p.GetBool(prefs.KeyBatterySaver))
	assert.Empty(t, p.GetStringSlice(prefs.KeyFavorites))
	assert.Empty(t, p.GetStringMap(prefs.KeyDownloads))
}

func TestToggleFavorite(t *testing.T) {
	p, _ := newTestPrefs(t)

	on, err := p.ToggleFavorite("rain")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, p.IsFavorite("rain"))

	_, err = p.ToggleFavorite("waves")
	require.NoError(t, err)

	off, err := p.ToggleFavorite("rain")
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, p.IsFavorite("rain"))
	assert.Equal(t, []string{"waves"}, p.Favorites())
}

func TestDownloadIndexEntries(t *testing.T) {
	p, path := newTestPrefs(t)

	require.NoError(t, p.SetDownloadPath("rain", "/audio/rain.mp3"))
	require.NoError(t, p.SetDownloadPath("waves", "/audio/waves.mp3"))
	require.NoError(t, p.RemoveDownloadPath("rain"))
	// Removing an id that was never recorded is a no-op.
	require.NoError(t, p.RemoveDownloadPath("thunder"))

	reopened, err := prefs.Open(path)
	require.NoError(t, err)
	index := reopened.DownloadIndex()
	assert.Equal(t, map[string]string{"waves": "/audio/waves.mp3"}, index)
}

func TestDownloadIndexMixedCaseIDSurvivesReopen(t *testing.T) {
	p, path := newTestPrefs(t)

	require.NoError(t, p.SetDownloadPath("Rain-Heavy", "/audio/rain-heavy.mp3"))

	// Viper lowercases map keys on reload; the entry must still be
	// removable under the id it was recorded with.
	reopened, err := prefs.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "/audio/rain-heavy.mp3", reopened.DownloadIndex()["rain-heavy"])

	require.NoError(t, reopened.RemoveDownloadPath("Rain-Heavy"))
	assert.Empty(t, reopened.DownloadIndex())
}
