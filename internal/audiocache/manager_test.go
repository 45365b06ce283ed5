package audiocache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/audiocache"
	"github.com/lullapp/lull/internal/prefs"
)

func newTestManager(t *testing.T) (*audiocache.Manager, *prefs.Prefs, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := prefs.Open(filepath.Join(dir, "prefs.json"))
	require.NoError(t, err)

	audioDir := filepath.Join(dir, "audio")
	m, err := audiocache.New(audioDir, p, nil)
	require.NoError(t, err)
	return m, p, audioDir
}

func audioServer(t *testing.T, body []byte, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadWritesFileAndIndex(t *testing.T) {
	m, p, audioDir := newTestManager(t)
	body := []byte("mp3-bytes-mp3-bytes")
	srv := audioServer(t, body, nil)

	var fractions []float64
	path, err := m.Download(context.Background(), "rain", srv.URL+"/rain.mp3", func(f float64) {
		fractions = append(fractions, f)
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(audioDir, "rain.mp3"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, written)

	assert.True(t, m.IsDownloaded("rain"))
	assert.Equal(t, path, p.DownloadIndex()["rain"])

	require.NotEmpty(t, fractions)
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
}

func TestDownloadIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	var requests atomic.Int32
	srv := audioServer(t, []byte("audio"), &requests)

	first, err := m.Download(context.Background(), "waves", srv.URL, nil)
	require.NoError(t, err)
	second, err := m.Download(context.Background(), "waves", srv.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), requests.Load())
}

func TestConcurrentDownloadsShareOneFetch(t *testing.T) {
	m, _, _ := newTestManager(t)

	var requests atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		w.Write([]byte("audio"))
	}))
	t.Cleanup(srv.Close)

	const callers = 4
	paths := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = m.Download(context.Background(), "thunder", srv.URL, nil)
		}(i)
	}

	// Let all callers pile up on the single in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestPartialDownloadNeverVisibleAtFinalPath(t *testing.T) {
	m, _, audioDir := newTestManager(t)

	firstHalf := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.Write([]byte("12345"))
		w.(http.Flusher).Flush()
		close(firstHalf)
		<-release
		w.Write([]byte("67890"))
	}))
	t.Cleanup(srv.Close)

	done := make(chan struct{})
	var path string
	var err error
	go func() {
		defer close(done)
		path, err = m.Download(context.Background(), "slow", srv.URL, nil)
	}()

	<-firstHalf
	// Half the body has streamed; nothing may be visible at the
	// deterministic path yet.
	assert.False(t, m.IsDownloaded("slow"))
	_, statErr := os.Stat(filepath.Join(audioDir, "slow.mp3"))
	assert.True(t, os.IsNotExist(statErr))

	// A caller arriving mid-stream must wait for the full body instead
	// of picking up a truncated file.
	secondDone := make(chan struct{})
	var secondPath string
	var secondErr error
	go func() {
		defer close(secondDone)
		secondPath, secondErr = m.Download(context.Background(), "slow", srv.URL, nil)
	}()
	select {
	case <-secondDone:
		t.Fatal("second download returned while the fetch was still streaming")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	<-secondDone

	require.NoError(t, err)
	require.NoError(t, secondErr)
	assert.Equal(t, path, secondPath)

	content, readErr := os.ReadFile(secondPath)
	require.NoError(t, readErr)
	assert.Equal(t, "1234567890", string(content))
}

func TestDownloadFailureLeavesNoPartialFile(t *testing.T) {
	m, _, audioDir := newTestManager(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise more bytes than are sent so the client sees a
		// truncated body.
		w.Header().Set("Content-Length", "4096")
		w.Write([]byte("short"))
	}))
	t.Cleanup(srv.Close)

	_, err := m.Download(context.Background(), "broken", srv.URL, nil)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(audioDir, "broken.mp3"))
	assert.True(t, os.IsNotExist(statErr))
	assert.False(t, m.IsDownloaded("broken"))
}

func TestDownloadBadStatus(t *testing.T) {
	m, _, _ := newTestManager(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := m.Download(context.Background(), "missing", srv.URL, nil)
	require.Error(t, err)
	assert.False(t, m.IsDownloaded("missing"))
}

func TestPathPrefersLocalCopy(t *testing.T) {
	m, _, _ := newTestManager(t)
	srv := audioServer(t, []byte("audio"), nil)

	local, err := m.Download(context.Background(), "rain", srv.URL, nil)
	require.NoError(t, err)

	got, err := m.Path("rain", "https://cdn.example.com/rain.mp3", true)
	require.NoError(t, err)
	assert.Equal(t, local, got)

	got, err = m.Path("rain", "https://cdn.example.com/rain.mp3", false)
	require.NoError(t, err)
	assert.Equal(t, local, got)
}

func TestPathStreamingFallback(t *testing.T) {
	m, _, _ := newTestManager(t)

	got, err := m.Path("rain", "https://cdn.example.com/rain.mp3", true)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/rain.mp3", got)

	_, err = m.Path("rain", "https://cdn.example.com/rain.mp3", false)
	assert.ErrorIs(t, err, audiocache.ErrNotAvailableOffline)
}

func TestPathWithAutoDownloadDoesNotBlock(t *testing.T) {
	m, _, _ := newTestManager(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte("audio"))
	}))
	t.Cleanup(srv.Close)

	start := time.Now()
	got := m.PathWithAutoDownload("rain", srv.URL)
	elapsed := time.Since(start)

	assert.Equal(t, srv.URL, got)
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.False(t, m.IsDownloaded("rain"))

	close(release)
	assert.Eventually(t, func() bool {
		return m.IsDownloaded("rain")
	}, 5*time.Second, 10*time.Millisecond)

	// Once cached, the local path wins over the remote URL.
	assert.Equal(t, m.LocalPath("rain"), m.PathWithAutoDownload("rain", srv.URL))
}

func TestDeleteIsIdempotent(t *testing.T) {
	m, p, _ := newTestManager(t)
	srv := audioServer(t, []byte("audio"), nil)

	_, err := m.Download(context.Background(), "rain", srv.URL, nil)
	require.NoError(t, err)

	require.NoError(t, m.Delete("rain"))
	assert.False(t, m.IsDownloaded("rain"))
	assert.NotContains(t, p.DownloadIndex(), "rain")

	require.NoError(t, m.Delete("rain"))
	require.NoError(t, m.Delete("never-downloaded"))
}

func TestCleanupOrphans(t *testing.T) {
	m, _, audioDir := newTestManager(t)
	srv := audioServer(t, []byte("audio"), nil)

	kept, err := m.Download(context.Background(), "rain", srv.URL, nil)
	require.NoError(t, err)

	orphan := filepath.Join(audioDir, "stray.mp3")
	require.NoError(t, os.WriteFile(orphan, []byte("leftover"), 0o644))
	stale := filepath.Join(audioDir, "crash.mp3.part1234")
	require.NoError(t, os.WriteFile(stale, []byte("interrupted"), 0o644))
	unrelated := filepath.Join(audioDir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))

	require.NoError(t, m.CleanupOrphans())

	_, err = os.Stat(kept)
	assert.NoError(t, err)
	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "interrupted temp files are swept")
	_, err = os.Stat(unrelated)
	assert.NoError(t, err, "non-audio files are left alone")
}

func TestLocalPathIsDeterministic(t *testing.T) {
	m, _, audioDir := newTestManager(t)
	assert.Equal(t, filepath.Join(audioDir, "deep-sleep.mp3"), m.LocalPath("deep-sleep"))
	assert.Equal(t, m.LocalPath("deep-sleep"), m.LocalPath("deep-sleep"))
	assert.Equal(t, m.LocalPath("deep-sleep"), m.LocalPath("Deep-Sleep"),
		"ids are case-insensitive to match the persisted index")
}
