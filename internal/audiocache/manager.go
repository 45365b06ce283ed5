// Package audiocache manages the local directory of downloaded audio files.
// The filesystem is the source of truth for "is it downloaded"; the persisted
// index is a secondary structure used for enumeration and orphan cleanup.
package audiocache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotAvailableOffline is returned by Path when an asset is not cached and
// streaming is not permitted.
var ErrNotAvailableOffline = errors.New("audio not available offline")

// downloadTimeout bounds a single background audio fetch.
const downloadTimeout = 5 * time.Minute

// Index is the persisted id -> path mapping kept alongside the cache
// directory. It is implemented by the preferences store.
type Index interface {
	DownloadIndex() map[string]string
	SetDownloadPath(audioID, path string) error
	RemoveDownloadPath(audioID string) error
}

// ProgressFunc receives download progress as a fraction in [0, 1].
type ProgressFunc func(fraction float64)

// inflight tracks a download in progress so concurrent callers for the same
// audio id wait on one fetch instead of racing to write the same file.
type inflight struct {
	done chan struct{}
	path string
	err  error
}

// Manager resolves playable paths for content items, preferring cached local
// copies, and owns the lifecycle of downloaded files.
type Manager struct {
	dir        string
	index      Index
	httpClient *http.Client
	logger     *log.Logger

	mu       sync.Mutex
	inflight map[string]*inflight
}

// New creates a Manager rooted at dir, creating the directory if needed.
func New(dir string, index Index, logger *log.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		dir:        dir,
		index:      index,
		httpClient: &http.Client{Timeout: downloadTimeout},
		logger:     logger,
		inflight:   make(map[string]*inflight),
	}, nil
}

// LocalPath returns the deterministic path for an audio id, whether or not
// the file exists. Ids map to lowercase filenames so they agree with the
// index, whose keys are lowercased on every reload.
func (m *Manager) LocalPath(audioID string) string {
	return filepath.Join(m.dir, strings.ToLower(audioID)+".mp3")
}

// IsDownloaded reports whether the asset's file exists at its deterministic
// local path. No side effects.
func (m *Manager) IsDownloaded(audioID string) bool {
	_, err := os.Stat(m.LocalPath(audioID))
	return err == nil
}

// Download fetches remoteURL to the asset's deterministic local path and
// records the mapping in the index. If the file is already present it
// returns immediately without re-fetching. Concurrent calls for the same
// audio id share a single fetch. The fetch streams to a temp file and is
// renamed onto the final path only when complete, so the deterministic
// path never holds partial bytes and no failure leaves one behind.
func (m *Manager) Download(ctx context.Context, audioID, remoteURL string, onProgress ProgressFunc) (string, error) {
	// Lowercased so the in-flight key agrees with LocalPath and the index.
	audioID = strings.ToLower(audioID)
	path := m.LocalPath(audioID)

	// The in-flight check must come before the existence fast path: once
	// a fetch is running, later callers wait on it rather than trusting
	// whatever is on disk.
	m.mu.Lock()
	if fl, ok := m.inflight[audioID]; ok {
		m.mu.Unlock()
		select {
		case <-fl.done:
			return fl.path, fl.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.IsDownloaded(audioID) {
		m.mu.Unlock()
		// Re-record the mapping so a lost index entry heals itself.
		if err := m.index.SetDownloadPath(audioID, path); err != nil {
			return "", fmt.Errorf("recording download %s: %w", audioID, err)
		}
		if onProgress != nil {
			onProgress(1)
		}
		return path, nil
	}
	fl := &inflight{done: make(chan struct{})}
	m.inflight[audioID] = fl
	m.mu.Unlock()

	fl.path, fl.err = m.fetch(ctx, audioID, remoteURL, path, onProgress)

	m.mu.Lock()
	delete(m.inflight, audioID)
	m.mu.Unlock()
	close(fl.done)

	return fl.path, fl.err
}

// fetch streams remoteURL to a temp file in the cache directory, reporting
// progress when the expected size is known, and renames onto path only
// after the whole body has been written.
func (m *Manager) fetch(ctx context.Context, audioID, remoteURL, path string, onProgress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", audioID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", audioID, resp.StatusCode)
	}

	out, err := os.CreateTemp(m.dir, audioID+".mp3.part*")
	if err != nil {
		return "", fmt.Errorf("creating temp file for %s: %w", audioID, err)
	}
	tmp := out.Name()

	written, copyErr := copyWithProgress(out, resp.Body, resp.ContentLength, onProgress)
	closeErr := out.Close()

	if copyErr != nil || closeErr != nil {
		os.Remove(tmp)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", fmt.Errorf("writing %s after %d bytes: %w", tmp, written, copyErr)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("publishing %s: %w", path, err)
	}

	if err := m.index.SetDownloadPath(audioID, path); err != nil {
		// The file is complete; keep it. A later Download re-records it.
		return "", fmt.Errorf("recording download %s: %w", audioID, err)
	}

	if onProgress != nil {
		onProgress(1)
	}
	return path, nil
}

// copyWithProgress copies src to dst, invoking onProgress with the
// bytes-written / bytes-expected fraction when expected is known.
func copyWithProgress(dst io.Writer, src io.Reader, expected int64, onProgress ProgressFunc) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := dst.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, writeErr
			}
			if onProgress != nil && expected > 0 {
				fraction := float64(written) / float64(expected)
				if fraction > 1 {
					fraction = 1
				}
				onProgress(fraction)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// Path resolves a playable path for the asset: the local file when cached,
// else the remote URL when streaming is allowed, else ErrNotAvailableOffline.
func (m *Manager) Path(audioID, remoteURL string, allowStreaming bool) (string, error) {
	if m.IsDownloaded(audioID) {
		return m.LocalPath(audioID), nil
	}
	if allowStreaming {
		return remoteURL, nil
	}
	return "", fmt.Errorf("%s: %w", audioID, ErrNotAvailableOffline)
}

// PathWithAutoDownload returns the local path when cached. Otherwise it
// starts the download in the background and immediately returns the remote
// URL so playback can begin without waiting. Background failures are logged,
// never propagated: the caller already holds a streaming fallback.
func (m *Manager) PathWithAutoDownload(audioID, remoteURL string) string {
	if m.IsDownloaded(audioID) {
		return m.LocalPath(audioID)
	}

	go func() {
		// Detached from the caller: an in-flight download has no
		// cancellation path, only a timeout.
		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		defer cancel()
		if _, err := m.Download(ctx, audioID, remoteURL, nil); err != nil {
			m.logger.Printf("background download of %s failed: %v", audioID, err)
		}
	}()

	return remoteURL
}

// Delete removes the asset's local file and its index entry. Deleting an
// asset that was never downloaded is a no-op.
func (m *Manager) Delete(audioID string) error {
	path := m.LocalPath(audioID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	if err := m.index.RemoveDownloadPath(audioID); err != nil {
		return fmt.Errorf("removing index entry %s: %w", audioID, err)
	}
	return nil
}

// CleanupOrphans reconciles the cache directory against the index: any audio
// file not referenced by an index entry is deleted. Consistency repair only;
// never called on a playback path.
func (m *Manager) CleanupOrphans() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("reading audio directory: %w", err)
	}

	referenced := make(map[string]bool)
	for audioID, path := range m.index.DownloadIndex() {
		referenced[filepath.Base(path)] = true
		referenced[audioID+".mp3"] = true
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Leftover temp files from an interrupted fetch.
		if strings.Contains(entry.Name(), ".mp3.part") {
			if err := os.Remove(filepath.Join(m.dir, entry.Name())); err != nil {
				return fmt.Errorf("removing stale temp file %s: %w", entry.Name(), err)
			}
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".mp3") {
			continue
		}
		if referenced[entry.Name()] {
			continue
		}
		orphan := filepath.Join(m.dir, entry.Name())
		if err := os.Remove(orphan); err != nil {
			return fmt.Errorf("removing orphan %s: %w", orphan, err)
		}
		m.logger.Printf("removed orphaned audio file %s", entry.Name())
	}

	return nil
}
