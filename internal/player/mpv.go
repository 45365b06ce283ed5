package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// ipcConnectTimeout is how long to wait for mpv to create its IPC socket.
const ipcConnectTimeout = 5 * time.Second

// MPVHandle drives a single mpv process over its JSON IPC socket. One
// process plays one media path; Stop terminates it.
type MPVHandle struct {
	cmd    *exec.Cmd
	socket string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	reqID  int

	lastPos time.Duration
	lastDur time.Duration
}

// ipcResponse is a single line from mpv's IPC socket: either a reply to a
// request (carrying request_id) or an unsolicited event.
type ipcResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int             `json:"request_id"`
	Event     string          `json:"event"`
}

// StartMPV launches the player binary for mediaPath, paused, and connects to
// its IPC socket. mediaPath may be a local file or a streaming URL.
func StartMPV(command, mediaPath string) (*MPVHandle, error) {
	socket := filepath.Join(os.TempDir(),
		fmt.Sprintf("lull-mpv-%d-%d.sock", os.Getpid(), time.Now().UnixNano()))

	cmd := exec.Command(command,
		"--no-video",
		"--really-quiet",
		"--pause",
		"--input-ipc-server="+socket,
		mediaPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", command, err)
	}

	conn, err := connectWithRetry(socket, ipcConnectTimeout)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("connecting to mpv ipc: %w", err)
	}

	return &MPVHandle{
		cmd:    cmd,
		socket: socket,
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// connectWithRetry polls the socket until mpv has created it.
func connectWithRetry(socket string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("socket %s not ready: %w", socket, err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// request sends one command and waits for its reply, skipping any event
// lines mpv interleaves on the socket.
func (h *MPVHandle) request(command ...interface{}) (json.RawMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return nil, fmt.Errorf("mpv handle is stopped")
	}

	h.reqID++
	payload, err := json.Marshal(map[string]interface{}{
		"command":    command,
		"request_id": h.reqID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding mpv command: %w", err)
	}

	if _, err := h.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("writing mpv command: %w", err)
	}

	for {
		line, err := h.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("reading mpv reply: %w", err)
		}
		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" || resp.RequestID != h.reqID {
			continue
		}
		if resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	}
}

// Play resumes (or starts) playback.
func (h *MPVHandle) Play() error {
	_, err := h.request("set_property", "pause", false)
	return err
}

// Pause pauses playback.
func (h *MPVHandle) Pause() error {
	_, err := h.request("set_property", "pause", true)
	return err
}

// Stop quits the mpv process and releases the socket. The handle must not
// be used afterwards.
func (h *MPVHandle) Stop() error {
	_, reqErr := h.request("quit")

	h.mu.Lock()
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	h.mu.Unlock()

	waitErr := h.cmd.Wait()
	os.Remove(h.socket)

	if reqErr != nil {
		// The process may have exited before acknowledging quit; that
		// is a clean stop as far as the caller is concerned.
		if waitErr != nil {
			return fmt.Errorf("stopping mpv: %w", waitErr)
		}
	}
	return nil
}

// Seek moves to an absolute position.
func (h *MPVHandle) Seek(pos time.Duration) error {
	_, err := h.request("seek", pos.Seconds(), "absolute")
	return err
}

// SetVolume sets the output volume from a [0, 1] fraction.
func (h *MPVHandle) SetVolume(v float64) error {
	_, err := h.request("set_property", "volume", v*100)
	return err
}

// Position returns the current playback position. When the query fails the
// last known position is returned so callers always get a value.
func (h *MPVHandle) Position() time.Duration {
	data, err := h.request("get_property", "time-pos")
	if err != nil {
		return h.cached(&h.lastPos, 0)
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return h.cached(&h.lastPos, 0)
	}
	d := time.Duration(seconds * float64(time.Second))
	return h.cached(&h.lastPos, d)
}

// Duration returns the media duration, or the last known value when the
// query fails (streams may not report one until buffered).
func (h *MPVHandle) Duration() time.Duration {
	data, err := h.request("get_property", "duration")
	if err != nil {
		return h.cached(&h.lastDur, 0)
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return h.cached(&h.lastDur, 0)
	}
	d := time.Duration(seconds * float64(time.Second))
	return h.cached(&h.lastDur, d)
}

// cached stores d in slot when non-zero and returns the slot's value.
func (h *MPVHandle) cached(slot *time.Duration, d time.Duration) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d != 0 {
		*slot = d
	}
	return *slot
}
