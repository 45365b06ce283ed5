package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lullapp/lull/internal/health"
	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/tracker"
)

// SyncState represents the current state of a health sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
	SyncUnavailable
)

// SyncStatus holds the current sync state of the health source.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a sync pass completes.
type SyncResultMsg struct {
	Dates     []string // dates whose progress records were updated
	Error     error
	AuthError *AuthErrorMsg
}

// AuthErrorMsg is a tea.Msg sent when the health source rejects our token.
type AuthErrorMsg struct {
	Message string
}

// fetchTimeout is the maximum time allowed for a single sync pass.
const fetchTimeout = 30 * time.Second

// syncWindowDays is how far back each pass looks for samples.
const syncWindowDays = 7

// Poller periodically pulls sleep and mindfulness samples from the
// health-export service and upserts progress records through the
// tracker. When the startup probe fails the poller marks itself
// unavailable and every pass becomes a no-op.
type Poller struct {
	client   *health.Client
	tracker  *tracker.Service
	interval time.Duration

	mu        gosync.Mutex
	status    SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	running   bool
}

// New creates a poller for the given health client and tracker.
func New(client *health.Client, trk *tracker.Service, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Poller{
		client:    client,
		tracker:   trk,
		interval:  interval,
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start probes the health source, launches the polling goroutine, and
// returns a tea.Cmd that waits for the first sync result. A failed
// probe leaves the poller in the unavailable state with no goroutine
// running.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	err := p.client.Probe(ctx)
	cancel()
	if err != nil {
		p.status = SyncStatus{State: SyncUnavailable, Error: err}
		p.mu.Unlock()
		return nil
	}

	p.running = true
	p.mu.Unlock()

	go p.poll()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate sync pass.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
	return nil
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Available reports whether the startup probe succeeded.
func (p *Poller) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.State != SyncUnavailable
}

func (p *Poller) poll() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial pass immediately.
	p.syncOnce()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.syncOnce()
		case <-p.triggerCh:
			p.syncOnce()
		}
	}
}

// syncOnce performs a single sync pass and sends a SyncResultMsg on the
// result channel.
func (p *Poller) syncOnce() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	end := time.Now()
	start := end.AddDate(0, 0, -syncWindowDays)

	sleepSamples, err := p.client.SleepSamples(ctx, start, end)
	if err != nil {
		p.fail(err)
		return
	}

	mindfulSamples, err := p.client.MindfulSamples(ctx, start, end)
	if err != nil {
		p.fail(err)
		return
	}

	updated := make(map[string]bool)

	for date, hours := range SleepHoursByDate(sleepSamples) {
		if err := p.tracker.TrackSleep(ctx, date, hours, nil, nil, ""); err != nil {
			p.fail(err)
			return
		}
		updated[date] = true
	}

	for date, minutes := range MindfulMinutesByDate(mindfulSamples) {
		if err := p.tracker.TrackMindfulness(ctx, date, minutes, nil, nil, ""); err != nil {
			p.fail(err)
			return
		}
		updated[date] = true
	}

	dates := make([]string, 0, len(updated))
	for date := range updated {
		dates = append(dates, date)
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(SyncResultMsg{Dates: dates})
}

func (p *Poller) fail(err error) {
	p.setStatus(SyncError, err)

	if health.IsAuthError(err) {
		p.sendResult(SyncResultMsg{
			Error: err,
			AuthError: &AuthErrorMsg{
				Message: fmt.Sprintf(
					"health sync: authentication expired: %v", err,
				),
			},
		})
		return
	}

	p.sendResult(SyncResultMsg{Error: err})
}

// SleepHoursByDate totals sleep hours per date. Samples are attributed
// to the date they end on, since a night's sleep ends in the morning.
// When several sources report overlapping intervals for the same date,
// only the source contributing the most time is counted, so stacked
// trackers do not double a night's total.
func SleepHoursByDate(samples []health.Sample) map[string]float64 {
	perSource := make(map[string]map[string]int)
	for _, s := range samples {
		date := s.EndTime.Format(model.DateFormat)
		if perSource[date] == nil {
			perSource[date] = make(map[string]int)
		}
		perSource[date][s.Source] += s.Minutes()
	}

	totals := make(map[string]float64, len(perSource))
	for date, sources := range perSource {
		best := 0
		for _, minutes := range sources {
			if minutes > best {
				best = minutes
			}
		}
		if best > 0 {
			totals[date] = float64(best) / 60
		}
	}
	return totals
}

// MindfulMinutesByDate totals mindfulness minutes per date, attributed
// to the session's start date.
func MindfulMinutesByDate(samples []health.Sample) map[string]float64 {
	totals := make(map[string]float64)
	for _, s := range samples {
		date := s.StartTime.Format(model.DateFormat)
		if minutes := s.Minutes(); minutes > 0 {
			totals[date] += float64(minutes)
		}
	}
	return totals
}

// setStatus updates the sync status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync
// result. Call after processing a SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
