// Package sleeptimer provides the process-wide sleep countdown. Exactly one
// countdown runs at a time; when it expires the injected pause action is
// invoked once and the timer returns to idle. Any number of views can
// subscribe to state changes, surviving their own mount/unmount cycles.
package sleeptimer

import (
	"log"
	"sync"
	"time"
)

// Snapshot is an immutable view of the timer state handed to subscribers.
type Snapshot struct {
	// Active reports whether a countdown is running.
	Active bool

	// Minutes is the configured duration; 0 while idle.
	Minutes int

	// Remaining is the number of seconds left; 0 while idle.
	Remaining int
}

// PauseFunc pauses the active playback when the countdown expires.
type PauseFunc func() error

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTickInterval overrides the 1-second tick, for tests.
func WithTickInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

// Coordinator owns the countdown goroutine. It is created once by the
// composition root and injected into every view that shows the timer.
type Coordinator struct {
	pause    PauseFunc
	interval time.Duration
	logger   *log.Logger

	mu          sync.Mutex
	minutes     int
	remaining   int
	active      bool
	stopCh      chan struct{}
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// New creates an idle Coordinator with the given pause action.
func New(pause PauseFunc, logger *log.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	c := &Coordinator{
		pause:       pause,
		interval:    time.Second,
		logger:      logger,
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn to be called synchronously on every state change.
// The returned function unsubscribes; calling it more than once is safe.
func (c *Coordinator) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// Snapshot returns the current timer state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{Active: c.active, Minutes: c.minutes, Remaining: c.remaining}
}

// Start begins a countdown of the given number of minutes, cancelling any
// countdown already running. It never blocks; ticks are delivered from a
// dedicated goroutine.
func (c *Coordinator) Start(minutes int) {
	if minutes <= 0 {
		return
	}

	c.mu.Lock()
	c.cancelLocked()
	c.minutes = minutes
	c.remaining = minutes * 60
	c.active = true
	stop := make(chan struct{})
	c.stopCh = stop
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()

	go c.run(stop)
	notify(subs, snap)
}

// Cancel stops any running countdown without invoking the pause action.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.cancelLocked()
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
}

// cancelLocked clears the countdown state. Callers must hold c.mu.
func (c *Coordinator) cancelLocked() {
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
	c.active = false
	c.minutes = 0
	c.remaining = 0
}

// run is the countdown loop. The stop channel identifies the countdown this
// goroutine owns; a newer Start invalidates it.
func (c *Coordinator) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if expired := c.tick(stop); expired {
				return
			}
		}
	}
}

// tick decrements the countdown once and reports whether it expired. On
// expiry the pause action runs exactly once; its failure is logged and the
// timer still goes idle.
func (c *Coordinator) tick(stop chan struct{}) bool {
	c.mu.Lock()
	if !c.active || c.stopCh != stop {
		// A newer countdown replaced this one between the tick firing
		// and the lock being acquired.
		c.mu.Unlock()
		return true
	}

	c.remaining--
	expired := c.remaining <= 0
	if expired {
		c.active = false
		c.minutes = 0
		c.remaining = 0
		c.stopCh = nil
	}
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()

	if expired {
		if err := c.pause(); err != nil {
			c.logger.Printf("sleep timer: pausing playback failed: %v", err)
		}
	}
	notify(subs, snap)
	return expired
}

// subscribersLocked copies the subscriber list so callbacks run outside the
// lock. Callers must hold c.mu.
func (c *Coordinator) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
