// Package player holds the single source of truth for "what is currently
// playing". One Player is created by the composition root and shared by every
// view; all mutation goes through its methods, never direct field access.
package player

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lullapp/lull/internal/model"
)

// Handle is a loaded sound. The production implementation drives an external
// mpv process; tests substitute a fake.
type Handle interface {
	Play() error
	Pause() error
	// Stop halts playback and releases the underlying resources. The
	// handle must not be used afterwards.
	Stop() error
	Seek(pos time.Duration) error
	SetVolume(v float64) error
	Position() time.Duration
	Duration() time.Duration
}

// Snapshot is an immutable view of the playback state.
type Snapshot struct {
	Item      *model.ContentItem
	IsLoaded  bool
	IsPlaying bool
	Position  time.Duration
	Duration  time.Duration
	Progress  float64 // Position / Duration, 0 when duration unknown
	Volume    float64
	Muted     bool
}

// Player is the observable playback state holder.
type Player struct {
	logger *log.Logger

	mu          sync.Mutex
	item        *model.ContentItem
	handle      Handle
	playing     bool
	volume      float64
	muted       bool
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// New creates a stopped Player with full volume and mute off.
func New(logger *log.Logger) *Player {
	if logger == nil {
		logger = log.Default()
	}
	return &Player{
		logger:      logger,
		volume:      1,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn to be called synchronously on every state change.
// The returned function unsubscribes.
func (p *Player) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subscribers, id)
			p.mu.Unlock()
		})
	}
}

// Snapshot returns the current playback state.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Player) snapshotLocked() Snapshot {
	snap := Snapshot{
		Item:      p.item,
		IsLoaded:  p.handle != nil,
		IsPlaying: p.playing,
		Volume:    p.volume,
		Muted:     p.muted,
	}
	if p.handle != nil {
		snap.Position = p.handle.Position()
		snap.Duration = p.handle.Duration()
		if snap.Duration > 0 {
			snap.Progress = float64(snap.Position) / float64(snap.Duration)
		}
	}
	return snap
}

// Load replaces the current item with a new one and starts playback. Any
// previously loaded handle is stopped first. Volume and mute settings carry
// over to the new handle.
func (p *Player) Load(item model.ContentItem, handle Handle) error {
	p.mu.Lock()
	if p.handle != nil {
		if err := p.handle.Stop(); err != nil {
			p.logger.Printf("player: stopping previous handle: %v", err)
		}
	}
	p.item = &item
	p.handle = handle
	p.playing = false

	if err := handle.SetVolume(p.effectiveVolumeLocked()); err != nil {
		p.unloadLocked()
		p.notifyAndUnlock()
		return fmt.Errorf("applying volume to %s: %w", item.ID, err)
	}
	if err := handle.Play(); err != nil {
		p.unloadLocked()
		p.notifyAndUnlock()
		return fmt.Errorf("starting playback of %s: %w", item.ID, err)
	}
	p.playing = true
	p.notifyAndUnlock()
	return nil
}

// TogglePlayPause flips between playing and paused. With nothing loaded it
// logs a warning and does nothing.
func (p *Player) TogglePlayPause() error {
	p.mu.Lock()
	if p.handle == nil {
		p.mu.Unlock()
		p.logger.Printf("player: toggle play/pause with nothing loaded")
		return nil
	}

	var err error
	if p.playing {
		err = p.handle.Pause()
	} else {
		err = p.handle.Play()
	}
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("toggling playback: %w", err)
	}
	p.playing = !p.playing
	p.notifyAndUnlock()
	return nil
}

// Pause pauses playback if something is playing. Used by the sleep timer.
func (p *Player) Pause() error {
	p.mu.Lock()
	if p.handle == nil || !p.playing {
		p.mu.Unlock()
		return nil
	}
	if err := p.handle.Pause(); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("pausing playback: %w", err)
	}
	p.playing = false
	p.notifyAndUnlock()
	return nil
}

// Stop stops playback, releases the handle, and resets all derived fields.
// This is the only way to fully release a handle.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.handle == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.handle.Stop()
	p.unloadLocked()
	p.notifyAndUnlock()
	if err != nil {
		return fmt.Errorf("stopping playback: %w", err)
	}
	return nil
}

// unloadLocked clears the item, handle, and playing flag. Volume and mute
// survive so the next Load inherits them. Callers must hold p.mu.
func (p *Player) unloadLocked() {
	p.item = nil
	p.handle = nil
	p.playing = false
}

// Seek moves the playback position.
func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	if p.handle == nil {
		p.mu.Unlock()
		return nil
	}
	if pos < 0 {
		pos = 0
	}
	if err := p.handle.Seek(pos); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("seeking: %w", err)
	}
	p.notifyAndUnlock()
	return nil
}

// ToggleMute flips the mute flag and writes the effective volume through to
// the handle so state and handle never diverge.
func (p *Player) ToggleMute() error {
	p.mu.Lock()
	p.muted = !p.muted
	if err := p.applyVolumeLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.notifyAndUnlock()
	return nil
}

// AdjustVolume sets the volume, clamped to [0, 1]. Setting a positive volume
// while muted unmutes.
func (p *Player) AdjustVolume(v float64) error {
	p.mu.Lock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	if v > 0 && p.muted {
		p.muted = false
	}
	if err := p.applyVolumeLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.notifyAndUnlock()
	return nil
}

// effectiveVolumeLocked is the volume actually written to the handle: zero
// while muted, the stored volume otherwise. Callers must hold p.mu.
func (p *Player) effectiveVolumeLocked() float64 {
	if p.muted {
		return 0
	}
	return p.volume
}

// applyVolumeLocked writes the effective volume to the handle, if any.
// Callers must hold p.mu.
func (p *Player) applyVolumeLocked() error {
	if p.handle == nil {
		return nil
	}
	if err := p.handle.SetVolume(p.effectiveVolumeLocked()); err != nil {
		return fmt.Errorf("applying volume: %w", err)
	}
	return nil
}

// notifyAndUnlock snapshots state and subscribers, releases the lock, and
// delivers the notification outside of it.
func (p *Player) notifyAndUnlock() {
	snap := p.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
