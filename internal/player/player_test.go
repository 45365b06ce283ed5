package player_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/player"
)

// fakeHandle records every call so tests can assert the effective volume
// actually written through.
type fakeHandle struct {
	playing  bool
	stopped  bool
	volumes  []float64
	position time.Duration
	duration time.Duration
	failNext error
}

func (f *fakeHandle) consumeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeHandle) Play() error {
	if err := f.consumeErr(); err != nil {
		return err
	}
	f.playing = true
	return nil
}

func (f *fakeHandle) Pause() error {
	if err := f.consumeErr(); err != nil {
		return err
	}
	f.playing = false
	return nil
}

func (f *fakeHandle) Stop() error {
	f.stopped = true
	f.playing = false
	return nil
}

func (f *fakeHandle) Seek(pos time.Duration) error {
	f.position = pos
	return nil
}

func (f *fakeHandle) SetVolume(v float64) error {
	if err := f.consumeErr(); err != nil {
		return err
	}
	f.volumes = append(f.volumes, v)
	return nil
}

func (f *fakeHandle) Position() time.Duration { return f.position }
func (f *fakeHandle) Duration() time.Duration { return f.duration }

func (f *fakeHandle) lastVolume() float64 {
	if len(f.volumes) == 0 {
		return -1
	}
	return f.volumes[len(f.volumes)-1]
}

var rainItem = model.ContentItem{ID: "rain", Kind: model.KindSleepSound, Title: "Rain"}

func TestLoadStartsPlayback(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{duration: 2 * time.Minute}

	require.NoError(t, p.Load(rainItem, h))

	snap := p.Snapshot()
	assert.True(t, snap.IsLoaded)
	assert.True(t, snap.IsPlaying)
	assert.Equal(t, "rain", snap.Item.ID)
	assert.Equal(t, 1.0, h.lastVolume())
}

func TestLoadReplacesPreviousHandle(t *testing.T) {
	p := player.New(nil)
	first := &fakeHandle{}
	second := &fakeHandle{}

	require.NoError(t, p.Load(rainItem, first))
	require.NoError(t, p.Load(model.ContentItem{ID: "waves"}, second))

	assert.True(t, first.stopped)
	assert.True(t, second.playing)
	assert.Equal(t, "waves", p.Snapshot().Item.ID)
}

func TestTogglePlayPause(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{}
	require.NoError(t, p.Load(rainItem, h))

	require.NoError(t, p.TogglePlayPause())
	assert.False(t, p.Snapshot().IsPlaying)
	assert.False(t, h.playing)

	require.NoError(t, p.TogglePlayPause())
	assert.True(t, p.Snapshot().IsPlaying)
}

func TestToggleWithNothingLoadedIsNoOp(t *testing.T) {
	p := player.New(nil)
	require.NoError(t, p.TogglePlayPause())
	assert.False(t, p.Snapshot().IsLoaded)
}

func TestStopResetsEverything(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{position: 30 * time.Second, duration: time.Minute}
	require.NoError(t, p.Load(rainItem, h))
	require.NoError(t, p.AdjustVolume(0.4))

	require.NoError(t, p.Stop())

	snap := p.Snapshot()
	assert.False(t, snap.IsLoaded)
	assert.False(t, snap.IsPlaying)
	assert.Nil(t, snap.Item)
	assert.Equal(t, time.Duration(0), snap.Position)
	assert.Equal(t, 0.0, snap.Progress)
	assert.True(t, h.stopped)

	// Volume persists across item changes within a session.
	assert.Equal(t, 0.4, snap.Volume)
}

func TestVolumePersistsToNextLoad(t *testing.T) {
	p := player.New(nil)
	require.NoError(t, p.AdjustVolume(0.25))

	h := &fakeHandle{}
	require.NoError(t, p.Load(rainItem, h))
	assert.Equal(t, 0.25, h.volumes[0])
}

func TestMuteWritesZeroEffectiveVolume(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{}
	require.NoError(t, p.Load(rainItem, h))

	require.NoError(t, p.ToggleMute())
	assert.True(t, p.Snapshot().Muted)
	assert.Equal(t, 0.0, h.lastVolume())

	require.NoError(t, p.ToggleMute())
	assert.False(t, p.Snapshot().Muted)
	assert.Equal(t, 1.0, h.lastVolume())
}

func TestAdjustVolumeWhileMutedUnmutes(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{}
	require.NoError(t, p.Load(rainItem, h))

	require.NoError(t, p.ToggleMute())
	require.NoError(t, p.AdjustVolume(0.5))

	snap := p.Snapshot()
	assert.False(t, snap.Muted)
	assert.Equal(t, 0.5, snap.Volume)
	assert.Equal(t, 0.5, h.lastVolume())
}

func TestAdjustVolumeToZeroStaysMuted(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{}
	require.NoError(t, p.Load(rainItem, h))

	require.NoError(t, p.ToggleMute())
	require.NoError(t, p.AdjustVolume(0))

	snap := p.Snapshot()
	assert.True(t, snap.Muted)
	assert.Equal(t, 0.0, h.lastVolume())
}

func TestAdjustVolumeClamps(t *testing.T) {
	p := player.New(nil)
	require.NoError(t, p.AdjustVolume(1.7))
	assert.Equal(t, 1.0, p.Snapshot().Volume)

	require.NoError(t, p.AdjustVolume(-0.3))
	assert.Equal(t, 0.0, p.Snapshot().Volume)
}

func TestSeekAndProgress(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{duration: time.Minute}
	require.NoError(t, p.Load(rainItem, h))

	require.NoError(t, p.Seek(15*time.Second))

	snap := p.Snapshot()
	assert.Equal(t, 15*time.Second, snap.Position)
	assert.InDelta(t, 0.25, snap.Progress, 0.001)

	// Negative positions clamp to the start.
	require.NoError(t, p.Seek(-5*time.Second))
	assert.Equal(t, time.Duration(0), p.Snapshot().Position)
}

func TestPauseUsedBySleepTimer(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{}
	require.NoError(t, p.Load(rainItem, h))

	require.NoError(t, p.Pause())
	assert.False(t, p.Snapshot().IsPlaying)

	// Pausing when already paused (or unloaded) is a no-op.
	require.NoError(t, p.Pause())
	require.NoError(t, p.Stop())
	require.NoError(t, p.Pause())
}

func TestLoadFailureUnloads(t *testing.T) {
	p := player.New(nil)
	h := &fakeHandle{failNext: errors.New("no audio device")}

	err := p.Load(rainItem, h)
	require.Error(t, err)
	assert.False(t, p.Snapshot().IsLoaded)
}

func TestSubscriberNotifiedOnEveryMutation(t *testing.T) {
	p := player.New(nil)
	var snaps []player.Snapshot
	unsubscribe := p.Subscribe(func(s player.Snapshot) {
		snaps = append(snaps, s)
	})
	defer unsubscribe()

	h := &fakeHandle{}
	require.NoError(t, p.Load(rainItem, h))
	require.NoError(t, p.ToggleMute())
	require.NoError(t, p.Stop())

	require.Len(t, snaps, 3)
	assert.True(t, snaps[0].IsPlaying)
	assert.True(t, snaps[1].Muted)
	assert.False(t, snaps[2].IsLoaded)
}
