package mute

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController records mute transitions.
type fakeController struct {
	mu    sync.Mutex
	muted bool
	sets  []bool
}

func (f *fakeController) Muted() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted, nil
}

func (f *fakeController) SetMuted(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
	f.sets = append(f.sets, muted)
	return nil
}

func (f *fakeController) history() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.sets...)
}

// fakeBusy is a togglable busy signal.
type fakeBusy struct {
	mu   sync.Mutex
	busy bool
}

func (f *fakeBusy) set(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = b
}

func (f *fakeBusy) get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

func TestRemuter_NoopWhenUnmuted(t *testing.T) {
	ctrl := &fakeController{muted: false}
	r := NewRemuter(ctrl, func() bool { return false }, time.Millisecond, nil)
	defer r.Stop()

	r.EnsureAudible()

	assert.False(t, r.Pending())
	assert.Empty(t, ctrl.history())
}

func TestRemuter_UnmutesThenRemutesWhenIdle(t *testing.T) {
	ctrl := &fakeController{muted: true}
	busy := &fakeBusy{busy: true}
	r := NewRemuter(ctrl, busy.get, time.Millisecond, nil)
	defer r.Stop()

	r.EnsureAudible()
	require.True(t, r.Pending())

	got, err := ctrl.Muted()
	require.NoError(t, err)
	assert.False(t, got, "output should be unmuted while playing")

	// Still busy: remute must not happen yet.
	time.Sleep(20 * time.Millisecond)
	assert.True(t, r.Pending())

	// Idle: the poller should remute shortly.
	busy.set(false)
	assert.Eventually(t, func() bool {
		muted, _ := ctrl.Muted()
		return muted && !r.Pending()
	}, time.Second, time.Millisecond)

	assert.Equal(t, []bool{false, true}, ctrl.history())
}

func TestRemuter_SecondPlayWhileUnmutedDoesNotDoublePend(t *testing.T) {
	ctrl := &fakeController{muted: true}
	busy := &fakeBusy{busy: true}
	r := NewRemuter(ctrl, busy.get, time.Millisecond, nil)
	defer r.Stop()

	r.EnsureAudible()
	// Output is now unmuted; a second play sees it unmuted and does nothing.
	r.EnsureAudible()

	busy.set(false)
	assert.Eventually(t, func() bool { return !r.Pending() }, time.Second, time.Millisecond)
	assert.Equal(t, []bool{false, true}, ctrl.history())
}

func TestRemuter_StopClearsPending(t *testing.T) {
	ctrl := &fakeController{muted: true}
	r := NewRemuter(ctrl, func() bool { return true }, time.Millisecond, nil)

	r.EnsureAudible()
	require.True(t, r.Pending())

	r.Stop()
	assert.False(t, r.Pending())
}
