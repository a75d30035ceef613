package mute

import (
	"log/slog"
	"sync"
	"time"
)

// Remuter implements the smart unmute/remute behavior: when playback
// starts while the output is muted it unmutes, then polls until playback
// goes idle and restores the mute.
type Remuter struct {
	mu         sync.Mutex
	controller Controller
	busy       func() bool
	interval   time.Duration
	logger     *slog.Logger

	pending bool
	stopCh  chan struct{}
	running bool
}

// NewRemuter creates a remuter. busy reports whether any clip is still
// playing; interval is the poll period (default 100ms).
func NewRemuter(controller Controller, busy func() bool, interval time.Duration, logger *slog.Logger) *Remuter {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Remuter{
		controller: controller,
		busy:       busy,
		interval:   interval,
		logger:     logger,
	}
}

// EnsureAudible unmutes the output if it is muted and arms the remute
// poller. Called just before playback starts.
func (r *Remuter) EnsureAudible() {
	muted, err := r.controller.Muted()
	if err != nil {
		r.logger.Warn("volume control error", "error", err)
		return
	}
	if !muted {
		return
	}

	if err := r.controller.SetMuted(false); err != nil {
		r.logger.Warn("volume control error", "error", err)
		return
	}

	r.mu.Lock()
	r.pending = true
	if !r.running {
		r.running = true
		r.stopCh = make(chan struct{})
		go r.pollLoop(r.stopCh)
	}
	r.mu.Unlock()

	r.logger.Debug("output unmuted, remute pending")
}

// Pending reports whether a remute is still owed.
func (r *Remuter) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// pollLoop checks playback until the board is idle, then remutes.
func (r *Remuter) pollLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if r.checkRemute() {
				return
			}
		}
	}
}

// checkRemute remutes if playback has gone idle. Returns true when the
// poller should stop.
func (r *Remuter) checkRemute() bool {
	r.mu.Lock()
	if !r.pending {
		r.running = false
		r.mu.Unlock()
		return true
	}
	r.mu.Unlock()

	if r.busy() {
		return false
	}

	if err := r.controller.SetMuted(true); err != nil {
		r.logger.Warn("volume remute error", "error", err)
		return false
	}

	r.mu.Lock()
	r.pending = false
	r.running = false
	r.mu.Unlock()

	r.logger.Debug("output remuted")
	return true
}

// Stop halts the poller without remuting.
func (r *Remuter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		close(r.stopCh)
		r.running = false
	}
	r.pending = false
}
