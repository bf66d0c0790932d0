package engine

import (
	"sync"
	"time"
)

// resolveTimer fires a callback once after a delay unless stopped. It is the
// cancellation token tying the delayed initial-roll resolution to the room's
// lifetime: closing the engine stops it deterministically.
type resolveTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// newResolveTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: duration >= 0; onFire must not be nil.
// Postcondition: Returns a running resolveTimer; onFire will be called unless Stop is called first.
func newResolveTimer(duration time.Duration, onFire func()) *resolveTimer {
	rt := &resolveTimer{}
	rt.timer = time.AfterFunc(duration, func() {
		rt.mu.Lock()
		stopped := rt.stopped
		rt.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	return rt
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not be called after Stop returns.
func (rt *resolveTimer) Stop() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.stopped = true
	rt.timer.Stop()
}
