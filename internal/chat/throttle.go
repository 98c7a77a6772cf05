package chat

import (
	"sync"
	"time"
)

// Throttle enforces a minimum interval between successive operations. The
// client uses one to avoid flooding the server with typing notifications
// while the user holds a key down.
type Throttle struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{}
	}
	return &Throttle{interval: interval}
}

// Allow reports whether the caller may proceed now. A zero-interval throttle
// always allows.
func (t *Throttle) Allow() bool {
	if t == nil || t.interval <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if now.Before(t.next) {
		return false
	}
	t.next = now.Add(t.interval)
	return true
}
