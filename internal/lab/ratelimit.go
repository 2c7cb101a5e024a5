package lab

import (
	"sync"
	"time"
)

type windowState struct {
	count int
	start time.Time
}

// FixedWindowLimiter allows limit requests per key in each window. The
// window starts at a key's first request and restarts once it has fully
// elapsed.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	state map[string]windowState
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		state:  make(map[string]windowState),
	}
}

// Allow records a request for key. When the key is over its limit it
// reports false and the whole seconds (at least 1) until the window resets.
func (l *FixedWindowLimiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st, ok := l.state[key]
	if !ok || now.Sub(st.start) > l.window {
		st = windowState{start: now}
	}
	st.count++
	l.state[key] = st

	if st.count > l.limit {
		remaining := l.window - now.Sub(st.start)
		return false, max(1, int(remaining/time.Second))
	}
	return true, 0
}
