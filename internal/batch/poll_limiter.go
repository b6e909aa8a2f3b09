package batch

import (
	"sync"
	"time"
)

const pollLimitWindow = 1 * time.Second

// PollLimiter throttles status polling per client+job pair so tight polling
// loops do not hammer the store.
type PollLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

// NewPollLimiter constructs a PollLimiter. A nil now falls back to time.Now
// and a non-positive window falls back to one second.
func NewPollLimiter(window time.Duration, now func() time.Time) *PollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = pollLimitWindow
	}
	return &PollLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

// Allow reports whether this client may poll the job now, recording the hit
// when it may.
func (l *PollLimiter) Allow(clientID, jobID string) bool {
	if l == nil {
		return true
	}
	key := clientID + "|" + jobID
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[key]; ok {
		if now.Sub(last) < l.window {
			return false
		}
	}
	l.lastHit[key] = now
	return true
}

// RetryAfterSeconds is the value for the Retry-After header on throttled
// polls.
func (l *PollLimiter) RetryAfterSeconds() int {
	if l == nil {
		return int(pollLimitWindow.Seconds())
	}
	return int(l.window.Seconds())
}
