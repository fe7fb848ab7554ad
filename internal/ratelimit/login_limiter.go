package ratelimit

import (
	"sync"
	"time"
)

// LoginLimiter throttles login attempts per client address using sliding
// time windows
type LoginLimiter struct {
	attemptsPerMinute int
	attemptsPerHour   int
	enabled           bool

	mu      sync.Mutex
	windows map[string]*clientWindows
}

type clientWindows struct {
	minuteWindow []time.Time
	hourWindow   []time.Time
}

// NewLoginLimiter creates a limiter with the given per-address limits
func NewLoginLimiter(attemptsPerMinute, attemptsPerHour int, enabled bool) *LoginLimiter {
	return &LoginLimiter{
		attemptsPerMinute: attemptsPerMinute,
		attemptsPerHour:   attemptsPerHour,
		enabled:           enabled,
		windows:           make(map[string]*clientWindows),
	}
}

// Allow checks whether another attempt from this address is permitted and
// records it when so
func (l *LoginLimiter) Allow(addr string) bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[addr]
	if !ok {
		w = &clientWindows{}
		l.windows[addr] = w
	}

	w.minuteWindow = filterTimes(w.minuteWindow, now.Add(-1*time.Minute))
	w.hourWindow = filterTimes(w.hourWindow, now.Add(-1*time.Hour))

	if l.attemptsPerMinute > 0 && len(w.minuteWindow) >= l.attemptsPerMinute {
		return false
	}
	if l.attemptsPerHour > 0 && len(w.hourWindow) >= l.attemptsPerHour {
		return false
	}

	w.minuteWindow = append(w.minuteWindow, now)
	w.hourWindow = append(w.hourWindow, now)
	return true
}

// Cleanup drops addresses with no recent attempts; run periodically
func (l *LoginLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	hourAgo := time.Now().Add(-1 * time.Hour)
	for addr, w := range l.windows {
		w.hourWindow = filterTimes(w.hourWindow, hourAgo)
		if len(w.hourWindow) == 0 {
			delete(l.windows, addr)
		}
	}
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
