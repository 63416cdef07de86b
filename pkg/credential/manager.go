// Package credential implements round-robin rotation across a pool of
// upstream API keys, with per-key rate usage windows and cooldowns after a
// rate-limit hit.
package credential

import (
	"errors"
	"sync"
	"time"
)

// ErrNoKeysConfigured is returned by New when given an empty key list.
var ErrNoKeysConfigured = errors.New("credential: at least one api key is required")

// keyState tracks the rolling usage window, cooldown, and lifetime
// counters for a single key.
type keyState struct {
	key            string
	usageCount     int
	windowStart    time.Time
	cooldownUntil  time.Time
	totalRequests  int64
	rateLimitHits  int64
}

// resetIfNeeded clears the rolling usage window once 60s have elapsed
// since it started.
func (k *keyState) resetIfNeeded(now time.Time) {
	if now.Sub(k.windowStart) >= time.Minute {
		k.usageCount = 0
		k.windowStart = now
	}
}

func (k *keyState) isAvailable(now time.Time, maxPerMinute int) bool {
	if now.Before(k.cooldownUntil) {
		return false
	}
	return k.usageCount < maxPerMinute
}

// KeyStats is a point-in-time snapshot of a single key's state, safe to
// export outside the manager's lock.
type KeyStats struct {
	Key           string
	UsageCount    int
	CooldownUntil time.Time
	TotalRequests int64
	RateLimitHits int64
}

// Manager rotates across a fixed pool of API keys. All mutation happens
// under a single mutex; no I/O is ever performed while holding it.
type Manager struct {
	mu           sync.Mutex
	keys         []*keyState
	cursor       int
	maxPerMinute int
	cooldown     time.Duration
	now          func() time.Time
}

// Options configures a Manager.
type Options struct {
	MaxPerMinute int
	Cooldown     time.Duration
}

// DefaultOptions mirrors the original worker's defaults.
func DefaultOptions() Options {
	return Options{MaxPerMinute: 10, Cooldown: 60 * time.Second}
}

// New builds a Manager over the given keys. Order is preserved and
// determines the initial round-robin cursor position.
func New(keys []string, opts Options) (*Manager, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeysConfigured
	}
	if opts.MaxPerMinute <= 0 {
		opts.MaxPerMinute = DefaultOptions().MaxPerMinute
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultOptions().Cooldown
	}

	states := make([]*keyState, len(keys))
	now := time.Now()
	for i, k := range keys {
		states[i] = &keyState{key: k, windowStart: now}
	}

	return &Manager{
		keys:         states,
		maxPerMinute: opts.MaxPerMinute,
		cooldown:     opts.Cooldown,
		now:          time.Now,
	}, nil
}

// Acquire returns the next available key in round-robin order, or false if
// every key is currently rate-limited or cooling down. The cursor advances
// on every call regardless of whether a key was found, so repeated misses
// don't bias subsequent rotation.
func (m *Manager) Acquire() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := len(m.keys)

	for i := 0; i < n; i++ {
		idx := (m.cursor + i) % n
		state := m.keys[idx]
		state.resetIfNeeded(now)

		if state.isAvailable(now, m.maxPerMinute) {
			state.usageCount++
			state.totalRequests++
			m.cursor = (idx + 1) % n
			return state.key, true
		}
	}

	m.cursor = (m.cursor + 1) % n
	return "", false
}

// MarkRateLimited puts key into cooldown and records the hit. Unknown keys
// are ignored: they can't be cooled down because rotation never hands them
// out.
func (m *Manager) MarkRateLimited(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, state := range m.keys {
		if state.key == key {
			state.cooldownUntil = now.Add(m.cooldown)
			state.rateLimitHits++
			return
		}
	}
}

// Snapshot returns a copy of every key's current state, ordered as
// configured, safe to log or export without holding the manager's lock.
func (m *Manager) Snapshot() []KeyStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]KeyStats, len(m.keys))
	for i, state := range m.keys {
		out[i] = KeyStats{
			Key:           state.key,
			UsageCount:    state.usageCount,
			CooldownUntil: state.cooldownUntil,
			TotalRequests: state.totalRequests,
			RateLimitHits: state.rateLimitHits,
		}
	}
	return out
}
