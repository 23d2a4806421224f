// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package auth

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/productrec/internal/logging"
)

// LockoutConfig holds configuration for the failed-login lockout.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// EnableExponentialBackoff doubles the lockout period on each subsequent lockout.
	EnableExponentialBackoff bool

	// MaxLockoutDuration caps the lockout period when using exponential backoff.
	MaxLockoutDuration time.Duration
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:              5,
		LockoutDuration:          15 * time.Minute,
		EnableExponentialBackoff: true,
		MaxLockoutDuration:       24 * time.Hour,
	}
}

// lockoutEntry tracks failed attempts for one subject (a client IP).
type lockoutEntry struct {
	failedAttempts int
	lockoutCount   int
	lockedUntil    time.Time
	lastAttempt    time.Time
}

// Lockout tracks failed admin logins per subject and locks a subject out
// after too many consecutive failures.
type Lockout struct {
	mu      sync.Mutex
	config  LockoutConfig
	entries map[string]*lockoutEntry
	now     func() time.Time
}

// NewLockout creates an in-memory lockout tracker.
func NewLockout(config LockoutConfig) *Lockout {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLockoutConfig().MaxAttempts
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = DefaultLockoutConfig().LockoutDuration
	}
	if config.MaxLockoutDuration < config.LockoutDuration {
		config.MaxLockoutDuration = config.LockoutDuration
	}
	return &Lockout{
		config:  config,
		entries: make(map[string]*lockoutEntry),
		now:     time.Now,
	}
}

// CheckLocked reports whether subject is locked and for how much longer.
func (l *Lockout) CheckLocked(subject string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[subject]
	if !ok {
		return false, 0
	}
	now := l.now()
	if now.Before(entry.lockedUntil) {
		return true, entry.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts a failed attempt and reports whether it locked the
// subject.
func (l *Lockout) RecordFailure(subject string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[subject]
	if !ok {
		entry = &lockoutEntry{}
		l.entries[subject] = entry
	}
	if now.Before(entry.lockedUntil) {
		return true, entry.lockedUntil.Sub(now)
	}

	entry.failedAttempts++
	entry.lastAttempt = now
	if entry.failedAttempts < l.config.MaxAttempts {
		return false, 0
	}

	duration := l.lockoutDuration(entry.lockoutCount)
	entry.lockedUntil = now.Add(duration)
	entry.lockoutCount++
	entry.failedAttempts = 0

	logging.Warn().
		Str("subject", subject).
		Dur("duration", duration).
		Int("lockout_count", entry.lockoutCount).
		Msg("Admin login locked out")

	return true, duration
}

// RecordSuccess clears the failure history of subject.
func (l *Lockout) RecordSuccess(subject string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, subject)
}

// Cleanup removes entries that are neither locked nor recently active.
// It returns the number of removed entries.
func (l *Lockout) Cleanup(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for subject, entry := range l.entries {
		if now.After(entry.lockedUntil) && now.Sub(entry.lastAttempt) > idle {
			delete(l.entries, subject)
			removed++
		}
	}
	return removed
}

// lockoutDuration computes the lockout period with optional exponential backoff.
func (l *Lockout) lockoutDuration(lockoutCount int) time.Duration {
	duration := l.config.LockoutDuration
	if !l.config.EnableExponentialBackoff || lockoutCount == 0 {
		return duration
	}

	for i := 0; i < lockoutCount; i++ {
		duration *= 2
		if duration >= l.config.MaxLockoutDuration {
			return l.config.MaxLockoutDuration
		}
	}
	return duration
}

// writeLockoutResponse writes a standardized lockout response to the client.
func writeLockoutResponse(w http.ResponseWriter, remaining time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(remaining.Seconds())))
	w.WriteHeader(http.StatusTooManyRequests)

	response := map[string]interface{}{
		"error":            "Too many failed attempts",
		"retry_after_secs": int(remaining.Seconds()),
		"message":          fmt.Sprintf("Too many failed attempts. Try again in %v", remaining.Round(time.Second)),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error().Err(err).Msg("Error encoding lockout response")
	}
}
