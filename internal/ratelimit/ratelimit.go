// Package ratelimit implements a per-user sliding-window admission limiter.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultLimit is the number of messages admitted per window.
	DefaultLimit = 10
	// DefaultWindow is the length of the sliding window.
	DefaultWindow = 60 * time.Second

	shardCount = 64
)

type shard struct {
	mu      sync.Mutex
	ledgers map[int64][]time.Time
}

// Limiter admits at most limit messages per user within any window-long span.
// Users are spread over a fixed set of shards; decisions for one user are
// serialized by its shard lock.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time
	shards [shardCount]shard
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithLimit overrides the admission count and window.
func WithLimit(limit int, window time.Duration) Option {
	return func(l *Limiter) {
		if limit > 0 {
			l.limit = limit
		}
		if window > 0 {
			l.window = window
		}
	}
}

// New returns a Limiter with the default 10 messages per 60 seconds.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		limit:  DefaultLimit,
		window: DefaultWindow,
		now:    time.Now,
	}
	for i := range l.shards {
		l.shards[i].ledgers = make(map[int64][]time.Time)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) shardFor(userID int64) *shard {
	idx := uint64(userID) % shardCount
	return &l.shards[idx]
}

// Allow reports whether userID may send another message now. An admitted
// call is recorded; a rejected one is not.
func (l *Limiter) Allow(userID int64) bool {
	s := l.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := l.now()
	ledger := prune(s.ledgers[userID], now.Add(-l.window))

	if len(ledger) >= l.limit {
		s.ledgers[userID] = ledger
		return false
	}

	s.ledgers[userID] = append(ledger, now)
	return true
}

// Sweep removes ledgers whose entries have all left the window and returns
// how many were dropped.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.window)
	removed := 0

	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for userID, ledger := range s.ledgers {
			if len(prune(ledger, cutoff)) == 0 {
				delete(s.ledgers, userID)
				removed++
			}
		}
		s.mu.Unlock()
	}

	return removed
}

// Tracked returns the number of users that currently hold a ledger.
func (l *Limiter) Tracked() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.ledgers)
		s.mu.Unlock()
	}
	return n
}

// prune drops timestamps at or before cutoff. Ledgers are append-only in
// time order, so the kept part is a suffix.
func prune(ledger []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ledger) && !ledger[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ledger
	}
	kept := make([]time.Time, len(ledger)-i)
	copy(kept, ledger[i:])
	return kept
}
