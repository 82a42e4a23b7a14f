// Package ratelimit throttles API clients with one token bucket per client key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config sets the per-client budget.
type Config struct {
	RPS             float64       // sustained requests per second; <= 0 disables limiting
	Burst           int           // requests allowed above the sustained rate
	CleanupInterval time.Duration // idle buckets older than this are dropped
}

var DefaultConfig = Config{
	RPS:             0,
	Burst:           20,
	CleanupInterval: 10 * time.Minute,
}

// Enabled reports whether the config limits anything.
func (c Config) Enabled() bool {
	return c.RPS > 0
}

type entry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter hands out token buckets keyed by client.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	config   Config

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New starts a Limiter and its cleanup goroutine. Call Stop when done.
func New(config Config) *Limiter {
	if config.Burst < 1 {
		config.Burst = 1
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig.CleanupInterval
	}
	l := &Limiter{
		limiters: make(map[string]*entry),
		config:   config,
		stopCh:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop()
	return l
}

// Allow consumes one token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Remaining returns the whole tokens currently left in key's bucket.
func (l *Limiter) Remaining(key string) int {
	n := int(l.get(key).Tokens())
	return max(n, 0)
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(l.config.RPS), l.config.Burst)}
		l.limiters[key] = e
	}
	e.lastUsed = now
	return e.limiter
}

// Cleanup drops buckets idle for longer than the cleanup interval.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.config.CleanupInterval)
	for key, e := range l.limiters {
		if e.lastUsed.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

func (l *Limiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
