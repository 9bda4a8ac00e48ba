// Package cache holds execution reports for the web front-end between the
// upload that produced them and later retrievals, with age-based eviction.
package cache

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/fjurado/filerep/internal/types"
)

// Defaults for the web front-end.
const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 15 * time.Minute
)

// Stats describes the cache population at a point in time. Expired counts
// entries past their TTL that the sweeper has not collected yet.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

type entry struct {
	report   *types.ExecutionReport
	storedAt time.Time
}

// ReportCache is a TTL map from report IDs to execution reports. Lookup of
// an expired entry evicts it; a background sweep collects the rest.
type ReportCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	stop     chan struct{}
	stopOnce sync.Once

	// test seam; defaults to time.Now
	now func() time.Time
}

// New creates a cache and starts its sweeper. Non-positive arguments fall
// back to the defaults. Call Close to stop the sweeper.
func New(ttl, sweepInterval time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	c := &ReportCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go c.sweepLoop(sweepInterval)
	return c
}

// NewID returns a cryptographically random 16-byte report identifier in
// URL-safe base64 without padding (22 characters).
func NewID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:])
}

// Put stores a report under id with the current time.
func (c *ReportCache) Put(id string, report *types.ExecutionReport) {
	c.mu.Lock()
	c.entries[id] = entry{report: report, storedAt: c.now()}
	c.mu.Unlock()
}

// Get returns the report for id, or false when absent or expired. An
// expired entry is evicted as a side effect of the lookup.
func (c *ReportCache) Get(id string) (*types.ExecutionReport, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		return nil, false
	}
	return e.report, true
}

// Stats counts total, active, and expired-but-unswept entries.
func (c *ReportCache) Stats() Stats {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			s.Expired++
		} else {
			s.Active++
		}
	}
	return s
}

// Sweep removes all expired entries and returns how many were collected.
func (c *ReportCache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Close stops the background sweeper. Idempotent.
func (c *ReportCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *ReportCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stop:
			return
		}
	}
}
