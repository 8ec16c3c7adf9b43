package service

import (
	"sync"
	"time"
)

// PairCache holds the most recent pairing code per instance so the QR
// endpoint can serve polls without touching the database. Entries are never
// expired here: freshness is judged against the issue timestamp at read time,
// and housekeeping sweeps what the readers leave behind.
type PairCache struct {
	mu    sync.Mutex
	codes map[string]PairEntry
}

type PairEntry struct {
	Code     string
	IssuedAt time.Time
}

func NewPairCache() *PairCache {
	return &PairCache{codes: make(map[string]PairEntry)}
}

// Set records code as the current pairing code for key, replacing any
// previous one.
func (c *PairCache) Set(key, code string, issuedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[key] = PairEntry{Code: code, IssuedAt: issuedAt}
}

func (c *PairCache) Get(key string) (PairEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.codes[key]
	return e, ok
}

func (c *PairCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, key)
}

// DeleteOlderThan drops every entry issued before cutoff and returns how many
// were removed.
func (c *PairCache) DeleteOlderThan(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.codes {
		if e.IssuedAt.Before(cutoff) {
			delete(c.codes, key)
			n++
		}
	}
	return n
}
