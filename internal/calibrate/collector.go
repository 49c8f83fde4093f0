package calibrate

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/semantiq/semantiq/internal/store"
)

const (
	// BootstrapThreshold is the per-language observation count below which
	// every semantic observation is recorded.
	BootstrapThreshold = 500
	// ProductionSampleRate is the recording probability once a language
	// leaves bootstrap mode.
	ProductionSampleRate = 0.10
	// flushSize bounds the in-memory observation buffer.
	flushSize = 50
)

// Collector samples per-query semantic-distance observations and buffers
// them until flushed to the store. Per language it runs in bootstrap mode
// (record everything) until BootstrapThreshold observations exist, then
// switches to probabilistic sampling.
type Collector struct {
	mu     sync.Mutex
	buffer []store.Observation
	counts map[string]int // persisted + buffered observations per language
	rng    func() float64
}

// NewCollector creates a collector seeded with the per-language counts
// already persisted, so a restarted process resumes in the right mode.
func NewCollector(existing map[string]int) *Collector {
	counts := make(map[string]int, len(existing))
	for lang, n := range existing {
		counts[lang] = n
	}
	return &Collector{
		buffer: make([]store.Observation, 0, flushSize),
		counts: counts,
		rng:    rand.Float64,
	}
}

// Record offers one observation. It returns true when the observation was
// accepted (bootstrap, or sampled in production mode).
func (c *Collector) Record(language string, distance float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counts[language] >= BootstrapThreshold && c.rng() >= ProductionSampleRate {
		return false
	}

	c.buffer = append(c.buffer, store.Observation{Language: language, Distance: distance})
	c.counts[language]++
	return true
}

// InBootstrap reports whether a language is still recording every
// observation.
func (c *Collector) InBootstrap(language string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[language] < BootstrapThreshold
}

// Count returns the number of observations seen for a language, buffered
// included.
func (c *Collector) Count(language string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[language]
}

// NeedsFlush reports whether the buffer has reached its flush size.
func (c *Collector) NeedsFlush() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer) >= flushSize
}

// Flush drains the buffer into the store. A failed write puts the drained
// observations back so nothing is lost.
func (c *Collector) Flush(ctx context.Context, s *store.Store) error {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.buffer
	c.buffer = make([]store.Observation, 0, flushSize)
	c.mu.Unlock()

	if err := s.RecordObservations(ctx, batch); err != nil {
		c.mu.Lock()
		c.buffer = append(batch, c.buffer...)
		c.mu.Unlock()
		return err
	}
	return nil
}
