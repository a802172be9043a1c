package cache

import "github.com/five82/splitforest/internal/area"

// SbtNumSL bounds the number of prior sub-block-transform attempts kept
// per geometry (spec.md §3, SBT_NUM_SL).
const SbtNumSL = 4

// SbtAttempt records one prior sub-block-transform search result, keyed by
// the PU's sum-of-squared-errors (puSse) that produced it.
type SbtAttempt struct {
	PuSse float64
	PuSbt int
	PuTrs int
}

// SbtSaveLoad is the per-CTU cache of up to SbtNumSL prior SBT attempts per
// geometry, short-circuiting repeat sub-block-transform search.
type SbtSaveLoad struct {
	entries map[area.Key][]SbtAttempt
}

// NewSbtSaveLoad returns an empty cache.
func NewSbtSaveLoad() *SbtSaveLoad {
	return &SbtSaveLoad{entries: make(map[area.Key][]SbtAttempt)}
}

// Reset clears the cache; required on every new slice.
func (c *SbtSaveLoad) Reset() {
	c.entries = make(map[area.Key][]SbtAttempt)
}

// Record appends an attempt for a, evicting the oldest once SbtNumSL is
// exceeded (FIFO, oldest-first eviction).
func (c *SbtSaveLoad) Record(a area.CodingUnitArea, attempt SbtAttempt) bool {
	key, ok := area.KeyFor(a)
	if !ok {
		return false
	}
	list := c.entries[key]
	list = append(list, attempt)
	if len(list) > SbtNumSL {
		list = list[len(list)-SbtNumSL:]
	}
	c.entries[key] = list
	return true
}

// Lookup returns a prior attempt at a matching puSse exactly, if any.
func (c *SbtSaveLoad) Lookup(a area.CodingUnitArea, puSse float64) (SbtAttempt, bool) {
	key, ok := area.KeyFor(a)
	if !ok {
		return SbtAttempt{}, false
	}
	for _, attempt := range c.entries[key] {
		if attempt.PuSse == puSse {
			return attempt, true
		}
	}
	return SbtAttempt{}, false
}
