// Package cache implements the per-CTU geometry-keyed caches consulted and
// populated by ResultRecorder: BlockInfoCache, BestEncInfoCache, and
// SbtSaveLoad (spec.md §3).
//
// Grounded on spec.md §9's redesign note for `CodedCUInfo****`: rather than
// a deeply-nested owning pointer graph keyed by four indices, each cache
// here is a flat map keyed by the dense area.Key 4-tuple, avoiding nested
// heap allocations per the Design Notes guidance.
package cache

import (
	"github.com/five82/splitforest/internal/area"
)

// CodedCUInfo is the best-known properties of any CU previously encoded at
// a given shape/position (spec.md §3).
type CodedCUInfo struct {
	IsSkip      bool
	IsIntra     bool
	IsInter     bool
	IsIBC       bool
	IsMMVDSkip  bool
	BcwIdx      int
	ValidMv     [2][2]bool
	SaveMv      [2][2][2]int // [list][ref][hor/ver]
	BestCost    float64

	BestNonDCT2Cost      float64
	BestDCT2NonISPCost   float64
	BestISPIntraMode     int
	ISPPredModeVal       int
	RelatedCuIsValid     bool
	SelectColorSpaceOpt  int
}

// BlockInfoCache is the per-CTU 4-D lookup of CodedCUInfo keyed by
// (xIdx, yIdx, widthIdx, heightIdx).
type BlockInfoCache struct {
	entries map[area.Key]*CodedCUInfo
}

// NewBlockInfoCache returns an empty cache. Callers must call Reset at the
// start of every slice (spec.md §3 invariant).
func NewBlockInfoCache() *BlockInfoCache {
	return &BlockInfoCache{entries: make(map[area.Key]*CodedCUInfo)}
}

// Reset clears the cache; required on every new slice.
func (c *BlockInfoCache) Reset() {
	c.entries = make(map[area.Key]*CodedCUInfo)
}

// Get returns the cached info for a, and whether it was present. A slot is
// only considered live if a's geometry is a legal CU size.
func (c *BlockInfoCache) Get(a area.CodingUnitArea) (*CodedCUInfo, bool) {
	key, ok := area.KeyFor(a)
	if !ok {
		return nil, false
	}
	info, ok := c.entries[key]
	return info, ok
}

// Put stores info for a. Returns false (no-op) if a's geometry is not a
// legal CU size.
func (c *BlockInfoCache) Put(a area.CodingUnitArea, info *CodedCUInfo) bool {
	key, ok := area.KeyFor(a)
	if !ok {
		return false
	}
	c.entries[key] = info
	return true
}

// Clone returns a private copy for a speculative worker (internal/speculate),
// per spec.md §5's "private BlockInfoCache clone per worker".
func (c *BlockInfoCache) Clone() *BlockInfoCache {
	clone := NewBlockInfoCache()
	for k, v := range c.entries {
		cp := *v
		clone.entries[k] = &cp
	}
	return clone
}

// ToMergeable wraps c's entries into a MergeableBlockInfoCache tagged with
// tag, for merge-back after a speculative worker completes (spec.md §5).
func (c *BlockInfoCache) ToMergeable(tag MergeTag) *MergeableBlockInfoCache {
	m := NewMergeableBlockInfoCache()
	for k, v := range c.entries {
		m.entries[k] = taggedEntry{info: v, tag: tag}
	}
	return m
}

// MergeTag is the monotonic temporal tag used to resolve conflicting
// updates from speculative workers under a "most-recent-wins" policy
// (spec.md §5).
type MergeTag uint64

// taggedEntry pairs a cached value with the tag it was written under.
type taggedEntry struct {
	info *CodedCUInfo
	tag  MergeTag
}

// MergeableBlockInfoCache wraps BlockInfoCache with tag-ordered merge
// semantics for the optional speculative-parallelism path.
type MergeableBlockInfoCache struct {
	entries map[area.Key]taggedEntry
}

// NewMergeableBlockInfoCache returns an empty mergeable cache.
func NewMergeableBlockInfoCache() *MergeableBlockInfoCache {
	return &MergeableBlockInfoCache{entries: make(map[area.Key]taggedEntry)}
}

// Merge applies other's entries into m, keeping the higher tag on conflict.
func (m *MergeableBlockInfoCache) Merge(other *MergeableBlockInfoCache) {
	for k, v := range other.entries {
		existing, ok := m.entries[k]
		if !ok || v.tag >= existing.tag {
			m.entries[k] = v
		}
	}
}

// Put records info for a under the given merge tag.
func (m *MergeableBlockInfoCache) Put(a area.CodingUnitArea, info *CodedCUInfo, tag MergeTag) bool {
	key, ok := area.KeyFor(a)
	if !ok {
		return false
	}
	m.entries[key] = taggedEntry{info: info, tag: tag}
	return true
}

// Get returns the cached info for a, and whether it was present.
func (m *MergeableBlockInfoCache) Get(a area.CodingUnitArea) (*CodedCUInfo, bool) {
	key, ok := area.KeyFor(a)
	if !ok {
		return nil, false
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return e.info, true
}
