package cache

import (
	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/cuerrors"
)

// BestEncSnapshot is a full reusable snapshot of the best CU at a given
// geometry, enabling ETM_RECO_CACHED replay without re-running RD
// (spec.md §3). The coefficient payload is modeled as an opaque blob owned
// by the external codec; this package only tracks identity and cost.
type BestEncSnapshot struct {
	Area         area.CodingUnitArea
	POC          int
	TestModeType string
	Cost         float64
	Coeffs       []byte
}

// BestEncInfoCache is the per-CTU cache of BestEncSnapshot, keyed like
// BlockInfoCache.
type BestEncInfoCache struct {
	entries map[area.Key]*BestEncSnapshot
}

// NewBestEncInfoCache returns an empty cache.
func NewBestEncInfoCache() *BestEncInfoCache {
	return &BestEncInfoCache{entries: make(map[area.Key]*BestEncSnapshot)}
}

// Reset clears the cache; required on every new slice.
func (c *BestEncInfoCache) Reset() {
	c.entries = make(map[area.Key]*BestEncSnapshot)
}

// Put records the best snapshot for a.
func (c *BestEncInfoCache) Put(a area.CodingUnitArea, snap *BestEncSnapshot) bool {
	key, ok := area.KeyFor(a)
	if !ok {
		return false
	}
	c.entries[key] = snap
	return true
}

// Lookup returns the cached snapshot for a CU whose geometry and
// partitioning identity (poc) match, enabling ETM_RECO_CACHED. Returns
// ReuseNotApplicable on a cache miss or geometry mismatch (spec.md §7),
// in which case the caller simply does not push ETM_RECO_CACHED
// (spec.md §4.5).
func (c *BestEncInfoCache) Lookup(a area.CodingUnitArea, poc int) (*BestEncSnapshot, error) {
	key, ok := area.KeyFor(a)
	if !ok {
		return nil, cuerrors.NewReuseNotApplicable("geometry is not a legal CU size")
	}
	snap, ok := c.entries[key]
	if !ok {
		return nil, cuerrors.NewReuseNotApplicable("no prior best result for this geometry")
	}
	if snap.Area != a || snap.POC != poc {
		return nil, cuerrors.NewReuseNotApplicable("geometry or partitioning identity mismatch")
	}
	return snap, nil
}

// SnapshotFromCS builds a BestEncSnapshot from an externally produced
// CodingStructure, for use by ResultRecorder when it adopts a new best.
func SnapshotFromCS(poc int, testModeType string, cs codec.CodingStructure) *BestEncSnapshot {
	return &BestEncSnapshot{
		Area:         cs.Area(),
		POC:          poc,
		TestModeType: testModeType,
		Cost:         cs.Cost(),
	}
}
