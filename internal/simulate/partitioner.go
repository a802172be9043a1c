package simulate

import (
	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/mode"
)

// minCUDim is the smallest side length simulate lets a split produce; it
// sits above area.ValidSizes' floor of 4 and keeps recursion finite without a
// depth counter alone having to do all the work.
const minCUDim = 8

// childAreas computes the geometry of a split's children, in the same
// push/pop-order-independent enumeration TryModeFilter and ResultRecorder
// key off of via CodingStructure.ChildDims (spec.md §4.7).
func childAreas(a area.CodingUnitArea, split mode.Type) []area.CodingUnitArea {
	switch split {
	case mode.ETMSplitQT:
		hw, hh := a.Width/2, a.Height/2
		return []area.CodingUnitArea{
			{X: a.X, Y: a.Y, Width: hw, Height: hh},
			{X: a.X + hw, Y: a.Y, Width: hw, Height: hh},
			{X: a.X, Y: a.Y + hh, Width: hw, Height: hh},
			{X: a.X + hw, Y: a.Y + hh, Width: hw, Height: hh},
		}
	case mode.ETMSplitBTH:
		hh := a.Height / 2
		return []area.CodingUnitArea{
			{X: a.X, Y: a.Y, Width: a.Width, Height: hh},
			{X: a.X, Y: a.Y + hh, Width: a.Width, Height: hh},
		}
	case mode.ETMSplitBTV:
		hw := a.Width / 2
		return []area.CodingUnitArea{
			{X: a.X, Y: a.Y, Width: hw, Height: a.Height},
			{X: a.X + hw, Y: a.Y, Width: hw, Height: a.Height},
		}
	case mode.ETMSplitTTH:
		q, h := a.Height/4, a.Height/2
		return []area.CodingUnitArea{
			{X: a.X, Y: a.Y, Width: a.Width, Height: q},
			{X: a.X, Y: a.Y + q, Width: a.Width, Height: h},
			{X: a.X, Y: a.Y + q + h, Width: a.Width, Height: q},
		}
	case mode.ETMSplitTTV:
		q, h := a.Width/4, a.Width/2
		return []area.CodingUnitArea{
			{X: a.X, Y: a.Y, Width: q, Height: a.Height},
			{X: a.X + q, Y: a.Y, Width: h, Height: a.Height},
			{X: a.X + q + h, Y: a.Y, Width: q, Height: a.Height},
		}
	default:
		return nil
	}
}

func childDepth(split mode.Type, qtDepth, mtDepth, btDepth int) (int, int, int) {
	if split == mode.ETMSplitQT {
		return qtDepth + 1, 0, 0
	}
	return qtDepth, mtDepth + 1, btDepth + 1
}

// syntheticPartitioner is the minimal codec.Partitioner simulate drives
// the controller with: depth counters plus a geometry-aware CanSplit, in
// place of the real VVC partition-tree traversal state spec.md §6 treats
// as an opaque external collaborator.
type syntheticPartitioner struct {
	area       area.CodingUnitArea
	qtDepth    int
	mtDepth    int
	btDepth    int
	maxMtDepth int
	maxQtDepth int
	consIntra  bool
	consInter  bool
}

func (p *syntheticPartitioner) CurrQtDepth() int { return p.qtDepth }
func (p *syntheticPartitioner) CurrMtDepth() int { return p.mtDepth }
func (p *syntheticPartitioner) CurrBtDepth() int { return p.btDepth }
func (p *syntheticPartitioner) IsConsIntra() bool { return p.consIntra }
func (p *syntheticPartitioner) IsConsInter() bool { return p.consInter }

// ImplicitSplit forces a QT split when the CU would otherwise hang over
// the (synthetic) picture boundary; simulate never constructs such a CU,
// so there is never an implicit split to report.
func (p *syntheticPartitioner) ImplicitSplit() mode.Type { return mode.ETMInvalid }

// CanSplit reports whether split is geometrically and depth-wise legal
// from p.area: every resulting child must be at least minCUDim on a side,
// and MTT splits (BT/TT) are additionally bounded by maxMtDepth so the
// recursive simulate walk terminates (spec.md §4.6 step 4's "max-BT-depth"
// rule, generalized to TT).
func (p *syntheticPartitioner) CanSplit(split mode.Type) bool {
	if split == mode.ETMSplitQT && p.qtDepth >= p.maxQtDepth {
		return false
	}
	if split != mode.ETMSplitQT && p.mtDepth >= p.maxMtDepth {
		return false
	}
	children := childAreas(p.area, split)
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if c.Width < minCUDim || c.Height < minCUDim {
			return false
		}
	}
	return true
}
