// Package gate implements DecisionGate: thresholding a classifier
// probability into a force/forbid/undecided verdict (spec.md §4.3).
package gate

// Decision is the outcome of thresholding one classifier probability.
// The numeric values match spec.md §3's NO_SPLIT_FLAG/QT_FLAG/HOR_FLAG
// encoding, where 2 means undecided.
type Decision int

const (
	DecisionForce     Decision = 0
	DecisionForbid    Decision = 1
	DecisionUndecided Decision = 2
)

func (d Decision) String() string {
	switch d {
	case DecisionForce:
		return "force"
	case DecisionForbid:
		return "forbid"
	default:
		return "undecided"
	}
}

// Evaluate maps probability p through threshold t into a Decision:
// force if p > t, forbid if p < 1-t, undecided otherwise.
func Evaluate(p, t float64) Decision {
	switch {
	case p > t:
		return DecisionForce
	case p < 1-t:
		return DecisionForbid
	default:
		return DecisionUndecided
	}
}
