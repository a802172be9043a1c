// Package forest evaluates the two cascaded random-forest classifiers
// (QT-vs-MTT, Hor-vs-Ver) that drive the controller's DecisionGate.
//
// Grounded on the binary decision tree implementation in
// other_examples/…wlattner-rf__tree-tree.go.go: the same Node{Left,Right,
// SplitVar,SplitVal,Leaf} shape and encoding/gob persistence, narrowed from
// a multi-class classifier to a binary leaf-probability regressor since the
// controller only ever needs P(split) or P(horizontal).
package forest

import (
	"encoding/gob"
	"io"
)

// Node is one node of a binary decision tree. Internal nodes branch on
// x[FeatureOrdinal] <= Threshold; leaf nodes carry the fraction of
// positive-class training samples that reached them.
type Node struct {
	Left, Right    *Node
	FeatureOrdinal int
	Threshold      float64
	Leaf           bool
	Probability    float64
}

// Tree is a single binary decision tree over a projected feature
// sub-vector.
type Tree struct {
	Root *Node
}

// Eval traverses the tree for the dense sub-vector x (already projected
// through the forest entry's selector indices) and returns the leaf
// probability reached.
func (t *Tree) Eval(x []float64) float64 {
	n := t.Root
	for n != nil && !n.Leaf {
		if x[n.FeatureOrdinal] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	if n == nil {
		return 0.5
	}
	return n.Probability
}

// Save serializes the tree using encoding/gob.
func (t *Tree) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(t)
}

// Load deserializes a tree using encoding/gob.
func (t *Tree) Load(r io.Reader) error {
	return gob.NewDecoder(r).Decode(t)
}
