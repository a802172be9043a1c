package forest

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Bundle is the on-disk unit one (kind, shape) pair's trained ensemble is
// persisted as: the feature-selector projection alongside the trees it
// indexes into. Grounded on the gob-round-trip shape
// other_examples/…wlattner-rf__tree-tree.go.go persists a single Tree as;
// Bundle simply adds the (Kind, Shape, SelectorIndices) header Evaluator.
// Register needs alongside it.
type Bundle struct {
	Kind            Kind
	Width, Height   int
	SelectorIndices []int
	Trees           []*Tree
}

// SaveBundle gob-encodes b to w.
func SaveBundle(w io.Writer, b Bundle) error {
	return gob.NewEncoder(w).Encode(b)
}

// LoadBundle gob-decodes a Bundle from r.
func LoadBundle(r io.Reader) (Bundle, error) {
	var b Bundle
	err := gob.NewDecoder(r).Decode(&b)
	return b, err
}

// LoadDir reads every *.gob file under dir as a Bundle and registers it on
// e, in lexical filename order for deterministic Describe output. Loading
// stops at the first file that fails to open or decode: that error is
// returned with the count of bundles loaded before it, and later files are
// not loaded; callers decide whether a partial load is fatal.
func (e *Evaluator) LoadDir(dir string) (loaded int, err error) {
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		return 0, fmt.Errorf("forest: read dir %s: %w", dir, readErr)
	}

	var names []string
	for _, ent := range entries {
		if !ent.IsDir() && filepath.Ext(ent.Name()) == ".gob" {
			names = append(names, ent.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		f, openErr := os.Open(path)
		if openErr != nil {
			return loaded, fmt.Errorf("forest: open %s: %w", path, openErr)
		}
		b, decodeErr := LoadBundle(f)
		_ = f.Close()
		if decodeErr != nil {
			return loaded, fmt.Errorf("forest: decode %s: %w", path, decodeErr)
		}
		e.Register(b.Kind, Shape{Width: b.Width, Height: b.Height}, b.SelectorIndices, b.Trees)
		loaded++
	}
	return loaded, nil
}

// Describe summarizes every registered (kind, shape) entry, sorted for
// stable CLI output (`splitforest forests`).
func (e *Evaluator) Describe() []EntryDescription {
	var out []EntryDescription
	for kind, shapes := range e.entries {
		for shape, ent := range shapes {
			out = append(out, EntryDescription{
				Kind:      kind,
				Shape:     shape,
				NumTrees:  len(ent.trees),
				Selectors: len(ent.selectorIndices),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Shape.Width != out[j].Shape.Width {
			return out[i].Shape.Width < out[j].Shape.Width
		}
		return out[i].Shape.Height < out[j].Shape.Height
	})
	return out
}

// EntryDescription is one registered forest entry's shape, for display.
type EntryDescription struct {
	Kind      Kind
	Shape     Shape
	NumTrees  int
	Selectors int
}
