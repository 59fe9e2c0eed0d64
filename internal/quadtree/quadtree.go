// Package quadtree implements the bounded point quadtree used to index a
// single neuron's spike pairs for range queries in the causal plane.
//
// Each leaf holds a slice of spike.Pair values directly; there is no
// pointer-based leaf-list bookkeeping for readers to maintain.
package quadtree

import (
	"github.com/wizardbeard/gnatfinder/internal/geom"
	"github.com/wizardbeard/gnatfinder/internal/spike"
)

// MaxLeafCap bounds the number of pairs a leaf holds before it subdivides.
const MaxLeafCap = 4

// Tree is a node of the quadtree: either a leaf holding up to MaxLeafCap
// pairs, or an internal node with four non-nil children and no pairs of
// its own.
type Tree struct {
	bdry geom.Box

	// pairs is non-empty only on leaves; internal nodes push their points
	// down to children at subdivision time and never hold any themselves.
	pairs []spike.Pair

	nw, sw, ne, se *Tree
}

// New creates an empty leaf tree bounded by bdry.
func New(bdry geom.Box) *Tree {
	return &Tree{bdry: bdry}
}

// Boundary returns the tree's boundary box.
func (t *Tree) Boundary() geom.Box {
	return t.bdry
}

// isLeaf reports whether t has not yet been subdivided.
func (t *Tree) isLeaf() bool {
	return t.nw == nil
}

// Insert attempts to add p to the tree, returning true if accepted (p lies
// within t's boundary) and false otherwise. A false return is recoverable:
// the caller may retry against a sibling subtree.
func (t *Tree) Insert(p spike.Pair) bool {
	x, y := p.Point()
	if !t.bdry.Contains(x, y) {
		return false
	}

	if t.isLeaf() {
		if len(t.pairs) < MaxLeafCap {
			t.pairs = append(t.pairs, p)
			return true
		}
		t.subdivide()
	}

	// Exactly one child accepts a point strictly interior to the parent,
	// because the four children exactly tile the parent and containment
	// is strict. NW, SW, NE, SE is the canonical tie-break order.
	switch {
	case t.nw.Insert(p):
		return true
	case t.sw.Insert(p):
		return true
	case t.ne.Insert(p):
		return true
	case t.se.Insert(p):
		return true
	}
	return false
}

// subdivide allocates the four children and drains this leaf's points into
// them, then marks the node internal.
func (t *Tree) subdivide() {
	nw, sw, ne, se := t.bdry.Children()
	t.nw = New(nw)
	t.sw = New(sw)
	t.ne = New(ne)
	t.se = New(se)

	drained := t.pairs
	t.pairs = nil
	for _, p := range drained {
		switch {
		case t.nw.Insert(p):
		case t.sw.Insert(p):
		case t.ne.Insert(p):
		case t.se.Insert(p):
		}
	}
}

// InsertAll bulk-inserts every pair, in order, with one Insert call each.
// It returns the pairs Insert rejected, so the caller can decide whether
// that is fatal.
func (t *Tree) InsertAll(pairs []spike.Pair) (dropped []spike.Pair) {
	for _, p := range pairs {
		if !t.Insert(p) {
			dropped = append(dropped, p)
		}
	}
	return dropped
}

// Visitor is invoked once per candidate pair during a range query. A
// Visitor returning false stops the traversal early.
type Visitor func(spike.Pair) bool

// Query invokes visit on every pair stored in the subtree whose containing
// leaf's boundary intersects region. No pair-level culling happens here:
// the visitor sees a superset of pairs truly inside region (any leaf whose
// box merely touches region contributes all its pairs) and is responsible
// for the final predicate. Once visit returns false, no further pair in
// any subtree is visited.
func (t *Tree) Query(region geom.Box, visit Visitor) {
	t.query(region, visit)
}

// query is Query's recursive worker; its bool return reports whether the
// caller should keep visiting siblings.
func (t *Tree) query(region geom.Box, visit Visitor) bool {
	if !t.bdry.Intersects(region) {
		return true
	}

	for _, p := range t.pairs {
		if !visit(p) {
			return false
		}
	}

	if t.isLeaf() {
		return true
	}

	return t.nw.query(region, visit) &&
		t.sw.query(region, visit) &&
		t.ne.query(region, visit) &&
		t.se.query(region, visit)
}

// Collect is a convenience Visitor-driven query that appends every
// candidate pair visited for region into a returned slice.
func (t *Tree) Collect(region geom.Box) []spike.Pair {
	var out []spike.Pair
	t.Query(region, func(p spike.Pair) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Len returns the total number of pairs stored in the tree (leaves only
// ever hold pairs, so this sums leaf occupancy).
func (t *Tree) Len() int {
	if t.isLeaf() {
		return len(t.pairs)
	}
	return t.nw.Len() + t.sw.Len() + t.ne.Len() + t.se.Len()
}
