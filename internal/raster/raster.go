// Package raster holds the per-neuron spike trains recorded for a run, and
// derives the ordered spike-pair sets the quadtrees are built from.
package raster

import (
	"fmt"

	"github.com/wizardbeard/gnatfinder/internal/spike"
)

// Raster is a fixed-population mapping from neuron id to that neuron's
// spike train, plus the aggregate bookkeeping (t_min, t_max, n_spikes)
// the quadtree bulk-build needs.
//
// Storage is a dense slice of slices. Append works head-first internally,
// pushing each new spike onto the front of its neuron's list; Finalize
// reverses each list once so callers see spikes in file order. Callers
// never observe the head-first detail.
type Raster struct {
	nCells  uint32
	spikes  [][]spike.Spike // head-inserted; reversed by Finalize
	tMin    int64
	tMax    int64
	nSpikes int64
	hasAny  bool
}

// New allocates a raster for a fixed population of nCells neurons.
func New(nCells uint32) *Raster {
	return &Raster{
		nCells: nCells,
		spikes: make([][]spike.Spike, nCells),
	}
}

// NCells returns the fixed population size.
func (r *Raster) NCells() uint32 { return r.nCells }

// TMin returns the minimum timestamp seen so far.
func (r *Raster) TMin() int64 { return r.tMin }

// TMax returns the maximum timestamp seen so far.
func (r *Raster) TMax() int64 { return r.tMax }

// NSpikes returns the total number of spikes appended so far.
func (r *Raster) NSpikes() int64 { return r.nSpikes }

// Append records sp, pushing it to the head of its neuron's list and
// updating the t_min/t_max/n_spikes aggregates. It returns an error if
// sp.NID is outside the fixed population, leaving the decision to abort
// to the caller.
func (r *Raster) Append(sp spike.Spike) error {
	if sp.NID >= r.nCells {
		return fmt.Errorf("raster: neuron %d is outside population of %d", sp.NID, r.nCells)
	}

	r.spikes[sp.NID] = append([]spike.Spike{sp}, r.spikes[sp.NID]...)

	if !r.hasAny {
		r.tMin = sp.TS
		r.tMax = sp.TS
		r.hasAny = true
	} else {
		if sp.TS < r.tMin {
			r.tMin = sp.TS
		}
		if sp.TS > r.tMax {
			r.tMax = sp.TS
		}
	}
	r.nSpikes++
	return nil
}

// Finalize reverses every per-neuron list so that, after head-inserting in
// file order, each list reads back in file (non-decreasing timestamp)
// order. Must be called once, after all Append calls and before any
// Spikes/Pairs access.
func (r *Raster) Finalize() {
	for i := range r.spikes {
		reverseInPlace(r.spikes[i])
	}
}

func reverseInPlace(s []spike.Spike) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Spikes returns the finalized spike train for neuron id. The returned
// slice must not be mutated by the caller.
func (r *Raster) Spikes(id uint32) []spike.Spike {
	if id >= r.nCells {
		return nil
	}
	return r.spikes[id]
}

// Pairs returns every ordered spike pair (s_a, s_b) for neuron id: an
// outer cursor over the train and an inner cursor over everything strictly
// after it. File order is preserved — s_a always precedes s_b in the
// original recording — rather than being normalized by timestamp.
func (r *Raster) Pairs(id uint32) []spike.Pair {
	train := r.Spikes(id)
	var pairs []spike.Pair
	for a := 0; a < len(train); a++ {
		for b := a + 1; b < len(train); b++ {
			if p, ok := spike.NewPair(train[a], train[b]); ok {
				pairs = append(pairs, p)
			}
		}
	}
	return pairs
}
