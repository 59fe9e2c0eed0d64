// Package synnet models the physical synaptic connectivity the causal
// kernel tests spike pairs against: for each postsynaptic neuron, the
// unordered collection of incoming synapses.
package synnet

import (
	"fmt"
	"math"
)

// Synapse is a directed connection from Src to Tgt with a relative weight
// and an axonal conduction delay. NegLogRelW is precomputed at
// construction so the causal kernel's hot path needs no log or exp calls.
type Synapse struct {
	Src, Tgt   uint64
	RelW       float32
	Delay      float32
	NegLogRelW float32
}

// NewSynapse builds a synapse, precomputing -ln(relW). It returns an error
// if relW is not strictly positive, rather than letting a non-finite
// NegLogRelW propagate silently.
func NewSynapse(src, tgt uint64, relW, delay float32) (Synapse, error) {
	if relW <= 0 {
		return Synapse{}, fmt.Errorf("synnet: relative weight %v must be > 0 (src=%d tgt=%d)", relW, src, tgt)
	}
	return Synapse{
		Src:        src,
		Tgt:        tgt,
		RelW:       relW,
		Delay:      delay,
		NegLogRelW: float32(-math.Log(float64(relW))),
	}, nil
}

// Network is a fixed-population mapping from target neuron id to the
// unordered collection of its incoming synapses, stored as a dense slice
// of slices indexed by target id.
type Network struct {
	nCells  uint64
	presyns [][]Synapse
}

// New allocates a network for a fixed population of nCells neurons.
func New(nCells uint64) *Network {
	return &Network{
		nCells:  nCells,
		presyns: make([][]Synapse, nCells),
	}
}

// NCells returns the fixed population size.
func (n *Network) NCells() uint64 { return n.nCells }

// AddSynapse records syn against its target's presynaptic list. It
// returns an error if syn.Tgt is outside the fixed population.
func (n *Network) AddSynapse(syn Synapse) error {
	if syn.Tgt >= n.nCells {
		return fmt.Errorf("synnet: target %d is outside population of %d", syn.Tgt, n.nCells)
	}
	n.presyns[syn.Tgt] = append(n.presyns[syn.Tgt], syn)
	return nil
}

// Presynaptic returns the incoming synapses of target neuron tgt. The
// returned slice must not be mutated by the caller.
func (n *Network) Presynaptic(tgt uint64) []Synapse {
	if tgt >= n.nCells {
		return nil
	}
	return n.presyns[tgt]
}
