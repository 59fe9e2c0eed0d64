// Package causal implements the causal-distance function gamma, its sibling
// omega, and the edge predicate the orchestrator applies to every candidate
// pre/post spike-pair match.
package causal

import (
	"math"

	"github.com/wizardbeard/gnatfinder/internal/spike"
	"github.com/wizardbeard/gnatfinder/internal/synnet"
)

// LargeGamma is the finite sentinel substituted for +Inf when the
// sub-delay regime would otherwise make gamma a -log(0). It keeps gamma
// finite, monotone, and cheap to compare against a threshold.
const LargeGamma = 999999

// Omega is the activation contribution of a pre-spike on a post-spike
// through synapse syn, with decay time constant tau. It is exported for
// completeness but the orchestrator never evaluates it on the hot path —
// Gamma is built to avoid ever calling exp, and Omega is its un-logged
// counterpart for callers that want the raw activation value.
func Omega(pre, post spike.Spike, syn synnet.Synapse, tau float32) float32 {
	delta := float32(post.TS - pre.TS)
	if delta < syn.Delay {
		return 0
	}
	return syn.RelW * float32(math.Exp(float64(-(delta-syn.Delay)/tau)))
}

// Gamma is the causal distance between a pre-spike and a post-spike across
// synapse syn: LargeGamma if the post-spike arrives before the synapse's
// delay has elapsed, otherwise a cheap affine function of the elapsed time
// built entirely from syn's precomputed NegLogRelW — no log or exp in the
// hot path.
func Gamma(pre, post spike.Spike, syn synnet.Synapse, tau float32) float32 {
	delta := float32(post.TS - pre.TS)
	if delta < syn.Delay {
		return LargeGamma
	}
	return syn.NegLogRelW + (delta-syn.Delay)/tau
}

// Accept applies the GNAT edge predicate to a pre-pair/post-pair match
// across synapse syn: both component-wise gammas (S1<->S1, S2<->S2) must
// be at or under thresh. Pairing is positional; no alternative alignment
// is tried.
func Accept(pre, post spike.Pair, syn synnet.Synapse, tau, thresh float32) bool {
	g1 := Gamma(pre.S1, post.S1, syn, tau)
	g2 := Gamma(pre.S2, post.S2, syn, tau)
	return g1 <= thresh && g2 <= thresh
}
