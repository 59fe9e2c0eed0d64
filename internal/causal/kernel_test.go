package causal

import (
	"testing"

	"github.com/wizardbeard/gnatfinder/internal/spike"
	"github.com/wizardbeard/gnatfinder/internal/synnet"
)

func mustSynapse(t *testing.T, relW, delay float32) synnet.Synapse {
	syn, err := synnet.NewSynapse(0, 1, relW, delay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return syn
}

func TestGammaSubDelayIsLargeGamma(t *testing.T) {
	syn := mustSynapse(t, 1.0, 5.0)
	pre := spike.Spike{NID: 0, TS: 10}
	post := spike.Spike{NID: 1, TS: 11} // delta=1 < delay=5
	if g := Gamma(pre, post, syn, 1.0); g != LargeGamma {
		t.Fatalf("expected LargeGamma, got %v", g)
	}
}

func TestGammaThresholdAtBoundary(t *testing.T) {
	syn := mustSynapse(t, 1.0, 5.0)
	pre := spike.Spike{NID: 0, TS: 0}
	for delta := int64(0); delta < 10; delta++ {
		post := spike.Spike{NID: 1, TS: delta}
		g := Gamma(pre, post, syn, 1.0)
		wantLarge := delta < int64(syn.Delay)
		gotLarge := g == LargeGamma
		if gotLarge != wantLarge {
			t.Fatalf("delta=%d: gotLarge=%v wantLarge=%v (gamma=%v)", delta, gotLarge, wantLarge, g)
		}
	}
}

func TestGammaMonotonicInDelta(t *testing.T) {
	syn := mustSynapse(t, 0.5, 1.0)
	pre := spike.Spike{NID: 0, TS: 0}
	var prev float32 = -1 << 30
	for delta := int64(1); delta < 50; delta++ {
		post := spike.Spike{NID: 1, TS: delta}
		g := Gamma(pre, post, syn, 2.0)
		if g <= prev {
			t.Fatalf("gamma not strictly increasing at delta=%d: prev=%v cur=%v", delta, prev, g)
		}
		prev = g
	}
}

func TestAcceptScenarioA(t *testing.T) {
	syn := mustSynapse(t, 1.0, 1.0)
	pre, _ := spike.NewPair(spike.Spike{NID: 0, TS: 10}, spike.Spike{NID: 0, TS: 20})
	post, _ := spike.NewPair(spike.Spike{NID: 1, TS: 11}, spike.Spike{NID: 1, TS: 21})
	if !Accept(pre, post, syn, 1.0, 1.0) {
		t.Fatalf("expected scenario A to be accepted")
	}
}

func TestAcceptScenarioBSubDelayBlocks(t *testing.T) {
	syn := mustSynapse(t, 1.0, 5.0)
	pre, _ := spike.NewPair(spike.Spike{NID: 0, TS: 10}, spike.Spike{NID: 0, TS: 20})
	post, _ := spike.NewPair(spike.Spike{NID: 1, TS: 11}, spike.Spike{NID: 1, TS: 21})
	if Accept(pre, post, syn, 1.0, 1.0) {
		t.Fatalf("expected scenario B to be rejected")
	}
}

func TestOmegaZeroBelowDelay(t *testing.T) {
	syn := mustSynapse(t, 1.0, 5.0)
	pre := spike.Spike{NID: 0, TS: 0}
	post := spike.Spike{NID: 1, TS: 1}
	if got := Omega(pre, post, syn, 1.0); got != 0 {
		t.Fatalf("expected omega=0 below delay, got %v", got)
	}
}

func TestOmegaAtExactDelayEqualsRelW(t *testing.T) {
	syn := mustSynapse(t, 0.3, 5.0)
	pre := spike.Spike{NID: 0, TS: 0}
	post := spike.Spike{NID: 1, TS: 5}
	got := Omega(pre, post, syn, 1.0)
	if diff := got - syn.RelW; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected omega==rel_w at delay boundary, got %v want %v", got, syn.RelW)
	}
}
