package spike

import "testing"

func TestSpikeEqual(t *testing.T) {
	a := Spike{NID: 3, TS: 10}
	b := Spike{NID: 3, TS: 10}
	c := Spike{NID: 3, TS: 11}
	d := Spike{NID: 4, TS: 10}

	if !a.Equal(b) {
		t.Fatalf("expected %v == %v", a, b)
	}
	if a.Equal(c) {
		t.Fatalf("expected %v != %v", a, c)
	}
	if a.Equal(d) {
		t.Fatalf("expected %v != %v", a, d)
	}
}

func TestNewPairRejectsDifferentNeurons(t *testing.T) {
	if _, ok := NewPair(Spike{NID: 0, TS: 1}, Spike{NID: 1, TS: 2}); ok {
		t.Fatalf("expected rejection across neurons")
	}
}

func TestNewPairRejectsIdenticalSpikes(t *testing.T) {
	if _, ok := NewPair(Spike{NID: 0, TS: 1}, Spike{NID: 0, TS: 1}); ok {
		t.Fatalf("expected rejection of identical spikes")
	}
}

func TestNewPairPreservesCallerOrder(t *testing.T) {
	// Caller passes the later spike first; NewPair must not reorder it.
	later := Spike{NID: 0, TS: 20}
	earlier := Spike{NID: 0, TS: 10}

	p, ok := NewPair(later, earlier)
	if !ok {
		t.Fatalf("expected acceptance")
	}
	x, y := p.Point()
	if x != 20 || y != 10 {
		t.Fatalf("expected point (20,10), got (%v,%v)", x, y)
	}
}
