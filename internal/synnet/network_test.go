package synnet

import "testing"

func TestNewSynapsePrecomputesNegLogRelW(t *testing.T) {
	syn, err := NewSynapse(0, 1, 1.0, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if syn.NegLogRelW != 0 {
		t.Fatalf("expected -ln(1)=0, got %v", syn.NegLogRelW)
	}
}

func TestNewSynapseRejectsNonPositiveWeight(t *testing.T) {
	if _, err := NewSynapse(0, 1, 0, 1.0); err == nil {
		t.Fatalf("expected error for rel_w=0")
	}
	if _, err := NewSynapse(0, 1, -0.5, 1.0); err == nil {
		t.Fatalf("expected error for negative rel_w")
	}
}

func TestAddSynapseOutOfBounds(t *testing.T) {
	n := New(1)
	syn, err := NewSynapse(0, 5, 1.0, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.AddSynapse(syn); err == nil {
		t.Fatalf("expected error for out-of-population target")
	}
}

func TestPresynapticIsolatedNeuronHasNone(t *testing.T) {
	n := New(3)
	syn, err := NewSynapse(0, 1, 1.0, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.AddSynapse(syn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := n.Presynaptic(2); len(got) != 0 {
		t.Fatalf("expected neuron 2 to have no presynaptic partners, got %d", len(got))
	}
	if got := n.Presynaptic(1); len(got) != 1 {
		t.Fatalf("expected neuron 1 to have one presynaptic partner, got %d", len(got))
	}
}
