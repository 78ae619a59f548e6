package ipam

import "testing"

func TestFirstFreeSkipsAllocatedHosts(t *testing.T) {
	space := mustSpace(t, "10.0.0.0/29")
	seq := NewHostSequence(space, usedSet("10.0.0.1", "10.0.0.2"))

	address, ok, err := FirstFree(seq)
	if err != nil {
		t.Fatalf("FirstFree returned error: %v", err)
	}
	if !ok || address != "10.0.0.3" {
		t.Fatalf("FirstFree returned %q (ok=%v), want 10.0.0.3", address, ok)
	}
}

func TestFirstFreeExhaustedSubnet(t *testing.T) {
	space := mustSpace(t, "10.0.0.0/30")
	seq := NewHostSequence(space, usedSet("10.0.0.1", "10.0.0.2"))

	if _, ok, err := FirstFree(seq); err != nil || ok {
		t.Fatalf("FirstFree returned ok=%v err=%v, want exhausted", ok, err)
	}
}
