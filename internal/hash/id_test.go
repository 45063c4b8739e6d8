package hash

import "testing"

func TestID_Deterministic(t *testing.T) {
	a := ID("cpu.usage")
	b := ID("cpu.usage")
	if a != b {
		t.Fatalf("expected deterministic hash, got %d != %d", a, b)
	}

	c := ID("memory.usage")
	if a == c {
		t.Fatalf("expected different hashes for different strings")
	}
}
