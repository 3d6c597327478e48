package sensor

import "testing"

func TestFixed(t *testing.T) {
	r := Fixed(2048)
	if r.Read() != 2048 {
		t.Errorf("Expected 2048, got %d", r.Read())
	}
}

func TestSimulated_StaysInRange(t *testing.T) {
	s := NewSimulated(42)
	for i := 0; i < 10000; i++ {
		v := s.Read()
		if v < 0 || v > Max {
			t.Fatalf("Reading %d out of range at step %d", v, i)
		}
	}
}

func TestSimulated_DeterministicPerSeed(t *testing.T) {
	a := NewSimulated(7)
	b := NewSimulated(7)
	for i := 0; i < 100; i++ {
		if a.Read() != b.Read() {
			t.Fatal("Same seed should produce the same walk")
		}
	}
}
