package clock

import (
	"testing"
	"time"
)

func TestManual_StartsAtZero(t *testing.T) {
	m := NewManual()
	if m.Now() != 0 {
		t.Errorf("Expected new manual clock at 0, got %d", m.Now())
	}
}

func TestManual_Advance(t *testing.T) {
	m := NewManual()
	m.Advance(100)
	if m.Now() != 100 {
		t.Errorf("Expected 100 after advance, got %d", m.Now())
	}
	m.Advance(2900)
	if m.Now() != 3000 {
		t.Errorf("Expected 3000 after second advance, got %d", m.Now())
	}
}

func TestManual_Set(t *testing.T) {
	m := NewManual()
	m.Set(5000)
	if m.Now() != 5000 {
		t.Errorf("Expected 5000 after set, got %d", m.Now())
	}
	m.Set(1)
	if m.Now() != 1 {
		t.Errorf("Expected set to allow moving backwards, got %d", m.Now())
	}
}

func TestSystem_Monotonic(t *testing.T) {
	c := System()
	a := c.Now()
	time.Sleep(5 * time.Millisecond)
	b := c.Now()
	if b < a {
		t.Errorf("System clock went backwards: %d then %d", a, b)
	}
	if a < 0 {
		t.Errorf("System clock started negative: %d", a)
	}
}
