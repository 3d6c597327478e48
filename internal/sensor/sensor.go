// Package sensor provides the light reading source the election score
// comes from. The real fleet samples a photocell through an ADC; that
// sampling is an external collaborator, so this package only defines the
// interface plus a simulated source for running swarms off-hardware.
package sensor

import "math/rand"

// Max is the top of the ADC range.
const Max = 4095

// Reader yields one light sample per call, in [0, Max].
type Reader interface {
	Read() int
}

// Fixed always reads the same value. Handy in tests.
type Fixed int

func (f Fixed) Read() int { return int(f) }

// Simulated is a bounded random walk over the ADC range, which looks
// close enough to a photocell under changing ambient light.
type Simulated struct {
	rng   *rand.Rand
	value int
}

// NewSimulated seeds the walk; each node should use a distinct seed so
// elections have something to disagree about.
func NewSimulated(seed int64) *Simulated {
	rng := rand.New(rand.NewSource(seed))
	return &Simulated{
		rng:   rng,
		value: rng.Intn(Max + 1),
	}
}

// Read advances the walk one step and returns the new sample.
func (s *Simulated) Read() int {
	s.value += s.rng.Intn(129) - 64
	if s.value < 0 {
		s.value = 0
	}
	if s.value > Max {
		s.value = Max
	}
	return s.value
}
