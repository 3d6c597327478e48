// Package indicator is the sink for the node's per-iteration outputs:
// the leadership flag and the current light reading. On hardware this
// drives LEDs and an 8x8 level-bar matrix; rendering itself is an
// external collaborator, so this package carries the interface, the
// level-bar height mapping, and a console implementation.
package indicator

import "go.uber.org/zap"

// Indicator receives the node's outputs once per loop iteration.
type Indicator interface {
	Render(master bool, light int)
}

const (
	maxLight  = 4095
	barLevels = 8
)

// Height maps a light reading to a level-bar height in [0, 7].
func Height(light int) int {
	if light < 0 {
		light = 0
	}
	if light > maxLight {
		light = maxLight
	}
	h := light * barLevels / (maxLight + 1)
	if h > barLevels-1 {
		h = barLevels - 1
	}
	return h
}

// Console logs renders at debug level.
type Console struct {
	log *zap.Logger
}

// NewConsole returns a console indicator.
func NewConsole(log *zap.Logger) *Console {
	return &Console{log: log}
}

func (c *Console) Render(master bool, light int) {
	c.log.Debug("indicator",
		zap.Bool("master", master),
		zap.Int("light", light),
		zap.Int("bar", Height(light)))
}

// Nop discards all renders.
type Nop struct{}

func (Nop) Render(bool, int) {}
