package indicator

import "testing"

func TestHeight(t *testing.T) {
	tests := []struct {
		light int
		want  int
	}{
		{0, 0},
		{511, 0},
		{512, 1},
		{2048, 4},
		{4095, 7},
		{-50, 0},  // clamped
		{9999, 7}, // clamped
	}

	for _, tt := range tests {
		if got := Height(tt.light); got != tt.want {
			t.Errorf("Height(%d) = %d, want %d", tt.light, got, tt.want)
		}
	}
}
