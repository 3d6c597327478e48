package collector

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/clock"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/config"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/transport"
)

func newTestCollector(t *testing.T) (*Collector, *transport.BusPort, *clock.Manual) {
	t.Helper()
	cfg := config.Default()
	cfg.LogDir = t.TempDir()

	bus := transport.NewBus()
	listener := bus.Port("listener")
	sender := bus.Port("10.0.0.5")
	clk := clock.NewManual()

	c, err := New(cfg, listener, clk, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, sender, clk
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCollector_LogsMasterReadings(t *testing.T) {
	c, sender, clk := newTestCollector(t)

	require.NoError(t, sender.Send([]byte("1,950,0,0")))
	clk.Advance(200)
	c.Step(clk.Now())

	rows := readRows(t, c.Path())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Timestamp", "Master_IP", "Light_Value"}, rows[0])
	assert.Equal(t, "10.0.0.5", rows[1][1])
	assert.Equal(t, "950", rows[1][2])
}

func TestCollector_IgnoresNonMasterAndReset(t *testing.T) {
	c, sender, clk := newTestCollector(t)

	require.NoError(t, sender.Send([]byte("0,800,1,0"))) // not master
	require.NoError(t, sender.Send([]byte("0,0,255,1"))) // reset record
	require.NoError(t, sender.Send([]byte("garbage")))   // malformed
	clk.Advance(200)
	c.Step(clk.Now())

	assert.Equal(t, 0, c.Rows())
}

func TestCollector_ThrottlesRows(t *testing.T) {
	c, sender, clk := newTestCollector(t)

	// Ten packets inside one throttle window: only the first lands.
	clk.Advance(200)
	for i := 0; i < 10; i++ {
		require.NoError(t, sender.Send([]byte("1,950,0,0")))
	}
	c.Step(clk.Now())
	assert.Equal(t, 1, c.Rows())

	// After the throttle gap, the next packet lands too.
	clk.Advance(150)
	require.NoError(t, sender.Send([]byte("1,900,0,0")))
	c.Step(clk.Now())
	assert.Equal(t, 2, c.Rows())
}

func TestWindow_AveragesPerInterval(t *testing.T) {
	w := NewWindow(4000)

	// First tick arms the interval.
	if _, ok := w.Tick(0); ok {
		t.Fatal("First tick should only arm the window")
	}

	w.Add(2000)
	w.Add(2100)
	if _, ok := w.Tick(3999); ok {
		t.Fatal("Window should not collapse before its interval")
	}

	height, ok := w.Tick(4000)
	if !ok {
		t.Fatal("Window should collapse at its interval")
	}
	// avg 2050 -> height 4 on the 8-level bar
	if height != 4 {
		t.Errorf("Expected height 4, got %d", height)
	}

	// Empty window collapses to zero.
	height, ok = w.Tick(8000)
	if !ok || height != 0 {
		t.Errorf("Empty window should collapse to 0, got %d (ok=%v)", height, ok)
	}
}

func TestSendReset_BroadcastsTenRecords(t *testing.T) {
	bus := transport.NewBus()
	controller := bus.Port("controller")
	node := bus.Port("10.0.0.5")

	require.NoError(t, SendReset(controller, zap.NewNop()))

	count := 0
	for {
		dg, ok := node.Recv()
		if !ok {
			break
		}
		assert.Equal(t, "0,0,255,1", string(dg.Payload))
		count++
	}
	assert.Equal(t, 10, count)
}
