// Package collector implements the listener side of the swarm: it joins
// the multicast group without participating in the protocol, logs the
// current master's light readings to timestamped CSV files, feeds a
// level-bar averaging window, and can broadcast the fleet-wide reset
// record.
package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/clock"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/config"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/indicator"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/transport"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/wire"
)

// header matches the files the original fleet tooling produced, so the
// existing viewers keep working.
var header = []string{"Timestamp", "Master_IP", "Light_Value"}

const timestampLayout = "2006-01-02 15:04:05.000"

// Collector drains the group and records master traffic.
type Collector struct {
	cfg config.Config
	tr  transport.Transport
	clk clock.Clock
	log *zap.Logger

	csv     *csv.Writer
	file    *os.File
	path    string
	lastRow int64
	window  *Window
	rows    int
}

// New opens a fresh esp32_log_<timestamp>.csv in cfg.LogDir and returns
// a collector writing to it.
func New(cfg config.Config, tr transport.Transport, clk clock.Clock, log *zap.Logger) (*Collector, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("collector: create log dir: %w", err)
	}
	path := filepath.Join(cfg.LogDir, fmt.Sprintf("esp32_log_%s.csv", time.Now().Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("collector: create log file: %w", err)
	}

	c := &Collector{
		cfg:    cfg,
		tr:     tr,
		clk:    clk,
		log:    log,
		csv:    csv.NewWriter(file),
		file:   file,
		path:   path,
		window: NewWindow(cfg.LevelBarInterval),
	}
	if err := c.csv.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("collector: write header: %w", err)
	}
	c.csv.Flush()
	log.Info("logging master data", zap.String("file", path))
	return c, nil
}

// Path returns the CSV file being written.
func (c *Collector) Path() string { return c.path }

// Rows returns how many data rows have been written.
func (c *Collector) Rows() int { return c.rows }

// Run drives the collector until ctx is canceled.
func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Step(c.clk.Now())
		}
	}
}

// Step drains pending datagrams and records master readings, throttled
// so a chatty master cannot flood the log. It also advances the
// level-bar window.
func (c *Collector) Step(now int64) {
	for i := 0; i < 100; i++ {
		dg, ok := c.tr.Recv()
		if !ok {
			break
		}
		msg, err := wire.Decode(dg.Payload)
		if err != nil {
			continue
		}
		// The collector observes; reset records are somebody else's
		// problem, and only the elected master's readings matter.
		if msg.Reset || !msg.Master {
			continue
		}

		if now-c.lastRow < c.cfg.CollectThrottle {
			continue
		}
		c.lastRow = now

		c.window.Add(msg.Light)
		row := []string{time.Now().Format(timestampLayout), dg.Sender, fmt.Sprintf("%d", msg.Light)}
		if err := c.csv.Write(row); err != nil {
			c.log.Warn("csv write failed", zap.Error(err))
			continue
		}
		c.csv.Flush()
		c.rows++
	}

	if height, ok := c.window.Tick(now); ok {
		c.log.Debug("level bar", zap.Int("height", height))
	}
}

// Close flushes and closes the CSV file.
func (c *Collector) Close() error {
	c.csv.Flush()
	return c.file.Close()
}

// Window accumulates light readings and periodically collapses them into
// one level-bar column height, like the original 8x8 matrix display.
type Window struct {
	interval int64
	values   []int
	next     int64
	started  bool
}

// NewWindow creates a window collapsing every interval ms.
func NewWindow(interval int64) *Window {
	return &Window{interval: interval}
}

// Add records one reading into the current window.
func (w *Window) Add(v int) {
	w.values = append(w.values, v)
}

// Tick collapses the window if its interval has elapsed, returning the
// averaged column height. An empty window averages to zero.
func (w *Window) Tick(now int64) (int, bool) {
	if !w.started {
		w.started = true
		w.next = now + w.interval
		return 0, false
	}
	if now < w.next {
		return 0, false
	}
	w.next = now + w.interval

	avg := 0
	if len(w.values) > 0 {
		sum := 0
		for _, v := range w.values {
			sum += v
		}
		avg = sum / len(w.values)
		w.values = w.values[:0]
	}
	return indicator.Height(avg), true
}

// SendReset broadcasts the fleet-wide restart record the way the
// original controller did: ten sends spaced 100ms apart, because the
// medium is lossy and there is no ack.
func SendReset(tr transport.Transport, log *zap.Logger) error {
	payload := wire.ResetMessage().Encode()
	for i := 0; i < 10; i++ {
		if err := tr.Send(payload); err != nil {
			return fmt.Errorf("collector: send reset: %w", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
	log.Info("reset broadcast complete")
	return nil
}
