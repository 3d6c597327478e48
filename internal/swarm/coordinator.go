package swarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/clock"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/config"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/indicator"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/sensor"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/telemetry"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/transport"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/wire"
)

// ErrRestartRequested is returned by Run when a reset record's stagger
// wait has expired. The caller tears everything down and boots the node
// again from cold start; nothing survives except what peers remember.
var ErrRestartRequested = errors.New("swarm: restart requested")

// State is the coordinator's phase.
type State int

const (
	StateBootstrapping State = iota
	StateDiscovering
	StateActive
	StatePendingRestart
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "BOOTSTRAPPING"
	case StateDiscovering:
		return "DISCOVERING"
	case StateActive:
		return "ACTIVE"
	case StatePendingRestart:
		return "PENDING_RESTART"
	default:
		return "UNKNOWN"
	}
}

// drainBatch bounds how many datagrams one step applies, so a burst
// cannot starve the scheduled phases.
const drainBatch = 100

// Coordinator drives one node's control loop. All mutable state is owned
// by the single flow of Run, so there are no locks: the table, the local
// flags, and every deadline are touched from step only.
type Coordinator struct {
	cfg config.Config
	clk clock.Clock
	tr  transport.Transport
	sr  sensor.Reader
	ind indicator.Indicator
	log *zap.Logger

	identity string
	table    *Table
	state    State

	order  int
	master bool
	light  int

	discoverUntil int64
	cycleStart    int64
	sentThisSlot  bool
	nextElection  int64
	nextSweep     int64
	nextDump      int64
	restartAt     int64
}

// NewCoordinator wires a node together. The transport's identity becomes
// the node's identity for the whole session.
func NewCoordinator(cfg config.Config, clk clock.Clock, tr transport.Transport, sr sensor.Reader, ind indicator.Indicator, log *zap.Logger) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		clk:      clk,
		tr:       tr,
		sr:       sr,
		ind:      ind,
		log:      log,
		identity: tr.LocalIdentity(),
		table:    NewTable(cfg.Capacity),
		state:    StateBootstrapping,
	}
}

// Identity returns the node's own identity.
func (c *Coordinator) Identity() string { return c.identity }

// State returns the current phase.
func (c *Coordinator) State() State { return c.state }

// Order returns the node's join order. Meaningful once Active.
func (c *Coordinator) Order() int { return c.order }

// IsMaster reports the node's current leadership belief.
func (c *Coordinator) IsMaster() bool { return c.master }

// Run drives the control loop against the real clock until ctx is
// canceled or a restart fires.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.step(c.clk.Now()); err != nil {
				return err
			}
		}
	}
}

// step is one cooperative iteration: drain inbound, then run whatever
// the current phase owes against its deadlines.
func (c *Coordinator) step(now int64) error {
	c.drain(now)

	switch c.state {
	case StateBootstrapping:
		c.discoverUntil = now + c.cfg.DiscoveryWindow
		c.state = StateDiscovering
		c.log.Info("discovery started",
			zap.String("identity", c.identity),
			zap.Int64("window_ms", c.cfg.DiscoveryWindow))

	case StateDiscovering:
		if now >= c.discoverUntil {
			c.assignOrder(now)
			c.enterActive(now)
		}

	case StateActive:
		c.light = c.sr.Read()
		c.refreshSelf(now)
		c.maybeTransmit(now)
		c.maybeElect(now)
		c.maybeSweep(now)
		c.maybeDump(now)
		c.ind.Render(c.master, c.light)

	case StatePendingRestart:
		if now >= c.restartAt {
			c.master = false
			c.light = 0
			c.ind.Render(false, 0)
			telemetry.IsMaster.Set(0)
			c.log.Info("restarting", zap.String("identity", c.identity))
			return ErrRestartRequested
		}
	}
	return nil
}

// drain applies pending datagrams. It runs in every state so neither the
// discovery window nor the restart stagger wait starves the receive
// path.
func (c *Coordinator) drain(now int64) {
	for i := 0; i < drainBatch; i++ {
		dg, ok := c.tr.Recv()
		if !ok {
			return
		}
		telemetry.PacketsReceived.Inc()

		msg, err := wire.Decode(dg.Payload)
		if err != nil {
			// Best-effort protocol: malformed records vanish here.
			telemetry.PacketsDropped.Inc()
			continue
		}

		if msg.Reset {
			c.handleReset(now, dg.Sender)
			continue
		}

		if dg.Sender == "" || dg.Sender == c.identity {
			continue
		}

		_, known := c.table.Lookup(dg.Sender)
		inserted := c.table.Upsert(Device{
			Identity: dg.Sender,
			LastSeen: now,
			Master:   msg.Master,
			Light:    msg.Light,
			Order:    msg.Order,
		})
		if !known && inserted {
			c.log.Info("device joined",
				zap.String("device", dg.Sender),
				zap.Int("order", msg.Order))
		}
		telemetry.Members.Set(float64(c.table.Len()))
	}
}

// handleReset moves the node into its stagger wait. The delay depends
// only on this node's own rank, never on who originated the reset, so a
// swarm-wide reset fans restarts out deterministically instead of
// thundering.
func (c *Coordinator) handleReset(now int64, from string) {
	telemetry.Resets.Inc()
	if c.state == StatePendingRestart {
		return
	}
	c.state = StatePendingRestart
	c.restartAt = now + int64(c.order)*c.cfg.RestartStagger
	c.log.Info("reset received",
		zap.String("from", from),
		zap.Int("order", c.order),
		zap.Int64("restart_in_ms", c.restartAt-now))
}

// assignOrder runs once, when the discovery window closes. A node whose
// identity survived in the table (warm rejoin) keeps its ordinal; a new
// node takes one past the highest ordinal it has seen, or zero on an
// empty network. Two nodes discovering an empty segment together will
// both take zero and share a slot; the protocol tolerates the overlap
// rather than negotiating it away.
func (c *Coordinator) assignOrder(now int64) {
	if d, ok := c.table.Lookup(c.identity); ok {
		c.order = d.Order
	} else if max, ok := c.table.MaxOrder(); ok {
		c.order = max + 1
	} else {
		c.order = 0
	}
	c.light = c.sr.Read()
	c.refreshSelf(now)
	c.log.Info("join order assigned",
		zap.String("identity", c.identity),
		zap.Int("order", c.order),
		zap.Int("known_devices", c.table.Len()))
}

func (c *Coordinator) enterActive(now int64) {
	c.state = StateActive
	c.cycleStart = now
	c.sentThisSlot = false
	c.nextElection = now + c.cfg.ElectionInterval
	c.nextSweep = now + c.cfg.SweepInterval
	c.nextDump = now + c.cfg.DumpInterval
}

// refreshSelf mirrors local state into the table so the node counts
// toward its own active set even when no peer is around to echo it.
func (c *Coordinator) refreshSelf(now int64) {
	c.table.Upsert(Device{
		Identity: c.identity,
		LastSeen: now,
		Master:   c.master,
		Light:    c.light,
		Order:    c.order,
	})
	telemetry.Members.Set(float64(c.table.Len()))
}

// maybeTransmit broadcasts exactly once per cycle, on entering the slot,
// guarded by a one-shot flag cleared on leaving it.
func (c *Coordinator) maybeTransmit(now int64) {
	active := c.table.ActiveCount(now, c.cfg.ActivityWindow)
	if !InSlot(now, c.cycleStart, active, c.order, c.cfg.SlotDuration, c.cfg.TransmitWindow) {
		c.sentThisSlot = false
		return
	}
	if c.sentThisSlot {
		return
	}
	c.sentThisSlot = true

	msg := wire.Message{Master: c.master, Light: c.light, Order: c.order}
	if err := c.tr.Send(msg.Encode()); err != nil {
		// A lost broadcast is superseded by the next cycle's.
		c.log.Debug("broadcast failed", zap.Error(err))
		return
	}
	telemetry.Broadcasts.Inc()
}

// maybeElect runs the fixed-cadence election pass.
func (c *Coordinator) maybeElect(now int64) {
	if now < c.nextElection {
		return
	}
	c.nextElection = now + c.cfg.ElectionInterval

	leader, ok := Elect(c.table.Snapshot(), now, c.cfg.ActivityWindow)
	if !ok {
		leader = ""
	}
	c.table.SetMasterAll(leader)

	wasMaster := c.master
	c.master = ok && leader == c.identity
	if c.master != wasMaster {
		telemetry.Elections.Inc()
		if c.master {
			telemetry.IsMaster.Set(1)
			c.log.Info("became master", zap.String("identity", c.identity), zap.Int("light", c.light))
		} else {
			telemetry.IsMaster.Set(0)
			c.log.Info("lost master", zap.String("identity", c.identity), zap.String("leader", leader))
		}
	}
}

// maybeSweep runs the fixed-cadence eviction pass.
func (c *Coordinator) maybeSweep(now int64) {
	if now < c.nextSweep {
		return
	}
	c.nextSweep = now + c.cfg.SweepInterval

	evicted := c.table.EvictExpired(now, c.cfg.EvictionTimeout, c.identity)
	for _, d := range evicted {
		telemetry.Evictions.Inc()
		c.log.Info("device evicted",
			zap.String("device", d.Identity),
			zap.Int("order", d.Order),
			zap.Int64("silent_ms", now-d.LastSeen))
	}
	if len(evicted) > 0 {
		telemetry.Members.Set(float64(c.table.Len()))
	}
}

// maybeDump logs the membership table periodically.
func (c *Coordinator) maybeDump(now int64) {
	if now < c.nextDump {
		return
	}
	c.nextDump = now + c.cfg.DumpInterval

	devices := c.table.Snapshot()
	fields := []zap.Field{
		zap.Int("devices", len(devices)),
		zap.Int("active", c.table.ActiveCount(now, c.cfg.ActivityWindow)),
		zap.Int64("cycle_ms", CycleLength(c.table.ActiveCount(now, c.cfg.ActivityWindow), c.cfg.SlotDuration)),
	}
	for _, d := range devices {
		fields = append(fields, zap.String(d.Identity, deviceSummary(d, now)))
	}
	c.log.Debug("membership", fields...)
}

func deviceSummary(d Device, now int64) string {
	role := "member"
	if d.Master {
		role = "master"
	}
	return fmt.Sprintf("%s order=%d light=%d age_ms=%d", role, d.Order, d.Light, now-d.LastSeen)
}
