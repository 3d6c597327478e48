package swarm

// Device is one swarm member as locally observed.
type Device struct {
	Identity string // stable per-session address, the table key
	LastSeen int64  // monotonic ms of the most recent observation
	Master   bool   // locally believed leadership flag
	Light    int    // last reported light reading, 0-4095
	Order    int    // join order, the device's TDMA rank
}

// Table is a bounded set of Devices keyed by identity. It is a plain
// slice with linear scans: capacity is ten, and slice compaction keeps
// the remaining entries' relative order across removals.
type Table struct {
	capacity int
	devices  []Device
}

// NewTable creates an empty table holding at most capacity devices.
func NewTable(capacity int) *Table {
	return &Table{
		capacity: capacity,
		devices:  make([]Device, 0, capacity),
	}
}

// Upsert refreshes the entry for d.Identity, overwriting all fields, or
// inserts it when under capacity. At capacity, unknown identities are
// silently dropped; that is the bounded-memory policy, not an error.
// The return reports whether the device is (now) present.
func (t *Table) Upsert(d Device) bool {
	for i := range t.devices {
		if t.devices[i].Identity == d.Identity {
			t.devices[i] = d
			return true
		}
	}
	if len(t.devices) >= t.capacity {
		return false
	}
	t.devices = append(t.devices, d)
	return true
}

// Lookup returns the entry for identity, if present.
func (t *Table) Lookup(identity string) (Device, bool) {
	for _, d := range t.devices {
		if d.Identity == identity {
			return d, true
		}
	}
	return Device{}, false
}

// Remove deletes the entry for identity, compacting the slice so the
// remaining entries keep their relative order.
func (t *Table) Remove(identity string) bool {
	for i := range t.devices {
		if t.devices[i].Identity == identity {
			t.devices = append(t.devices[:i], t.devices[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of tracked devices.
func (t *Table) Len() int {
	return len(t.devices)
}

// ActiveCount counts devices observed within window ms of now.
func (t *Table) ActiveCount(now, window int64) int {
	n := 0
	for _, d := range t.devices {
		if now-d.LastSeen < window {
			n++
		}
	}
	return n
}

// EvictExpired removes every entry except self whose last observation is
// older than timeout ms. Removal is immediate and unconditional; the
// evicted devices are returned for logging.
func (t *Table) EvictExpired(now, timeout int64, self string) []Device {
	var evicted []Device
	kept := t.devices[:0]
	for _, d := range t.devices {
		if d.Identity != self && now-d.LastSeen > timeout {
			evicted = append(evicted, d)
			continue
		}
		kept = append(kept, d)
	}
	t.devices = kept
	return evicted
}

// MaxOrder returns the highest join order in the table. The second
// return is false when the table is empty.
func (t *Table) MaxOrder() (int, bool) {
	if len(t.devices) == 0 {
		return 0, false
	}
	max := t.devices[0].Order
	for _, d := range t.devices[1:] {
		if d.Order > max {
			max = d.Order
		}
	}
	return max, true
}

// SetMasterAll marks leader as master and every other entry as not.
// An unknown or empty leader clears the flag everywhere.
func (t *Table) SetMasterAll(leader string) {
	for i := range t.devices {
		t.devices[i].Master = t.devices[i].Identity == leader
	}
}

// Snapshot returns a copy of the current entries.
func (t *Table) Snapshot() []Device {
	out := make([]Device, len(t.devices))
	copy(out, t.devices)
	return out
}
