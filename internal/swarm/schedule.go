package swarm

// TDMA slot math. Each active device owns one slotDuration-sized slot per
// cycle, ordered by join order, and transmits only during the first
// txWindow ms of its slot. Everything derives from local knowledge: the
// active count and the node's own rank. Peers with diverged views can
// momentarily overlap; that is a known consistency gap of the protocol,
// superseded by the next cycle's fresh broadcasts.

// CycleLength returns the TDMA cycle in ms for the given active count,
// or 0 when no device is active.
func CycleLength(active int, slotDuration int64) int64 {
	if active <= 0 {
		return 0
	}
	return int64(active) * slotDuration
}

// InSlot reports whether a node with the given join order owns the
// transmit window at time now.
//
// A join order at or beyond the active count has no slot inside the
// cycle; this happens once evictions shrink the active set below the
// node's rank, because ordinals are never compacted. The policy is to
// stay silent: no clamping, no modulo wraparound into someone else's
// slot. The node keeps receiving and resumes transmitting as soon as the
// active count grows past its rank again.
func InSlot(now, cycleStart int64, active, order int, slotDuration, txWindow int64) bool {
	cycle := CycleLength(active, slotDuration)
	if cycle == 0 || order < 0 || order >= active {
		return false
	}
	inCycle := (now - cycleStart) % cycle
	if inCycle < 0 {
		inCycle += cycle
	}
	start := int64(order) * slotDuration
	return inCycle >= start && inCycle < start+txWindow
}
