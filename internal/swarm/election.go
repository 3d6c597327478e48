package swarm

// Elect picks the leader among devices observed within window ms of now:
// the highest light reading wins, ties break to the lexicographically
// smallest identity. The second return is false when no device is
// active, in which case leadership is cleared rather than retained.
func Elect(devices []Device, now, window int64) (string, bool) {
	leader := ""
	best := -1
	for _, d := range devices {
		if now-d.LastSeen >= window {
			continue
		}
		if d.Light > best || (d.Light == best && d.Identity < leader) {
			leader = d.Identity
			best = d.Light
		}
	}
	return leader, leader != ""
}
