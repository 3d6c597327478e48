// Package transport abstracts the shared broadcast medium: a send that
// reaches every swarm member and a non-blocking receive that reports the
// sender's identity. The UDP implementation speaks the fleet's multicast
// group; the Bus implementation wires several in-process ports together
// so protocol tests can run whole swarms without sockets. Both are lossy
// on purpose — a dropped datagram is superseded by the next cycle's
// broadcast, never retransmitted.
package transport
