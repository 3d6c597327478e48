// Package swarm implements the coordination engine that lets identical
// nodes sharing one multicast segment self-organize without a central
// coordinator: a bounded membership table keyed by device identity,
// join-order assignment after a passive discovery window, a TDMA
// broadcast scheduler derived purely from local knowledge, leader
// election by highest light reading, timeout-based eviction, and a
// rank-staggered coordinated restart.
//
// Membership, leadership, and scheduling are independently converging
// local approximations. Transient anomalies such as momentary dual
// leadership or slot overlap after peer-set divergence are expected and
// resolve as fresh broadcasts arrive; nothing here retransmits or acks.
package swarm
