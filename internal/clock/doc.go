// Package clock provides the monotonic millisecond time source the
// coordination protocol runs on. Every deadline in the system (discovery
// window, TDMA slots, election and eviction cadences, restart stagger)
// is a comparison against this clock, so injecting the Manual
// implementation lets tests drive timing-dependent transitions
// deterministically instead of sleeping on the wall clock.
package clock
