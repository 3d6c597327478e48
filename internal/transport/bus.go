package transport

import (
	"sync"
)

const portBuffer = 256

// Bus is an in-process broadcast medium for tests. Every Send on a port
// fans out to all other ports, like multicast with loopback disabled.
type Bus struct {
	mu    sync.Mutex
	ports map[string]*BusPort
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{ports: make(map[string]*BusPort)}
}

// Port attaches a new endpoint with the given identity.
func (b *Bus) Port(identity string) *BusPort {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := &BusPort{
		bus:      b,
		identity: identity,
		inbox:    make(chan Datagram, portBuffer),
	}
	b.ports[identity] = p
	return p
}

func (b *Bus) broadcast(from *BusPort, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, p := range b.ports {
		if id == from.identity || p.partitioned || from.partitioned || p.closed {
			continue
		}
		msg := Datagram{Payload: append([]byte(nil), payload...), Sender: from.identity}
		select {
		case p.inbox <- msg:
		default:
			// Full inbox drops, matching the lossy medium.
		}
	}
}

// BusPort is one endpoint on a Bus.
type BusPort struct {
	bus         *Bus
	identity    string
	inbox       chan Datagram
	partitioned bool
	closed      bool
}

// Send broadcasts to every other attached port.
func (p *BusPort) Send(payload []byte) error {
	p.bus.broadcast(p, payload)
	return nil
}

// Recv returns the next pending datagram, if any.
func (p *BusPort) Recv() (Datagram, bool) {
	select {
	case d := <-p.inbox:
		return d, true
	default:
		return Datagram{}, false
	}
}

// LocalIdentity returns the identity this port was attached with.
func (p *BusPort) LocalIdentity() string {
	return p.identity
}

// Close detaches the port from the bus.
func (p *BusPort) Close() error {
	p.bus.mu.Lock()
	defer p.bus.mu.Unlock()
	p.closed = true
	delete(p.bus.ports, p.identity)
	return nil
}

// SetPartitioned isolates the port in both directions, simulating a node
// that dropped off the segment without leaving.
func (p *BusPort) SetPartitioned(v bool) {
	p.bus.mu.Lock()
	defer p.bus.mu.Unlock()
	p.partitioned = v
}
