package transport

// Datagram is one received broadcast with its sender's identity.
type Datagram struct {
	Payload []byte
	Sender  string
}

// Transport is the broadcast medium a node participates in.
type Transport interface {
	// Send broadcasts payload to the whole group. Best effort.
	Send(payload []byte) error
	// Recv returns the next pending datagram without blocking. The
	// second return is false when nothing is waiting.
	Recv() (Datagram, bool)
	// LocalIdentity is this endpoint's identity as peers will see it.
	LocalIdentity() string
	// Close releases the underlying medium.
	Close() error
}
