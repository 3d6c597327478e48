package transport

import (
	"testing"
)

func TestBus_BroadcastReachesOthersNotSelf(t *testing.T) {
	bus := NewBus()
	a := bus.Port("10.0.0.1")
	b := bus.Port("10.0.0.2")
	c := bus.Port("10.0.0.3")

	if err := a.Send([]byte("hello")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	for _, p := range []*BusPort{b, c} {
		d, ok := p.Recv()
		if !ok {
			t.Fatalf("Port %s expected a datagram", p.LocalIdentity())
		}
		if string(d.Payload) != "hello" {
			t.Errorf("Expected payload hello, got %q", d.Payload)
		}
		if d.Sender != "10.0.0.1" {
			t.Errorf("Expected sender 10.0.0.1, got %s", d.Sender)
		}
	}

	if _, ok := a.Recv(); ok {
		t.Error("Sender should not receive its own broadcast")
	}
}

func TestBus_RecvIsNonBlocking(t *testing.T) {
	bus := NewBus()
	p := bus.Port("10.0.0.1")
	if _, ok := p.Recv(); ok {
		t.Error("Expected no datagram on fresh port")
	}
}

func TestBus_Partition(t *testing.T) {
	bus := NewBus()
	a := bus.Port("10.0.0.1")
	b := bus.Port("10.0.0.2")

	b.SetPartitioned(true)
	a.Send([]byte("x"))
	if _, ok := b.Recv(); ok {
		t.Error("Partitioned port should not receive")
	}

	b.Send([]byte("y"))
	if _, ok := a.Recv(); ok {
		t.Error("Broadcast from partitioned port should not arrive")
	}

	b.SetPartitioned(false)
	a.Send([]byte("z"))
	if d, ok := b.Recv(); !ok || string(d.Payload) != "z" {
		t.Error("Healed port should receive again")
	}
}

func TestBus_ClosedPortStopsReceiving(t *testing.T) {
	bus := NewBus()
	a := bus.Port("10.0.0.1")
	b := bus.Port("10.0.0.2")

	b.Close()
	a.Send([]byte("x"))
	if _, ok := b.Recv(); ok {
		t.Error("Closed port should not receive")
	}
}

func TestBus_PayloadIsCopied(t *testing.T) {
	bus := NewBus()
	a := bus.Port("10.0.0.1")
	b := bus.Port("10.0.0.2")

	payload := []byte("abc")
	a.Send(payload)
	payload[0] = 'z'

	d, ok := b.Recv()
	if !ok {
		t.Fatal("Expected a datagram")
	}
	if string(d.Payload) != "abc" {
		t.Errorf("Payload should be copied at send time, got %q", d.Payload)
	}
}
