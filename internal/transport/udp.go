package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/ipv4"
)

const (
	// recvBuffer bounds pending datagrams; overflow is dropped like any
	// other loss on the medium.
	recvBuffer = 256
	// maxDatagram is generous for a four-field text record.
	maxDatagram = 1024
	// multicastTTL matches the fleet tooling (local segment plus one hop).
	multicastTTL = 2
)

// UDP is the multicast group transport. One reader goroutine drains the
// socket into a bounded channel so Recv never blocks the control loop.
type UDP struct {
	group    *net.UDPAddr
	conn     net.PacketConn
	pconn    *ipv4.PacketConn
	identity string
	inbox    chan Datagram
	log      *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewUDP joins the multicast group on port and starts receiving. If
// identity is empty the local address facing the group is detected.
func NewUDP(group string, port int, identity string, log *zap.Logger) (*UDP, error) {
	gip := net.ParseIP(group)
	if gip == nil || !gip.IsMulticast() {
		return nil, fmt.Errorf("transport: %q is not a multicast group", group)
	}
	gaddr := &net.UDPAddr{IP: gip, Port: port}

	if identity == "" {
		detected, err := detectIdentity(gaddr)
		if err != nil {
			return nil, err
		}
		identity = detected
	}

	conn, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("transport: bind port %d: %w", port, err)
	}

	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.JoinGroup(nil, &net.UDPAddr{IP: gip}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: join group %s: %w", group, err)
	}
	if err := pconn.SetMulticastTTL(multicastTTL); err != nil {
		log.Warn("set multicast ttl failed", zap.Error(err))
	}
	// The coordinator refreshes its own table entry directly, so echoes
	// of our own broadcasts are just noise.
	if err := pconn.SetMulticastLoopback(false); err != nil {
		log.Warn("disable multicast loopback failed", zap.Error(err))
	}

	t := &UDP{
		group:    gaddr,
		conn:     conn,
		pconn:    pconn,
		identity: identity,
		inbox:    make(chan Datagram, recvBuffer),
		log:      log,
		done:     make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

func (t *UDP) readLoop() {
	buf := make([]byte, maxDatagram)
	for {
		n, _, src, err := t.pconn.ReadFrom(buf)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			// Receive failure is indistinguishable from silence.
			t.log.Debug("multicast read failed", zap.Error(err))
			continue
		}

		sender := ""
		if udp, ok := src.(*net.UDPAddr); ok {
			sender = udp.IP.String()
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])

		select {
		case t.inbox <- Datagram{Payload: payload, Sender: sender}:
		default:
			// Inbox full: the medium is lossy, let this one go.
		}
	}
}

// Send broadcasts payload to the group.
func (t *UDP) Send(payload []byte) error {
	if _, err := t.pconn.WriteTo(payload, nil, t.group); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// Recv returns the next pending datagram, if any.
func (t *UDP) Recv() (Datagram, bool) {
	select {
	case d := <-t.inbox:
		return d, true
	default:
		return Datagram{}, false
	}
}

// LocalIdentity returns the identity peers see for this endpoint.
func (t *UDP) LocalIdentity() string {
	return t.identity
}

// Close leaves the group and stops the reader.
func (t *UDP) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		if gerr := t.pconn.LeaveGroup(nil, &net.UDPAddr{IP: t.group.IP}); gerr != nil {
			err = gerr
		}
		if cerr := t.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}

// detectIdentity finds the local address that routes toward the group.
// No packet is sent; connecting a UDP socket only selects a source.
func detectIdentity(group *net.UDPAddr) (string, error) {
	conn, err := net.DialUDP("udp4", nil, group)
	if err != nil {
		return "", fmt.Errorf("transport: detect identity: %w", err)
	}
	defer conn.Close()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || local.IP == nil {
		return "", errors.New("transport: detect identity: no local address")
	}
	return local.IP.String(), nil
}
