// Package wire implements the four-field text record the swarm exchanges
// over multicast: "master,light,order,reset" with 0/1 flags and decimal
// integers. The format is fixed by the deployed ESP32 firmware, so
// decoding is strict: anything that is not exactly four well-formed
// fields is discarded by the caller with no further propagation.
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadRecord marks a datagram that does not parse as a protocol record.
var ErrBadRecord = errors.New("wire: malformed record")

// Delimiter separates the four fields on the wire.
const Delimiter = ","

// ResetOrder is the join-order field carried by reset records. The value
// is a sentinel from the original fleet tooling and is never applied to
// any membership entry.
const ResetOrder = 255

// Message is one decoded protocol record.
type Message struct {
	Master bool // sender currently believes it is the leader
	Light  int  // sender's light reading, 0-4095
	Order  int  // sender's join order
	Reset  bool // coordinated-restart trigger; short-circuits field application
}

// ResetMessage returns the fleet-wide restart record, "0,0,255,1".
func ResetMessage() Message {
	return Message{Order: ResetOrder, Reset: true}
}

// Encode renders m in wire order.
func (m Message) Encode() []byte {
	return []byte(fmt.Sprintf("%d%s%d%s%d%s%d",
		flag(m.Master), Delimiter, m.Light, Delimiter, m.Order, Delimiter, flag(m.Reset)))
}

// Decode parses a datagram payload. It returns ErrBadRecord unless the
// payload splits into exactly four fields, the flags are strictly 0 or 1,
// and the integer fields parse.
func Decode(payload []byte) (Message, error) {
	parts := strings.Split(strings.TrimSpace(string(payload)), Delimiter)
	if len(parts) != 4 {
		return Message{}, fmt.Errorf("%w: %d fields", ErrBadRecord, len(parts))
	}

	master, err := parseFlag(parts[0])
	if err != nil {
		return Message{}, err
	}
	light, err := parseInt(parts[1])
	if err != nil {
		return Message{}, err
	}
	order, err := parseInt(parts[2])
	if err != nil {
		return Message{}, err
	}
	reset, err := parseFlag(parts[3])
	if err != nil {
		return Message{}, err
	}

	return Message{Master: master, Light: light, Order: order, Reset: reset}, nil
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseFlag(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("%w: flag %q", ErrBadRecord, s)
	}
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q", ErrBadRecord, s)
	}
	return v, nil
}
