package wire

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "plain member",
			msg:  Message{Master: false, Light: 1234, Order: 2},
			want: "0,1234,2,0",
		},
		{
			name: "master",
			msg:  Message{Master: true, Light: 4095, Order: 0},
			want: "1,4095,0,0",
		},
		{
			name: "reset record",
			msg:  ResetMessage(),
			want: "0,0,255,1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(tt.msg.Encode())
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Message
		wantErr bool
	}{
		{
			name:    "plain member",
			payload: "0,800,3,0",
			want:    Message{Light: 800, Order: 3},
		},
		{
			name:    "master with trailing newline",
			payload: "1,950,1,0\n",
			want:    Message{Master: true, Light: 950, Order: 1},
		},
		{
			name:    "reset",
			payload: "0,0,255,1",
			want:    Message{Order: 255, Reset: true},
		},
		{
			name:    "three fields",
			payload: "1,950,1",
			wantErr: true,
		},
		{
			name:    "five fields",
			payload: "1,950,1,0,7",
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: "",
			wantErr: true,
		},
		{
			name:    "non-numeric light",
			payload: "0,bright,1,0",
			wantErr: true,
		},
		{
			name:    "flag out of range",
			payload: "2,100,1,0",
			wantErr: true,
		},
		{
			name:    "reset flag out of range",
			payload: "0,100,1,9",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode(%q) expected error, got %+v", tt.payload, got)
				}
				if !errors.Is(err, ErrBadRecord) {
					t.Errorf("Expected ErrBadRecord, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.payload, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	msg := Message{Master: true, Light: 2048, Order: 7}
	got, err := Decode(msg.Encode())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != msg {
		t.Errorf("Round trip = %+v, want %+v", got, msg)
	}
}
