package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	f := &Frame{Type: FramePatches, Flags: FlagReset, Payload: []byte("payload")}

	data := f.Encode()
	if len(data) != FrameHeaderSize+7 {
		t.Fatalf("len = %d, want %d", len(data), FrameHeaderSize+7)
	}

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if got.Type != FramePatches || !got.Flags.Has(FlagReset) || string(got.Payload) != "payload" {
		t.Errorf("DecodeFrame() = %+v", got)
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	frames := []*Frame{
		NewFrame(FramePatches, []byte{1, 2, 3}),
		NewFrame(FrameEvent, nil),
		NewFrame(FrameError, []byte("x")),
	}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}
	for _, want := range frames {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}
		if got.Type != want.Type || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("ReadFrame() = %v %v, want %v %v", got.Type, got.Payload, want.Type, want.Payload)
		}
	}
	if _, err := ReadFrame(&buf); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame() at end = %v, want EOF", err)
	}
}

func TestFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0x01, 0x00}, ErrBufferTooShort},
		{"unknown type", []byte{0x09, 0, 0, 0, 0, 0}, ErrInvalidFrameType},
		{"too large", []byte{0x01, 0, 0xFF, 0xFF, 0xFF, 0xFF}, ErrFrameTooLarge},
		{"short payload", []byte{0x01, 0, 0, 0, 0, 4, 'a'}, ErrBufferTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeFrame(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("DecodeFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		ft   FrameType
		want string
	}{
		{FramePatches, "Patches"},
		{FrameEvent, "Event"},
		{FrameError, "Error"},
		{FrameType(0x7F), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.want {
			t.Errorf("FrameType(%d).String() = %q, want %q", tt.ft, got, tt.want)
		}
	}
}
