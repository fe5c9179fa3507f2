package protocol

import (
	"errors"
	"io"
)

const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 6

	// MaxPayloadSize bounds a single frame payload (16MB).
	MaxPayloadSize = 16 * 1024 * 1024
)

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FramePatches FrameType = 0x01 // Server → client host operations
	FrameEvent   FrameType = 0x02 // Client → server event on a node
	FrameError   FrameType = 0x03 // Error report, either direction
)

// String returns the frame type name.
func (ft FrameType) String() string {
	switch ft {
	case FramePatches:
		return "Patches"
	case FrameEvent:
		return "Event"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags modify how a frame is processed.
type FrameFlags uint8

const (
	// FlagReset marks a patches frame that rebuilds the tree from an empty
	// root, as sent on connect.
	FlagReset FrameFlags = 0x01
)

// Has reports whether flag is set.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a typed payload with a fixed header.
//
// Wire format:
//
//	┌────────────┬───────────┬──────────────────────────────┐
//	│ Frame Type │ Flags     │ Payload Length               │
//	│ (1 byte)   │ (1 byte)  │ (4 bytes, big-endian)        │
//	└────────────┴───────────┴──────────────────────────────┘
//	│  Payload (variable length)                            │
//	└───────────────────────────────────────────────────────┘
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame without flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the frame header and payload as one slice.
func (f *Frame) Encode() []byte {
	e := &Encoder{buf: make([]byte, 0, FrameHeaderSize+len(f.Payload))}
	f.EncodeTo(e)
	return e.Bytes()
}

// EncodeTo appends the frame to e.
func (f *Frame) EncodeTo(e *Encoder) {
	e.WriteByte(byte(f.Type))
	e.WriteByte(byte(f.Flags))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
}

// DecodeFrame decodes one complete frame. Trailing bytes are ignored.
func DecodeFrame(data []byte) (*Frame, error) {
	ft, flags, length, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < FrameHeaderSize+length {
		return nil, ErrBufferTooShort
	}
	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:])
	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}

func decodeHeader(header []byte) (FrameType, FrameFlags, int, error) {
	if len(header) < FrameHeaderSize {
		return 0, 0, 0, ErrBufferTooShort
	}
	ft := FrameType(header[0])
	if ft < FramePatches || ft > FrameError {
		return 0, 0, 0, ErrInvalidFrameType
	}
	d := NewDecoder(header[2:FrameHeaderSize])
	length, _ := d.ReadUint32()
	if length > MaxPayloadSize {
		return 0, 0, 0, ErrFrameTooLarge
	}
	return ft, FrameFlags(header[1]), int(length), nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	ft, flags, length, err := decodeHeader(header)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
