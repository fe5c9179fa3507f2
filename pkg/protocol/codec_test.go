package protocol

import (
	"errors"
	"math"
	"testing"
)

func TestEncoderDecoder(t *testing.T) {
	e := NewEncoder()
	e.WriteByte(0x42)
	e.WriteUvarint(12345)
	e.WriteSvarint(-9876)
	e.WriteString("hello world")
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteUint32(0x12345678)
	e.WriteFloat64(2.718281828459045)

	d := NewDecoder(e.Bytes())

	if b, err := d.ReadByte(); err != nil || b != 0x42 {
		t.Errorf("ReadByte() = %x, %v; want 0x42, nil", b, err)
	}
	if uv, err := d.ReadUvarint(); err != nil || uv != 12345 {
		t.Errorf("ReadUvarint() = %d, %v; want 12345, nil", uv, err)
	}
	if sv, err := d.ReadSvarint(); err != nil || sv != -9876 {
		t.Errorf("ReadSvarint() = %d, %v; want -9876, nil", sv, err)
	}
	if s, err := d.ReadString(); err != nil || s != "hello world" {
		t.Errorf("ReadString() = %q, %v; want \"hello world\", nil", s, err)
	}
	if b, err := d.ReadBool(); err != nil || !b {
		t.Errorf("ReadBool() = %v, %v; want true, nil", b, err)
	}
	if b, err := d.ReadBool(); err != nil || b {
		t.Errorf("ReadBool() = %v, %v; want false, nil", b, err)
	}
	if v, err := d.ReadUint32(); err != nil || v != 0x12345678 {
		t.Errorf("ReadUint32() = %x, %v", v, err)
	}
	if f, err := d.ReadFloat64(); err != nil || f != 2.718281828459045 {
		t.Errorf("ReadFloat64() = %v, %v", f, err)
	}
	if !d.EOF() || d.Remaining() != 0 {
		t.Errorf("decoder not at EOF, %d bytes left", d.Remaining())
	}
}

func TestVarintEdges(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil || got != v {
			t.Errorf("svarint %d round trip = %d, %v", v, got, err)
		}
	}

	e := NewEncoder()
	e.WriteUvarint(math.MaxUint64)
	if e.Len() != 10 {
		t.Errorf("MaxUint64 len = %d, want 10", e.Len())
	}
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(d *Decoder) error
		want error
	}{
		{"empty byte", nil, func(d *Decoder) error { _, err := d.ReadByte(); return err }, ErrBufferTooShort},
		{"truncated varint", []byte{0x80}, func(d *Decoder) error { _, err := d.ReadUvarint(); return err }, ErrBufferTooShort},
		{"varint overflow", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01},
			func(d *Decoder) error { _, err := d.ReadUvarint(); return err }, ErrVarintOverflow},
		{"string past end", []byte{0x05, 'a'}, func(d *Decoder) error { _, err := d.ReadString(); return err }, ErrBufferTooShort},
		{"bad bool", []byte{0x02}, func(d *Decoder) error { _, err := d.ReadBool(); return err }, ErrInvalidBool},
		{"short uint32", []byte{1, 2}, func(d *Decoder) error { _, err := d.ReadUint32(); return err }, ErrBufferTooShort},
		{"short float", []byte{1, 2, 3}, func(d *Decoder) error { _, err := d.ReadFloat64(); return err }, ErrBufferTooShort},
		{"count past end", []byte{0x03, 0x00}, func(d *Decoder) error { _, err := d.ReadCount(); return err }, ErrBufferTooShort},
		{"count too large", []byte{0xA1, 0x8D, 0x06}, func(d *Decoder) error { _, err := d.ReadCount(); return err }, ErrCollectionTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewDecoder(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteString("abc")
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", e.Len())
	}
}
