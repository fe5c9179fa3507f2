package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is returned when a payload holds an operation or value kind
// this version does not know.
var ErrUnknownOp = errors.New("protocol: unknown operation")

// NodeID names a host node on both ends of a connection.
type NodeID uint32

// RootID is the container every session renders into. Node IDs handed out
// by a Host start after it.
const RootID NodeID = 1

// OpKind is the type of a host operation.
type OpKind uint8

const (
	OpCreateElement  OpKind = 0x01 // Create a detached element
	OpCreateText     OpKind = 0x02 // Create a detached text node
	OpCreateComment  OpKind = 0x03 // Create a detached comment
	OpSetText        OpKind = 0x04 // Replace text or comment content
	OpSetElementText OpKind = 0x05 // Replace all children with text
	OpInsert         OpKind = 0x06 // Insert or move before an anchor
	OpRemove         OpKind = 0x07 // Detach a node
	OpPatchProp      OpKind = 0x08 // Set or clear a prop
	OpSetStyle       OpKind = 0x09 // Set one style property
	OpRemoveStyle    OpKind = 0x0A // Remove one style property
)

var opNames = map[OpKind]string{
	OpCreateElement:  "CreateElement",
	OpCreateText:     "CreateText",
	OpCreateComment:  "CreateComment",
	OpSetText:        "SetText",
	OpSetElementText: "SetElementText",
	OpInsert:         "Insert",
	OpRemove:         "Remove",
	OpPatchProp:      "PatchProp",
	OpSetStyle:       "SetStyle",
	OpRemoveStyle:    "RemoveStyle",
}

// String returns the operation name.
func (k OpKind) String() string {
	if s, ok := opNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Op is one host operation.
type Op struct {
	Kind   OpKind
	Node   NodeID
	Parent NodeID // Insert
	Anchor NodeID // Insert, 0 appends
	Text   string // Tag for CreateElement, content for text ops
	Key    string // Prop or style property
	Value  Value  // PatchProp
}

// String returns a compact description for logs.
func (op Op) String() string {
	switch op.Kind {
	case OpInsert:
		return fmt.Sprintf("Insert %d -> %d before %d", op.Node, op.Parent, op.Anchor)
	case OpRemove:
		return fmt.Sprintf("Remove %d", op.Node)
	case OpPatchProp:
		return fmt.Sprintf("PatchProp %d %s=%s", op.Node, op.Key, op.Value)
	case OpSetStyle:
		return fmt.Sprintf("SetStyle %d %s=%s", op.Node, op.Key, op.Text)
	case OpRemoveStyle:
		return fmt.Sprintf("RemoveStyle %d %s", op.Node, op.Key)
	default:
		return fmt.Sprintf("%s %d %q", op.Kind, op.Node, op.Text)
	}
}

// PatchesFrame is the ordered list of operations produced by one flush.
type PatchesFrame struct {
	Seq uint64
	Ops []Op
}

// EncodePatches encodes pf.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo appends pf to e.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Ops)))
	for i := range pf.Ops {
		encodeOp(e, &pf.Ops[i])
	}
}

func encodeOp(e *Encoder, op *Op) {
	e.WriteByte(byte(op.Kind))
	e.WriteUvarint(uint64(op.Node))

	switch op.Kind {
	case OpCreateElement, OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		e.WriteString(op.Text)
	case OpInsert:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Anchor))
	case OpRemove:
	case OpPatchProp:
		e.WriteString(op.Key)
		EncodeValue(e, op.Value)
	case OpSetStyle:
		e.WriteString(op.Key)
		e.WriteString(op.Text)
	case OpRemoveStyle:
		e.WriteString(op.Key)
	}
}

// DecodePatches decodes a patches payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	return DecodePatchesFrom(NewDecoder(data))
}

// DecodePatchesFrom decodes a patches payload from d.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	ops := make([]Op, count)
	for i := range ops {
		if err := decodeOp(d, &ops[i]); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return &PatchesFrame{Seq: seq, Ops: ops}, nil
}

func decodeOp(d *Decoder, op *Op) error {
	kind, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Kind = OpKind(kind)
	if op.Node, err = readID(d); err != nil {
		return err
	}

	switch op.Kind {
	case OpCreateElement, OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		op.Text, err = d.ReadString()
	case OpInsert:
		if op.Parent, err = readID(d); err != nil {
			return err
		}
		op.Anchor, err = readID(d)
	case OpRemove:
	case OpPatchProp:
		if op.Key, err = d.ReadString(); err != nil {
			return err
		}
		op.Value, err = DecodeValue(d)
	case OpSetStyle:
		if op.Key, err = d.ReadString(); err != nil {
			return err
		}
		op.Text, err = d.ReadString()
	case OpRemoveStyle:
		op.Key, err = d.ReadString()
	default:
		// Ops are not length-prefixed, so an unknown one cannot be skipped.
		return fmt.Errorf("%w: 0x%02x", ErrUnknownOp, kind)
	}
	return err
}

func readID(d *Decoder) (NodeID, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > uint64(^NodeID(0)) {
		return 0, ErrVarintOverflow
	}
	return NodeID(v), nil
}

// Event reports that the user triggered a handler prop on a node.
type Event struct {
	Node NodeID
	Name string // Prop key, such as "onclick"
	Data string
}

// EncodeEvent encodes ev.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(ev.Node))
	e.WriteString(ev.Name)
	e.WriteString(ev.Data)
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	id, err := readID(d)
	if err != nil {
		return nil, err
	}
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	payload, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &Event{Node: id, Name: name, Data: payload}, nil
}
