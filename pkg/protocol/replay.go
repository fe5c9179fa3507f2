package protocol

import (
	"maps"

	verrors "github.com/vango-dev/vloop/internal/errors"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// Replayer applies patches frames to a local vdom.Host, mirroring the
// server's tree on the receiving end. Handler props are installed as funcs
// that report an Event through the callback given to NewReplayer.
type Replayer struct {
	host    vdom.Host
	root    vdom.Node
	onEvent func(*Event)

	nodes   map[NodeID]vdom.Node
	parents map[NodeID]NodeID
	props   map[NodeID]map[string]any
	styles  map[NodeID]map[string]string
	lastSeq uint64
}

// NewReplayer creates a replayer rendering into root on host. onEvent may
// be nil.
func NewReplayer(host vdom.Host, root vdom.Node, onEvent func(*Event)) *Replayer {
	r := &Replayer{host: host, root: root, onEvent: onEvent}
	r.clear()
	return r
}

func (r *Replayer) clear() {
	r.nodes = map[NodeID]vdom.Node{RootID: r.root}
	r.parents = make(map[NodeID]NodeID)
	r.props = make(map[NodeID]map[string]any)
	r.styles = make(map[NodeID]map[string]string)
	r.lastSeq = 0
}

// LastSeq returns the sequence number of the last applied frame.
func (r *Replayer) LastSeq() uint64 {
	return r.lastSeq
}

// ApplyFrame decodes and applies a patches frame. A frame flagged
// FlagReset first removes everything previously replayed into the root.
func (r *Replayer) ApplyFrame(f *Frame) error {
	if f.Type != FramePatches {
		return verrors.New("E401").Wrap(ErrInvalidFrameType).WithField("type", f.Type.String())
	}
	pf, err := DecodePatches(f.Payload)
	if err != nil {
		return verrors.New("E401").Wrap(err)
	}
	if f.Flags.Has(FlagReset) {
		for id, parent := range r.parents {
			if parent == RootID {
				r.host.Remove(r.nodes[id])
			}
		}
		r.clear()
	}
	return r.Apply(pf)
}

// Apply applies the ops of pf in order. It stops at the first op naming a
// node it does not know.
func (r *Replayer) Apply(pf *PatchesFrame) error {
	for i := range pf.Ops {
		if err := r.apply(&pf.Ops[i]); err != nil {
			return err
		}
	}
	r.lastSeq = pf.Seq
	return nil
}

func (r *Replayer) lookup(id NodeID) (vdom.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, verrors.New("E403").WithField("node", id)
	}
	return n, nil
}

func (r *Replayer) apply(op *Op) error {
	switch op.Kind {
	case OpCreateElement:
		r.nodes[op.Node] = r.host.CreateElement(op.Text)
		return nil
	case OpCreateText:
		r.nodes[op.Node] = r.host.CreateText(op.Text)
		return nil
	case OpCreateComment:
		r.nodes[op.Node] = r.host.CreateComment(op.Text)
		return nil
	}

	n, err := r.lookup(op.Node)
	if err != nil {
		return err
	}
	switch op.Kind {
	case OpSetText:
		r.host.SetText(n, op.Text)
	case OpSetElementText:
		r.host.SetElementText(n, op.Text)
	case OpInsert:
		parent, err := r.lookup(op.Parent)
		if err != nil {
			return err
		}
		var anchor vdom.Node
		if op.Anchor != 0 {
			if anchor, err = r.lookup(op.Anchor); err != nil {
				return err
			}
		}
		r.host.Insert(n, parent, anchor)
		r.parents[op.Node] = op.Parent
	case OpRemove:
		r.host.Remove(n)
		delete(r.nodes, op.Node)
		delete(r.parents, op.Node)
		delete(r.props, op.Node)
		delete(r.styles, op.Node)
	case OpPatchProp:
		r.patchProp(op.Node, n, op)
	case OpSetStyle, OpRemoveStyle:
		prev := r.styles[op.Node]
		next := maps.Clone(prev)
		if next == nil {
			next = make(map[string]string)
		}
		if op.Kind == OpSetStyle {
			next[op.Key] = op.Text
		} else {
			delete(next, op.Key)
		}
		r.styles[op.Node] = next
		r.host.PatchProp(n, "style", prev, next)
	default:
		return verrors.New("E402").WithField("op", op.Kind.String())
	}
	return nil
}

func (r *Replayer) patchProp(id NodeID, n vdom.Node, op *Op) {
	props := r.props[id]
	if props == nil {
		props = make(map[string]any)
		r.props[id] = props
	}
	prev := props[op.Key]

	var next any
	switch op.Value.Kind {
	case ValueNull:
		delete(props, op.Key)
		if op.Key == "style" {
			prev = r.styles[id]
			delete(r.styles, id)
		}
	case ValueHandler:
		ev := &Event{Node: id, Name: op.Key}
		next = func() {
			if r.onEvent != nil {
				r.onEvent(ev)
			}
		}
		props[op.Key] = next
	default:
		next = op.Value.Interface()
		props[op.Key] = next
	}
	r.host.PatchProp(n, op.Key, prev, next)
}
