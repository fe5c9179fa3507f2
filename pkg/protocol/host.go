package protocol

import (
	"fmt"
	"maps"
	"slices"

	verrors "github.com/vango-dev/vloop/internal/errors"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// Host is a vdom.Host that turns every operation into an Op addressed by
// NodeID. The ops collected between two TakeFrame calls form one patches
// frame, so a session calls TakeFrame once per flush.
//
// Host keeps a skeleton of the tree for NextSibling and for cleaning up
// removed subtrees. Like the renderer driving it, it is not safe for
// concurrent use.
type Host struct {
	nextID   NodeID
	nodes    map[NodeID]*hostNode
	handlers map[NodeID]map[string]any
	ops      []Op
	seq      uint64
}

type hostNode struct {
	id       NodeID
	parent   *hostNode
	children []*hostNode
}

var (
	_ vdom.Host      = (*Host)(nil)
	_ vdom.Navigator = (*Host)(nil)
)

// NewHost creates a host holding only the root container.
func NewHost() *Host {
	return &Host{
		nextID:   RootID,
		nodes:    map[NodeID]*hostNode{RootID: {id: RootID}},
		handlers: make(map[NodeID]map[string]any),
	}
}

// Root returns the container to render into.
func (h *Host) Root() vdom.Node {
	return RootID
}

func (h *Host) node(n vdom.Node) *hostNode {
	id, ok := n.(NodeID)
	if !ok {
		panic(fmt.Sprintf("protocol: foreign node %T", n))
	}
	hn, ok := h.nodes[id]
	if !ok {
		panic(verrors.New("E403").WithField("node", id))
	}
	return hn
}

func (h *Host) create(kind OpKind, text string) vdom.Node {
	h.nextID++
	id := h.nextID
	h.nodes[id] = &hostNode{id: id}
	h.ops = append(h.ops, Op{Kind: kind, Node: id, Text: text})
	return id
}

// CreateElement implements vdom.Host.
func (h *Host) CreateElement(tag string) vdom.Node {
	return h.create(OpCreateElement, tag)
}

// CreateText implements vdom.Host.
func (h *Host) CreateText(text string) vdom.Node {
	return h.create(OpCreateText, text)
}

// CreateComment implements vdom.Host.
func (h *Host) CreateComment(text string) vdom.Node {
	return h.create(OpCreateComment, text)
}

// SetText implements vdom.Host.
func (h *Host) SetText(node vdom.Node, text string) {
	hn := h.node(node)
	h.ops = append(h.ops, Op{Kind: OpSetText, Node: hn.id, Text: text})
}

// SetElementText implements vdom.Host. Any previous children are dropped.
func (h *Host) SetElementText(el vdom.Node, text string) {
	hn := h.node(el)
	for _, c := range hn.children {
		c.parent = nil
		h.forget(c)
	}
	hn.children = nil
	h.ops = append(h.ops, Op{Kind: OpSetElementText, Node: hn.id, Text: text})
}

// Insert implements vdom.Host.
func (h *Host) Insert(child, parent, anchor vdom.Node) {
	c, p := h.node(child), h.node(parent)
	detach(c)
	idx := len(p.children)
	var anchorID NodeID
	if anchor != nil {
		a := h.node(anchor)
		anchorID = a.id
		idx = indexOf(p, a)
		if idx < 0 {
			panic(fmt.Sprintf("protocol: anchor %d is not a child of %d", a.id, p.id))
		}
	}
	p.children = append(p.children, nil)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = c
	c.parent = p
	h.ops = append(h.ops, Op{Kind: OpInsert, Node: c.id, Parent: p.id, Anchor: anchorID})
}

// Remove implements vdom.Host. The node and its subtree are forgotten.
func (h *Host) Remove(node vdom.Node) {
	hn := h.node(node)
	detach(hn)
	h.forget(hn)
	h.ops = append(h.ops, Op{Kind: OpRemove, Node: hn.id})
}

func (h *Host) forget(hn *hostNode) {
	stack := []*hostNode{hn}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(h.nodes, top.id)
		delete(h.handlers, top.id)
		stack = append(stack, top.children...)
	}
}

// PatchProp implements vdom.Host. Style maps are sent property by property.
// Function values are kept on the server and sent as handler markers.
func (h *Host) PatchProp(el vdom.Node, key string, prev, next any) {
	hn := h.node(el)

	if style, ok := next.(map[string]string); ok && key == "style" {
		prevStyle, _ := prev.(map[string]string)
		set, removed := vdom.StyleDiff(prevStyle, style)
		for _, k := range slices.Sorted(maps.Keys(set)) {
			h.ops = append(h.ops, Op{Kind: OpSetStyle, Node: hn.id, Key: k, Text: set[k]})
		}
		for _, k := range removed {
			h.ops = append(h.ops, Op{Kind: OpRemoveStyle, Node: hn.id, Key: k})
		}
		return
	}

	v := ValueOf(next)
	if v.Kind == ValueHandler {
		if h.handlers[hn.id] == nil {
			h.handlers[hn.id] = make(map[string]any)
		}
		h.handlers[hn.id][key] = next
		// The client already holds a listener for this key.
		if ValueOf(prev).Kind == ValueHandler {
			return
		}
	} else {
		delete(h.handlers[hn.id], key)
	}
	h.ops = append(h.ops, Op{Kind: OpPatchProp, Node: hn.id, Key: key, Value: v})
}

// NextSibling implements vdom.Navigator.
func (h *Host) NextSibling(node vdom.Node) vdom.Node {
	hn := h.node(node)
	if hn.parent == nil {
		return nil
	}
	i := indexOf(hn.parent, hn)
	if i < 0 || i+1 >= len(hn.parent.children) {
		return nil
	}
	return hn.parent.children[i+1].id
}

func indexOf(parent, child *hostNode) int {
	for i, c := range parent.children {
		if c == child {
			return i
		}
	}
	return -1
}

func detach(hn *hostNode) {
	p := hn.parent
	if p == nil {
		return
	}
	if i := indexOf(p, hn); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	hn.parent = nil
}

// Pending returns the number of ops not yet taken.
func (h *Host) Pending() int {
	return len(h.ops)
}

// Nodes returns the number of live nodes, the root included.
func (h *Host) Nodes() int {
	return len(h.nodes)
}

// TakePatches returns the collected ops as the next patches frame, or nil
// if nothing changed.
func (h *Host) TakePatches() *PatchesFrame {
	if len(h.ops) == 0 {
		return nil
	}
	h.seq++
	pf := &PatchesFrame{Seq: h.seq, Ops: h.ops}
	h.ops = nil
	return pf
}

// TakeFrame is TakePatches encoded as a frame. The first frame carries
// FlagReset.
func (h *Host) TakeFrame() *Frame {
	pf := h.TakePatches()
	if pf == nil {
		return nil
	}
	f := NewFrame(FramePatches, EncodePatches(pf))
	if pf.Seq == 1 {
		f.Flags |= FlagReset
	}
	return f
}

// Dispatch calls the handler installed under ev.Name on ev.Node. Handlers
// may be func() or func(*Event).
func (h *Host) Dispatch(ev *Event) error {
	if _, ok := h.nodes[ev.Node]; !ok {
		return verrors.New("E403").WithField("node", ev.Node)
	}
	fn, ok := h.handlers[ev.Node][ev.Name]
	if !ok {
		return verrors.New("E403").
			WithDetail(fmt.Sprintf("node %d has no %s handler", ev.Node, ev.Name)).
			WithField("node", ev.Node)
	}
	switch f := fn.(type) {
	case func():
		f()
	case func(*Event):
		f(ev)
	default:
		return verrors.New("E402").
			WithDetail(fmt.Sprintf("handler %s has unsupported type %T", ev.Name, fn))
	}
	return nil
}
