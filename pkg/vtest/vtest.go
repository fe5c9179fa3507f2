package vtest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/vango-dev/vloop/pkg/vdom"
)

// NodeType is the kind of an in-memory node.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

// Node is an in-memory host node.
type Node struct {
	ID       int
	Type     NodeType
	Tag      string
	Text     string
	Props    map[string]any
	Style    map[string]string
	Parent   *Node
	Children []*Node
}

// OpKind is the kind of a recorded host operation.
type OpKind uint8

const (
	OpCreateElement OpKind = iota
	OpCreateText
	OpCreateComment
	OpSetText
	OpSetElementText
	OpInsert
	OpMove
	OpRemove
	OpSetProp
	OpClearProp
)

var opNames = [...]string{
	OpCreateElement:  "CreateElement",
	OpCreateText:     "CreateText",
	OpCreateComment:  "CreateComment",
	OpSetText:        "SetText",
	OpSetElementText: "SetElementText",
	OpInsert:         "Insert",
	OpMove:           "Move",
	OpRemove:         "Remove",
	OpSetProp:        "SetProp",
	OpClearProp:      "ClearProp",
}

// String returns the operation name.
func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", k)
}

// Op is one recorded host operation.
type Op struct {
	Kind   OpKind
	Node   int
	Parent int
	Anchor int
	Key    string
	Value  any
	Text   string
}

// String returns a compact description such as "Move 4 -> 1 before 3".
func (o Op) String() string {
	switch o.Kind {
	case OpInsert, OpMove:
		if o.Anchor != 0 {
			return fmt.Sprintf("%s %d -> %d before %d", o.Kind, o.Node, o.Parent, o.Anchor)
		}
		return fmt.Sprintf("%s %d -> %d", o.Kind, o.Node, o.Parent)
	case OpSetProp, OpClearProp:
		return fmt.Sprintf("%s %d %s=%v", o.Kind, o.Node, o.Key, o.Value)
	case OpCreateElement:
		return fmt.Sprintf("%s %d <%s>", o.Kind, o.Node, o.Text)
	default:
		return fmt.Sprintf("%s %d %q", o.Kind, o.Node, o.Text)
	}
}

// Host is a headless vdom.Host that records operations.
type Host struct {
	nextID int
	ops    []Op
}

var (
	_ vdom.Host      = (*Host)(nil)
	_ vdom.Navigator = (*Host)(nil)
)

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{}
}

func (h *Host) newNode(t NodeType) *Node {
	h.nextID++
	return &Node{ID: h.nextID, Type: t}
}

// NewContainer creates a detached root element to render into. It is not
// recorded as an operation.
func (h *Host) NewContainer() *Node {
	n := h.newNode(ElementNode)
	n.Tag = "root"
	return n
}

func (h *Host) record(op Op) {
	h.ops = append(h.ops, op)
}

func asNode(n vdom.Node) *Node {
	if n == nil {
		return nil
	}
	node, ok := n.(*Node)
	if !ok {
		panic(fmt.Sprintf("vtest: foreign node %T", n))
	}
	return node
}

func idOf(n *Node) int {
	if n == nil {
		return 0
	}
	return n.ID
}

// CreateElement implements vdom.Host.
func (h *Host) CreateElement(tag string) vdom.Node {
	n := h.newNode(ElementNode)
	n.Tag = tag
	h.record(Op{Kind: OpCreateElement, Node: n.ID, Text: tag})
	return n
}

// CreateText implements vdom.Host.
func (h *Host) CreateText(text string) vdom.Node {
	n := h.newNode(TextNode)
	n.Text = text
	h.record(Op{Kind: OpCreateText, Node: n.ID, Text: text})
	return n
}

// CreateComment implements vdom.Host.
func (h *Host) CreateComment(text string) vdom.Node {
	n := h.newNode(CommentNode)
	n.Text = text
	h.record(Op{Kind: OpCreateComment, Node: n.ID, Text: text})
	return n
}

// SetText implements vdom.Host.
func (h *Host) SetText(node vdom.Node, text string) {
	n := asNode(node)
	n.Text = text
	h.record(Op{Kind: OpSetText, Node: n.ID, Text: text})
}

// SetElementText implements vdom.Host.
func (h *Host) SetElementText(el vdom.Node, text string) {
	n := asNode(el)
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	if text != "" {
		h.nextID++
		n.Children = []*Node{{ID: h.nextID, Type: TextNode, Text: text, Parent: n}}
	}
	h.record(Op{Kind: OpSetElementText, Node: n.ID, Text: text})
}

// Insert implements vdom.Host. Inserting an attached node records a move.
func (h *Host) Insert(child, parent, anchor vdom.Node) {
	c, p, a := asNode(child), asNode(parent), asNode(anchor)
	kind := OpInsert
	if c.Parent != nil {
		kind = OpMove
		detach(c)
	}
	idx := len(p.Children)
	if a != nil {
		idx = indexOf(p, a)
		if idx < 0 {
			panic(fmt.Sprintf("vtest: anchor %d is not a child of %d", a.ID, p.ID))
		}
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = c
	c.Parent = p
	h.record(Op{Kind: kind, Node: c.ID, Parent: p.ID, Anchor: idOf(a)})
}

// Remove implements vdom.Host.
func (h *Host) Remove(node vdom.Node) {
	n := asNode(node)
	detach(n)
	h.record(Op{Kind: OpRemove, Node: n.ID})
}

// PatchProp implements vdom.Host. A style prop given as a map is applied
// property by property.
func (h *Host) PatchProp(el vdom.Node, key string, prev, next any) {
	n := asNode(el)
	if next == nil {
		delete(n.Props, key)
		if key == "style" {
			n.Style = nil
		}
		h.record(Op{Kind: OpClearProp, Node: n.ID, Key: key, Value: prev})
		return
	}
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[key] = next
	if style, ok := next.(map[string]string); ok && key == "style" {
		prevStyle, _ := prev.(map[string]string)
		set, removed := vdom.StyleDiff(prevStyle, style)
		if n.Style == nil {
			n.Style = make(map[string]string)
		}
		for k, v := range set {
			n.Style[k] = v
		}
		for _, k := range removed {
			delete(n.Style, k)
		}
	}
	h.record(Op{Kind: OpSetProp, Node: n.ID, Key: key, Value: next})
}

// NextSibling implements vdom.Navigator.
func (h *Host) NextSibling(node vdom.Node) vdom.Node {
	n := asNode(node)
	if n.Parent == nil {
		return nil
	}
	i := indexOf(n.Parent, n)
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

func indexOf(parent, child *Node) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func detach(n *Node) {
	p := n.Parent
	if p == nil {
		return
	}
	if i := indexOf(p, n); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// Ops returns the recorded operations since the last Reset.
func (h *Host) Ops() []Op {
	return h.ops
}

// Count returns how many operations of kind were recorded.
func (h *Host) Count(kind OpKind) int {
	n := 0
	for _, op := range h.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Props returns the keys of the SetProp or ClearProp operations recorded.
func (h *Host) Props(kind OpKind) []string {
	var keys []string
	for _, op := range h.ops {
		if op.Kind == kind {
			keys = append(keys, op.Key)
		}
	}
	return keys
}

// Reset forgets the recorded operations. The node tree is kept.
func (h *Host) Reset() {
	h.ops = nil
}

// Serialize renders the children of n as compact markup: elements with
// sorted attributes, text as is, comments as <!--x-->.
func Serialize(n *Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		writeNode(&b, c)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		b.WriteString(n.Text)
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
	default:
		b.WriteString("<")
		b.WriteString(n.Tag)
		keys := make([]string, 0, len(n.Props))
		for k := range n.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "style" {
				continue
			}
			if reflect.ValueOf(n.Props[k]).Kind() == reflect.Func {
				fmt.Fprintf(b, " %s", k)
				continue
			}
			fmt.Fprintf(b, " %s=%q", k, fmt.Sprint(n.Props[k]))
		}
		if len(n.Style) > 0 {
			fmt.Fprintf(b, " style=%q", styleString(n.Style))
		}
		b.WriteString(">")
		for _, c := range n.Children {
			writeNode(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteString(">")
	}
}

func styleString(style map[string]string) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + style[k]
	}
	return strings.Join(parts, ";")
}

// ChildTexts returns the text content of each child of n.
func ChildTexts(n *Node) []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = TextContent(c)
	}
	return out
}

// TextContent concatenates all text below n.
func TextContent(n *Node) string {
	if n.Type != ElementNode {
		if n.Type == TextNode {
			return n.Text
		}
		return ""
	}
	var b strings.Builder
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == TextNode {
			b.WriteString(top.Text)
			continue
		}
		for i := len(top.Children) - 1; i >= 0; i-- {
			stack = append(stack, top.Children[i])
		}
	}
	return b.String()
}

// ExpectSerialized fails t if the serialized children of n differ from want.
func ExpectSerialized(t testing.TB, n *Node, want string) {
	t.Helper()
	if got := Serialize(n); got != want {
		t.Errorf("Serialize() =\n  %s\nwant\n  %s", got, want)
	}
}

// ExpectOps fails t unless exactly want operations of kind were recorded.
func ExpectOps(t testing.TB, h *Host, kind OpKind, want int) {
	t.Helper()
	if got := h.Count(kind); got != want {
		t.Errorf("%s ops = %d, want %d\n%s", kind, got, want, h.Dump())
	}
}

// Dump lists the recorded operations, one per line.
func (h *Host) Dump() string {
	var b strings.Builder
	for _, op := range h.ops {
		b.WriteString("  ")
		b.WriteString(op.String())
		b.WriteString("\n")
	}
	return b.String()
}
