package vdom

import "reflect"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <li>, etc.
	KindText                   // Plain text node
	KindComment                // Comment, also used as an empty placeholder
	KindFragment               // Grouping without a host node
	KindComponent              // Nested component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// ShapeFlag classifies a node and its children.
type ShapeFlag uint16

const (
	ShapeElement ShapeFlag = 1 << iota
	ShapeComponent
	ShapeTextChildren
	ShapeArrayChildren
)

// Has reports whether all bits of flag are set.
func (s ShapeFlag) Has(flag ShapeFlag) bool {
	return s&flag == flag
}

// VNode describes one node of one version of a UI tree.
//
// A VNode is realized at most once. El, and Instance for components, are
// filled in by the Renderer and handed from the old node to the new one on
// every patch, so the previous tree stays a valid input for the next diff.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Comp     Component // For KindComponent
	Props    Props     // Attributes, ordered
	Children []*VNode  // Child nodes, or component slot content
	Text     string    // Text/comment content, or element text children
	Key      string    // Reconciliation key, "" for none
	Shape    ShapeFlag // Set by the builders, derived on first use otherwise

	// El is the realized host node. Nil for fragments and components.
	El Node

	// Instance is the component instance of a mounted component node.
	Instance *Instance
}

// shape returns the shape flags, deriving them if the node was built by
// hand.
func (v *VNode) shape() ShapeFlag {
	if v.Shape == 0 {
		v.Shape = computeShape(v)
	}
	return v.Shape
}

func computeShape(v *VNode) ShapeFlag {
	var s ShapeFlag
	switch v.Kind {
	case KindElement:
		s = ShapeElement
		if len(v.Children) > 0 {
			s |= ShapeArrayChildren
		} else if v.Text != "" {
			s |= ShapeTextChildren
		}
	case KindComponent:
		s = ShapeComponent
	case KindFragment:
		s = ShapeArrayChildren
	}
	return s
}

// HasKey reports whether the node carries a reconciliation key.
func (v *VNode) HasKey() bool {
	return v != nil && v.Key != ""
}

// SameVNode reports whether old can be patched into new in place: same kind,
// same type and same key. Anything else is replaced.
func SameVNode(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Key != b.Key {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindComponent:
		return sameComponent(a.Comp, b.Comp)
	}
	return true
}

// sameComponent compares component definitions. Definitions whose dynamic
// type is not comparable never match.
func sameComponent(a, b Component) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// firstHostNode returns the first realized host node of v's subtree.
func firstHostNode(v *VNode) Node {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindFragment:
		for _, c := range v.Children {
			if n := firstHostNode(c); n != nil {
				return n
			}
		}
		return nil
	case KindComponent:
		if v.Instance == nil {
			return nil
		}
		return firstHostNode(v.Instance.subTree)
	default:
		return v.El
	}
}

// lastHostNode returns the last realized host node of v's subtree.
func lastHostNode(v *VNode) Node {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindFragment:
		for i := len(v.Children) - 1; i >= 0; i-- {
			if n := lastHostNode(v.Children[i]); n != nil {
				return n
			}
		}
		return nil
	case KindComponent:
		if v.Instance == nil {
			return nil
		}
		return lastHostNode(v.Instance.subTree)
	default:
		return v.El
	}
}

// firstHostIn returns the first host node among list[from:], or fallback.
func firstHostIn(list []*VNode, from int, fallback Node) Node {
	for i := from; i < len(list); i++ {
		if n := firstHostNode(list[i]); n != nil {
			return n
		}
	}
	return fallback
}
