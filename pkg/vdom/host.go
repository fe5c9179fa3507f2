package vdom

// Node is an opaque host node handle: a DOM node, a terminal cell tree
// entry, an id on the wire. The Renderer only stores and passes it back.
type Node any

// Host is the set of operations the Renderer needs from a host environment.
type Host interface {
	// CreateElement creates a detached element.
	CreateElement(tag string) Node

	// CreateText creates a detached text node.
	CreateText(text string) Node

	// CreateComment creates a detached comment node.
	CreateComment(text string) Node

	// SetText replaces the content of a text or comment node.
	SetText(node Node, text string)

	// SetElementText replaces all children of el with a single text.
	SetElementText(el Node, text string)

	// Insert places child into parent before anchor, or last when anchor is
	// nil. Inserting an attached node moves it.
	Insert(child, parent, anchor Node)

	// Remove detaches node from its parent.
	Remove(node Node)

	// PatchProp applies one prop change. next is nil when the prop was
	// removed.
	PatchProp(el Node, key string, prev, next any)
}

// Navigator is implemented by hosts that can report tree positions. The
// Renderer uses it to find where a re-rendering component sits among its
// siblings.
type Navigator interface {
	NextSibling(node Node) Node
}
