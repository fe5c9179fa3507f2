package vdom

import "fmt"

// textContent marks an element's children as plain text.
type textContent string

// Content makes text the element's only child content. Unlike a Text
// child, it is applied with a single SetElementText.
func Content(text string) any {
	return textContent(text)
}

// H creates an element. Arguments can be: nil, Attr, []Attr, Prop, Props,
// *VNode, []*VNode, string (a text child), Content(...) or a Component.
func H(tag string, args ...any) *VNode {
	return createElement(tag, args)
}

// createElement creates a new VNode with the given tag and arguments.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind: KindElement,
		Tag:  tag,
	}
	hasText := false

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue
		case Attr:
			node.applyAttr(v)
		case []Attr:
			for _, a := range v {
				node.applyAttr(a)
			}
		case Prop:
			node.applyAttr(Attr(v))
		case Props:
			for _, p := range v {
				node.applyAttr(Attr(p))
			}
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}
		case Component:
			node.Children = append(node.Children, C(v))
		case string:
			node.Children = append(node.Children, Text(v))
		case textContent:
			node.Text = string(v)
			hasText = true
		default:
			node.Children = append(node.Children, Text(fmt.Sprint(v)))
		}
	}

	node.Shape = ShapeElement
	switch {
	case len(node.Children) > 0:
		node.Shape |= ShapeArrayChildren
		node.Text = ""
	case hasText:
		node.Shape |= ShapeTextChildren
	}
	return node
}

// applyAttr stores an attribute, routing "key" to the node key and
// normalizing class values.
func (v *VNode) applyAttr(a Attr) {
	switch a.Key {
	case "":
		return
	case "key":
		v.Key = fmt.Sprint(a.Value)
		return
	case "class":
		a.Value = NormalizeClass(a.Value)
	}
	v.Props = v.Props.Set(a.Key, a.Value)
}

// C creates a component node. Arguments are handled like H: attributes
// become props and child nodes become slot content.
func C(comp Component, args ...any) *VNode {
	node := &VNode{
		Kind:  KindComponent,
		Comp:  comp,
		Shape: ShapeComponent,
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			node.applyAttr(v)
		case []Attr:
			for _, a := range v {
				node.applyAttr(a)
			}
		case Props:
			for _, p := range v {
				node.applyAttr(Attr(p))
			}
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
	return node
}

// Content sectioning elements

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }

// Text content elements

func Div(args ...any) *VNode  { return createElement("div", args) }
func P(args ...any) *VNode    { return createElement("p", args) }
func Span(args ...any) *VNode { return createElement("span", args) }
func Ul(args ...any) *VNode   { return createElement("ul", args) }
func Ol(args ...any) *VNode   { return createElement("ol", args) }
func Li(args ...any) *VNode   { return createElement("li", args) }
func A(args ...any) *VNode    { return createElement("a", args) }

// Form and table elements

func Button(args ...any) *VNode { return createElement("button", args) }
func Input(args ...any) *VNode  { return createElement("input", args) }
func Label(args ...any) *VNode  { return createElement("label", args) }
func Table(args ...any) *VNode  { return createElement("table", args) }
func Tr(args ...any) *VNode     { return createElement("tr", args) }
func Td(args ...any) *VNode     { return createElement("td", args) }
