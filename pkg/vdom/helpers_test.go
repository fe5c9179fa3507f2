package vdom

import "testing"

func TestText(t *testing.T) {
	node := Text("hi")
	if node.Kind != KindText || node.Text != "hi" {
		t.Errorf("Text() = %v %q", node.Kind, node.Text)
	}
	if got := Textf("%d items", 3).Text; got != "3 items" {
		t.Errorf("Textf() = %q", got)
	}
	if c := Comment("x"); c.Kind != KindComment || c.Text != "x" {
		t.Errorf("Comment() = %v %q", c.Kind, c.Text)
	}
}

func TestFragment(t *testing.T) {
	comp := Func("X", func(*Instance) *VNode { return nil })
	frag := Fragment(Key("f"), Text("a"), nil, []*VNode{Span(), nil}, "b", comp)

	if frag.Kind != KindFragment || frag.Key != "f" {
		t.Fatalf("Fragment() = %v key %q", frag.Kind, frag.Key)
	}
	if len(frag.Children) != 4 {
		t.Fatalf("children = %d, want 4", len(frag.Children))
	}
	if frag.Children[3].Kind != KindComponent {
		t.Errorf("last child = %v, want Component", frag.Children[3].Kind)
	}
}

func TestIfAndWhen(t *testing.T) {
	n := Span()
	if If(true, n) != n || If(false, n) != nil {
		t.Error("If returned the wrong node")
	}
	called := false
	if When(false, func() *VNode { called = true; return n }) != nil || called {
		t.Error("When(false) must not call fn")
	}
	if When(true, func() *VNode { return n }) != n {
		t.Error("When(true) should return fn()")
	}
}

func TestRangeAndKeyed(t *testing.T) {
	items := []int{1, 2, 3}
	nodes := Range(items, func(v, _ int) *VNode {
		if v == 2 {
			return nil
		}
		return Keyed(v, Li(Textf("%d", v)))
	})
	if len(nodes) != 2 {
		t.Fatalf("Range() len = %d, want 2", len(nodes))
	}
	if nodes[1].Key != "3" {
		t.Errorf("key = %q, want 3", nodes[1].Key)
	}
	if Keyed(1, nil) != nil {
		t.Error("Keyed(nil) should be nil")
	}
}
