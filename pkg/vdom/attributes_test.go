package vdom

import (
	"reflect"
	"testing"
)

func TestAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attr  Attr
		key   string
		value any
	}{
		{"ID", ID("main"), "id", "main"},
		{"Class single", Class("card"), "class", "card"},
		{"Class multiple", Class("card", "active"), "class", "card active"},
		{"Data", Data("id", "123"), "data-id", "123"},
		{"Href", Href("/page"), "href", "/page"},
		{"Type", Type("checkbox"), "type", "checkbox"},
		{"Value", Value("x"), "value", "x"},
		{"Placeholder", Placeholder("Search"), "placeholder", "Search"},
		{"Disabled", Disabled(true), "disabled", true},
		{"Checked", Checked(false), "checked", false},
		{"Key", Key(42), "key", "42"},
		{"Attribute", Attribute("role", "button"), "role", "button"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("Key = %v, want %v", tt.attr.Key, tt.key)
			}
			if tt.attr.Value != tt.value {
				t.Errorf("Value = %v, want %v", tt.attr.Value, tt.value)
			}
		})
	}
}

func TestOnStoresHandler(t *testing.T) {
	called := false
	a := On("click", func() { called = true })
	if a.Key != "onclick" {
		t.Fatalf("Key = %q, want onclick", a.Key)
	}
	a.Value.(func())()
	if !called {
		t.Error("handler not stored")
	}
}

func TestEmptyAttrIgnored(t *testing.T) {
	if !(Attr{}).IsEmpty() {
		t.Error("zero Attr should be empty")
	}
	node := Div(Attr{}, ID("x"))
	if len(node.Props) != 1 {
		t.Errorf("Props = %v, want only id", node.Props)
	}
}

func TestNormalizeClass(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", " a  ", "a"},
		{"slice", []string{"a", "", "b"}, "a b"},
		{"mixed", []any{"a", []string{"b", "c"}, map[string]bool{"d": true}}, "a b c d"},
		{"map sorted", map[string]bool{"z": true, "off": false, "a": true}, "a z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeClass(tt.in); got != tt.want {
				t.Errorf("NormalizeClass(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStyleDiff(t *testing.T) {
	prev := map[string]string{"color": "red", "margin": "0", "top": "1px"}
	next := map[string]string{"color": "blue", "margin": "0", "left": "2px"}

	set, removed := StyleDiff(prev, next)

	if want := map[string]string{"color": "blue", "left": "2px"}; !reflect.DeepEqual(set, want) {
		t.Errorf("set = %v, want %v", set, want)
	}
	if want := []string{"top"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
}
