package vdom

import (
	"fmt"
	"sort"
	"strings"
)

// Attr is a single attribute passed to an element builder.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Attribute sets an arbitrary attribute.
func Attribute(key string, value any) Attr { return attr(key, value) }

// Key sets the reconciliation key. The key is converted with fmt.Sprint.
func Key(key any) Attr { return attr("key", fmt.Sprint(key)) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute. Each argument is normalized with
// NormalizeClass and the results are joined with spaces.
func Class(classes ...any) Attr { return attr("class", NormalizeClass(classes)) }

// Style sets the style attribute as a property map. The renderer hands old
// and new maps to the host, which applies the per-property difference.
func Style(props map[string]string) Attr { return attr("style", props) }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Value sets the value attribute.
func Value(v string) Attr { return attr("value", v) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Checked sets the checked attribute.
func Checked(checked bool) Attr { return attr("checked", checked) }

// On attaches an event handler as the on<event> prop.
func On(event string, handler any) Attr { return attr("on"+event, handler) }

// NormalizeClass flattens a class value into a space separated string.
// It accepts strings, []string, []any of those, and map[string]bool whose
// true keys are included in sorted order.
func NormalizeClass(value any) string {
	var parts []string
	var walk func(v any)
	walk = func(v any) {
		switch c := v.(type) {
		case nil:
		case string:
			if s := strings.TrimSpace(c); s != "" {
				parts = append(parts, s)
			}
		case []string:
			for _, s := range c {
				walk(s)
			}
		case []any:
			for _, s := range c {
				walk(s)
			}
		case map[string]bool:
			keys := make([]string, 0, len(c))
			for k, on := range c {
				if on {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(k)
			}
		default:
			walk(fmt.Sprint(c))
		}
	}
	walk(value)
	return strings.Join(parts, " ")
}

// StyleDiff returns the properties to set and the ones to remove when going
// from prev to next.
func StyleDiff(prev, next map[string]string) (set map[string]string, removed []string) {
	set = make(map[string]string)
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			set[k] = v
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(removed)
	return set, removed
}
