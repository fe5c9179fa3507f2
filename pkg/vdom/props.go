package vdom

import "reflect"

// Prop is a single key/value pair of an element or component.
type Prop struct {
	Key   string
	Value any
}

// Props is an ordered prop list. Later entries for the same key replace
// earlier ones when built through Set.
type Props []Prop

// Get returns the value for key.
func (p Props) Get(key string) (any, bool) {
	for i := range p {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return nil, false
}

// Value returns the value for key or nil.
func (p Props) Value(key string) any {
	v, _ := p.Get(key)
	return v
}

// GetString returns the value for key if it is a string.
func (p Props) GetString(key string) string {
	s, _ := p.Value(key).(string)
	return s
}

// Set stores value under key, keeping the position of an existing entry.
func (p Props) Set(key string, value any) Props {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Prop{Key: key, Value: value})
}

// Keys returns the keys in order.
func (p Props) Keys() []string {
	keys := make([]string, len(p))
	for i := range p {
		keys[i] = p[i].Key
	}
	return keys
}

// index maps keys to values for diffing larger prop lists.
func (p Props) index() map[string]any {
	m := make(map[string]any, len(p))
	for _, e := range p {
		m[e.Key] = e.Value
	}
	return m
}

// PropsEqual reports whether a and b hold the same keys with equal values,
// ignoring order.
func PropsEqual(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for _, e := range a {
		v, ok := b.Get(e.Key)
		if !ok || !propEqual(e.Value, v) {
			return false
		}
	}
	return true
}

// propEqual compares prop values: == for comparable values, DeepEqual for
// maps and slices. Funcs never compare equal, so handler props are always
// handed to the host.
func propEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
