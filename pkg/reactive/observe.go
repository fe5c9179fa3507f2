package reactive

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Observation errors.
var (
	ErrNotObservable = errors.New("reactive: target must be a non-nil struct pointer or map[string]T")
	ErrUnknownKey    = errors.New("reactive: unknown key")
	ErrTypeMismatch  = errors.New("reactive: value type does not match key")
)

// Object is the observed wrapper of a plain Go value. Reads through Get
// subscribe the active effect to (target, key); writes through Set mutate
// the target and then notify those subscribers.
//
// Writes made directly to the target, bypassing Set, are not seen.
type Object struct {
	rt     *Runtime
	target any
	ident  any

	v      reflect.Value // struct (addressable) or map
	isMap  bool
	fields map[string]int
	keys   []string
}

// Observe returns the wrapper for target, creating it on first use.
// target must be a non-nil pointer to a struct or a non-nil map with string
// keys. Passing an *Object returns it unchanged, so Observe is idempotent.
//
// Struct fields are addressed by their `vloop:"name"` tag when present,
// otherwise by their Go name. Unexported fields are not observable.
func Observe(rt *Runtime, target any) (*Object, error) {
	if o, ok := target.(*Object); ok {
		return o, nil
	}
	ident, v, isMap, err := inspectTarget(target)
	if err != nil {
		return nil, err
	}
	if o, ok := rt.wrappers[ident]; ok {
		return o, nil
	}
	o := &Object{
		rt:     rt,
		target: target,
		ident:  ident,
		v:      v,
		isMap:  isMap,
	}
	if !isMap {
		o.indexFields()
	}
	rt.wrappers[ident] = o
	return o, nil
}

// MustObserve is Observe for targets known to be valid. It panics on error.
func MustObserve(rt *Runtime, target any) *Object {
	o, err := Observe(rt, target)
	if err != nil {
		panic(err)
	}
	return o
}

// IsObserved reports whether v is an observed wrapper.
func IsObserved(v any) bool {
	_, ok := v.(*Object)
	return ok
}

func inspectTarget(target any) (ident any, v reflect.Value, isMap bool, err error) {
	rv := reflect.ValueOf(target)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return nil, v, false, ErrNotObservable
		}
		return target, rv.Elem(), false, nil
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return nil, v, false, ErrNotObservable
		}
		// A map value is a reference; its header pointer is its identity.
		return rv.UnsafePointer(), rv, true, nil
	default:
		return nil, v, false, ErrNotObservable
	}
}

func (o *Object) indexFields() {
	t := o.v.Type()
	o.fields = make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("vloop"); ok && tag != "" && tag != "-" {
			name = tag
		} else if tag == "-" {
			continue
		}
		o.fields[name] = i
		o.keys = append(o.keys, name)
	}
}

// Raw returns the wrapped target.
func (o *Object) Raw() any {
	return o.target
}

// Runtime returns the runtime the wrapper belongs to.
func (o *Object) Runtime() *Runtime {
	return o.rt
}

// Keys returns the observable keys. For maps the order is sorted and
// reading Keys tracks the key set, so adding or deleting a key notifies.
func (o *Object) Keys() []string {
	if !o.isMap {
		return append([]string(nil), o.keys...)
	}
	o.rt.track(o.rt.registry.depFor(o.ident, iterateKey))
	keys := make([]string, 0, o.v.Len())
	iter := o.v.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)
	return keys
}

// iterateKey is the registry key for a map's key set. It cannot collide
// with a real key because Set rejects it.
const iterateKey = "\x00iterate"

// Get reads key and tracks it. A missing map key reads as nil.
// An unknown struct field panics with ErrUnknownKey; use Lookup to test.
func (o *Object) Get(key string) any {
	v, err := o.Lookup(key)
	if err != nil {
		panic(fmt.Errorf("%w: %q", err, key))
	}
	return v
}

// Lookup is Get returning ErrUnknownKey instead of panicking.
func (o *Object) Lookup(key string) (any, error) {
	var out any
	if o.isMap {
		mv := o.v.MapIndex(reflect.ValueOf(key).Convert(o.v.Type().Key()))
		if mv.IsValid() {
			out = mv.Interface()
		}
	} else {
		idx, ok := o.fields[key]
		if !ok {
			return nil, ErrUnknownKey
		}
		out = o.v.Field(idx).Interface()
	}
	if o.rt.active != nil {
		o.rt.track(o.rt.registry.depFor(o.ident, key))
	}
	return out, nil
}

// Set writes value under key, then notifies subscribers of (target, key).
// Every successful Set notifies, even if the value is unchanged.
func (o *Object) Set(key string, value any) error {
	if key == iterateKey {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	added := false
	if o.isMap {
		ev, err := assignable(value, o.v.Type().Elem())
		if err != nil {
			return fmt.Errorf("%w: %q", err, key)
		}
		mk := reflect.ValueOf(key).Convert(o.v.Type().Key())
		added = !o.v.MapIndex(mk).IsValid()
		o.v.SetMapIndex(mk, ev)
	} else {
		idx, ok := o.fields[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		field := o.v.Field(idx)
		ev, err := assignable(value, field.Type())
		if err != nil {
			return fmt.Errorf("%w: %q", err, key)
		}
		field.Set(ev)
	}
	o.rt.trigger(o.rt.registry.Lookup(o.ident, key))
	if added {
		o.rt.trigger(o.rt.registry.Lookup(o.ident, iterateKey))
	}
	return nil
}

// Delete removes a map key and notifies its subscribers. It is an error on
// struct targets.
func (o *Object) Delete(key string) error {
	if !o.isMap {
		return fmt.Errorf("%w: cannot delete struct field %q", ErrUnknownKey, key)
	}
	mk := reflect.ValueOf(key).Convert(o.v.Type().Key())
	if !o.v.MapIndex(mk).IsValid() {
		return nil
	}
	o.v.SetMapIndex(mk, reflect.Value{})
	o.rt.trigger(o.rt.registry.Lookup(o.ident, key))
	o.rt.trigger(o.rt.registry.Lookup(o.ident, iterateKey))
	return nil
}

// Child observes the struct pointer or map stored under key.
func (o *Object) Child(key string) (*Object, error) {
	v, err := o.Lookup(key)
	if err != nil {
		return nil, err
	}
	return Observe(o.rt, v)
}

// Release drops the wrapper from the cache and removes all registry entries
// of its target. Effects keep working but no longer hear about this target
// until it is observed again.
func (o *Object) Release() {
	if o.rt.wrappers[o.ident] == o {
		delete(o.rt.wrappers, o.ident)
	}
	o.rt.registry.drop(o.ident)
}

func assignable(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, ErrTypeMismatch
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, ErrTypeMismatch
	}
	return rv, nil
}

// GetAs reads key and asserts its type. The zero value is returned when the
// stored value is nil or of another type.
func GetAs[T any](o *Object, key string) T {
	v, _ := o.Get(key).(T)
	return v
}
