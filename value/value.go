// Package value holds the JSON tree a generation run builds, and the cursor
// that marks the position the model is about to fill.
package value

import "fmt"

type Kind uint8

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a node of the output tree: *Object, *Array, String, Number or Bool.
type Value interface {
	value()
	Kind() Kind
}

// Object is a JSON object that remembers insertion order.
type Object struct {
	keys    []string
	entries map[string]Value
}

func NewObject() *Object {
	return &Object{entries: make(map[string]Value)}
}

func (*Object) value()     {}
func (*Object) Kind() Kind { return KindObject }

// Set stores v under key. New keys go to the end; existing keys keep their
// position.
func (o *Object) Set(key string, v Value) {
	if o.entries == nil {
		o.entries = make(map[string]Value)
	}
	if _, ok := o.entries[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = v
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.entries[key]
	return v, ok
}

func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Array is a JSON array. Elements are only ever appended or removed from the
// end.
type Array struct {
	Items []Value
}

func NewArray() *Array {
	return &Array{}
}

func (*Array) value()     {}
func (*Array) Kind() Kind { return KindArray }

func (a *Array) Append(v Value) {
	a.Items = append(a.Items, v)
}

func (a *Array) Len() int {
	return len(a.Items)
}

type String string

func (String) value()     {}
func (String) Kind() Kind { return KindString }

type Number float64

func (Number) value()     {}
func (Number) Kind() Kind { return KindNumber }

type Bool bool

func (Bool) value()     {}
func (Bool) Kind() Kind { return KindBool }

// ToAny converts v into plain Go values: map[string]any, []any, string,
// float64 and bool. Object key order is lost.
func ToAny(v Value) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, t.Len())
		for _, k := range t.keys {
			m[k] = ToAny(t.entries[k])
		}
		return m
	case *Array:
		s := make([]any, len(t.Items))
		for i := range t.Items {
			s[i] = ToAny(t.Items[i])
		}
		return s
	case String:
		return string(t)
	case Number:
		return float64(t)
	case Bool:
		return bool(t)
	}
	return nil
}
