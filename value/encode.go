package value

import (
	"fmt"
	"math"

	json "github.com/goccy/go-json"
)

// Append writes the compact JSON encoding of v to dst.
func Append(dst []byte, v Value) ([]byte, error) {
	var err error
	switch t := v.(type) {
	case *Object:
		dst = append(dst, '{')
		for i, k := range t.keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = appendEntry(dst, k, t.entries[k]); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	case *Array:
		dst = append(dst, '[')
		for i := range t.Items {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = Append(dst, t.Items[i]); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case String:
		return appendJSON(dst, string(t))
	case Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("value: unsupported number %v", f)
		}
		return appendJSON(dst, f)
	case Bool:
		if t {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case nil:
		return append(dst, "null"...), nil
	}
	return nil, fmt.Errorf("value: unsupported type %T", v)
}

// AppendUntil writes the JSON encoding of root up to the position c names and
// stops there. Containers on the path are left open, so the result is a
// prefix of the document a model can continue.
func AppendUntil(dst []byte, root Value, c Cursor) ([]byte, error) {
	steps := c.Path
	if c.Position == Slot {
		if len(steps) == 0 {
			return nil, cursorErr(c, "slot cursor without a step")
		}
		steps = steps[:len(steps)-1]
	}

	cur := root
	var err error
	for _, s := range steps {
		if dst, cur, err = openUntil(dst, cur, s, c); err != nil {
			return nil, err
		}
	}

	switch c.Position {
	case Slot:
		return appendSlot(dst, cur, c.Path[len(c.Path)-1], c)
	case Close:
		arr, ok := cur.(*Array)
		if !ok {
			return nil, cursorErr(c, "close position on a %s", kindOf(cur))
		}
		return appendElems(append(dst, '['), arr.Items)
	}
	return nil, cursorErr(c, "unknown position %d", c.Position)
}

// openUntil opens the container cur, writes the members preceding s and
// returns the member s names.
func openUntil(dst []byte, cur Value, s Step, c Cursor) ([]byte, Value, error) {
	var err error
	switch t := cur.(type) {
	case *Object:
		if s.IsIndex {
			return nil, nil, cursorErr(c, "index %d on an object", s.Index)
		}
		child, ok := t.entries[s.Key]
		if !ok {
			return nil, nil, cursorErr(c, "missing key %q", s.Key)
		}
		dst = append(dst, '{')
		for _, k := range t.keys {
			if k == s.Key {
				break
			}
			if dst, err = appendEntry(dst, k, t.entries[k]); err != nil {
				return nil, nil, err
			}
			dst = append(dst, ',')
		}
		if dst, err = appendKey(dst, s.Key); err != nil {
			return nil, nil, err
		}
		return dst, child, nil
	case *Array:
		if !s.IsIndex {
			return nil, nil, cursorErr(c, "key %q on an array", s.Key)
		}
		if s.Index < 0 || s.Index >= len(t.Items) {
			return nil, nil, cursorErr(c, "index %d out of range", s.Index)
		}
		dst = append(dst, '[')
		for i := 0; i < s.Index; i++ {
			if dst, err = Append(dst, t.Items[i]); err != nil {
				return nil, nil, err
			}
			dst = append(dst, ',')
		}
		return dst, t.Items[s.Index], nil
	}
	return nil, nil, cursorErr(c, "cannot descend into a %s", kindOf(cur))
}

func appendSlot(dst []byte, cur Value, s Step, c Cursor) ([]byte, error) {
	var err error
	switch t := cur.(type) {
	case *Object:
		if s.IsIndex {
			return nil, cursorErr(c, "index %d on an object", s.Index)
		}
		if _, ok := t.entries[s.Key]; ok {
			return nil, cursorErr(c, "key %q is already filled", s.Key)
		}
		dst = append(dst, '{')
		for _, k := range t.keys {
			if dst, err = appendEntry(dst, k, t.entries[k]); err != nil {
				return nil, err
			}
			dst = append(dst, ',')
		}
		return appendKey(dst, s.Key)
	case *Array:
		if !s.IsIndex {
			return nil, cursorErr(c, "key %q on an array", s.Key)
		}
		if s.Index != len(t.Items) {
			return nil, cursorErr(c, "slot %d is not the end of a %d element array", s.Index, len(t.Items))
		}
		if dst, err = appendElems(append(dst, '['), t.Items); err != nil {
			return nil, err
		}
		if len(t.Items) > 0 {
			dst = append(dst, ',')
		}
		return dst, nil
	}
	return nil, cursorErr(c, "slot in a %s", kindOf(cur))
}

func appendElems(dst []byte, items []Value) ([]byte, error) {
	var err error
	for i := range items {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = Append(dst, items[i]); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func appendEntry(dst []byte, k string, v Value) ([]byte, error) {
	dst, err := appendKey(dst, k)
	if err != nil {
		return nil, err
	}
	return Append(dst, v)
}

func appendKey(dst []byte, k string) ([]byte, error) {
	dst, err := appendJSON(dst, k)
	if err != nil {
		return nil, err
	}
	return append(dst, ':'), nil
}

func appendJSON(dst []byte, v any) ([]byte, error) {
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

func kindOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

func cursorErr(c Cursor, format string, a ...any) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidCursor, c, fmt.Sprintf(format, a...))
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Append(nil, o)
}

// MarshalJSON implements json.Marshaler.
func (a *Array) MarshalJSON() ([]byte, error) {
	return Append(nil, a)
}
