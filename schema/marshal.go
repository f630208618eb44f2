package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Marshal encodes n as compact JSON with properties in declaration order.
func Marshal(n Node) ([]byte, error) {
	return appendNode(nil, n)
}

func appendString(dst []byte, s string) ([]byte, error) {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

func appendMeta(dst []byte, t Type, title, desc string) ([]byte, error) {
	var err error
	dst = append(dst, `{"type":"`...)
	dst = append(dst, t...)
	dst = append(dst, '"')
	if title != "" {
		dst = append(dst, `,"title":`...)
		if dst, err = appendString(dst, title); err != nil {
			return nil, err
		}
	}
	if desc != "" {
		dst = append(dst, `,"description":`...)
		if dst, err = appendString(dst, desc); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func appendNode(dst []byte, n Node) ([]byte, error) {
	var err error
	switch v := n.(type) {
	case *String:
		if v == nil {
			return nil, configErr("", "cannot marshal nil string schema")
		}
		dst, err = appendMeta(dst, TypeString, v.Title, v.Description)
	case *Number:
		if v == nil {
			return nil, configErr("", "cannot marshal nil number schema")
		}
		dst, err = appendMeta(dst, TypeNumber, v.Title, v.Description)
	case *Boolean:
		if v == nil {
			return nil, configErr("", "cannot marshal nil boolean schema")
		}
		dst, err = appendMeta(dst, TypeBoolean, v.Title, v.Description)
	case *Array:
		if v == nil {
			return nil, configErr("", "cannot marshal nil array schema")
		}
		if dst, err = appendMeta(dst, TypeArray, v.Title, v.Description); err != nil {
			return nil, err
		}
		dst = append(dst, `,"items":`...)
		if dst, err = appendNode(dst, v.Items); err != nil {
			return nil, err
		}
	case *Object:
		if v == nil {
			return nil, configErr("", "cannot marshal nil object schema")
		}
		if dst, err = appendMeta(dst, TypeObject, v.Title, v.Description); err != nil {
			return nil, err
		}
		dst = append(dst, `,"properties":{`...)
		for i, p := range v.Properties {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = appendString(dst, p.Name); err != nil {
				return nil, err
			}
			dst = append(dst, ':')
			if dst, err = appendNode(dst, p.Schema); err != nil {
				return nil, err
			}
		}
		dst = append(dst, '}')
	default:
		return nil, configErr("", "cannot marshal schema node %T", n)
	}
	if err != nil {
		return nil, err
	}
	return append(dst, '}'), nil
}

// String returns the compact JSON form of o.
func (o *Object) String() string {
	b, err := Marshal(o)
	if err != nil {
		return fmt.Sprintf("<schema error: %v>", err)
	}
	return string(b)
}
