package schema

import (
	"fmt"

	yaml "github.com/goccy/go-yaml"
	"github.com/valyala/fastjson"
)

// ParseJSON reads a schema document. Property order follows the document.
func ParseJSON(data []byte) (Node, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("schema: parse json: %w", err)
	}
	return fromValue(v, "$")
}

// ParseYAML reads a schema written in YAML. Mapping order is preserved.
func ParseYAML(data []byte) (Node, error) {
	j, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	return ParseJSON(j)
}

func fromValue(v *fastjson.Value, path string) (Node, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, configErr(path, "expected an object, got %s", v.Type())
	}

	tv := v.Get("type")
	if tv == nil {
		return nil, configErr(path, "missing type")
	}
	tb, err := tv.StringBytes()
	if err != nil {
		return nil, configErr(path+".type", "type must be a string")
	}
	title := string(v.GetStringBytes("title"))
	desc := string(v.GetStringBytes("description"))

	switch Type(tb) {
	case TypeString:
		return &String{Title: title, Description: desc}, nil
	case TypeNumber:
		return &Number{Title: title, Description: desc}, nil
	case TypeBoolean:
		return &Boolean{Title: title, Description: desc}, nil
	case TypeArray:
		iv := v.Get("items")
		if iv == nil {
			return nil, configErr(path, "array schema without items")
		}
		items, err := fromValue(iv, path+".items")
		if err != nil {
			return nil, err
		}
		return &Array{Title: title, Description: desc, Items: items}, nil
	case TypeObject:
		obj := &Object{Title: title, Description: desc}
		pv := v.Get("properties")
		if pv == nil {
			return obj, nil
		}
		po, err := pv.Object()
		if err != nil {
			return nil, configErr(path+".properties", "properties must be an object")
		}
		var perr error
		seen := make(map[string]struct{}, po.Len())
		po.Visit(func(key []byte, child *fastjson.Value) {
			if perr != nil {
				return
			}
			name := string(key)
			if _, ok := seen[name]; ok {
				perr = configErr(path+".properties", "duplicate property %q", name)
				return
			}
			seen[name] = struct{}{}
			n, err := fromValue(child, path+".properties."+name)
			if err != nil {
				perr = err
				return
			}
			obj.Properties = append(obj.Properties, Property{Name: name, Schema: n})
		})
		if perr != nil {
			return nil, perr
		}
		return obj, nil
	}

	return nil, configErr(path+".type", "unsupported type %q", string(tb))
}
