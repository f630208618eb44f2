package former

import (
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/schema"
	"github.com/lemon-mint/jsonformer/value"
)

// slot is the place a value is generated into: a key of an object or the
// next index of an array.
type slot struct {
	parent value.Value
	path   value.Path
}

func (s slot) fill(v value.Value) {
	switch p := s.parent.(type) {
	case *value.Object:
		p.Set(s.path[len(s.path)-1].Key, v)
	case *value.Array:
		p.Append(v)
	}
}

func (s *session) generateValue(n schema.Node, at slot) (value.Value, error) {
	var (
		v   value.Value
		err error
	)

	switch n := n.(type) {
	case *schema.Number:
		v, err = s.generateNumber(at.path)
	case *schema.Boolean:
		v, err = s.generateBoolean(at.path)
	case *schema.String:
		v, err = s.generateString(at.path)
	case *schema.Array:
		arr := value.NewArray()
		at.fill(arr)
		return arr, s.generateArray(n.Items, arr, at.path)
	case *schema.Object:
		obj := value.NewObject()
		at.fill(obj)
		return obj, s.generateObject(n, obj, at.path)
	default:
		return nil, configErr(at.path, "unsupported schema node %T", n)
	}
	if err != nil {
		return nil, err
	}

	at.fill(v)
	return v, nil
}

func (s *session) generateObject(n *schema.Object, obj *value.Object, path value.Path) error {
	for _, p := range n.Properties {
		s.logger.Debug("generating value", zap.String("key", p.Name), zap.Stringer("path", path))
		_, err := s.generateValue(p.Schema, slot{
			parent: obj,
			path:   path.Child(value.Key(p.Name)),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *session) generateArray(items schema.Node, arr *value.Array, path value.Path) error {
	limit := s.f.config.MaxArrayLength
	for arr.Len() < limit {
		_, err := s.generateValue(items, slot{
			parent: arr,
			path:   path.Child(value.Index(arr.Len())),
		})
		if err != nil {
			return err
		}

		if arr.Len() >= limit {
			break
		}
		more, err := s.continueArray(path)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}
