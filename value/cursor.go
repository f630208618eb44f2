package value

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidCursor means a cursor does not address a position in the tree.
// It indicates a bug in the caller, never a model failure.
var ErrInvalidCursor = errors.New("invalid cursor")

// Step is one hop of a Path: an object key or an array index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

func Key(k string) Step {
	return Step{Key: k}
}

func Index(i int) Step {
	return Step{Index: i, IsIndex: true}
}

// Path addresses a node from the root object.
type Path []Step

// Child returns a new path extended by s. p is not modified.
func (p Path) Child(s Step) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, s)
}

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, s := range p {
		if s.IsIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s.Index))
			sb.WriteByte(']')
			continue
		}
		sb.WriteByte('.')
		sb.WriteString(s.Key)
	}
	return sb.String()
}

type Position uint8

const (
	// Slot is the value position named by the last step of the path. For an
	// object the key is not present yet; for an array the index equals the
	// current length.
	Slot Position = iota

	// Close is the position right after the last element of the array the
	// path names, before any separator or closing bracket.
	Close
)

// Cursor is the pending position of a generation step.
type Cursor struct {
	Path     Path
	Position Position
}

func SlotAt(p Path) Cursor {
	return Cursor{Path: p, Position: Slot}
}

func CloseAt(p Path) Cursor {
	return Cursor{Path: p, Position: Close}
}

func (c Cursor) String() string {
	if c.Position == Close {
		return c.Path.String() + "(close)"
	}
	return c.Path.String()
}
