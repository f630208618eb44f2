// Package schema models the subset of JSON Schema the generator understands:
// object, array, string, number and boolean nodes. Object properties keep
// their declaration order, which is also the order values are generated in.
package schema

type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Node is one element of a schema tree. The set of implementations is closed:
// *Object, *Array, *String, *Number and *Boolean.
type Node interface {
	node()
	Type() Type
}

type Property struct {
	Name   string
	Schema Node
}

type Object struct {
	Title       string
	Description string
	Properties  []Property
}

func (*Object) node()      {}
func (*Object) Type() Type { return TypeObject }

// Property returns the schema declared for name.
func (o *Object) Property(name string) (Node, bool) {
	for i := range o.Properties {
		if o.Properties[i].Name == name {
			return o.Properties[i].Schema, true
		}
	}
	return nil, false
}

// With appends a property and returns o for chaining.
func (o *Object) With(name string, n Node) *Object {
	o.Properties = append(o.Properties, Property{Name: name, Schema: n})
	return o
}

type Array struct {
	Title       string
	Description string
	Items       Node
}

func (*Array) node()      {}
func (*Array) Type() Type { return TypeArray }

type String struct {
	Title       string
	Description string
}

func (*String) node()      {}
func (*String) Type() Type { return TypeString }

type Number struct {
	Title       string
	Description string
}

func (*Number) node()      {}
func (*Number) Type() Type { return TypeNumber }

type Boolean struct {
	Title       string
	Description string
}

func (*Boolean) node()      {}
func (*Boolean) Type() Type { return TypeBoolean }

func NewObject(props ...Property) *Object {
	return &Object{Properties: props}
}

func NewArray(items Node) *Array {
	return &Array{Items: items}
}

func NewString() *String   { return &String{} }
func NewNumber() *Number   { return &Number{} }
func NewBoolean() *Boolean { return &Boolean{} }

// Prop is shorthand for a Property literal.
func Prop(name string, n Node) Property {
	return Property{Name: name, Schema: n}
}
