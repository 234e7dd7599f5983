// Package jsonld decodes the JSON-LD documents of the catalog and search
// services into typed nodes and projects them into flat table rows.
package jsonld

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Node is one of Scalar, Literal, *Object or Sequence. An absent property or
// a JSON null is the nil Node.
type Node interface {
	node()
}

// Scalar is a bare string, number or boolean.
type Scalar struct {
	V any
}

// Literal is a value object: {"@value": ..., "@language": ..., "@type": ...}.
type Literal struct {
	Value    any
	Language string
	Type     string
}

// Object is a node object. Props holds every key except @id and @type,
// including reserved keys such as @context and @graph.
type Object struct {
	ID    string
	Types []string
	Props map[string]Node
}

// Sequence is a JSON array.
type Sequence []Node

func (Scalar) node()   {}
func (Literal) node()  {}
func (*Object) node()  {}
func (Sequence) node() {}

// Parse decodes a JSON document. Empty input is the nil Node.
func Parse(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "jsonld: parse")
	}
	return FromAny(v), nil
}

// FromAny converts the output of encoding/json into a Node.
func FromAny(v any) Node {
	switch v := v.(type) {
	case nil:
		return nil
	case Node:
		return v
	case map[string]any:
		return fromMap(v)
	case []any:
		seq := make(Sequence, 0, len(v))
		for _, item := range v {
			seq = append(seq, FromAny(item))
		}
		return seq
	case []map[string]any:
		seq := make(Sequence, 0, len(v))
		for _, item := range v {
			seq = append(seq, fromMap(item))
		}
		return seq
	case string, bool, float64, json.Number, int, int64:
		return Scalar{V: v}
	default:
		// structs and typed maps go through a json round trip
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return nil
		}
		return FromAny(generic)
	}
}

func fromMap(m map[string]any) Node {
	if m == nil {
		return nil
	}
	if value, ok := m["@value"]; ok {
		lit := Literal{Value: value}
		lit.Language, _ = m["@language"].(string)
		lit.Type, _ = m["@type"].(string)
		return lit
	}

	obj := &Object{Props: make(map[string]Node, len(m))}
	for key, value := range m {
		switch key {
		case "@id":
			obj.ID, _ = value.(string)
		case "@type":
			obj.Types = typeList(value)
		default:
			obj.Props[key] = FromAny(value)
		}
	}
	return obj
}

func typeList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		types := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				types = append(types, s)
			}
		}
		return types
	case []string:
		return v
	}
	return nil
}

// Raw converts a Node back into plain JSON values.
func Raw(n Node) any {
	switch n := n.(type) {
	case nil:
		return nil
	case Scalar:
		return n.V
	case Literal:
		m := map[string]any{"@value": n.Value}
		if n.Language != "" {
			m["@language"] = n.Language
		}
		if n.Type != "" {
			m["@type"] = n.Type
		}
		return m
	case *Object:
		if n == nil {
			return nil
		}
		m := make(map[string]any, len(n.Props)+2)
		if n.ID != "" {
			m["@id"] = n.ID
		}
		switch len(n.Types) {
		case 0:
		case 1:
			m["@type"] = n.Types[0]
		default:
			types := make([]any, len(n.Types))
			for i, t := range n.Types {
				types[i] = t
			}
			m["@type"] = types
		}
		for key, value := range n.Props {
			m[key] = Raw(value)
		}
		return m
	case Sequence:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = Raw(item)
		}
		return out
	}
	return nil
}

// Seq normalises a one-or-many property into a slice.
func Seq(n Node) []Node {
	switch n := n.(type) {
	case nil:
		return nil
	case Sequence:
		return n
	case *Object:
		if n == nil {
			return nil
		}
	}
	return []Node{n}
}

// Get returns a property. "@id" and "@type" are exposed as scalars so that
// paths can reach them.
func (o *Object) Get(key string) Node {
	if o == nil {
		return nil
	}
	switch key {
	case "@id":
		if o.ID == "" {
			return nil
		}
		return Scalar{V: o.ID}
	case "@type":
		switch len(o.Types) {
		case 0:
			return nil
		case 1:
			return Scalar{V: o.Types[0]}
		}
		seq := make(Sequence, len(o.Types))
		for i, t := range o.Types {
			seq[i] = Scalar{V: t}
		}
		return seq
	}
	return o.Props[key]
}

func (o *Object) HasType(t string) bool {
	if o == nil {
		return false
	}
	for _, typ := range o.Types {
		if typ == t {
			return true
		}
	}
	return false
}

// Identified reports whether the object carries an @id or @type.
func (o *Object) Identified() bool {
	return o != nil && (o.ID != "" || len(o.Types) > 0)
}

// AsObject returns the first node object of a one-or-many property.
func AsObject(n Node) *Object {
	for _, item := range Seq(n) {
		if obj, ok := item.(*Object); ok && obj != nil {
			return obj
		}
		return nil
	}
	return nil
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprint(v)
}
