// Package bind maps parsed JSON values onto a validated schema. It is
// where strictness is enforced: exact type matches, no coercion, no
// auto-wrapping, exact field names, explicit null policy, and
// fail-fast all-or-nothing semantics.
package bind

import (
	"time"

	"github.com/usestring/strictjson/pkg/schema"
)

// Presence records how an object field arrived on the wire. Absent and
// ExplicitNull are distinct so that callers can tell `{}` apart from
// `{"age": null}`.
type Presence int

const (
	Absent Presence = iota
	ExplicitNull
	Present
)

func (p Presence) String() string {
	switch p {
	case Absent:
		return "absent"
	case ExplicitNull:
		return "null"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// FieldValue is one bound object field. Node is non-nil only when
// Presence is Present.
type FieldValue struct {
	Presence Presence
	Node     *Node
}

// Node is one value of the bound tree. The binder retains no reference
// to a returned Node; the caller owns it outright.
type Node struct {
	typ *schema.Type

	i     int64
	f     float64
	b     bool
	s     string
	t     time.Time
	elems []*Node
	flds  map[string]FieldValue
}

// Type returns the schema type this node was bound against.
func (n *Node) Type() *schema.Type { return n.typ }

// Scalar accessors. Each is meaningful only for the matching kind and
// returns the zero value otherwise.
func (n *Node) Int64() int64     { return n.i }
func (n *Node) Int32() int32     { return int32(n.i) }
func (n *Node) Float64() float64 { return n.f }
func (n *Node) Bool() bool       { return n.b }
func (n *Node) Str() string      { return n.s }
func (n *Node) Time() time.Time  { return n.t }

// Elems returns the bound elements of a List or Set node in order.
func (n *Node) Elems() []*Node { return n.elems }

// Field returns the named field of an Object node. The second result
// is false for names the schema does not declare.
func (n *Node) Field(name string) (FieldValue, bool) {
	if n.typ == nil || n.typ.Kind() != schema.Object {
		return FieldValue{}, false
	}
	if _, ok := n.typ.FieldByName(name); !ok {
		return FieldValue{}, false
	}
	return n.flds[name], true
}

// timestampLayout renders with millisecond precision, matching the
// only accepted wire format.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Interface converts the bound tree to plain Go values: map[string]any
// for objects (absent fields omitted, explicit nulls kept as nil),
// []any for collections, int / float64 / bool / string for scalars,
// and the wire-format string for timestamps. The shapes are the ones
// encoding/json and gojq both accept.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.typ.Kind() {
	case schema.Int32, schema.Int64:
		return int(n.i)
	case schema.Float64:
		return n.f
	case schema.Bool:
		return n.b
	case schema.String:
		return n.s
	case schema.Timestamp:
		return n.t.UTC().Format(timestampLayout)
	case schema.List, schema.Set:
		out := make([]any, len(n.elems))
		for i, e := range n.elems {
			out[i] = e.Interface()
		}
		return out
	case schema.Object:
		out := make(map[string]any, len(n.flds))
		for _, f := range n.typ.Fields() {
			fv := n.flds[f.Name]
			switch fv.Presence {
			case Present:
				out[f.Name] = fv.Node.Interface()
			case ExplicitNull:
				out[f.Name] = nil
			}
		}
		return out
	default:
		return nil
	}
}

// equalNodes reports structural equality, used for Set de-duplication.
// Both nodes are bound against the same element type, so kinds match
// by construction.
func equalNodes(a, b *Node) bool {
	switch a.typ.Kind() {
	case schema.Int32, schema.Int64:
		return a.i == b.i
	case schema.Float64:
		return a.f == b.f
	case schema.Bool:
		return a.b == b.b
	case schema.String:
		return a.s == b.s
	case schema.Timestamp:
		return a.t.Equal(b.t)
	case schema.List, schema.Set:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !equalNodes(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case schema.Object:
		for _, f := range a.typ.Fields() {
			fa, fb := a.flds[f.Name], b.flds[f.Name]
			if fa.Presence != fb.Presence {
				return false
			}
			if fa.Presence == Present && !equalNodes(fa.Node, fb.Node) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
