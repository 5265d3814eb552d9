// Package parser consumes JSON bytes into an ordered, schema-agnostic
// value tree, enforcing RFC 8259 grammar and the configured resource
// ceilings. The tree lives for one decode call: the binder consumes it
// immediately and nothing caches it.
package parser

import "fmt"

// ValueKind tags a Value.
type ValueKind int

const (
	// Invalid is the zero value; a nil *Value means "absent", which is
	// deliberately distinct from an explicit Null.
	Invalid ValueKind = iota
	Object
	Array
	String
	Number
	Bool
	Null
)

var valueKindNames = [...]string{
	Invalid: "invalid",
	Object:  "object",
	Array:   "array",
	String:  "string",
	Number:  "number",
	Bool:    "boolean",
	Null:    "null",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Member is one object entry. Members keep insertion order so that
// declared-order error reporting and duplicate detection both work;
// a Go map would lose the order.
type Member struct {
	Name  string
	Value *Value
}

// Value is one parsed JSON value.
type Value struct {
	Kind    ValueKind
	Str     string   // String
	Num     string   // Number: raw decimal text, exponent-free
	B       bool     // Bool
	Members []Member // Object, in input order
	Elems   []*Value // Array, in input order

	// Position of the value's first token, for error reporting.
	Offset int64
	Line   int
	Col    int

	index map[string]int // object member lookup
}

// NewObject assembles an Object value outside the parser, for callers
// that produce value trees programmatically. Later duplicates of a
// name are unreachable through Member, matching nothing the parser
// would ever emit.
func NewObject(members ...Member) *Value {
	v := &Value{Kind: Object, Members: members, index: make(map[string]int, len(members))}
	for i, m := range members {
		if _, ok := v.index[m.Name]; !ok {
			v.index[m.Name] = i
		}
	}
	return v
}

// Member returns the named object member, if present. Only meaningful
// for Object values.
func (v *Value) Member(name string) (*Value, bool) {
	if v.index == nil {
		return nil, false
	}
	i, ok := v.index[name]
	if !ok {
		return nil, false
	}
	return v.Members[i].Value, true
}
