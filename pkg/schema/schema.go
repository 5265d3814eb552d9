// Package schema declares the closed, static description of an
// expected JSON shape. Types are built ahead of time, by hand or by
// the schemafile loader, and validated once at registration; the
// binder never inspects arbitrary Go values and there is no "any" arm.
package schema

import "fmt"

// Kind enumerates every representable schema shape. The union is
// closed on purpose: open or polymorphic typing is unrepresentable.
type Kind int

const (
	Invalid Kind = iota
	Int32
	Int64
	Float64
	Bool
	String
	Timestamp
	List
	Set
	Object
)

var kindNames = [...]string{
	Invalid:   "invalid",
	Int32:     "int32",
	Int64:     "int64",
	Float64:   "float64",
	Bool:      "bool",
	String:    "string",
	Timestamp: "timestamp",
	List:      "list",
	Set:       "set",
	Object:    "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type describes one expected shape. Types are immutable after
// construction and safe to share across concurrent binds.
type Type struct {
	kind   Kind
	elem   *Type   // List, Set
	name   string  // Object: the declared type name
	fields []Field // Object, in declared order
	index  map[string]int
}

// Field declares one named object member. Exactly one wire name is
// accepted per field; there is no alias list and no case folding.
type Field struct {
	Name     string
	Type     *Type
	Required bool
	Nullable bool
}

func (t *Type) Kind() Kind { return t.kind }

// Elem returns the element type of a List or Set, nil otherwise.
func (t *Type) Elem() *Type { return t.elem }

// Name returns the declared name of an Object type, "" otherwise.
func (t *Type) Name() string { return t.name }

// Fields returns the declared fields of an Object type in order.
// Callers must not mutate the returned slice.
func (t *Type) Fields() []Field { return t.fields }

// FieldByName looks up a field by its exact declared name.
func (t *Type) FieldByName(name string) (Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

var (
	int32Type     = &Type{kind: Int32}
	int64Type     = &Type{kind: Int64}
	float64Type   = &Type{kind: Float64}
	boolType      = &Type{kind: Bool}
	stringType    = &Type{kind: String}
	timestampType = &Type{kind: Timestamp}
)

// Scalar constructors return shared immutable instances.
func Int32Of() *Type     { return int32Type }
func Int64Of() *Type     { return int64Type }
func Float64Of() *Type   { return float64Type }
func BoolOf() *Type      { return boolType }
func StringOf() *Type    { return stringType }
func TimestampOf() *Type { return timestampType }

// ListOf declares an ordered, duplicate-preserving collection.
func ListOf(elem *Type) *Type { return &Type{kind: List, elem: elem} }

// SetOf declares a collection de-duplicated by structural equality
// after binding.
func SetOf(elem *Type) *Type { return &Type{kind: Set, elem: elem} }

// ObjectOf declares a named object type with its fields in wire order.
// Structural problems (nil types, duplicate names, cycles) are
// reported by NewRegistry, not here, so that construction can express
// forward references freely.
func ObjectOf(name string, fields ...Field) *Type {
	t := &Type{kind: Object, name: name, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := t.index[f.Name]; dup {
			continue // surfaced as a SchemaError at registration
		}
		t.index[f.Name] = i
	}
	return t
}
