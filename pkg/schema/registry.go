package schema

import (
	"fmt"
	"strings"

	"github.com/usestring/strictjson/pkg/types"
)

// MaxObjectDepth caps the longest root-to-leaf chain of nested object
// types a registered schema may declare.
const MaxObjectDepth = 10

// Registry holds one validated root type. Construction performs all
// structural checks exactly once; afterwards the registry is immutable
// and safe for unsynchronized concurrent reads. A SchemaError here is
// a programming or configuration mistake and should be startup-fatal,
// unlike the per-request errors the binder produces.
type Registry struct {
	root *Type
}

// NewRegistry validates root and everything reachable from it:
// duplicate field names, nil field types, cyclic object references,
// and object nesting beyond MaxObjectDepth all fail with a
// *types.Error of kind SchemaError.
func NewRegistry(root *Type) (*Registry, *types.Error) {
	if root == nil {
		return nil, schemaErr("", "a non-nil root type", "nil")
	}
	v := &registryValidator{
		visiting: make(map[*Type]bool),
	}
	if err := v.check(root, 0); err != nil {
		return nil, err
	}
	return &Registry{root: root}, nil
}

// Root returns the validated root type.
func (r *Registry) Root() *Type { return r.root }

// registryValidator is a DFS with a visiting set. Shared subtrees are
// deliberately re-walked rather than memoized: the depth ceiling is a
// property of the longest path, and a diamond-shaped graph can reach
// the same type at different depths. Schemas are declared by hand and
// small, so the repeated walks cost nothing measurable.
type registryValidator struct {
	visiting map[*Type]bool // object types on the current DFS path
	stack    []string       // object names on the current path, for messages
}

func (v *registryValidator) check(t *Type, objDepth int) *types.Error {
	if t == nil {
		return schemaErr(strings.Join(v.stack, " -> "), "a declared type", "nil")
	}
	switch t.kind {
	case Int32, Int64, Float64, Bool, String, Timestamp:
		return nil
	case List, Set:
		return v.check(t.elem, objDepth)
	case Object:
		if v.visiting[t] {
			cycle := append(append([]string{}, v.stack...), t.name)
			return schemaErr("", "an acyclic type graph",
				fmt.Sprintf("cycle: %s", strings.Join(cycle, " -> ")))
		}
		objDepth++
		if objDepth > MaxObjectDepth {
			return schemaErr(strings.Join(v.stack, " -> "),
				fmt.Sprintf("object nesting of at most %d levels", MaxObjectDepth),
				fmt.Sprintf("%d levels at type %q", objDepth, t.name))
		}
		v.visiting[t] = true
		v.stack = append(v.stack, t.name)
		seen := make(map[string]bool, len(t.fields))
		for _, f := range t.fields {
			if f.Name == "" {
				return schemaErr(t.name, "a non-empty field name", "an empty name")
			}
			if seen[f.Name] {
				return schemaErr(t.name, "unique field names",
					fmt.Sprintf("duplicate field %q", f.Name))
			}
			seen[f.Name] = true
			if err := v.check(f.Type, objDepth); err != nil {
				return err
			}
		}
		v.stack = v.stack[:len(v.stack)-1]
		delete(v.visiting, t)
		return nil
	default:
		return schemaErr(strings.Join(v.stack, " -> "),
			"a known schema kind", t.kind.String())
	}
}

func schemaErr(path, expected, actual string) *types.Error {
	return &types.Error{
		Kind:     types.KindSchema,
		Path:     path,
		Expected: expected,
		Actual:   actual,
	}
}
