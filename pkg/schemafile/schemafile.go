// Package schemafile builds a schema registry from a JSON schema
// document. The document is checked against an embedded meta-schema
// first, so malformed declarations fail with a clear message before
// type resolution even starts, then parsed with the strict parser so
// field declaration order is preserved.
//
// Document shape:
//
//	{
//	  "root": "Order",
//	  "types": {
//	    "Order": {
//	      "fields": {
//	        "id":       {"type": "int64", "required": true},
//	        "tags":     {"type": "list", "elem": {"type": "string"}},
//	        "customer": {"type": "ref", "name": "Customer", "nullable": true}
//	      }
//	    },
//	    "Customer": {"fields": {"name": {"type": "string", "required": true}}}
//	  }
//	}
package schemafile

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/usestring/strictjson/pkg/parser"
	"github.com/usestring/strictjson/pkg/schema"
	"github.com/usestring/strictjson/pkg/types"
)

// metaSchema constrains the raw document shape. Type resolution
// (unknown refs, cycles, depth) happens afterwards in Go.
const metaSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["root", "types"],
  "additionalProperties": false,
  "properties": {
    "root": {"type": "string", "minLength": 1},
    "types": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"$ref": "#/$defs/typeDecl"}
    }
  },
  "$defs": {
    "typeDecl": {
      "type": "object",
      "required": ["fields"],
      "additionalProperties": false,
      "properties": {
        "fields": {
          "type": "object",
          "additionalProperties": {"$ref": "#/$defs/fieldSpec"}
        }
      }
    },
    "fieldSpec": {
      "allOf": [{"$ref": "#/$defs/typeSpec"}],
      "properties": {
        "required": {"type": "boolean"},
        "nullable": {"type": "boolean"}
      }
    },
    "typeSpec": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["int32", "int64", "float64", "bool", "string", "timestamp", "list", "set", "ref"]},
        "elem": {"$ref": "#/$defs/typeSpec"},
        "name": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var compileMeta = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(metaSchema), &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling meta-schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schemafile.json", doc); err != nil {
		return nil, fmt.Errorf("adding meta-schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schemafile.json")
	if err != nil {
		return nil, fmt.Errorf("compiling meta-schema: %w", err)
	}
	return compiled, nil
})

// docLimits are generous: schema documents are small and trusted
// configuration, not request payloads.
var docLimits = parser.Limits{
	MaxPayloadBytes:  1 << 20,
	MaxNestingDepth:  64,
	MaxArrayElements: 1024,
	MaxStringBytes:   1 << 16,
}

// Load parses, validates, and resolves a schema document into a
// registry ready for binding. All failures are *types.Error of kind
// SchemaError except raw JSON problems in the document itself, which
// keep their lexical/grammar kinds.
func Load(data []byte) (*schema.Registry, *types.Error) {
	doc, perr := parser.Parse(context.Background(), data, docLimits)
	if perr != nil {
		return nil, perr
	}

	meta, err := compileMeta()
	if err != nil {
		return nil, &types.Error{Kind: types.KindSchema, Actual: err.Error()}
	}
	if err := meta.Validate(toAny(doc)); err != nil {
		return nil, &types.Error{
			Kind:     types.KindSchema,
			Expected: "a schema document matching the schemafile format",
			Actual:   err.Error(),
		}
	}

	rootName, _ := doc.Member("root")
	typesVal, _ := doc.Member("types")
	decls := make(map[string]*parser.Value, len(typesVal.Members))
	for _, m := range typesVal.Members {
		decls[m.Name] = m.Value
	}
	if _, ok := decls[rootName.Str]; !ok {
		return nil, &types.Error{
			Kind:     types.KindSchema,
			Path:     "root",
			Expected: "the root to name a declared type",
			Actual:   fmt.Sprintf("unknown type %q", rootName.Str),
		}
	}

	r := &resolver{decls: decls, built: make(map[string]*schema.Type), building: make(map[string]bool)}
	root, rerr := r.object(rootName.Str)
	if rerr != nil {
		return nil, rerr
	}
	return schema.NewRegistry(root)
}

type resolver struct {
	decls    map[string]*parser.Value
	built    map[string]*schema.Type
	building map[string]bool
}

// object resolves one declared type, memoized. A ref chain that loops
// back into a type still being built is a cycle; it has to be caught
// here because building the in-memory type for it would not terminate.
func (r *resolver) object(name string) (*schema.Type, *types.Error) {
	if t, ok := r.built[name]; ok {
		return t, nil
	}
	if r.building[name] {
		return nil, &types.Error{
			Kind:     types.KindSchema,
			Path:     name,
			Expected: "an acyclic type graph",
			Actual:   fmt.Sprintf("type %q refers back to itself", name),
		}
	}
	r.building[name] = true
	defer delete(r.building, name)

	decl := r.decls[name]
	fieldsVal, _ := decl.Member("fields")
	fields := make([]schema.Field, 0, len(fieldsVal.Members))
	for _, m := range fieldsVal.Members {
		f, err := r.field(name, m.Name, m.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	t := schema.ObjectOf(name, fields...)
	r.built[name] = t
	return t, nil
}

func (r *resolver) field(typeName, fieldName string, spec *parser.Value) (schema.Field, *types.Error) {
	path := typeName + "." + fieldName
	ft, err := r.typeSpec(path, spec)
	if err != nil {
		return schema.Field{}, err
	}
	return schema.Field{
		Name:     fieldName,
		Type:     ft,
		Required: boolMember(spec, "required"),
		Nullable: boolMember(spec, "nullable"),
	}, nil
}

func (r *resolver) typeSpec(path string, spec *parser.Value) (*schema.Type, *types.Error) {
	kindVal, _ := spec.Member("type")
	switch kindVal.Str {
	case "int32":
		return schema.Int32Of(), nil
	case "int64":
		return schema.Int64Of(), nil
	case "float64":
		return schema.Float64Of(), nil
	case "bool":
		return schema.BoolOf(), nil
	case "string":
		return schema.StringOf(), nil
	case "timestamp":
		return schema.TimestampOf(), nil
	case "list", "set":
		elemVal, ok := spec.Member("elem")
		if !ok {
			return nil, &types.Error{
				Kind:     types.KindSchema,
				Path:     path,
				Expected: fmt.Sprintf("an \"elem\" spec on the %s", kindVal.Str),
				Actual:   "none",
			}
		}
		elem, err := r.typeSpec(path+".elem", elemVal)
		if err != nil {
			return nil, err
		}
		if kindVal.Str == "set" {
			return schema.SetOf(elem), nil
		}
		return schema.ListOf(elem), nil
	case "ref":
		nameVal, ok := spec.Member("name")
		if !ok {
			return nil, &types.Error{
				Kind:     types.KindSchema,
				Path:     path,
				Expected: "a \"name\" on the ref",
				Actual:   "none",
			}
		}
		if _, declared := r.decls[nameVal.Str]; !declared {
			return nil, &types.Error{
				Kind:     types.KindSchema,
				Path:     path,
				Expected: "a ref to a declared type",
				Actual:   fmt.Sprintf("unknown type %q", nameVal.Str),
			}
		}
		return r.object(nameVal.Str)
	default:
		return nil, &types.Error{
			Kind:     types.KindSchema,
			Path:     path,
			Expected: "a known type name",
			Actual:   fmt.Sprintf("%q", kindVal.Str),
		}
	}
}

func boolMember(v *parser.Value, name string) bool {
	m, ok := v.Member(name)
	return ok && m.Kind == parser.Bool && m.B
}

// toAny converts a parsed value to the plain shapes the jsonschema
// validator consumes.
func toAny(v *parser.Value) any {
	switch v.Kind {
	case parser.Object:
		out := make(map[string]any, len(v.Members))
		for _, m := range v.Members {
			out[m.Name] = toAny(m.Value)
		}
		return out
	case parser.Array:
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = toAny(e)
		}
		return out
	case parser.String:
		return v.Str
	case parser.Number:
		f, _ := strconv.ParseFloat(v.Num, 64)
		return f
	case parser.Bool:
		return v.B
	default:
		return nil
	}
}
