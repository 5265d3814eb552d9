package bind

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/usestring/strictjson/pkg/parser"
	"github.com/usestring/strictjson/pkg/schema"
	"github.com/usestring/strictjson/pkg/types"
)

// Options configure one Binder.
type Options struct {
	Limits        parser.Limits
	UnknownFields types.UnknownFieldPolicy
}

// DefaultOptions returns production limits and the reject policy.
func DefaultOptions() Options {
	return Options{Limits: parser.DefaultLimits(), UnknownFields: types.RejectUnknownFields}
}

// Binder decodes JSON bytes against one validated registry. A Binder
// holds no mutable state: the same instance may serve any number of
// concurrent Decode calls.
type Binder struct {
	reg  *schema.Registry
	opts Options
}

// New returns a binder over a validated registry.
func New(reg *schema.Registry, opts Options) *Binder {
	return &Binder{reg: reg, opts: opts}
}

// Decode parses data and binds it against the registry's root type.
// The result is all-or-nothing: the first violation anywhere in the
// tree aborts the whole call and no partial tree is ever returned.
func (b *Binder) Decode(ctx context.Context, data []byte) (*Node, *types.Error) {
	v, err := parser.Parse(ctx, data, b.opts.Limits)
	if err != nil {
		return nil, err
	}
	return b.BindValue(ctx, v)
}

// BindValue binds an already-parsed value against the root type. Pure:
// no shared mutable state, safe for concurrent use.
func (b *Binder) BindValue(ctx context.Context, v *parser.Value) (*Node, *types.Error) {
	st := &bindState{ctx: ctx, opts: b.opts}
	return st.bind(v, b.reg.Root(), "")
}

type bindState struct {
	ctx      context.Context
	opts     Options
	objDepth int // schema-path depth, independent of the parser's token depth
}

func (st *bindState) bind(v *parser.Value, t *schema.Type, path string) (*Node, *types.Error) {
	switch t.Kind() {
	case schema.Int32:
		return st.bindInt(v, t, path, 32)
	case schema.Int64:
		return st.bindInt(v, t, path, 64)
	case schema.Float64:
		return st.bindFloat(v, t, path)
	case schema.Bool:
		return st.bindBool(v, t, path)
	case schema.String:
		return st.bindString(v, t, path)
	case schema.Timestamp:
		return st.bindTimestamp(v, t, path)
	case schema.List, schema.Set:
		return st.bindCollection(v, t, path)
	case schema.Object:
		return st.bindObject(v, t, path)
	default:
		return nil, mismatch(v, path, "a known schema kind", t.Kind().String(), "")
	}
}

func mismatch(v *parser.Value, path, expected, actual, hint string) *types.Error {
	return &types.Error{
		Kind:     types.KindTypeMismatch,
		Path:     path,
		Offset:   v.Offset,
		Line:     v.Line,
		Col:      v.Col,
		Expected: expected,
		Actual:   actual,
		Hint:     hint,
	}
}

// describe renders a parsed value for expected-vs-actual messages.
func describe(v *parser.Value) string {
	switch v.Kind {
	case parser.String:
		s := v.Str
		if len(s) > 32 {
			s = s[:32] + "..."
		}
		return fmt.Sprintf("string %q", s)
	case parser.Number:
		return "number " + v.Num
	case parser.Bool:
		return "boolean " + strconv.FormatBool(v.B)
	default:
		return v.Kind.String()
	}
}

func (st *bindState) bindInt(v *parser.Value, t *schema.Type, path string, bits int) (*Node, *types.Error) {
	want := fmt.Sprintf("an int%d number", bits)
	if v.Kind != parser.Number {
		hint := ""
		if v.Kind == parser.String {
			hint = "remove the quotes around the numeric value"
		}
		return nil, mismatch(v, path, want, describe(v), hint)
	}
	if strings.ContainsRune(v.Num, '.') {
		return nil, mismatch(v, path, want, "number "+v.Num,
			"integer fields do not accept a decimal point")
	}
	n, err := strconv.ParseInt(v.Num, 10, bits)
	if err != nil {
		return nil, mismatch(v, path,
			fmt.Sprintf("a number within the int%d range", bits), "number "+v.Num, "")
	}
	return &Node{typ: t, i: n}, nil
}

func (st *bindState) bindFloat(v *parser.Value, t *schema.Type, path string) (*Node, *types.Error) {
	if v.Kind != parser.Number {
		hint := ""
		if v.Kind == parser.String {
			hint = "remove the quotes around the numeric value"
		}
		return nil, mismatch(v, path, "a number", describe(v), hint)
	}
	f, err := strconv.ParseFloat(v.Num, 64)
	if err != nil {
		return nil, mismatch(v, path, "a number representable as float64", "number "+v.Num, "")
	}
	return &Node{typ: t, f: f}, nil
}

func (st *bindState) bindBool(v *parser.Value, t *schema.Type, path string) (*Node, *types.Error) {
	if v.Kind != parser.Bool {
		hint := ""
		switch {
		case v.Kind == parser.String && (v.Str == "true" || v.Str == "false"):
			hint = "use the bare literal without quotes"
		case v.Kind == parser.Number:
			hint = "numbers are never read as booleans"
		}
		return nil, mismatch(v, path, "true or false", describe(v), hint)
	}
	return &Node{typ: t, b: v.B}, nil
}

func (st *bindState) bindString(v *parser.Value, t *schema.Type, path string) (*Node, *types.Error) {
	if v.Kind != parser.String {
		return nil, mismatch(v, path, "a string", describe(v), "")
	}
	// Re-asserts the scanner's ceiling; content is copied verbatim with
	// no trimming or normalization.
	if max := st.opts.Limits.MaxStringBytes; max > 0 && len(v.Str) > max {
		return nil, &types.Error{
			Kind:     types.KindStringTooLong,
			Path:     path,
			Offset:   v.Offset,
			Line:     v.Line,
			Col:      v.Col,
			Expected: types.Printer.Sprintf("a string of at most %d bytes", max),
			Actual:   types.Printer.Sprintf("%d bytes", len(v.Str)),
		}
	}
	return &Node{typ: t, s: v.Str}, nil
}

// timestampPattern is the only accepted wire form: UTC designator Z,
// optional millisecond fraction, nothing else.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3})?Z$`)

func (st *bindState) bindTimestamp(v *parser.Value, t *schema.Type, path string) (*Node, *types.Error) {
	if v.Kind != parser.String {
		hint := ""
		if v.Kind == parser.Number {
			hint = "epoch numbers are not accepted; send an ISO-8601 UTC string"
		}
		return nil, mismatch(v, path, `a timestamp string "YYYY-MM-DDTHH:mm:ss(.fff)?Z"`, describe(v), hint)
	}
	if !timestampPattern.MatchString(v.Str) {
		hint := "use the UTC designator Z; offsets and date-only forms are rejected"
		return nil, &types.Error{
			Kind:     types.KindInvalidDateFormat,
			Path:     path,
			Offset:   v.Offset,
			Line:     v.Line,
			Col:      v.Col,
			Expected: `"YYYY-MM-DDTHH:mm:ss(.fff)?Z"`,
			Actual:   fmt.Sprintf("%q", v.Str),
			Hint:     hint,
		}
	}
	layout := "2006-01-02T15:04:05Z"
	if strings.ContainsRune(v.Str, '.') {
		layout = timestampLayout
	}
	ts, err := time.ParseInLocation(layout, v.Str, time.UTC)
	if err != nil {
		return nil, &types.Error{
			Kind:     types.KindInvalidDateFormat,
			Path:     path,
			Offset:   v.Offset,
			Line:     v.Line,
			Col:      v.Col,
			Expected: "a valid calendar date and time",
			Actual:   fmt.Sprintf("%q", v.Str),
		}
	}
	return &Node{typ: t, t: ts}, nil
}

func (st *bindState) bindCollection(v *parser.Value, t *schema.Type, path string) (*Node, *types.Error) {
	if v.Kind != parser.Array {
		// A bare scalar never becomes a one-element collection.
		return nil, mismatch(v, path, "an array", describe(v),
			"single values are not wrapped; send a JSON array")
	}
	if err := st.checkCtx(v, path); err != nil {
		return nil, err
	}
	node := &Node{typ: t}
	for i, ev := range v.Elems {
		elem, err := st.bind(ev, t.Elem(), elemPath(path, i))
		if err != nil {
			return nil, err
		}
		if t.Kind() == schema.Set {
			dup := false
			for _, prev := range node.elems {
				if equalNodes(prev, elem) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
		}
		node.elems = append(node.elems, elem)
	}
	return node, nil
}

func (st *bindState) bindObject(v *parser.Value, t *schema.Type, path string) (*Node, *types.Error) {
	if v.Kind != parser.Object {
		return nil, mismatch(v, path, fmt.Sprintf("an object of type %s", t.Name()), describe(v), "")
	}
	if err := st.checkCtx(v, path); err != nil {
		return nil, err
	}
	st.objDepth++
	defer func() { st.objDepth-- }()
	if st.objDepth > schema.MaxObjectDepth {
		return nil, &types.Error{
			Kind:     types.KindNestingTooDeep,
			Path:     path,
			Offset:   v.Offset,
			Line:     v.Line,
			Col:      v.Col,
			Expected: types.Printer.Sprintf("at most %d nested object levels", schema.MaxObjectDepth),
			Actual:   types.Printer.Sprintf("%d levels", st.objDepth),
		}
	}

	node := &Node{typ: t, flds: make(map[string]FieldValue, len(t.Fields()))}
	// Declared fields first, in declaration order, so the first error
	// reported is deterministic.
	for _, f := range t.Fields() {
		fpath := childPath(path, f.Name)
		mv, present := v.Member(f.Name)
		switch {
		case !present:
			if f.Required {
				return nil, &types.Error{
					Kind:     types.KindMissingRequiredField,
					Path:     fpath,
					Offset:   v.Offset,
					Line:     v.Line,
					Col:      v.Col,
					Expected: fmt.Sprintf("field %q of type %s", f.Name, f.Type.Kind()),
					Actual:   "no such key",
					Hint:     "add the field; required fields are never defaulted",
				}
			}
			node.flds[f.Name] = FieldValue{Presence: Absent}
		case mv.Kind == parser.Null:
			if !f.Nullable {
				return nil, &types.Error{
					Kind:     types.KindUnexpectedNull,
					Path:     fpath,
					Offset:   mv.Offset,
					Line:     mv.Line,
					Col:      mv.Col,
					Expected: fmt.Sprintf("a %s value", f.Type.Kind()),
					Actual:   "null",
					Hint:     "omit the field or declare it nullable",
				}
			}
			node.flds[f.Name] = FieldValue{Presence: ExplicitNull}
		default:
			child, err := st.bind(mv, f.Type, fpath)
			if err != nil {
				return nil, err
			}
			node.flds[f.Name] = FieldValue{Presence: Present, Node: child}
		}
	}
	if st.opts.UnknownFields == types.RejectUnknownFields {
		for _, m := range v.Members {
			if _, ok := t.FieldByName(m.Name); !ok {
				return nil, &types.Error{
					Kind:     types.KindUnknownField,
					Path:     childPath(path, m.Name),
					Offset:   m.Value.Offset,
					Line:     m.Value.Line,
					Col:      m.Value.Col,
					Expected: fmt.Sprintf("only the declared fields of %s", t.Name()),
					Actual:   fmt.Sprintf("key %q", m.Name),
					Hint:     "remove the key, fix its spelling, or opt into the ignore policy",
				}
			}
		}
	}
	return node, nil
}

func (st *bindState) checkCtx(v *parser.Value, path string) *types.Error {
	if err := st.ctx.Err(); err != nil {
		return &types.Error{
			Kind:   types.KindCancelled,
			Path:   path,
			Offset: v.Offset,
			Line:   v.Line,
			Col:    v.Col,
			Actual: err.Error(),
		}
	}
	return nil
}

func childPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func elemPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}
