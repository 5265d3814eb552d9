package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/usestring/strictjson/internal/scanner"
	"github.com/usestring/strictjson/pkg/types"
)

// Parse decodes data into exactly one root Value. The input buffer is
// borrowed read-only for the duration of the call. Any violation of
// the lexical rules, the grammar, or the limits aborts with a
// *types.Error; ctx is checked at every object/array boundary so a
// caller-supplied deadline can stop a pathological input.
func Parse(ctx context.Context, data []byte, lim Limits) (*Value, *types.Error) {
	if lim.MaxPayloadBytes > 0 && len(data) > lim.MaxPayloadBytes {
		return nil, &types.Error{
			Kind:     types.KindPayloadTooLarge,
			Expected: types.Printer.Sprintf("a payload of at most %d bytes", lim.MaxPayloadBytes),
			Actual:   types.Printer.Sprintf("%d bytes", len(data)),
			Hint:     "split the document or raise MaxPayloadBytes",
		}
	}

	p := &parser{
		ctx: ctx,
		sc:  scanner.New(data, lim.MaxStringBytes),
		lim: lim,
	}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == scanner.EOF {
		return nil, &types.Error{
			Kind:     types.KindSyntax,
			Line:     tok.Line,
			Col:      tok.Col,
			Expected: "a JSON value",
			Actual:   "end of input",
		}
	}
	v, err := p.parseValue(tok)
	if err != nil {
		return nil, err
	}
	trailing, err := p.next()
	if err != nil {
		return nil, err
	}
	if trailing.Kind != scanner.EOF {
		return nil, p.syntaxErr(trailing, "end of input after the top-level value",
			"remove the trailing data")
	}
	return v, nil
}

type parser struct {
	ctx   context.Context
	sc    *scanner.Scanner
	lim   Limits
	depth int
	path  []string // for NestingTooDeep reporting
}

func (p *parser) next() (scanner.Token, *types.Error) {
	return p.sc.Next()
}

func (p *parser) syntaxErr(tok scanner.Token, expected, hint string) *types.Error {
	actual := tok.Kind.String()
	if tok.Kind == scanner.String {
		actual = fmt.Sprintf("string %q", tok.Text)
	} else if tok.Kind == scanner.Number {
		actual = "number " + tok.Text
	}
	return &types.Error{
		Kind:     types.KindSyntax,
		Path:     p.pathString(),
		Offset:   tok.Offset,
		Line:     tok.Line,
		Col:      tok.Col,
		Expected: expected,
		Actual:   actual,
		Hint:     hint,
	}
}

func (p *parser) pathString() string {
	var b strings.Builder
	for _, seg := range p.path {
		if b.Len() > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func (p *parser) enter(tok scanner.Token) *types.Error {
	if err := p.ctx.Err(); err != nil {
		return &types.Error{
			Kind:   types.KindCancelled,
			Path:   p.pathString(),
			Offset: tok.Offset,
			Line:   tok.Line,
			Col:    tok.Col,
			Actual: err.Error(),
		}
	}
	p.depth++
	if p.lim.MaxNestingDepth > 0 && p.depth > p.lim.MaxNestingDepth {
		return &types.Error{
			Kind:     types.KindNestingTooDeep,
			Path:     p.pathString(),
			Offset:   tok.Offset,
			Line:     tok.Line,
			Col:      tok.Col,
			Expected: types.Printer.Sprintf("at most %d nested levels", p.lim.MaxNestingDepth),
			Actual:   types.Printer.Sprintf("%d levels", p.depth),
			Hint:     "flatten the document or raise MaxNestingDepth",
		}
	}
	return nil
}

func (p *parser) parseValue(tok scanner.Token) (*Value, *types.Error) {
	v := &Value{Offset: tok.Offset, Line: tok.Line, Col: tok.Col}
	switch tok.Kind {
	case scanner.BeginObject:
		return p.parseObject(tok, v)
	case scanner.BeginArray:
		return p.parseArray(tok, v)
	case scanner.String:
		v.Kind = String
		v.Str = tok.Text
	case scanner.Number:
		v.Kind = Number
		v.Num = tok.Text
	case scanner.True:
		v.Kind = Bool
		v.B = true
	case scanner.False:
		v.Kind = Bool
		v.B = false
	case scanner.Null:
		v.Kind = Null
	default:
		return nil, p.syntaxErr(tok, "a JSON value", "")
	}
	return v, nil
}

func (p *parser) parseObject(open scanner.Token, v *Value) (*Value, *types.Error) {
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	v.Kind = Object
	v.index = make(map[string]int)

	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == scanner.EndObject {
		return v, nil
	}
	for {
		if tok.Kind != scanner.String {
			return nil, p.syntaxErr(tok, "a quoted object key",
				"object keys must be double-quoted strings")
		}
		name := tok.Text
		if _, dup := v.index[name]; dup {
			return nil, &types.Error{
				Kind:     types.KindSyntax,
				Path:     p.pathString(),
				Offset:   tok.Offset,
				Line:     tok.Line,
				Col:      tok.Col,
				Expected: "each object key to appear once",
				Actual:   fmt.Sprintf("duplicate key %q", name),
				Hint:     "remove the repeated key; last-key-wins is not applied",
			}
		}

		colon, err := p.next()
		if err != nil {
			return nil, err
		}
		if colon.Kind != scanner.Colon {
			return nil, p.syntaxErr(colon, "':' after the object key", "")
		}

		valTok, err := p.next()
		if err != nil {
			return nil, err
		}
		p.path = append(p.path, name)
		member, err := p.parseValue(valTok)
		if err != nil {
			return nil, err
		}
		p.path = p.path[:len(p.path)-1]
		v.index[name] = len(v.Members)
		v.Members = append(v.Members, Member{Name: name, Value: member})

		tok, err = p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case scanner.EndObject:
			return v, nil
		case scanner.Comma:
			tok, err = p.next()
			if err != nil {
				return nil, err
			}
			if tok.Kind == scanner.EndObject {
				return nil, p.syntaxErr(tok, "another key-value pair after ','",
					"remove the trailing comma")
			}
		default:
			return nil, p.syntaxErr(tok, "',' or '}'", "")
		}
	}
}

func (p *parser) parseArray(open scanner.Token, v *Value) (*Value, *types.Error) {
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	v.Kind = Array

	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == scanner.EndArray {
		return v, nil
	}
	for {
		if p.lim.MaxArrayElements > 0 && len(v.Elems) >= p.lim.MaxArrayElements {
			return nil, &types.Error{
				Kind:     types.KindArrayTooLarge,
				Path:     p.pathString(),
				Offset:   tok.Offset,
				Line:     tok.Line,
				Col:      tok.Col,
				Expected: types.Printer.Sprintf("at most %d array elements", p.lim.MaxArrayElements),
				Actual:   "more",
				Hint:     "page the collection or raise MaxArrayElements",
			}
		}
		p.path = append(p.path, fmt.Sprintf("[%d]", len(v.Elems)))
		elem, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}
		p.path = p.path[:len(p.path)-1]
		v.Elems = append(v.Elems, elem)

		tok, err = p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case scanner.EndArray:
			return v, nil
		case scanner.Comma:
			tok, err = p.next()
			if err != nil {
				return nil, err
			}
			if tok.Kind == scanner.EndArray {
				return nil, p.syntaxErr(tok, "another element after ','",
					"remove the trailing comma")
			}
		default:
			return nil, p.syntaxErr(tok, "',' or ']'", "")
		}
	}
}
