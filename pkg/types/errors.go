// Package types holds the error model and policy enums shared by the
// scanner, parser, schema registry, and binder.
package types

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorKind classifies a decode failure. Every error produced by this
// module carries exactly one kind; there are no wrapped causes across
// kinds because the first violation terminates the whole operation.
type ErrorKind int

const (
	// KindUnknown is the zero value and never produced.
	KindUnknown ErrorKind = iota

	// KindLex is a malformed byte-level token: bad escape, invalid
	// UTF-8, malformed number grammar, or scientific notation.
	KindLex
	// KindSyntax is a grammar violation: missing comma or brace,
	// trailing comma, duplicate object key, trailing bytes after the
	// root value.
	KindSyntax
	// KindPayloadTooLarge means the input exceeds MaxPayloadBytes.
	KindPayloadTooLarge
	// KindNestingTooDeep means either raw token nesting or schema
	// object-path depth exceeds the configured ceiling.
	KindNestingTooDeep
	// KindArrayTooLarge means an array exceeds MaxArrayElements.
	KindArrayTooLarge
	// KindStringTooLong means a decoded string exceeds MaxStringBytes.
	KindStringTooLong
	// KindTypeMismatch means a value is present but of the wrong kind
	// for the declared type. Quoted numbers, numeric booleans, and bare
	// scalars on list fields all land here: nothing is coerced.
	KindTypeMismatch
	// KindUnexpectedNull means an explicit null arrived on a field not
	// declared nullable.
	KindUnexpectedNull
	// KindMissingRequiredField means a required field is absent.
	KindMissingRequiredField
	// KindUnknownField means an object key has no schema match and the
	// unknown-field policy is Reject.
	KindUnknownField
	// KindInvalidDateFormat means a timestamp string does not match the
	// mandated UTC pattern.
	KindInvalidDateFormat
	// KindSchema is a registration-time failure: cyclic type graph,
	// object depth over the limit, duplicate field names, unresolved
	// references. Treated as startup-fatal by embedders.
	KindSchema
	// KindCancelled means the caller's context expired before the
	// operation completed. No partial result is returned.
	KindCancelled
)

var kindNames = map[ErrorKind]string{
	KindLex:                  "LexError",
	KindSyntax:               "SyntaxError",
	KindPayloadTooLarge:      "PayloadTooLarge",
	KindNestingTooDeep:       "NestingTooDeep",
	KindArrayTooLarge:        "ArrayTooLarge",
	KindStringTooLong:        "StringTooLong",
	KindTypeMismatch:         "TypeMismatch",
	KindUnexpectedNull:       "UnexpectedNull",
	KindMissingRequiredField: "MissingRequiredField",
	KindUnknownField:         "UnknownField",
	KindInvalidDateFormat:    "InvalidDateFormat",
	KindSchema:               "SchemaError",
	KindCancelled:            "Cancelled",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Printer formats error messages with grouped digits ("10,000 elements").
var Printer = message.NewPrinter(language.English)

// Error is the single error type produced by this module. All fields
// except Kind are optional; Error() renders whichever are set.
type Error struct {
	Kind     ErrorKind
	Path     string // dotted field path, e.g. "order.customer.age"
	Offset   int64  // byte offset into the input, 0-based
	Line     int    // 1-based; 0 when position is not applicable
	Col      int    // 1-based rune column
	Expected string
	Actual   string
	Hint     string // one-line remediation suggestion
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("strictjson: ")
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d, col %d)", e.Line, e.Col)
	} else if e.Offset > 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	if e.Expected != "" {
		fmt.Fprintf(&b, ": expected %s", e.Expected)
		if e.Actual != "" {
			fmt.Fprintf(&b, ", got %s", e.Actual)
		}
	} else if e.Actual != "" {
		fmt.Fprintf(&b, ": %s", e.Actual)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " (%s)", e.Hint)
	}
	return b.String()
}

// KindOf extracts the ErrorKind from an error produced by this module,
// or KindUnknown for foreign errors and nil.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok && e != nil {
		return e.Kind
	}
	return KindUnknown
}
