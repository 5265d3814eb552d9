// Package scanner turns raw bytes into JSON tokens, enforcing RFC 8259
// lexical rules plus the stricter house rules: no exponents, no leading
// zeros, exact lowercase literals, valid UTF-8 throughout.
package scanner

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/usestring/strictjson/pkg/types"
)

// Kind identifies a token.
type Kind int

const (
	EOF Kind = iota
	BeginObject
	EndObject
	BeginArray
	EndArray
	Colon
	Comma
	String
	Number
	True
	False
	Null
)

var kindNames = [...]string{
	EOF:         "end of input",
	BeginObject: "'{'",
	EndObject:   "'}'",
	BeginArray:  "'['",
	EndArray:    "']'",
	Colon:       "':'",
	Comma:       "','",
	String:      "string",
	Number:      "number",
	True:        "'true'",
	False:       "'false'",
	Null:        "'null'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit. Text holds the decoded string content for
// String tokens and the raw decimal text for Number tokens.
type Token struct {
	Kind   Kind
	Text   string
	Offset int64
	Line   int
	Col    int
}

// Scanner produces tokens one at a time over a borrowed buffer. It
// never retains the buffer past the last Next call and supports no
// backtracking: each call advances the position.
type Scanner struct {
	data      []byte
	pos       int
	line      int
	col       int
	maxString int // decoded byte ceiling for one string token
}

// New returns a scanner over data. maxStringBytes bounds the decoded
// length of any single string token; zero or negative disables the
// check (the parser always passes a real limit).
func New(data []byte, maxStringBytes int) *Scanner {
	return &Scanner{data: data, line: 1, col: 1, maxString: maxStringBytes}
}

func (s *Scanner) errf(off int64, line, col int, expected, actual, hint string) *types.Error {
	return &types.Error{
		Kind:     types.KindLex,
		Offset:   off,
		Line:     line,
		Col:      col,
		Expected: expected,
		Actual:   actual,
		Hint:     hint,
	}
}

// advance consumes one byte known to be ASCII.
func (s *Scanner) advance() {
	if s.data[s.pos] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.pos++
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.advance()
		default:
			return
		}
	}
}

// Next returns the next token, or a LexError (StringTooLong for
// oversized strings). After EOF it keeps returning EOF.
func (s *Scanner) Next() (Token, *types.Error) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return Token{Kind: EOF, Offset: int64(s.pos), Line: s.line, Col: s.col}, nil
	}

	tok := Token{Offset: int64(s.pos), Line: s.line, Col: s.col}
	c := s.data[s.pos]
	switch {
	case c == '{':
		s.advance()
		tok.Kind = BeginObject
	case c == '}':
		s.advance()
		tok.Kind = EndObject
	case c == '[':
		s.advance()
		tok.Kind = BeginArray
	case c == ']':
		s.advance()
		tok.Kind = EndArray
	case c == ':':
		s.advance()
		tok.Kind = Colon
	case c == ',':
		s.advance()
		tok.Kind = Comma
	case c == '"':
		text, err := s.scanString(tok)
		if err != nil {
			return Token{}, err
		}
		tok.Kind = String
		tok.Text = text
	case c == '-' || (c >= '0' && c <= '9'):
		text, err := s.scanNumber(tok)
		if err != nil {
			return Token{}, err
		}
		tok.Kind = Number
		tok.Text = text
	case c == 't':
		if err := s.scanLiteral(tok, "true"); err != nil {
			return Token{}, err
		}
		tok.Kind = True
	case c == 'f':
		if err := s.scanLiteral(tok, "false"); err != nil {
			return Token{}, err
		}
		tok.Kind = False
	case c == 'n':
		if err := s.scanLiteral(tok, "null"); err != nil {
			return Token{}, err
		}
		tok.Kind = Null
	case c == '\'':
		return Token{}, s.errf(tok.Offset, tok.Line, tok.Col,
			"a JSON value", "a single quote",
			"strings must use double quotes")
	case c == '/':
		return Token{}, s.errf(tok.Offset, tok.Line, tok.Col,
			"a JSON value", "'/'",
			"comments are not part of JSON")
	case c >= 0x80:
		return Token{}, s.errf(tok.Offset, tok.Line, tok.Col,
			"a JSON value", fmt.Sprintf("byte 0x%02x", c),
			"non-ASCII bytes may appear only inside strings")
	default:
		return Token{}, s.errf(tok.Offset, tok.Line, tok.Col,
			"a JSON value", fmt.Sprintf("%q", rune(c)), "")
	}
	return tok, nil
}

func (s *Scanner) scanLiteral(tok Token, want string) *types.Error {
	if len(s.data)-s.pos >= len(want) && string(s.data[s.pos:s.pos+len(want)]) == want {
		// Literals must not run into identifier-like trailing bytes
		// ("nullx" is not null followed by garbage, it is one bad token).
		end := s.pos + len(want)
		if end < len(s.data) && isLiteralByte(s.data[end]) {
			return s.errf(tok.Offset, tok.Line, tok.Col,
				fmt.Sprintf("%q", want), s.badLiteralText(), "")
		}
		for range want {
			s.advance()
		}
		return nil
	}
	return s.errf(tok.Offset, tok.Line, tok.Col,
		fmt.Sprintf("%q", want), s.badLiteralText(),
		"literals are lowercase: true, false, null")
}

func isLiteralByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// badLiteralText grabs the run of literal-like bytes at the cursor for
// the error message, without consuming them.
func (s *Scanner) badLiteralText() string {
	end := s.pos
	for end < len(s.data) && isLiteralByte(s.data[end]) && end-s.pos < 16 {
		end++
	}
	return fmt.Sprintf("%q", string(s.data[s.pos:end]))
}

func (s *Scanner) scanNumber(tok Token) (string, *types.Error) {
	start := s.pos
	if s.data[s.pos] == '-' {
		s.advance()
		if s.pos >= len(s.data) || !isDigit(s.data[s.pos]) {
			return "", s.errf(tok.Offset, tok.Line, tok.Col,
				"a digit after '-'", s.byteDesc(), "")
		}
	}
	// Integer part: a lone 0, or a nonzero digit followed by digits.
	if s.data[s.pos] == '0' {
		s.advance()
		if s.pos < len(s.data) && isDigit(s.data[s.pos]) {
			return "", s.errf(tok.Offset, tok.Line, tok.Col,
				"a number without leading zeros", fmt.Sprintf("%q", previewNumber(s.data[start:])),
				"drop the leading zero")
		}
	} else {
		for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
			s.advance()
		}
	}
	// Optional fraction.
	if s.pos < len(s.data) && s.data[s.pos] == '.' {
		s.advance()
		if s.pos >= len(s.data) || !isDigit(s.data[s.pos]) {
			return "", s.errf(tok.Offset, tok.Line, tok.Col,
				"a digit after the decimal point", s.byteDesc(), "")
		}
		for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
			s.advance()
		}
	}
	if s.pos < len(s.data) && (s.data[s.pos] == 'e' || s.data[s.pos] == 'E') {
		return "", s.errf(tok.Offset, tok.Line, tok.Col,
			"a plain decimal number", fmt.Sprintf("%q", previewNumber(s.data[start:])),
			"scientific notation is not accepted; write the number out in full")
	}
	return string(s.data[start:s.pos]), nil
}

func previewNumber(b []byte) string {
	end := 0
	for end < len(b) && end < 24 {
		c := b[end]
		if isDigit(c) || c == '-' || c == '.' || c == 'e' || c == 'E' || c == '+' {
			end++
			continue
		}
		break
	}
	return string(b[:end])
}

func (s *Scanner) byteDesc() string {
	if s.pos >= len(s.data) {
		return "end of input"
	}
	return fmt.Sprintf("%q", rune(s.data[s.pos]))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) rune {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0')
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10
	default:
		return rune(c-'A') + 10
	}
}

func (s *Scanner) scanString(tok Token) (string, *types.Error) {
	s.advance() // opening quote
	var b strings.Builder
	for {
		if s.pos >= len(s.data) {
			return "", s.errf(tok.Offset, tok.Line, tok.Col,
				"a closing '\"'", "end of input", "the string is unterminated")
		}
		c := s.data[s.pos]
		switch {
		case c == '"':
			s.advance()
			return b.String(), nil
		case c == '\\':
			if err := s.scanEscape(tok, &b); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", s.errf(int64(s.pos), s.line, s.col,
				"an escaped control character", fmt.Sprintf("raw byte 0x%02x", c),
				"control characters inside strings must use \\u escapes")
		case c < 0x80:
			b.WriteByte(c)
			s.advance()
		default:
			r, size := utf8.DecodeRune(s.data[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return "", s.errf(int64(s.pos), s.line, s.col,
					"valid UTF-8", fmt.Sprintf("byte 0x%02x", c), "")
			}
			b.Write(s.data[s.pos : s.pos+size])
			s.pos += size
			s.col++
		}
		// Strings over the ceiling fail as soon as they cross it, not
		// after buffering the rest of a multi-megabyte token.
		if s.maxString > 0 && b.Len() > s.maxString {
			return "", &types.Error{
				Kind:     types.KindStringTooLong,
				Offset:   tok.Offset,
				Line:     tok.Line,
				Col:      tok.Col,
				Expected: types.Printer.Sprintf("a string of at most %d bytes", s.maxString),
				Actual:   "a longer string",
			}
		}
	}
}

func (s *Scanner) scanEscape(tok Token, b *strings.Builder) *types.Error {
	escOff, escLine, escCol := int64(s.pos), s.line, s.col
	s.advance() // backslash
	if s.pos >= len(s.data) {
		return s.errf(escOff, escLine, escCol,
			"an escape character", "end of input", "")
	}
	c := s.data[s.pos]
	switch c {
	case '"':
		b.WriteByte('"')
	case '\\':
		b.WriteByte('\\')
	case '/':
		b.WriteByte('/')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		s.advance()
		r, err := s.scanHex4(escOff, escLine, escCol)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			if s.pos+1 < len(s.data) && s.data[s.pos] == '\\' && s.data[s.pos+1] == 'u' {
				s.advance()
				s.advance()
				r2, err := s.scanHex4(escOff, escLine, escCol)
				if err != nil {
					return err
				}
				combined := utf16.DecodeRune(r, r2)
				if combined == utf8.RuneError {
					return s.errf(escOff, escLine, escCol,
						"a valid surrogate pair", fmt.Sprintf("\\u%04X\\u%04X", r, r2), "")
				}
				b.WriteRune(combined)
				return nil
			}
			return s.errf(escOff, escLine, escCol,
				"a low surrogate escape to follow", fmt.Sprintf("\\u%04X alone", r), "")
		}
		b.WriteRune(r)
		return nil
	default:
		return s.errf(escOff, escLine, escCol,
			`one of \" \\ \/ \b \f \n \r \t \uXXXX`, fmt.Sprintf("\\%c", c), "")
	}
	s.advance()
	return nil
}

func (s *Scanner) scanHex4(escOff int64, escLine, escCol int) (rune, *types.Error) {
	if len(s.data)-s.pos < 4 {
		return 0, s.errf(escOff, escLine, escCol,
			"four hex digits after \\u", "end of input", "")
	}
	var r rune
	for i := 0; i < 4; i++ {
		c := s.data[s.pos]
		if !isHex(c) {
			return 0, s.errf(escOff, escLine, escCol,
				"four hex digits after \\u", fmt.Sprintf("%q", rune(c)), "")
		}
		r = r<<4 | hexVal(c)
		s.advance()
	}
	return r, nil
}
