// Package literal parses the textual list/dict literals that catalogue
// front-ends store in free-form text fields, e.g.
//
//	[{'author_name': 'Ada Lovelace', 'author_name_type': 'Personal'}]
//
// Both Python-style (single quotes, u/b/r prefixes, True/False/None) and
// JSON-style (double quotes, true/false/null) literals are accepted. Only
// literal values are understood; nothing is ever evaluated.
package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse errors.
var (
	ErrSyntax      = errors.New("malformed literal")
	ErrEmpty       = errors.New("empty literal")
	ErrKeyType     = errors.New("mapping keys must be strings")
	ErrNotList     = errors.New("literal is not a list")
	ErrNotMapping  = errors.New("list entry is not a mapping")
	ErrMissing     = errors.New("no value to parse")
	ErrUnsupported = errors.New("unsupported value type")
)

const maxDepth = 64

// Parse parses a single literal. Lists and tuples become []any, dicts become
// map[string]any, integers int64, reals float64, strings string, booleans
// bool and None/null nil.
func Parse(s string) (any, error) {
	p := &parser{src: s}
	p.skipSpace()

	if p.eof() {
		return nil, ErrEmpty
	}

	v, err := p.value(0)
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.eof() {
		return nil, p.errorf("unexpected trailing input")
	}

	return v, nil
}

// Mappings validates raw as a list of mappings. raw may be a literal string or
// an already-decoded []any (as produced by encoding/json). The result is
// all-or-nothing: any entry that is not a mapping fails the whole list.
func Mappings(raw any) ([]map[string]any, error) {
	var v any

	switch t := raw.(type) {
	case nil:
		return nil, ErrMissing
	case string:
		parsed, err := Parse(t)
		if err != nil {
			return nil, err
		}

		v = parsed
	case []any, []map[string]any:
		v = t
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, raw)
	}

	if ms, ok := v.([]map[string]any); ok {
		return ms, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotList, v)
	}

	out := make([]map[string]any, 0, len(list))

	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: index %d is %T", ErrNotMapping, i, item)
		}

		out = append(out, m)
	}

	return out, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value(depth int) (any, error) {
	if depth > maxDepth {
		return nil, p.errorf("nesting too deep")
	}

	p.skipSpace()

	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	switch c := p.peek(); {
	case c == '[':
		return p.sequence(depth, '[', ']')
	case c == '(':
		return p.sequence(depth, '(', ')')
	case c == '{':
		return p.mapping(depth)
	case c == '\'' || c == '"':
		return p.str(false)
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isIdentStart(c):
		if prefix, ok := p.stringPrefix(); ok {
			p.pos += len(prefix)

			return p.str(strings.ContainsRune(prefix, 'r'))
		}

		return p.keyword()
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) sequence(depth int, open, closing byte) (any, error) {
	p.pos++ // open

	items := []any{}
	sawComma := false

	for {
		p.skipSpace()

		if p.eof() {
			return nil, p.errorf("unterminated %q", open)
		}

		if p.peek() == closing {
			p.pos++
			// (x) is a parenthesised value, (x,) a tuple
			if open == '(' && len(items) == 1 && !sawComma {
				return items[0], nil
			}

			return items, nil
		}

		if len(items) > 0 {
			if p.peek() != ',' {
				return nil, p.errorf("expected ',' or %q", closing)
			}

			p.pos++
			sawComma = true

			p.skipSpace()

			if !p.eof() && p.peek() == closing {
				continue
			}
		}

		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}

		items = append(items, v)
	}
}

func (p *parser) mapping(depth int) (any, error) {
	p.pos++ // {

	m := map[string]any{}
	n := 0

	for {
		p.skipSpace()

		if p.eof() {
			return nil, p.errorf("unterminated '{'")
		}

		if p.peek() == '}' {
			p.pos++

			return m, nil
		}

		if n > 0 {
			if p.peek() != ',' {
				return nil, p.errorf("expected ',' or '}'")
			}

			p.pos++
			p.skipSpace()

			if !p.eof() && p.peek() == '}' {
				continue
			}
		}

		k, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}

		key, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrKeyType, k)
		}

		p.skipSpace()

		if p.eof() || p.peek() != ':' {
			return nil, p.errorf("expected ':' after key %q", key)
		}

		p.pos++

		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}

		m[key] = v
		n++
	}
}

// stringPrefix reports a u, b or r string prefix (or br/rb) followed by a
// quote at the current position. Bytes literals are read as text.
func (p *parser) stringPrefix() (string, bool) {
	for n := 1; n <= 2 && p.pos+n < len(p.src); n++ {
		if c := p.src[p.pos+n]; c != '\'' && c != '"' {
			continue
		}

		switch prefix := strings.ToLower(p.src[p.pos : p.pos+n]); prefix {
		case "u", "r", "b", "br", "rb":
			return prefix, true
		}

		return "", false
	}

	return "", false
}

func (p *parser) str(raw bool) (any, error) {
	quote := p.peek()
	p.pos++

	var sb strings.Builder

	for {
		if p.eof() {
			return nil, p.errorf("unterminated string")
		}

		c := p.peek()

		switch {
		case c == quote:
			p.pos++

			return sb.String(), nil
		case c == '\n':
			return nil, p.errorf("newline in string")
		case c == '\\' && raw:
			// kept verbatim, but still shields the next character
			sb.WriteByte(c)
			p.pos++

			if !p.eof() {
				r, size := utf8.DecodeRuneInString(p.src[p.pos:])
				sb.WriteRune(r)
				p.pos += size
			}
		case c == '\\':
			if err := p.escape(&sb); err != nil {
				return nil, err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *parser) escape(sb *strings.Builder) error {
	p.pos++ // backslash

	if p.eof() {
		return p.errorf("unterminated escape")
	}

	c := p.peek()
	p.pos++

	switch c {
	case '\\', '\'', '"', '/':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case '0':
		sb.WriteByte(0)
	case '\n':
		// line continuation
	case 'x':
		return p.hexRune(sb, 2)
	case 'u':
		return p.hexRune(sb, 4)
	case 'U':
		return p.hexRune(sb, 8)
	default:
		// unknown escapes are kept verbatim
		sb.WriteByte('\\')
		sb.WriteByte(c)
	}

	return nil
}

func (p *parser) hexRune(sb *strings.Builder, n int) error {
	if p.pos+n > len(p.src) {
		return p.errorf("short \\x/\\u escape")
	}

	code, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return p.errorf("bad hex escape %q", p.src[p.pos:p.pos+n])
	}

	p.pos += n
	sb.WriteRune(rune(code))

	return nil
}

func (p *parser) number() (any, error) {
	start := p.pos
	isFloat := false

	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}

	for !p.eof() {
		c := p.peek()

		switch {
		case c >= '0' && c <= '9', c == '_':
		case c == '.', c == 'e', c == 'E':
			isFloat = true
		case (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
		default:
			return p.finishNumber(start, isFloat)
		}

		p.pos++
	}

	return p.finishNumber(start, isFloat)
}

func (p *parser) finishNumber(start int, isFloat bool) (any, error) {
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")

	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, text)
	}

	return f, nil
}

func (p *parser) keyword() (any, error) {
	start := p.pos
	for !p.eof() && isIdentPart(p.peek()) {
		p.pos++
	}

	switch word := p.src[start:p.pos]; word {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "null":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: name %q is not a literal", ErrSyntax, word)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
