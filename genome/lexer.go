package genome

import (
	"fmt"
	"strings"
)

// field is one KEY:VALUE token. Scalars have a single value; vectors have zero or more.
type field struct {
	Key    string
	Values []string
	Vector bool
	Col    int
}

// lexer validates a whole genome line and splits it into fields.
type lexer struct {
	input string
	pos   int
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: column %d: %s", ErrFormat, l.pos+1, fmt.Sprintf(format, args...))
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) peek() byte { return l.input[l.pos] }

func (l *lexer) skipSpace() {
	for !l.eof() && isSpace(l.peek()) {
		l.pos++
	}
}

// parse checks the line against TAG-> ( KEY:(scalar|{v, v, ...}) )* and returns the
// tag and fields. Nothing is returned unless the whole line is valid.
func parse(line string) (string, []field, error) {
	l := &lexer{input: strings.TrimSpace(line)}

	tag, err := l.readTag()
	if err != nil {
		return "", nil, err
	}

	var fields []field
	for {
		l.skipSpace()
		if l.eof() {
			return tag, fields, nil
		}
		f, err := l.readField()
		if err != nil {
			return "", nil, err
		}
		fields = append(fields, f)
	}
}

func (l *lexer) readTag() (string, error) {
	for _, tag := range []string{TagOrganism, TagBlueprint} {
		if strings.HasPrefix(l.input, tag) {
			l.pos = len(tag)
			if !l.eof() && !isSpace(l.peek()) {
				return "", l.errorf("expected space after %q", tag)
			}
			return tag, nil
		}
	}
	return "", l.errorf("missing %q or %q tag", TagOrganism, TagBlueprint)
}

func (l *lexer) readField() (field, error) {
	f := field{Col: l.pos + 1}

	start := l.pos
	for !l.eof() && isKeyChar(l.peek()) {
		l.pos++
	}
	if l.pos == start {
		return f, l.errorf("expected key, found %q", l.peek())
	}
	f.Key = l.input[start:l.pos]

	if l.eof() || l.peek() != ':' {
		return f, l.errorf("expected ':' after key %q", f.Key)
	}
	l.pos++

	if !l.eof() && l.peek() == '{' {
		values, err := l.readVector()
		if err != nil {
			return f, err
		}
		f.Values, f.Vector = values, true
		return f, nil
	}

	value, err := l.readScalar()
	if err != nil {
		return f, err
	}
	f.Values = []string{value}
	return f, l.expectSeparator()
}

func (l *lexer) readScalar() (string, error) {
	start := l.pos
	for !l.eof() && isScalarChar(l.peek()) {
		l.pos++
	}
	if l.pos == start {
		return "", l.errorf("expected value")
	}
	return l.input[start:l.pos], nil
}

// readVector reads {a, b, ...}. The empty vector {} is allowed.
func (l *lexer) readVector() ([]string, error) {
	l.pos++ // '{'
	l.skipSpace()
	values := []string{}
	if !l.eof() && l.peek() == '}' {
		l.pos++
		return values, l.expectSeparator()
	}
	for {
		l.skipSpace()
		v, err := l.readScalar()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		l.skipSpace()
		if l.eof() {
			return nil, l.errorf("unterminated vector")
		}
		switch l.peek() {
		case ',':
			l.pos++
		case '}':
			l.pos++
			return values, l.expectSeparator()
		default:
			return nil, l.errorf("unexpected %q in vector", l.peek())
		}
	}
}

// expectSeparator requires whitespace or end of line after a value.
func (l *lexer) expectSeparator() error {
	if !l.eof() && !isSpace(l.peek()) {
		return l.errorf("unexpected %q after value", l.peek())
	}
	return nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isScalarChar(c byte) bool {
	return !isSpace(c) && c != '{' && c != '}' && c != ',' && c != ':' && c != '\n' && c != '\r'
}
