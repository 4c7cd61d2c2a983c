package json

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// EOF is returned by [Reader.Peek] and [Reader.Get] at the end of input.
const EOF = -1

const unknownSource = "<unknown source file>"

var strictDefault atomic.Bool

// SetStrict sets the process-wide default for strict mode. In strict mode,
// finishing an [Object] reports every member that was never read.
func SetStrict(on bool) {
	strictDefault.Store(on)
}

// Strict reports the process-wide strict mode default.
func Strict() bool {
	return strictDefault.Load()
}

// Option configures a Reader.
type Option func(*Reader)

// WithPath sets the source name used in error messages.
func WithPath(path string) Option {
	return func(r *Reader) {
		if path != "" {
			r.path = path
		}
	}
}

// WithStrict overrides the process-wide strict mode for one reader.
func WithStrict(on bool) Option {
	return func(r *Reader) {
		r.strict = on
	}
}

// Reader is a seekable cursor over one JSON document.
//
// The whole document is held in memory so that [Object] and [Array] views
// can cache byte offsets and jump back to them in constant time. Views
// share the reader's cursor: a child view must be fully consumed before its
// parent continues.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	data         []byte
	pos          int
	path         string
	strict       bool
	ateSeparator bool
	eof          bool
}

// NewReader returns a Reader over data.
func NewReader(data []byte, opts ...Option) *Reader {
	r := &Reader{
		data:   data,
		path:   unknownSource,
		strict: Strict(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewReaderFrom reads src to the end and returns a Reader over its content.
func NewReaderFrom(src io.Reader, opts ...Option) (*Reader, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return NewReader(data, opts...), nil
}

// ReadFile returns a Reader over the file at path. The path is used as the
// source name in errors unless overridden.
func ReadFile(path string, opts ...Option) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewReader(data, append([]Option{WithPath(path)}, opts...)...), nil
}

// Path returns the source name.
func (r *Reader) Path() string { return r.path }

// IsStrict reports whether unread object members are errors.
func (r *Reader) IsStrict() bool { return r.strict }

// Len returns the size of the document in bytes.
func (r *Reader) Len() int { return len(r.data) }

// =============================================================================
// Cursor
// =============================================================================

// Tell returns the current byte offset.
func (r *Reader) Tell() int { return r.pos }

// Seek moves the cursor to pos and clears the separator latch.
func (r *Reader) Seek(pos int) {
	r.pos = r.clamp(pos)
	r.ateSeparator = false
	r.eof = false
}

// Peek returns the next byte without consuming it, or EOF.
func (r *Reader) Peek() int { return r.peek() }

// Get consumes and returns the next byte, or EOF.
func (r *Reader) Get() int { return r.get() }

// Good reports whether the reader has not run into the end of input.
func (r *Reader) Good() bool { return !r.eof }

// AteSeparator reports whether the last separator skip consumed a comma.
func (r *Reader) AteSeparator() bool { return r.ateSeparator }

// SetAteSeparator restores the separator latch, used by views that jump back
// past a value they already scanned.
func (r *Reader) SetAteSeparator(ate bool) { r.ateSeparator = ate }

// Substr returns n bytes starting at pos. A negative n means "to the end".
func (r *Reader) Substr(pos, n int) string {
	pos = r.clamp(pos)
	end := len(r.data)
	if n >= 0 && pos+n < end {
		end = pos + n
	}
	return string(r.data[pos:end])
}

func (r *Reader) peek() int {
	if r.pos >= len(r.data) {
		r.eof = true
		return EOF
	}
	return int(r.data[r.pos])
}

func (r *Reader) get() int {
	c := r.peek()
	if c != EOF {
		r.pos++
	}
	return c
}

// readUpTo consumes at most n bytes, stopping before a newline.
func (r *Reader) readUpTo(n int) string {
	start := r.pos
	for i := 0; i < n; i++ {
		c := r.peek()
		if c == EOF || c == '\n' {
			break
		}
		r.pos++
	}
	return string(r.data[start:r.pos])
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

// EatWhitespace consumes spaces, tabs and line breaks.
func (r *Reader) EatWhitespace() {
	for {
		c := r.peek()
		if c == EOF || !isWhitespace(byte(c)) {
			return
		}
		r.pos++
	}
}

// uneatWhitespace steps back to the last non-whitespace byte so errors
// point at the value, not at the gap after it.
func (r *Reader) uneatWhitespace() {
	for r.pos > 0 {
		r.pos--
		if !isWhitespace(r.data[r.pos]) {
			break
		}
	}
	r.eof = false
}

// =============================================================================
// Separators
// =============================================================================

func (r *Reader) endValue() error {
	r.ateSeparator = false
	return r.SkipSeparator()
}

// SkipSeparator consumes one ',' between values, or checks that the next
// character closes the enclosing container.
func (r *Reader) SkipSeparator() error {
	r.EatWhitespace()
	switch c := r.peek(); c {
	case ',':
		if r.ateSeparator {
			return r.syntaxError("duplicate comma", 0)
		}
		r.pos++
		r.ateSeparator = true
	case ']', '}', ':':
		if r.ateSeparator {
			r.uneatWhitespace()
			return r.syntaxError(fmt.Sprintf("comma should not be found before '%c'", c), 0)
		}
		r.ateSeparator = false
	case EOF:
		if r.ateSeparator {
			r.uneatWhitespace()
			return r.syntaxError("comma at end of file not allowed", 0)
		}
		r.ateSeparator = false
	default:
		r.uneatWhitespace()
		return r.syntaxError("missing comma", 1)
	}
	return nil
}

// SkipPairSeparator consumes the ':' between a member name and its value.
func (r *Reader) SkipPairSeparator() error {
	r.EatWhitespace()
	c := r.get()
	if c != ':' {
		return r.syntaxError(fmt.Sprintf("expected pair separator ':', not '%s'", charText(c)), -1)
	}
	if r.ateSeparator {
		return r.syntaxError("duplicate pair separator ':' not allowed", -1)
	}
	r.ateSeparator = true
	return nil
}

// =============================================================================
// Skipping
// =============================================================================

// SkipValue advances past one value of any type without decoding it.
func (r *Reader) SkipValue() error {
	r.EatWhitespace()
	switch c := r.peek(); {
	case c == '"':
		return r.SkipString()
	case c == '{':
		return r.SkipObject()
	case c == '[':
		return r.SkipArray()
	case c == '-' || isDigit(c):
		return r.SkipNumber()
	case c == 't':
		return r.SkipTrue()
	case c == 'f':
		return r.SkipFalse()
	case c == 'n':
		return r.SkipNull()
	default:
		return r.syntaxError(fmt.Sprintf("expected JSON value but got '%s'", charText(c)), 0)
	}
}

// SkipObject advances past one object.
func (r *Reader) SkipObject() error {
	if err := r.StartObject(); err != nil {
		return err
	}
	for {
		done, err := r.EndObject()
		if err != nil || done {
			return err
		}
		if err := r.skipMember(); err != nil {
			return err
		}
	}
}

func (r *Reader) skipMember() error {
	if err := r.SkipString(); err != nil {
		return err
	}
	if err := r.SkipPairSeparator(); err != nil {
		return err
	}
	return r.SkipValue()
}

// SkipArray advances past one array.
func (r *Reader) SkipArray() error {
	if err := r.StartArray(); err != nil {
		return err
	}
	for {
		done, err := r.EndArray()
		if err != nil || done {
			return err
		}
		if err := r.SkipValue(); err != nil {
			return err
		}
	}
}

// SkipString advances past one string without decoding escapes.
func (r *Reader) SkipString() error {
	r.EatWhitespace()
	if c := r.get(); c != '"' {
		return r.syntaxError(fmt.Sprintf("expecting string but found '%s'", charText(c)), -1)
	}
	for {
		switch r.get() {
		case EOF:
			return r.syntaxError("couldn't find end of string, reached EOF.", 0)
		case '\\':
			r.get()
		case '"':
			return r.endValue()
		case '\r', '\n':
			return r.syntaxError("string not closed before end of line", -1)
		}
	}
}

// SkipNumber advances past a run of number characters. It does not check
// the number is well formed; decoding does that.
func (r *Reader) SkipNumber() error {
	r.EatWhitespace()
	for {
		c := r.peek()
		if c != '+' && c != '-' && !isDigit(c) && c != 'e' && c != 'E' && c != '.' {
			break
		}
		r.pos++
	}
	return r.endValue()
}

// SkipTrue advances past the literal true.
func (r *Reader) SkipTrue() error { return r.skipLiteral("true") }

// SkipFalse advances past the literal false.
func (r *Reader) SkipFalse() error { return r.skipLiteral("false") }

// SkipNull advances past the literal null.
func (r *Reader) SkipNull() error { return r.skipLiteral("null") }

func (r *Reader) skipLiteral(word string) error {
	r.EatWhitespace()
	if got := r.readUpTo(len(word)); got != word {
		return r.syntaxError(fmt.Sprintf(`expected "%s", but found "%s"`, word, got), -len(word))
	}
	return r.endValue()
}

// =============================================================================
// Containers
// =============================================================================

// StartArray consumes '['.
func (r *Reader) StartArray() error {
	r.EatWhitespace()
	if c := r.peek(); c != '[' {
		return r.shapeError(fmt.Sprintf("tried to start array, but found '%s', not '['", charText(c)), 0)
	}
	r.pos++
	r.ateSeparator = false
	return nil
}

// EndArray consumes ']' if it is next and reports whether it did.
func (r *Reader) EndArray() (bool, error) {
	return r.endContainer(']', "comma not allowed at end of array")
}

// StartObject consumes '{'.
func (r *Reader) StartObject() error {
	r.EatWhitespace()
	if c := r.peek(); c != '{' {
		return r.shapeError(fmt.Sprintf("tried to start object, but found '%s', not '{'", charText(c)), 0)
	}
	r.pos++
	r.ateSeparator = false
	return nil
}

// EndObject consumes '}' if it is next and reports whether it did.
func (r *Reader) EndObject() (bool, error) {
	return r.endContainer('}', "comma not allowed at end of object")
}

func (r *Reader) endContainer(closing int, trailing string) (bool, error) {
	r.EatWhitespace()
	if r.peek() != closing {
		return false, nil
	}
	if r.ateSeparator {
		r.uneatWhitespace()
		return false, r.syntaxError(trailing, 0)
	}
	r.pos++
	return true, r.endValue()
}

// =============================================================================
// Probes
// =============================================================================

// TestNull reports whether the next value is null.
func (r *Reader) TestNull() bool {
	r.EatWhitespace()
	return r.peek() == 'n'
}

// TestBool reports whether the next value is a boolean.
func (r *Reader) TestBool() bool {
	r.EatWhitespace()
	c := r.peek()
	return c == 't' || c == 'f'
}

// TestNumber reports whether the next value looks like a number.
func (r *Reader) TestNumber() bool {
	r.EatWhitespace()
	c := r.peek()
	return c == '-' || c == '+' || c == '.' || isDigit(c)
}

// TestString reports whether the next value is a string.
func (r *Reader) TestString() bool {
	r.EatWhitespace()
	return r.peek() == '"'
}

// TestArray reports whether the next value is an array.
func (r *Reader) TestArray() bool {
	r.EatWhitespace()
	return r.peek() == '['
}

// TestObject reports whether the next value is an object.
func (r *Reader) TestObject() bool {
	r.EatWhitespace()
	return r.peek() == '{'
}

// GetObject builds an [Object] view of the object at the cursor.
func (r *Reader) GetObject() (*Object, error) {
	return newObject(r)
}

// GetArray builds an [Array] view of the array at the cursor.
func (r *Reader) GetArray() (*Array, error) {
	return newArray(r)
}
