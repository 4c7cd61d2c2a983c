package json

import (
	"bufio"
	"cmp"
	"io"
	"reflect"
	"slices"
	"strconv"

	errs "github.com/matzehuels/modkit/pkg/errors"
)

const hexDigits = "0123456789ABCDEF"

// Writer emits JSON in a single pass.
//
// In pretty mode objects put one member per line and arrays stay on one
// line unless started with [Writer.StartArrayWrapped]. Top-level containers
// always wrap. Compact mode emits no whitespace at all.
//
// Write errors are sticky: after the first failure every call is a no-op
// and [Writer.Err] reports the failure.
type Writer struct {
	dst    io.Writer
	buf    *bufio.Writer
	pretty bool

	needSeparator bool
	opened        bool // an open bracket awaits its first value
	indent        int
	wrap          []bool

	written int64
	err     error
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer, pretty bool) *Writer {
	return &Writer{dst: w, buf: bufio.NewWriter(w), pretty: pretty}
}

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err == nil {
		w.err = w.buf.Flush()
	}
	return w.err
}

// Tell returns the number of bytes emitted so far.
func (w *Writer) Tell() int64 { return w.written }

// Seek repositions output at byte offset pos. The underlying writer must be
// an io.Seeker. The next value is written without a leading separator.
func (w *Writer) Seek(pos int64) error {
	if err := w.Flush(); err != nil {
		return err
	}
	s, ok := w.dst.(io.Seeker)
	if !ok {
		return errs.New(errs.ErrCodeUnsupported, "json: writer output is not seekable")
	}
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		w.err = err
		return err
	}
	w.written = pos
	w.needSeparator = false
	w.opened = false
	return nil
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	n, err := w.buf.WriteString(s)
	w.written += int64(n)
	w.err = err
}

func (w *Writer) rawByte(c byte) {
	if w.err != nil {
		return
	}
	w.err = w.buf.WriteByte(c)
	if w.err == nil {
		w.written++
	}
}

func (w *Writer) newline() {
	w.rawByte('\n')
	for i := 0; i < w.indent; i++ {
		w.raw("  ")
	}
}

func (w *Writer) top() bool {
	return len(w.wrap) > 0 && w.wrap[len(w.wrap)-1]
}

// opening emits the whitespace after an open bracket once the container
// turns out to be non-empty.
func (w *Writer) opening() {
	w.opened = false
	if w.indent < 2 || w.top() {
		w.newline()
	} else {
		w.rawByte(' ')
	}
}

func (w *Writer) separator() {
	if w.opened {
		w.opening()
		return
	}
	if !w.needSeparator {
		return
	}
	w.rawByte(',')
	if w.pretty {
		if w.indent < 2 || w.top() {
			w.newline()
		} else {
			w.rawByte(' ')
		}
	}
	w.needSeparator = false
}

func (w *Writer) start(open byte, wrap bool) {
	w.separator()
	w.rawByte(open)
	w.wrap = append(w.wrap, wrap)
	if w.pretty {
		w.indent++
		w.opened = true
	}
	w.needSeparator = false
}

func (w *Writer) end(closing byte) {
	if w.pretty {
		w.indent--
		switch {
		case w.opened:
			// empty container
			w.opened = false
		case w.indent < 1 || w.top():
			w.newline()
		default:
			w.rawByte(' ')
		}
	}
	if len(w.wrap) > 0 {
		w.wrap = w.wrap[:len(w.wrap)-1]
	}
	w.rawByte(closing)
	w.needSeparator = true
}

// =============================================================================
// Containers
// =============================================================================

// StartObject opens an object with one member per line.
func (w *Writer) StartObject() { w.start('{', true) }

// StartObjectCompact opens an object that stays on one line.
func (w *Writer) StartObjectCompact() { w.start('{', false) }

func (w *Writer) EndObject() { w.end('}') }

// StartArray opens an array that stays on one line.
func (w *Writer) StartArray() { w.start('[', false) }

// StartArrayWrapped opens an array with one element per line.
func (w *Writer) StartArrayWrapped() { w.start('[', true) }

func (w *Writer) EndArray() { w.end(']') }

// Member writes a member name and the pair separator.
func (w *Writer) Member(name string) {
	w.WriteString(name)
	if w.pretty {
		w.raw(": ")
	} else {
		w.rawByte(':')
	}
	w.needSeparator = false
}

// NullMember writes a member whose value is null.
func (w *Writer) NullMember(name string) {
	w.Member(name)
	w.WriteNull()
}

// MemberValue writes a member and its value.
func (w *Writer) MemberValue(name string, v any) {
	w.Member(name)
	w.Write(v)
}

// =============================================================================
// Scalars
// =============================================================================

func (w *Writer) scalar(s string) {
	w.separator()
	w.raw(s)
	w.needSeparator = true
}

func (w *Writer) WriteNull() { w.scalar("null") }

func (w *Writer) WriteBool(b bool) { w.scalar(strconv.FormatBool(b)) }

func (w *Writer) WriteInt(n int) { w.scalar(strconv.Itoa(n)) }

func (w *Writer) WriteInt64(n int64) { w.scalar(strconv.FormatInt(n, 10)) }

func (w *Writer) WriteUint64(n uint64) { w.scalar(strconv.FormatUint(n, 10)) }

// WriteFloat writes f in plain decimal notation, never scientific, so the
// output does not depend on locale or exponent parsing.
func (w *Writer) WriteFloat(f float64) {
	w.scalar(strconv.FormatFloat(f, 'f', -1, 64))
}

// WriteString writes s quoted, escaping exactly what the reader unescapes.
// Control characters without a short escape become \u00XX.
func (w *Writer) WriteString(s string) {
	w.separator()
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\b':
			out = append(out, '\\', 'b')
		case '\f':
			out = append(out, '\\', 'f')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			if c < 0x20 {
				out = append(out, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0x0F])
			} else {
				out = append(out, c)
			}
		}
	}
	out = append(out, '"')
	w.raw(string(out))
	w.needSeparator = true
}

// Write emits any supported Go value: scalars, [Number], [Serializer],
// slices and arrays, and maps with string keys (written in key order).
func (w *Writer) Write(v any) {
	switch x := v.(type) {
	case nil:
		w.WriteNull()
	case Serializer:
		w.separator()
		x.Serialize(w)
		w.needSeparator = true
	case bool:
		w.WriteBool(x)
	case string:
		w.WriteString(x)
	case int:
		w.WriteInt(x)
	case int64:
		w.WriteInt64(x)
	case int32:
		w.WriteInt64(int64(x))
	case uint64:
		w.WriteUint64(x)
	case uint32:
		w.WriteUint64(uint64(x))
	case float64:
		w.WriteFloat(x)
	case float32:
		w.WriteFloat(float64(x))
	case Number:
		w.scalar(x.String())
	default:
		w.writeReflect(reflect.ValueOf(v))
	}
}

func (w *Writer) writeReflect(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			w.WriteNull()
			return
		}
		w.Write(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		w.StartArray()
		for i := 0; i < rv.Len(); i++ {
			w.Write(rv.Index(i).Interface())
		}
		w.EndArray()
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			w.fail(rv)
			return
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(a.String(), b.String())
		})
		w.StartObject()
		for _, k := range keys {
			w.Member(k.String())
			w.Write(rv.MapIndex(k).Interface())
		}
		w.EndObject()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.WriteInt64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		w.WriteUint64(rv.Uint())
	case reflect.String:
		w.WriteString(rv.String())
	case reflect.Bool:
		w.WriteBool(rv.Bool())
	case reflect.Float32, reflect.Float64:
		w.WriteFloat(rv.Float())
	default:
		w.fail(rv)
	}
}

func (w *Writer) fail(rv reflect.Value) {
	if w.err == nil {
		w.err = errs.New(errs.ErrCodeUnsupported, "json: cannot write %s", rv.Type())
	}
}
