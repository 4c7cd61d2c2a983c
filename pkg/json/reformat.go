package json

import (
	"fmt"
	"io"
	"strings"
)

// Reformat parses the document in src and writes it to dst through a
// [Writer]. Member order and number spelling are preserved; only layout
// changes. Strings are re-escaped.
func Reformat(dst io.Writer, src []byte, pretty bool, opts ...Option) error {
	r := NewReader(src, opts...)
	w := NewWriter(dst, pretty)
	if err := copyValue(r, w); err != nil {
		return err
	}
	r.EatWhitespace()
	if c := r.peek(); c != EOF {
		return r.syntaxError(fmt.Sprintf("unexpected '%s' after end of document", charText(c)), 0)
	}
	if pretty {
		w.rawByte('\n')
	}
	return w.Flush()
}

func copyValue(r *Reader, w *Writer) error {
	r.EatWhitespace()
	switch c := r.peek(); {
	case c == '{':
		return copyObject(r, w)
	case c == '[':
		return copyArray(r, w)
	case c == '"':
		s, err := r.GetString()
		if err != nil {
			return err
		}
		w.WriteString(s)
	case c == '-' || isDigit(c):
		start := r.pos
		if _, err := r.GetNumber(); err != nil {
			return err
		}
		w.scalar(strings.TrimRight(r.Substr(start, r.pos-start), " \t\r\n,"))
	case c == 't' || c == 'f':
		b, err := r.GetBool()
		if err != nil {
			return err
		}
		w.WriteBool(b)
	case c == 'n':
		if err := r.SkipNull(); err != nil {
			return err
		}
		w.WriteNull()
	default:
		return r.syntaxError(fmt.Sprintf("expected JSON value but got '%s'", charText(c)), 0)
	}
	return w.Err()
}

func copyObject(r *Reader, w *Writer) error {
	if err := r.StartObject(); err != nil {
		return err
	}
	w.StartObject()
	for {
		done, err := r.EndObject()
		if err != nil {
			return err
		}
		if done {
			break
		}
		name, err := r.GetMemberName()
		if err != nil {
			return err
		}
		w.Member(name)
		if err := copyValue(r, w); err != nil {
			return err
		}
	}
	w.EndObject()
	return w.Err()
}

func copyArray(r *Reader, w *Writer) error {
	if err := r.StartArray(); err != nil {
		return err
	}
	w.StartArray()
	for {
		done, err := r.EndArray()
		if err != nil {
			return err
		}
		if done {
			break
		}
		if err := copyValue(r, w); err != nil {
			return err
		}
	}
	w.EndArray()
	return w.Err()
}
