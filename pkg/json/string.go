package json

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// GetString decodes the string at the cursor, resolving escapes and
// validating raw UTF-8.
func (r *Reader) GetString() (string, error) {
	r.EatWhitespace()
	var (
		buf []byte
		msg string
	)
	switch c := r.get(); {
	case c == EOF:
	case c != '"':
		return "", r.shapeError(fmt.Sprintf("expected string but got '%s'", charText(c)), -1)
	default:
		for {
			c := r.peek()
			if c == EOF {
				break
			}
			if c == '"' {
				r.pos++
				return string(buf), r.endValue()
			}
			if buf, msg = r.decodeChar(buf); msg != "" {
				break
			}
		}
	}
	if r.eof {
		return "", r.syntaxError("couldn't find end of string, reached EOF.", 0)
	}
	return "", r.syntaxError(msg, -1)
}

// GetMemberName decodes a member name and the ':' following it.
func (r *Reader) GetMemberName() (string, error) {
	s, err := r.GetString()
	if err != nil {
		return "", err
	}
	if err := r.SkipPairSeparator(); err != nil {
		return "", err
	}
	return s, nil
}

// StringError reports msg at the n-th decoded character of the string at
// the cursor, so problems inside long text values point at the right spot.
func (r *Reader) StringError(msg string, n int) error {
	if r.TestString() {
		r.pos++
		var buf []byte
		for i := 0; i < n; i++ {
			var bad string
			if buf, bad = r.decodeChar(buf); bad != "" {
				break
			}
		}
	}
	return r.shapeError(msg, -1)
}

// decodeChar appends one decoded character to buf. On failure it returns a
// message and leaves the cursor just past the offending byte.
func (r *Reader) decodeChar(buf []byte) ([]byte, string) {
	c := r.get()
	switch {
	case c == EOF:
		return buf, "read operation failed"
	case c == '\\':
		return r.decodeEscape(buf)
	case c == '\r' || c == '\n':
		return buf, "reached end of line without closing string"
	case c == '"':
		return buf, "unexpected ending quote"
	case c < 0x20:
		return buf, "invalid character inside string"
	}

	var cp uint32
	n := 0
	switch {
	case c >= 0xFC:
		cp, n = uint32(c&0x01), 5
	case c >= 0xF8:
		cp, n = uint32(c&0x03), 4
	case c >= 0xF0:
		cp, n = uint32(c&0x07), 3
	case c >= 0xE0:
		cp, n = uint32(c&0x0F), 2
	case c >= 0xC0:
		cp, n = uint32(c&0x1F), 1
	case c >= 0x80:
		return buf, "invalid utf8 sequence"
	default:
		return append(buf, byte(c)), ""
	}
	buf = append(buf, byte(c))
	for ; n > 0; n-- {
		c = r.get()
		if c == EOF {
			return buf, "read operation failed"
		}
		if c < 0x80 || c >= 0xC0 {
			return buf, "invalid utf8 sequence"
		}
		cp = cp<<6 | uint32(c&0x3F)
		buf = append(buf, byte(c))
	}
	if cp > utf8.MaxRune {
		return buf, "invalid unicode codepoint"
	}
	return buf, ""
}

func (r *Reader) decodeEscape(buf []byte) ([]byte, string) {
	c := r.get()
	switch c {
	case EOF:
		return buf, "read operation failed"
	case '\\', '"', '/':
		return append(buf, byte(c)), ""
	case 'b':
		return append(buf, '\b'), ""
	case 'f':
		return append(buf, '\f'), ""
	case 'n':
		return append(buf, '\n'), ""
	case 'r':
		return append(buf, '\r'), ""
	case 't':
		return append(buf, '\t'), ""
	case 'u':
	default:
		return buf, "invalid escape sequence"
	}

	u, msg := r.hex4()
	if msg != "" {
		return buf, msg
	}
	cp := rune(u)
	switch {
	case utf16.IsSurrogate(cp) && cp < 0xDC00:
		// A high surrogate only makes sense followed by an escaped low one.
		if r.pos+6 <= len(r.data) && r.data[r.pos] == '\\' && r.data[r.pos+1] == 'u' {
			save := r.pos
			r.pos += 2
			lo, msg := r.hex4()
			if msg == "" && lo >= 0xDC00 && lo <= 0xDFFF {
				cp = utf16.DecodeRune(cp, rune(lo))
				break
			}
			r.pos = save
		}
		cp = utf8.RuneError
	case utf16.IsSurrogate(cp):
		cp = utf8.RuneError
	}
	return utf8.AppendRune(buf, cp), ""
}

func (r *Reader) hex4() (uint32, string) {
	var u uint32
	for i := 0; i < 4; i++ {
		c := r.get()
		switch {
		case c == EOF:
			return 0, "read operation failed"
		case isDigit(c):
			u = u<<4 | uint32(c-'0')
		case c >= 'a' && c <= 'f':
			u = u<<4 | uint32(c-'a'+10)
		case c >= 'A' && c <= 'F':
			u = u<<4 | uint32(c-'A'+10)
		default:
			return 0, "expected hex digit"
		}
	}
	return u, ""
}
