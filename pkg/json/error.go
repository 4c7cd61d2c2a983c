package json

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/modkit/pkg/errors"
)

// Context window used when rendering the source around an error.
const (
	contextLines = 3
	contextChars = 240
)

// Error is a parse or access error. Errors raised while a Reader is
// positioned in a document carry the source location and a few lines of
// surrounding text with a caret under the offending byte.
type Error struct {
	Code    errs.Code
	Path    string
	Line    int // 1-based; 0 when no position is known
	Column  int // 1-based byte column
	AtEOF   bool
	Message string
	Context string // rendered source excerpt, newline terminated
}

// Error renders the error the way content authors see it:
//
//	Json error: data/mods/dda/modinfo.json:3:12: missing comma
//
//	...context...
func (e *Error) Error() string {
	if !e.positioned() {
		return e.Message
	}
	var b strings.Builder
	b.WriteString("Json error: ")
	b.WriteString(e.Location())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Context != "" {
		b.WriteString("\n\n")
		b.WriteString(e.Context)
	}
	return b.String()
}

// Location returns "path:line:col", or "path:EOF" when the error was raised
// at the end of the input.
func (e *Error) Location() string {
	if e.AtEOF {
		return e.Path + ":EOF"
	}
	return fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
}

// ErrorCode implements errors.Coder.
func (e *Error) ErrorCode() errs.Code {
	return e.Code
}

func (e *Error) positioned() bool {
	return e.AtEOF || e.Line > 0
}

// plainError is used by views that were never bound to a document.
func plainError(code errs.Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error returns a shape error positioned at the cursor moved by offset bytes.
// Callers use it to report content problems they detect themselves.
func (r *Reader) Error(msg string, offset int) error {
	return r.errorAt(errs.ErrCodeShape, msg, offset)
}

func (r *Reader) syntaxError(msg string, offset int) error {
	return r.errorAt(errs.ErrCodeSyntax, msg, offset)
}

func (r *Reader) shapeError(msg string, offset int) error {
	return r.errorAt(errs.ErrCodeShape, msg, offset)
}

func (r *Reader) rangeError(msg string, offset int) error {
	return r.errorAt(errs.ErrCodeRange, msg, offset)
}

// errorAt builds a positioned error. The cursor and EOF state are left as
// they were so the document can still be read after a recoverable failure.
func (r *Reader) errorAt(code errs.Code, msg string, offset int) *Error {
	e := &Error{Code: code, Path: r.path, Message: msg}
	if r.eof {
		e.AtEOF = true
		return e
	}
	saved := r.pos
	defer func() {
		r.pos = saved
		r.eof = false
	}()

	e.Line, e.Column = r.location(offset)
	e.Context = r.excerpt(r.clamp(r.pos + offset))
	return e
}

// location computes the 1-based line and byte column of pos+offset. A
// "\r\n" pair counts as a single line break.
func (r *Reader) location(offset int) (line, col int) {
	end := r.clamp(r.pos + offset)
	line, col = 1, 1
	for i := 0; i < end; i++ {
		switch r.data[i] {
		case '\r':
			line++
			col = 1
			if i+1 < len(r.data) && r.data[i+1] == '\n' {
				i++
			}
		case '\n':
			line++
			col = 1
		default:
			col++
		}
	}
	return line, col
}

// LineNumber returns "path:line:col" for the current position.
func (r *Reader) LineNumber() string {
	if r.eof {
		return r.path + ":EOF"
	}
	line, col := r.location(0)
	return fmt.Sprintf("%s:%d:%d", r.path, line, col)
}

// excerpt renders up to three lines before pos, the line holding pos with a
// caret below it, and up to three following lines.
func (r *Reader) excerpt(pos int) string {
	var b strings.Builder

	r.pos = pos
	r.rewind(contextLines, contextChars)
	before := r.data[r.pos:pos]
	i := 0
	for i < len(before) && (before[i] == '\r' || before[i] == '\n') {
		i++
	}
	for ; i < len(before); i++ {
		if before[i] == '\r' {
			b.WriteByte('\n')
			if i+1 < len(before) && before[i+1] == '\n' {
				i++
			}
			continue
		}
		b.WriteByte(before[i])
	}
	if pos < len(r.data) && !isWhitespace(r.data[pos]) {
		b.WriteByte(r.data[pos])
	}

	r.pos = pos
	r.rewind(1, contextChars)
	lineStart := r.pos
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", pos-lineStart))
	b.WriteString("^\n")

	r.pos = pos
	switch c := r.get(); c {
	case '\r':
		if r.peek() == '\n' {
			r.pos++
		}
	case '\n', EOF:
	default:
		if next := r.peek(); next != '\r' && next != '\n' && next != EOF {
			b.WriteString(strings.Repeat(" ", pos-lineStart+1))
		}
	}

	lines := 0
	for n := 0; lines < contextLines && n < contextChars; n++ {
		c := r.get()
		if c == EOF {
			break
		}
		switch c {
		case '\r':
			c = '\n'
			lines++
			if r.peek() == '\n' {
				r.pos++
			}
		case '\n':
			lines++
		}
		b.WriteByte(byte(c))
	}

	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// rewind moves the cursor back at most maxChars bytes or maxLines line
// breaks, stopping just after the last break crossed.
func (r *Reader) rewind(maxLines, maxChars int) {
	if r.pos == 0 {
		return
	}
	p := r.pos - 1
	lines := 0
	for n := 0; n < maxChars; n++ {
		switch r.data[p] {
		case '\n':
			lines++
			if p > 0 && r.data[p-1] == '\r' {
				p--
			}
		case '\r':
			lines++
		}
		if lines == maxLines {
			switch r.data[p] {
			case '\n':
				p++
			case '\r':
				p++
				if p < len(r.data) && r.data[p] == '\n' {
					p++
				}
			}
			break
		}
		if p == 0 {
			break
		}
		p--
	}
	r.pos = p
}

func (r *Reader) clamp(pos int) int {
	switch {
	case pos < 0:
		return 0
	case pos > len(r.data):
		return len(r.data)
	}
	return pos
}

// charText renders a lookahead character for messages.
func charText(c int) string {
	if c == EOF {
		return "EOF"
	}
	return string([]byte{byte(c)})
}
