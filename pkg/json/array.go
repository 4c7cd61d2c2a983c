package json

import (
	"fmt"
	"iter"
	"strings"

	errs "github.com/matzehuels/modkit/pkg/errors"
)

// Array is a view of one JSON array. Like [Object] it scans once, caches
// the offset of every element and decodes on demand. It supports both
// sequential reading with the Next methods and random access by index.
type Array struct {
	r              *Reader
	start, end     int
	positions      []int
	index          int
	finalSeparator bool
}

func newArray(r *Reader) (*Array, error) {
	r.EatWhitespace()
	a := &Array{r: r, start: r.pos}
	if err := r.StartArray(); err != nil {
		return nil, err
	}
	for {
		done, err := r.EndArray()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		r.EatWhitespace()
		a.positions = append(a.positions, r.pos)
		if err := r.SkipValue(); err != nil {
			return nil, err
		}
	}
	a.end = r.pos
	a.finalSeparator = r.ateSeparator
	return a, nil
}

// Size returns the number of elements.
func (a *Array) Size() int { return len(a.positions) }

// Empty reports whether the array has no elements.
func (a *Array) Empty() bool { return len(a.positions) == 0 }

// HasMore reports whether sequential reading has elements left.
func (a *Array) HasMore() bool { return a.index < len(a.positions) }

// Finish moves the cursor past the array.
func (a *Array) Finish() {
	if a.r != nil && a.r.Good() {
		a.r.Seek(a.end)
		a.r.SetAteSeparator(a.finalSeparator)
	}
}

// Str returns the raw text of the array.
func (a *Array) Str() string {
	if a.r == nil || a.end < a.start {
		return "[]"
	}
	return strings.TrimRight(a.r.Substr(a.start, a.end-a.start), " \t\r\n,")
}

// Error reports msg at the array's opening bracket.
func (a *Array) Error(msg string) error {
	if a.r == nil {
		return plainError(errs.ErrCodeShape, "%s", msg)
	}
	a.r.Seek(a.start)
	return a.r.shapeError(msg, 0)
}

// ElementError reports msg at element i.
func (a *Array) ElementError(i int, msg string) error {
	if err := a.verifyIndex(i); err != nil {
		return err
	}
	a.r.Seek(a.positions[i])
	return a.r.shapeError(msg, 0)
}

func (a *Array) verifyIndex(i int) error {
	if a.r == nil {
		return plainError(errs.ErrCodeShape, "tried to access empty array.")
	}
	if i < 0 || i >= len(a.positions) {
		a.r.Seek(a.start)
		return a.r.shapeError(fmt.Sprintf("bad index value: %d", i), 0)
	}
	return nil
}

// seek positions the reader on element i.
func (a *Array) seek(i int) (*Reader, error) {
	if err := a.verifyIndex(i); err != nil {
		return nil, err
	}
	a.r.Seek(a.positions[i])
	return a.r, nil
}

// next positions the reader on the next sequential element.
func (a *Array) next() (*Reader, error) {
	r, err := a.seek(a.index)
	if err != nil {
		return nil, err
	}
	a.index++
	return r, nil
}

// Values iterates over the elements in order.
func (a *Array) Values() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, pos := range a.positions {
			if !yield(i, Value{r: a.r, pos: pos}) {
				return
			}
		}
	}
}

// At returns a handle to element i.
func (a *Array) At(i int) (Value, error) {
	if err := a.verifyIndex(i); err != nil {
		return Value{}, err
	}
	return Value{r: a.r, pos: a.positions[i]}, nil
}

// =============================================================================
// Sequential access
// =============================================================================

// SkipValue steps over the next element without decoding it.
func (a *Array) SkipValue() error {
	_, err := a.next()
	return err
}

func (a *Array) NextBool() (bool, error) {
	r, err := a.next()
	if err != nil {
		return false, err
	}
	return r.GetBool()
}

func (a *Array) NextInt() (int, error) {
	r, err := a.next()
	if err != nil {
		return 0, err
	}
	return r.GetInt()
}

func (a *Array) NextInt64() (int64, error) {
	r, err := a.next()
	if err != nil {
		return 0, err
	}
	return r.GetInt64()
}

func (a *Array) NextFloat() (float64, error) {
	r, err := a.next()
	if err != nil {
		return 0, err
	}
	return r.GetFloat()
}

func (a *Array) NextString() (string, error) {
	r, err := a.next()
	if err != nil {
		return "", err
	}
	return r.GetString()
}

func (a *Array) NextArray() (*Array, error) {
	r, err := a.next()
	if err != nil {
		return nil, err
	}
	return r.GetArray()
}

func (a *Array) NextObject() (*Object, error) {
	r, err := a.next()
	if err != nil {
		return nil, err
	}
	return r.GetObject()
}

// NextValue returns a handle to the next element.
func (a *Array) NextValue() (Value, error) {
	r, err := a.next()
	if err != nil {
		return Value{}, err
	}
	return Value{r: r, pos: r.pos}, nil
}

// Read decodes the next element into dst (see [Reader.Read]).
func (a *Array) Read(dst any) error {
	r, err := a.next()
	if err != nil {
		return err
	}
	return r.Read(dst)
}

// =============================================================================
// Random access
// =============================================================================

func (a *Array) GetBool(i int) (bool, error) {
	r, err := a.seek(i)
	if err != nil {
		return false, err
	}
	return r.GetBool()
}

func (a *Array) GetInt(i int) (int, error) {
	r, err := a.seek(i)
	if err != nil {
		return 0, err
	}
	return r.GetInt()
}

func (a *Array) GetFloat(i int) (float64, error) {
	r, err := a.seek(i)
	if err != nil {
		return 0, err
	}
	return r.GetFloat()
}

func (a *Array) GetString(i int) (string, error) {
	r, err := a.seek(i)
	if err != nil {
		return "", err
	}
	return r.GetString()
}

func (a *Array) GetArray(i int) (*Array, error) {
	r, err := a.seek(i)
	if err != nil {
		return nil, err
	}
	return r.GetArray()
}

func (a *Array) GetObject(i int) (*Object, error) {
	r, err := a.seek(i)
	if err != nil {
		return nil, err
	}
	return r.GetObject()
}

// has seeks to element i, reporting false when the index is out of range.
func (a *Array) has(i int) (*Reader, bool) {
	if a.r == nil || i < 0 || i >= len(a.positions) {
		return nil, false
	}
	a.r.Seek(a.positions[i])
	return a.r, true
}

func (a *Array) HasNull(i int) bool {
	r, ok := a.has(i)
	return ok && r.TestNull()
}

func (a *Array) HasBool(i int) bool {
	r, ok := a.has(i)
	return ok && r.TestBool()
}

func (a *Array) HasNumber(i int) bool {
	r, ok := a.has(i)
	return ok && r.TestNumber()
}

func (a *Array) HasString(i int) bool {
	r, ok := a.has(i)
	return ok && r.TestString()
}

func (a *Array) HasArray(i int) bool {
	r, ok := a.has(i)
	return ok && r.TestArray()
}

func (a *Array) HasObject(i int) bool {
	r, ok := a.has(i)
	return ok && r.TestObject()
}

// The Test methods probe the next sequential element.

func (a *Array) TestNull() bool   { return a.HasNull(a.index) }
func (a *Array) TestBool() bool   { return a.HasBool(a.index) }
func (a *Array) TestNumber() bool { return a.HasNumber(a.index) }
func (a *Array) TestString() bool { return a.HasString(a.index) }
func (a *Array) TestArray() bool  { return a.HasArray(a.index) }
func (a *Array) TestObject() bool { return a.HasObject(a.index) }
