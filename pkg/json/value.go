package json

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/modkit/pkg/errors"
)

// Serializer is implemented by types that know how to write themselves.
type Serializer interface {
	Serialize(w *Writer)
}

// Deserializer is implemented by types that know how to read themselves
// from the value at the cursor.
type Deserializer interface {
	Deserialize(r *Reader) error
}

// Value is a handle to one cached value position inside a document.
// Accessors seek the shared reader there before decoding.
type Value struct {
	r   *Reader
	pos int
}

// Pos returns the byte offset of the value.
func (v Value) Pos() int { return v.pos }

// Reader seeks the shared reader to the value and returns it.
func (v Value) Reader() *Reader {
	v.r.Seek(v.pos)
	return v.r
}

func (v Value) GetString() (string, error) { return v.Reader().GetString() }
func (v Value) GetBool() (bool, error) { return v.Reader().GetBool() }
func (v Value) GetInt() (int, error) { return v.Reader().GetInt() }
func (v Value) GetInt64() (int64, error) { return v.Reader().GetInt64() }
func (v Value) GetUint64() (uint64, error) { return v.Reader().GetUint64() }
func (v Value) GetFloat() (float64, error) { return v.Reader().GetFloat() }
func (v Value) GetNumber() (Number, error) { return v.Reader().GetNumber() }
func (v Value) GetArray() (*Array, error) { return v.Reader().GetArray() }
func (v Value) GetObject() (*Object, error) { return v.Reader().GetObject() }

func (v Value) IsNull() bool { return v.Reader().TestNull() }
func (v Value) IsBool() bool { return v.Reader().TestBool() }
func (v Value) IsNumber() bool { return v.Reader().TestNumber() }
func (v Value) IsString() bool { return v.Reader().TestString() }
func (v Value) IsArray() bool { return v.Reader().TestArray() }
func (v Value) IsObject() bool { return v.Reader().TestObject() }

// Read decodes the value into dst; see [Reader.Read].
func (v Value) Read(dst any) error { return v.Reader().Read(dst) }

// Error reports msg at the value.
func (v Value) Error(msg string) error { return v.Reader().Error(msg, 0) }

// StringError reports msg at the n-th character of a string value.
func (v Value) StringError(msg string, n int) error { return v.Reader().StringError(msg, n) }

// GetBool decodes true or false.
func (r *Reader) GetBool() (bool, error) {
	r.EatWhitespace()
	c := r.get()
	switch c {
	case 't':
		rest := r.readUpTo(3)
		if rest == "rue" {
			return true, r.endValue()
		}
		return false, r.syntaxError(fmt.Sprintf(`not a boolean.  expected "true", but got "t%s"`, rest), -4)
	case 'f':
		rest := r.readUpTo(4)
		if rest == "alse" {
			return false, r.endValue()
		}
		return false, r.syntaxError(fmt.Sprintf(`not a boolean.  expected "false", but got "f%s"`, rest), -5)
	}
	return false, r.shapeError(fmt.Sprintf("not a boolean value!  expected 't' or 'f' but got '%s'", charText(c)), -1)
}

// Read decodes the value at the cursor into the value dst points to.
// Supported targets are pointers to bool, string, the integer and float
// kinds, Number, []string, []int and []float64, plus any [Deserializer].
func (r *Reader) Read(dst any) error {
	if d, ok := dst.(Deserializer); ok {
		return d.Deserialize(r)
	}
	switch p := dst.(type) {
	case *bool:
		if !r.TestBool() {
			return r.shapeError("Expected bool", 0)
		}
		v, err := r.GetBool()
		*p = v
		return err
	case *string:
		if !r.TestString() {
			return r.shapeError("Expected string", 0)
		}
		v, err := r.GetString()
		*p = v
		return err
	case *Number:
		v, err := r.GetNumber()
		*p = v
		return err
	case *float64:
		return r.readFloat(func(f float64) { *p = f })
	case *float32:
		return r.readFloat(func(f float64) { *p = float32(f) })
	case *int:
		return r.readInt(func() error { v, err := r.GetInt(); *p = v; return err })
	case *int64:
		return r.readInt(func() error { v, err := r.GetInt64(); *p = v; return err })
	case *int32:
		return r.readInt(func() error { v, err := r.GetInt32(); *p = v; return err })
	case *int16:
		return r.readSmall(math.MinInt16, math.MaxInt16, func(v int64) { *p = int16(v) })
	case *int8:
		return r.readSmall(math.MinInt8, math.MaxInt8, func(v int64) { *p = int8(v) })
	case *uint:
		return r.readInt(func() error { v, err := r.GetUint64(); *p = uint(v); return err })
	case *uint64:
		return r.readInt(func() error { v, err := r.GetUint64(); *p = v; return err })
	case *uint32:
		return r.readInt(func() error { v, err := r.GetUint32(); *p = v; return err })
	case *uint16:
		return r.readSmall(0, math.MaxUint16, func(v int64) { *p = uint16(v) })
	case *uint8:
		return r.readSmall(0, math.MaxUint8, func(v int64) { *p = uint8(v) })
	case *[]string:
		return r.readSlice(func(a *Array) error {
			for a.HasMore() {
				s, err := a.NextString()
				if err != nil {
					return err
				}
				*p = append(*p, s)
			}
			return nil
		}, func() { *p = (*p)[:0] })
	case *[]int:
		return r.readSlice(func(a *Array) error {
			for a.HasMore() {
				n, err := a.NextInt()
				if err != nil {
					return err
				}
				*p = append(*p, n)
			}
			return nil
		}, func() { *p = (*p)[:0] })
	case *[]float64:
		return r.readSlice(func(a *Array) error {
			for a.HasMore() {
				f, err := a.NextFloat()
				if err != nil {
					return err
				}
				*p = append(*p, f)
			}
			return nil
		}, func() { *p = (*p)[:0] })
	}
	return errs.New(errs.ErrCodeUnsupported, "json: cannot read into %T", dst)
}

func (r *Reader) readFloat(set func(float64)) error {
	if !r.TestNumber() {
		return r.shapeError("Expected number", 0)
	}
	f, err := r.GetFloat()
	if err != nil {
		return err
	}
	set(f)
	return nil
}

func (r *Reader) readInt(get func() error) error {
	if !r.TestNumber() {
		return r.shapeError("Expected number", 0)
	}
	return get()
}

func (r *Reader) readSmall(lo, hi int64, set func(int64)) error {
	if !r.TestNumber() {
		return r.shapeError("Expected number", 0)
	}
	start := r.pos
	v, err := r.GetInt64()
	if err != nil {
		return err
	}
	if v < lo || v > hi {
		r.Seek(start)
		return r.rangeError(fmt.Sprintf("Found a number outside of [%d, %d] which is unsupported in this context.", lo, hi), 0)
	}
	set(v)
	return nil
}

func (r *Reader) readSlice(fill func(*Array) error, reset func()) error {
	if !r.TestArray() {
		return r.shapeError("Expected array", 0)
	}
	a, err := r.GetArray()
	if err != nil {
		return err
	}
	reset()
	if err := fill(a); err != nil {
		return err
	}
	a.Finish()
	return nil
}
