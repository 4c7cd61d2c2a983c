package typed

import (
	"fmt"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/json"
)

// Directive member names.
const (
	extendKey       = "extend"
	deleteKey       = "delete"
	relativeKey     = "relative"
	proportionalKey = "proportional"
)

// Field loads one member of an object into its target.
type Field interface {
	// Load reads member name from o. It reports false when o says nothing
	// about the member, leaving the caller to decide on a default.
	Load(o *json.Object, name string, wasLoaded bool) (bool, error)
	// Reset restores the target's default.
	Reset()
}

// Numeric is the set of types [Number] fields accept.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Mandatory loads a member that a fresh definition must provide. Patches
// (wasLoaded) may omit it.
func Mandatory(o *json.Object, wasLoaded bool, name string, f Field) error {
	ok, err := f.Load(o, name, wasLoaded)
	if err != nil || ok || wasLoaded {
		return err
	}
	if o.Has(name) {
		return o.Error(fmt.Sprintf("failed to read mandatory member %q", name))
	}
	return o.Error(fmt.Sprintf("missing mandatory member %q", name))
}

// Optional loads a member that may be omitted. A fresh definition that
// omits it gets the field's default; a patch keeps the existing value.
func Optional(o *json.Object, wasLoaded bool, name string, f Field) error {
	ok, err := f.Load(o, name, wasLoaded)
	if err != nil {
		return err
	}
	if !ok && !wasLoaded {
		f.Reset()
	}
	return nil
}

// =============================================================================
// Collections
// =============================================================================

type collection[T any] struct {
	c   Container[T]
	dec Decoder[T]
}

// Collection returns a Field that replaces c when the member is present and
// otherwise applies extend and delete directives to it on patches. A bare
// value in place of an array counts as a one-element array.
func Collection[T any](c Container[T], dec Decoder[T]) Field {
	return &collection[T]{c: c, dec: dec}
}

func (f *collection[T]) Reset() { f.c.Clear() }

func (f *collection[T]) Load(o *json.Object, name string, wasLoaded bool) (bool, error) {
	if o.Has(name) {
		f.c.Clear()
		return true, f.each(o, name, f.c.Insert)
	}
	if !wasLoaded {
		return false, nil
	}
	if err := f.directive(o, extendKey, name, f.c.Insert); err != nil {
		return false, err
	}
	if err := f.directive(o, deleteKey, name, f.c.Erase); err != nil {
		return false, err
	}
	return true, nil
}

func (f *collection[T]) directive(o *json.Object, key, name string, apply func(T)) error {
	if !o.HasObject(key) {
		return nil
	}
	d, err := o.GetObject(key)
	if err != nil {
		return err
	}
	d.AllowOmittedMembers()
	if !d.Has(name) {
		return nil
	}
	return f.each(d, name, apply)
}

func (f *collection[T]) each(o *json.Object, name string, apply func(T)) error {
	r, err := o.Raw(name)
	if err != nil {
		return err
	}
	if !r.TestArray() {
		v, err := f.dec(r)
		if err != nil {
			return err
		}
		apply(v)
		return nil
	}
	a, err := r.GetArray()
	if err != nil {
		return err
	}
	for _, ev := range a.Values() {
		v, err := f.dec(ev.Reader())
		if err != nil {
			return err
		}
		apply(v)
	}
	return nil
}

// =============================================================================
// Scalars
// =============================================================================

type value[T any] struct {
	p   *T
	def T
	dec Decoder[T]
}

// Value returns a Field for a scalar that can only be replaced. relative
// and proportional directives naming it are rejected.
func Value[T any](p *T, def T, dec Decoder[T]) Field {
	return &value[T]{p: p, def: def, dec: dec}
}

func (f *value[T]) Reset() { *f.p = f.def }

func (f *value[T]) Load(o *json.Object, name string, _ bool) (bool, error) {
	if o.Has(name) {
		return true, readInto(o, name, f.p, f.dec)
	}
	for _, key := range []string{proportionalKey, relativeKey} {
		if err := unsupported(o, key, name, *f.p); err != nil {
			return false, err
		}
	}
	return false, nil
}

func readInto[T any](o *json.Object, name string, p *T, dec Decoder[T]) error {
	r, err := o.Raw(name)
	if err != nil {
		return err
	}
	v, err := dec(r)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func unsupported(o *json.Object, key, name string, v any) error {
	d, ok, err := directive(o, key, name)
	if err != nil || !ok {
		return err
	}
	return d.CodedError(errs.ErrCodePolicy, name, fmt.Sprintf("Member %s of type %T does not support %s", name, v, key))
}

// directive returns the directive object key when it mentions name.
func directive(o *json.Object, key, name string) (*json.Object, bool, error) {
	if !o.HasObject(key) {
		return nil, false, nil
	}
	d, err := o.GetObject(key)
	if err != nil {
		return nil, false, err
	}
	d.AllowOmittedMembers()
	return d, d.Has(name), nil
}

type number[T Numeric] struct {
	value[T]
}

// Number returns a Field for a numeric scalar. Besides replacement it
// honors proportional (multiply by a positive factor other than 1) and
// relative (add a value of the same type) directives.
func Number[T Numeric](p *T, def T, dec Decoder[T]) Field {
	return &number[T]{value[T]{p: p, def: def, dec: dec}}
}

func (f *number[T]) Load(o *json.Object, name string, _ bool) (bool, error) {
	if o.Has(name) {
		return true, readInto(o, name, f.p, f.dec)
	}
	if ok, err := f.proportional(o, name); ok || err != nil {
		return ok, err
	}
	return f.relative(o, name)
}

func (f *number[T]) proportional(o *json.Object, name string) (bool, error) {
	d, ok, err := directive(o, proportionalKey, name)
	if err != nil || !ok {
		return false, err
	}
	if !d.HasNumber(name) {
		return false, d.MemberError(name, fmt.Sprintf("Invalid scalar for %s", name))
	}
	scalar, err := d.GetFloat(name)
	if err != nil {
		return false, err
	}
	if scalar <= 0 || scalar == 1 {
		return false, d.CodedError(errs.ErrCodePolicy, name, fmt.Sprintf("Invalid scalar %g for %s", scalar, name))
	}
	*f.p = T(float64(*f.p) * scalar)
	return true, nil
}

func (f *number[T]) relative(o *json.Object, name string) (bool, error) {
	d, ok, err := directive(o, relativeKey, name)
	if err != nil || !ok {
		return false, err
	}
	var adder T
	if err := readInto(d, name, &adder, f.dec); err != nil {
		return false, err
	}
	*f.p += adder
	return true, nil
}
