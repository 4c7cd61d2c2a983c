// Package typed loads struct members from JSON objects with merge
// semantics for content that patches earlier definitions.
//
// A member is described by a [Field]. When the object defines the member
// directly its value replaces whatever the field held. When the object is a
// patch of an existing definition (wasLoaded is true) and the member is
// absent, sibling directive objects adjust the existing value instead:
//
//	{"extend": {"flags": ["NEW"]}, "delete": {"flags": ["OLD"]}}
//	{"relative": {"weight": 50}, "proportional": {"volume": 1.5}}
//
// extend and delete apply to collections; relative and proportional apply
// to numbers. Using a directive on a field that cannot honor it is a POLICY
// error.
//
// Fields are loaded through [Mandatory] or [Optional]:
//
//	var deps typed.Set[string]
//	var version string
//	if err := typed.Mandatory(obj, wasLoaded, "dependencies", typed.Collection(&deps, typed.String)); err != nil {
//	    return err
//	}
//	if err := typed.Optional(obj, wasLoaded, "version", typed.Value(&version, "", typed.String)); err != nil {
//	    return err
//	}
package typed

import (
	"fmt"

	"github.com/matzehuels/modkit/pkg/json"
)

// Decoder reads one value of type T at the reader's cursor.
type Decoder[T any] func(r *json.Reader) (T, error)

// String decodes a JSON string.
func String(r *json.Reader) (string, error) { return r.GetString() }

// Bool decodes a JSON boolean.
func Bool(r *json.Reader) (bool, error) { return r.GetBool() }

// Int decodes an integer of platform width.
func Int(r *json.Reader) (int, error) { return r.GetInt() }

// Int64 decodes a 64-bit integer.
func Int64(r *json.Reader) (int64, error) { return r.GetInt64() }

// Float64 decodes any number.
func Float64(r *json.Reader) (float64, error) { return r.GetFloat() }

// Enum returns a Decoder that maps strings to values through names. Unknown
// names are reported at the offending string as
//
//	invalid <kind>: "<text>"
func Enum[T any](kind string, names map[string]T) Decoder[T] {
	return func(r *json.Reader) (T, error) {
		var zero T
		r.EatWhitespace()
		start := r.Tell()
		s, err := r.GetString()
		if err != nil {
			return zero, err
		}
		v, ok := names[s]
		if !ok {
			r.Seek(start)
			return zero, r.Error(fmt.Sprintf("invalid %s: %q", kind, s), 0)
		}
		return v, nil
	}
}
