package json

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	errs "github.com/matzehuels/modkit/pkg/errors"
)

// Object is a view of one JSON object. Construction scans the object once
// and caches the offset of every member value; accessors seek back to the
// cached offset and decode on demand.
//
// Objects track which members were read. In strict mode [Object.Finish]
// reports every member that was never read, except names starting with
// "//", which are treated as comments.
//
// An Object obtained for an absent member (see [Object.GetObject]) is not
// bound to a document and behaves as an empty object.
type Object struct {
	r              *Reader
	start, end     int
	positions      map[string]int
	visited        map[string]struct{}
	finalSeparator bool
	allowOmitted   bool
	reported       bool
}

func newObject(r *Reader) (*Object, error) {
	r.EatWhitespace()
	o := &Object{
		r:         r,
		start:     r.pos,
		positions: make(map[string]int),
		visited:   make(map[string]struct{}),
	}
	if err := r.StartObject(); err != nil {
		return nil, err
	}
	for {
		done, err := r.EndObject()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		name, err := r.GetMemberName()
		if err != nil {
			return nil, err
		}
		r.EatWhitespace()
		if _, dup := o.positions[name]; dup {
			return nil, r.shapeError("duplicate entry in json object", 0)
		}
		o.positions[name] = r.pos
		if err := r.SkipValue(); err != nil {
			return nil, err
		}
	}
	o.end = r.pos
	o.finalSeparator = r.ateSeparator
	return o, nil
}

// Size returns the number of members.
func (o *Object) Size() int { return len(o.positions) }

// Empty reports whether the object has no members.
func (o *Object) Empty() bool { return len(o.positions) == 0 }

// Has reports whether the object has a member called name.
func (o *Object) Has(name string) bool {
	_, ok := o.positions[name]
	return ok
}

// Names returns the member names in sorted order.
func (o *Object) Names() []string {
	return slices.Sorted(maps.Keys(o.positions))
}

// AllowOmittedMembers disables unread-member reporting for this object.
// Use it when the same object is read by several non-exhaustive passes.
func (o *Object) AllowOmittedMembers() { o.allowOmitted = true }

// Visited reports whether the member was read.
func (o *Object) Visited(name string) bool {
	_, ok := o.visited[name]
	return ok
}

func (o *Object) markVisited(name string) { o.visited[name] = struct{}{} }

// Finish moves the cursor past the object and, in strict mode, returns one
// error per unread member.
func (o *Object) Finish() error {
	err := o.reportUnvisited()
	if o.r != nil && o.r.Good() {
		o.r.Seek(o.end)
		o.r.SetAteSeparator(o.finalSeparator)
	}
	return err
}

func (o *Object) reportUnvisited() error {
	if o.r == nil || !o.r.strict || o.allowOmitted || o.reported {
		return nil
	}
	o.reported = true
	var errList []error
	for _, name := range o.Names() {
		if o.Visited(name) || strings.HasPrefix(name, "//") {
			continue
		}
		errList = append(errList, o.MemberError(name, fmt.Sprintf("Invalid or misplaced field name %q in JSON data", name)))
	}
	return errors.Join(errList...)
}

// Str returns the raw text of the object. Callers that take the raw text
// may re-parse it later, so unread members are no longer reported.
func (o *Object) Str() string {
	o.AllowOmittedMembers()
	if o.r == nil || o.end < o.start {
		return "{}"
	}
	return strings.TrimRight(o.r.Substr(o.start, o.end-o.start), " \t\r\n,")
}

// LineNumber returns "path:line:col" of the object's opening brace.
func (o *Object) LineNumber() string {
	if o.r == nil {
		return unknownSource
	}
	o.r.Seek(o.start)
	return o.r.LineNumber()
}

// Error reports msg at the object's opening brace.
func (o *Object) Error(msg string) error {
	if o.r == nil {
		return plainError(errs.ErrCodeShape, "%s", msg)
	}
	o.r.Seek(o.start)
	return o.r.shapeError(msg, 0)
}

// MemberError reports msg at the value of member name, or at the object
// itself when the member is absent.
func (o *Object) MemberError(name, msg string) error {
	return o.CodedError(errs.ErrCodeShape, name, msg)
}

// CodedError is MemberError with an explicit error code.
func (o *Object) CodedError(code errs.Code, name, msg string) error {
	if o.r == nil {
		return plainError(code, "%s", msg)
	}
	pos, ok := o.positions[name]
	if !ok {
		pos = o.start
	}
	o.r.Seek(pos)
	return o.r.errorAt(code, msg, 0)
}

// Member returns the value of a required member and marks it read.
func (o *Object) Member(name string) (Value, error) {
	pos, ok := o.positions[name]
	if o.r == nil || !ok {
		return Value{}, o.Error(fmt.Sprintf("missing required field %q in object: %s", name, o.Str()))
	}
	o.markVisited(name)
	return Value{r: o.r, pos: pos}, nil
}

// Raw seeks the reader to the value of member name, marks it read and
// returns the reader for custom decoding.
func (o *Object) Raw(name string) (*Reader, error) {
	if o.r == nil {
		return nil, plainError(errs.ErrCodeShape, "member lookup on empty object: %s", name)
	}
	pos, ok := o.positions[name]
	if !ok {
		o.r.Seek(o.start)
		return nil, o.r.shapeError("member not found: "+name, 0)
	}
	o.markVisited(name)
	o.r.Seek(pos)
	return o.r, nil
}

// lookup seeks to an optional member. It reports false without marking
// anything when the member is absent.
func (o *Object) lookup(name string) (*Reader, bool) {
	pos, ok := o.positions[name]
	if o.r == nil || !ok {
		return nil, false
	}
	o.markVisited(name)
	o.r.Seek(pos)
	return o.r, true
}

// Members iterates over the members in name order, marking each one read.
func (o *Object) Members() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range o.Names() {
			o.markVisited(name)
			if !yield(name, Value{r: o.r, pos: o.positions[name]}) {
				return
			}
		}
	}
}

// =============================================================================
// Typed access
// =============================================================================

func (o *Object) GetBool(name string) (bool, error) {
	v, err := o.Member(name)
	if err != nil {
		return false, err
	}
	return v.GetBool()
}

// GetBoolOr returns fallback when the member is absent.
func (o *Object) GetBoolOr(name string, fallback bool) (bool, error) {
	r, ok := o.lookup(name)
	if !ok {
		return fallback, nil
	}
	return r.GetBool()
}

func (o *Object) GetInt(name string) (int, error) {
	v, err := o.Member(name)
	if err != nil {
		return 0, err
	}
	return v.GetInt()
}

// GetIntOr returns fallback when the member is absent.
func (o *Object) GetIntOr(name string, fallback int) (int, error) {
	r, ok := o.lookup(name)
	if !ok {
		return fallback, nil
	}
	return r.GetInt()
}

func (o *Object) GetInt64(name string) (int64, error) {
	v, err := o.Member(name)
	if err != nil {
		return 0, err
	}
	return v.GetInt64()
}

func (o *Object) GetFloat(name string) (float64, error) {
	v, err := o.Member(name)
	if err != nil {
		return 0, err
	}
	return v.GetFloat()
}

// GetFloatOr returns fallback when the member is absent.
func (o *Object) GetFloatOr(name string, fallback float64) (float64, error) {
	r, ok := o.lookup(name)
	if !ok {
		return fallback, nil
	}
	return r.GetFloat()
}

func (o *Object) GetString(name string) (string, error) {
	v, err := o.Member(name)
	if err != nil {
		return "", err
	}
	return v.GetString()
}

// GetStringOr returns fallback when the member is absent.
func (o *Object) GetStringOr(name, fallback string) (string, error) {
	r, ok := o.lookup(name)
	if !ok {
		return fallback, nil
	}
	return r.GetString()
}

// GetArray returns the array view of a member, or an empty array when the
// member is absent.
func (o *Object) GetArray(name string) (*Array, error) {
	r, ok := o.lookup(name)
	if !ok {
		return &Array{}, nil
	}
	return r.GetArray()
}

// GetObject returns the object view of a member, or an empty object when
// the member is absent.
func (o *Object) GetObject(name string) (*Object, error) {
	r, ok := o.lookup(name)
	if !ok {
		return &Object{}, nil
	}
	return r.GetObject()
}

// GetStringArray decodes an array of strings; absent means empty.
func (o *Object) GetStringArray(name string) ([]string, error) {
	a, err := o.GetArray(name)
	if err != nil {
		return nil, err
	}
	var out []string
	for a.HasMore() {
		s, err := a.NextString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// GetIntArray decodes an array of integers; absent means empty.
func (o *Object) GetIntArray(name string) ([]int, error) {
	a, err := o.GetArray(name)
	if err != nil {
		return nil, err
	}
	var out []int
	for a.HasMore() {
		n, err := a.NextInt()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// GetFloatArray decodes an array of numbers; absent means empty.
func (o *Object) GetFloatArray(name string) ([]float64, error) {
	a, err := o.GetArray(name)
	if err != nil {
		return nil, err
	}
	var out []float64
	for a.HasMore() {
		f, err := a.NextFloat()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Read decodes member name into dst (see [Reader.Read]). It reports false
// without error when the member is absent.
func (o *Object) Read(name string, dst any) (bool, error) {
	r, ok := o.lookup(name)
	if !ok {
		return false, nil
	}
	if err := r.Read(dst); err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// Type probes
// =============================================================================
//
// Probing does not count as reading a member, except HasNull: a null is
// usually the whole answer.

func (o *Object) probe(name string) (*Reader, bool) {
	pos, ok := o.positions[name]
	if o.r == nil || !ok {
		return nil, false
	}
	o.r.Seek(pos)
	return o.r, true
}

func (o *Object) HasNull(name string) bool {
	r, ok := o.lookup(name)
	return ok && r.TestNull()
}

func (o *Object) HasBool(name string) bool {
	r, ok := o.probe(name)
	return ok && r.TestBool()
}

func (o *Object) HasNumber(name string) bool {
	r, ok := o.probe(name)
	return ok && r.TestNumber()
}

func (o *Object) HasString(name string) bool {
	r, ok := o.probe(name)
	return ok && r.TestString()
}

func (o *Object) HasArray(name string) bool {
	r, ok := o.probe(name)
	return ok && r.TestArray()
}

func (o *Object) HasObject(name string) bool {
	r, ok := o.probe(name)
	return ok && r.TestObject()
}
