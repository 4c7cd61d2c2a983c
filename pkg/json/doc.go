// Package json reads and writes hand-authored JSON content files.
//
// It trades the convenience of encoding/json for the things content
// authors need: precise error locations with surrounding source, strict
// integer decoding, detection of misspelled or unused fields, and a
// writer whose layout is stable enough to keep files diffable.
//
// # Reading
//
// A [Reader] holds the whole document and a byte cursor. Scalars are
// decoded directly from the cursor:
//
//	r := json.NewReader(data, json.WithPath("modinfo.json"))
//	n, err := r.GetInt()
//
// Containers are read through views. [Reader.GetObject] scans an object
// once, remembers where each member value starts and returns an [Object];
// members can then be read in any order:
//
//	obj, err := r.GetObject()
//	name, err := obj.GetString("name")
//	size, err := obj.GetIntOr("size", 1)
//	err = obj.Finish()
//
// Views share the reader's cursor. A nested view must be used up before
// its parent is read again.
//
// # Strict mode
//
// In strict mode (see [SetStrict] and [WithStrict]) [Object.Finish] returns
// one error per member that was never read. Names starting with "//" are
// comments and are never reported.
//
// # Errors
//
// Errors raised against a document are *[Error] values:
//
//	Json error: modinfo.json:3:12: missing comma
//
//	    "id": "core"
//	    "name": "Core"
//	    ^
//
// Each carries a code from pkg/errors: SYNTAX for malformed text, SHAPE
// for the wrong kind of value, RANGE for numbers that do not fit.
//
// # Writing
//
// [Writer] streams JSON to an io.Writer. Pretty output wraps objects one
// member per line and keeps arrays on a single line; [Reformat] uses it to
// normalize existing files.
package json
