package modinfo

import (
	"os"
	"path/filepath"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/json"
	"github.com/matzehuels/modkit/pkg/json/typed"
)

// ManifestName is the file name the scanner looks for.
const ManifestName = "modinfo.json"

// Document is the content of one manifest file.
type Document struct {
	File    string
	Mods    []*Info
	Patches []*Patch
}

// Patch is a MOD_PATCH object, kept as a position in its source so that
// errors raised while applying it point into the original file.
type Patch struct {
	ID   string
	File string

	data   []byte
	offset int
	opts   []json.Option
}

// object re-reads the patch object from its source.
func (p *Patch) object() (*json.Object, error) {
	r := json.NewReader(p.data, append([]json.Option{json.WithPath(p.File)}, p.opts...)...)
	r.Seek(p.offset)
	return r.GetObject()
}

// LoadFile reads a manifest file. See [Decode].
func LoadFile(path string, opts ...json.Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "manifest %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data, path, opts...)
}

// Decode parses manifest content read from path. The content is one object
// or an array of objects; anything else is an error.
func Decode(data []byte, path string, opts ...json.Option) (*Document, error) {
	d := &Document{File: path}
	r := json.NewReader(data, append([]json.Option{json.WithPath(path)}, opts...)...)
	dir := filepath.Dir(path)

	r.EatWhitespace()
	switch {
	case r.TestObject():
		if err := d.decodeObject(r, r.Tell(), dir, data, opts); err != nil {
			return nil, err
		}
	case r.TestArray():
		a, err := r.GetArray()
		if err != nil {
			return nil, err
		}
		for _, v := range a.Values() {
			if err := d.decodeObject(v.Reader(), v.Pos(), dir, data, opts); err != nil {
				return nil, err
			}
		}
	default:
		return nil, r.Error("expected array or object", 0)
	}
	return d, nil
}

func (d *Document) decodeObject(r *json.Reader, pos int, dir string, data []byte, opts []json.Option) error {
	r.Seek(pos)
	o, err := r.GetObject()
	if err != nil {
		return err
	}

	typ := ""
	if o.HasString("type") {
		if typ, err = o.GetString("type"); err != nil {
			return err
		}
	}

	switch typ {
	case TypeInfo:
		info, err := Load(o, dir)
		if err != nil {
			return err
		}
		info.File = d.File
		d.Mods = append(d.Mods, info)
	case TypePatch:
		p := &Patch{File: d.File, data: data, offset: pos, opts: opts}
		if err := typed.Mandatory(o, false, "id", typed.Value(&p.ID, "", typed.String)); err != nil {
			return err
		}
		// Patch members are read when the patch is applied.
		o.AllowOmittedMembers()
		d.Patches = append(d.Patches, p)
	default:
		o.AllowOmittedMembers()
	}
	return o.Finish()
}
