package modinfo

import (
	"fmt"
	"path/filepath"
	"slices"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/json"
	"github.com/matzehuels/modkit/pkg/json/typed"
)

// Manifest object types.
const (
	TypeInfo  = "MOD_INFO"
	TypePatch = "MOD_PATCH"
)

// Info describes one mod.
type Info struct {
	ID          string
	Name        string
	Description string
	Category    string // one of Categories, "" when unknown or absent

	// Dir is the directory holding the manifest. Path, when set, locates
	// the mod's content relative to Dir.
	Dir  string
	Path string
	// File is the manifest the mod was read from.
	File string

	Authors      []string
	Maintainers  []string
	Version      string
	Dependencies []string
	Conflicts    []string
	Core         bool
	Obsolete     bool
}

// DisplayName returns Name, or a placeholder naming the id.
func (i *Info) DisplayName() string {
	if i.Name == "" {
		return fmt.Sprintf("No name (%s)", i.ID)
	}
	return i.Name
}

// ContentDir returns the directory holding the mod's data files.
func (i *Info) ContentDir() string {
	return filepath.Join(i.Dir, i.Path)
}

// Clone returns a deep copy of i.
func (i *Info) Clone() *Info {
	c := *i
	c.Authors = slices.Clone(i.Authors)
	c.Maintainers = slices.Clone(i.Maintainers)
	c.Dependencies = slices.Clone(i.Dependencies)
	c.Conflicts = slices.Clone(i.Conflicts)
	return &c
}

// Serialize writes i as a MOD_INFO object. Empty members are omitted.
func (i *Info) Serialize(w *json.Writer) {
	w.StartObject()
	w.MemberValue("type", TypeInfo)
	w.MemberValue("id", i.ID)
	for _, m := range []struct{ name, value string }{
		{"name", i.Name},
		{"description", i.Description},
		{"category", i.Category},
		{"path", i.Path},
		{"version", i.Version},
	} {
		if m.value != "" {
			w.MemberValue(m.name, m.value)
		}
	}
	for _, m := range []struct {
		name  string
		value []string
	}{
		{"authors", i.Authors},
		{"maintainers", i.Maintainers},
		{"dependencies", i.Dependencies},
		{"conflicts", i.Conflicts},
	} {
		if len(m.value) > 0 {
			w.MemberValue(m.name, m.value)
		}
	}
	if i.Core {
		w.MemberValue("core", true)
	}
	if i.Obsolete {
		w.MemberValue("obsolete", true)
	}
	w.EndObject()
}

// Load reads one MOD_INFO object. dir is the directory holding the
// manifest. The legacy "ident" member is accepted in place of "id".
func Load(o *json.Object, dir string) (*Info, error) {
	i := &Info{Dir: dir}
	if err := i.load(o, false); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Info) load(o *json.Object, wasLoaded bool) error {
	if !wasLoaded {
		if err := i.loadID(o); err != nil {
			return err
		}
	}

	for _, f := range []struct {
		name string
		p    *string
	}{
		{"name", &i.Name},
		{"description", &i.Description},
		{"category", &i.Category},
		{"path", &i.Path},
		{"version", &i.Version},
	} {
		if err := typed.Optional(o, wasLoaded, f.name, typed.Value(f.p, "", typed.String)); err != nil {
			return err
		}
	}
	if _, ok := CategoryIndex(i.Category); !ok {
		i.Category = ""
	}
	if i.Path != "" {
		if err := errs.ValidatePath(i.Path); err != nil {
			return o.CodedError(errs.GetCode(err), "path", err.Error())
		}
	}

	for _, f := range []struct {
		name string
		p    *[]string
	}{
		{"authors", &i.Authors},
		{"maintainers", &i.Maintainers},
		{"dependencies", &i.Dependencies},
		{"conflicts", &i.Conflicts},
	} {
		list := typed.NewList(*f.p...)
		if err := typed.Optional(o, wasLoaded, f.name, typed.Collection[string](list, typed.String)); err != nil {
			return err
		}
		*f.p = slices.Clone(list.Items())
	}

	for _, f := range []struct {
		name string
		p    *bool
	}{
		{"core", &i.Core},
		{"obsolete", &i.Obsolete},
	} {
		if err := typed.Optional(o, wasLoaded, f.name, typed.Value(f.p, false, typed.Bool)); err != nil {
			return err
		}
	}

	return i.check(o)
}

func (i *Info) loadID(o *json.Object) error {
	name := "id"
	if o.HasString("ident") {
		name = "ident"
	}
	if err := typed.Mandatory(o, false, name, typed.Value(&i.ID, "", typed.String)); err != nil {
		return err
	}
	if err := errs.ValidateModID(i.ID); err != nil {
		return o.CodedError(errs.GetCode(err), name, err.Error())
	}
	return nil
}

func (i *Info) check(o *json.Object) error {
	if slices.Contains(i.Dependencies, i.ID) {
		return o.MemberError("dependencies", "mod specifies self as a dependency")
	}
	for _, c := range i.Conflicts {
		if c == i.ID {
			return o.MemberError("conflicts", "mod specifies self as a conflict")
		}
		if slices.Contains(i.Dependencies, c) {
			return o.MemberError("conflicts", fmt.Sprintf("mod specifies %q as both a dependency and a conflict", c))
		}
	}
	return nil
}
