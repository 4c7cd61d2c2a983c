package modinfo

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/modkit/pkg/deptree"
	errs "github.com/matzehuels/modkit/pkg/errors"
)

// Override records a mod definition replaced by a later one with the same
// id.
type Override struct {
	ID  string
	Old string // manifest of the replaced definition
	New string // manifest of the replacing definition
}

// Registry holds the known mods by id.
type Registry struct {
	mods         map[string]*Info
	overrides    []Override
	replacements map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		mods:         make(map[string]*Info),
		replacements: make(map[string]string),
	}
}

// Add inserts mods. A mod whose id is already known replaces the existing
// definition.
func (r *Registry) Add(mods ...*Info) {
	for _, m := range mods {
		if old, ok := r.mods[m.ID]; ok {
			r.overrides = append(r.overrides, Override{ID: m.ID, Old: old.File, New: m.File})
		}
		r.mods[m.ID] = m
	}
}

// Remove drops a mod.
func (r *Registry) Remove(id string) { delete(r.mods, id) }

// Apply loads a MOD_PATCH on top of the mod it names.
func (r *Registry) Apply(p *Patch) error {
	info, ok := r.mods[p.ID]
	if !ok {
		return errs.New(errs.ErrCodeModNotFound, "%s: patch for unknown mod %q", p.File, p.ID)
	}
	o, err := p.object()
	if err != nil {
		return err
	}
	// Already checked when the patch was decoded.
	_, _ = o.GetString("type")
	_, _ = o.GetString("id")

	patched := info.Clone()
	if err := patched.load(o, true); err != nil {
		return err
	}
	if err := o.Finish(); err != nil {
		return err
	}
	r.mods[p.ID] = patched
	return nil
}

// Get returns the mod with the given id.
func (r *Registry) Get(id string) (*Info, bool) {
	m, ok := r.mods[id]
	return m, ok
}

// IDs returns every mod id in sorted order.
func (r *Registry) IDs() []string { return slices.Sorted(maps.Keys(r.mods)) }

// Len returns the number of mods.
func (r *Registry) Len() int { return len(r.mods) }

// Overrides lists replaced definitions in the order they happened.
func (r *Registry) Overrides() []Override { return r.overrides }

// Sorted returns all mods for display: core mods first, then by category
// and case-insensitive name.
func (r *Registry) Sorted() []*Info {
	mods := slices.Collect(maps.Values(r.mods))
	slices.SortFunc(mods, func(a, b *Info) int {
		if a.Core != b.Core {
			if a.Core {
				return -1
			}
			return 1
		}
		ai, _ := CategoryIndex(a.Category)
		bi, _ := CategoryIndex(b.Category)
		return cmp.Or(
			cmp.Compare(ai, bi),
			cmp.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName())),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return mods
}

// SetReplacements installs the obsolete-id table (see [LoadReplacements]).
func (r *Registry) SetReplacements(m map[string]string) {
	r.replacements = maps.Clone(m)
	if r.replacements == nil {
		r.replacements = make(map[string]string)
	}
}

// Replace rewrites obsolete ids in ids. Removed mods are dropped and
// duplicates keep their first position. changed reports whether any
// replacement applied.
func (r *Registry) Replace(ids []string) (out []string, changed bool) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if repl, ok := r.replacements[id]; ok {
			changed = true
			if repl == "" || seen[repl] {
				continue
			}
			seen[repl] = true
			id = repl
		}
		out = append(out, id)
	}
	return out, changed
}

// RemoveInvalid drops ids that are not in the registry.
func (r *Registry) RemoveInvalid(ids []string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(id string) bool {
		_, ok := r.mods[id]
		return !ok
	})
}

// Tree builds the dependency tree over every registered mod.
func (r *Registry) Tree() *deptree.Tree {
	deps := make(map[string][]string, len(r.mods))
	conflicts := make(map[string][]string, len(r.mods))
	for id, m := range r.mods {
		deps[id], _ = r.Replace(m.Dependencies)
		conflicts[id] = slices.Clone(m.Conflicts)
	}
	t := deptree.New()
	t.Init(deps, conflicts)
	return t
}
