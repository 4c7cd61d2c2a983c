package modinfo

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/modkit/pkg/cache"
	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/observability"
)

func decodeOne(t *testing.T, src string) *Info {
	t.Helper()
	doc, err := Decode([]byte(src), "data/mods/test/modinfo.json")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(doc.Mods) != 1 {
		t.Fatalf("Decode() mods = %d, want 1", len(doc.Mods))
	}
	return doc.Mods[0]
}

func TestLoad(t *testing.T) {
	m := decodeOne(t, `{
  "type": "MOD_INFO",
  "id": "magiclysm",
  "name": "Magiclysm",
  "category": "content",
  "authors": "Alice",
  "dependencies": [ "dda" ],
  "conflicts": [ "aftershock" ],
  "core": false
}`)

	if m.ID != "magiclysm" {
		t.Errorf("ID = %q, want magiclysm", m.ID)
	}
	if m.Name != "Magiclysm" {
		t.Errorf("Name = %q, want Magiclysm", m.Name)
	}
	if m.Category != "content" {
		t.Errorf("Category = %q, want content", m.Category)
	}
	if !reflect.DeepEqual(m.Authors, []string{"Alice"}) {
		t.Errorf("Authors = %v, want [Alice]", m.Authors)
	}
	if !reflect.DeepEqual(m.Dependencies, []string{"dda"}) {
		t.Errorf("Dependencies = %v, want [dda]", m.Dependencies)
	}
	if !reflect.DeepEqual(m.Conflicts, []string{"aftershock"}) {
		t.Errorf("Conflicts = %v, want [aftershock]", m.Conflicts)
	}
	if m.Dir != "data/mods/test" {
		t.Errorf("Dir = %q, want data/mods/test", m.Dir)
	}
	if m.File != "data/mods/test/modinfo.json" {
		t.Errorf("File = %q", m.File)
	}
}

func TestLoadLegacyIdent(t *testing.T) {
	m := decodeOne(t, `{ "type": "MOD_INFO", "ident": "old_style" }`)
	if m.ID != "old_style" {
		t.Errorf("ID = %q, want old_style", m.ID)
	}
	if got := m.DisplayName(); got != "No name (old_style)" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestLoadUnknownCategory(t *testing.T) {
	m := decodeOne(t, `{ "type": "MOD_INFO", "id": "a", "category": "spaceships" }`)
	if m.Category != "" {
		t.Errorf("Category = %q, want empty", m.Category)
	}
	if got := CategoryTitle(m.Category); got != "NO CATEGORY" {
		t.Errorf("CategoryTitle() = %q, want NO CATEGORY", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		code errs.Code
	}{
		{
			name: "self dependency",
			src:  `{ "type": "MOD_INFO", "id": "a", "dependencies": [ "a" ] }`,
			want: "mod specifies self as a dependency",
		},
		{
			name: "self conflict",
			src:  `{ "type": "MOD_INFO", "id": "a", "conflicts": [ "a" ] }`,
			want: "mod specifies self as a conflict",
		},
		{
			name: "dependency and conflict",
			src:  `{ "type": "MOD_INFO", "id": "a", "dependencies": [ "b" ], "conflicts": [ "b" ] }`,
			want: `mod specifies "b" as both a dependency and a conflict`,
		},
		{
			name: "missing id",
			src:  `{ "type": "MOD_INFO", "name": "x" }`,
			want: `missing mandatory member "id"`,
		},
		{
			name: "bad id",
			src:  `{ "type": "MOD_INFO", "id": "a b" }`,
			want: "contains whitespace",
			code: errs.ErrCodeInvalidModID,
		},
		{
			name: "path traversal",
			src:  `{ "type": "MOD_INFO", "id": "a", "path": "../x" }`,
			want: "path traversal",
			code: errs.ErrCodeInvalidPath,
		},
		{
			name: "top level scalar",
			src:  `"MOD_INFO"`,
			want: "expected array or object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src), "m.json")
			if err == nil {
				t.Fatal("Decode() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Decode() error = %v, want %q", err, tt.want)
			}
			if !strings.HasPrefix(err.Error(), "Json error: m.json:") {
				t.Errorf("Decode() error = %v, want positioned error", err)
			}
			if tt.code != "" && !errs.Is(err, tt.code) {
				t.Errorf("Decode() code = %v, want %v", errs.GetCode(err), tt.code)
			}
		})
	}
}

func TestDecodeArray(t *testing.T) {
	doc, err := Decode([]byte(`[
  { "type": "MOD_INFO", "id": "a" },
  { "type": "item", "id": "sword", "weight": 3 },
  { "type": "MOD_PATCH", "id": "a", "extend": { "authors": [ "Bob" ] } },
  { "type": "MOD_INFO", "id": "b", "dependencies": [ "a" ] }
]`), "m.json")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var ids []string
	for _, m := range doc.Mods {
		ids = append(ids, m.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("mods = %v, want [a b]", ids)
	}
	if len(doc.Patches) != 1 || doc.Patches[0].ID != "a" {
		t.Errorf("patches = %v, want one patch for a", doc.Patches)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "modinfo.json"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("LoadFile() error = %v, want %v", err, errs.ErrCodeFileNotFound)
	}
}

func TestApplyPatch(t *testing.T) {
	doc, err := Decode([]byte(`[
  { "type": "MOD_INFO", "id": "base" },
  { "type": "MOD_INFO", "id": "a", "name": "A", "dependencies": [ "base", "old" ], "authors": [ "Ann" ] },
  {
    "type": "MOD_PATCH",
    "id": "a",
    "extend": { "dependencies": [ "extra" ], "authors": "Bob" },
    "delete": { "dependencies": [ "old" ] }
  }
]`), "m.json")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	reg := NewRegistry()
	reg.Add(doc.Mods...)
	before, _ := reg.Get("a")

	if err := reg.Apply(doc.Patches[0]); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	m, _ := reg.Get("a")
	if !reflect.DeepEqual(m.Dependencies, []string{"base", "extra"}) {
		t.Errorf("Dependencies = %v, want [base extra]", m.Dependencies)
	}
	if !reflect.DeepEqual(m.Authors, []string{"Ann", "Bob"}) {
		t.Errorf("Authors = %v, want [Ann Bob]", m.Authors)
	}
	if m.Name != "A" {
		t.Errorf("Name = %q, want A", m.Name)
	}
	if !reflect.DeepEqual(before.Dependencies, []string{"base", "old"}) {
		t.Errorf("original Dependencies = %v, want unchanged", before.Dependencies)
	}
}

func TestApplyPatchUnknownMod(t *testing.T) {
	doc, err := Decode([]byte(`{ "type": "MOD_PATCH", "id": "ghost" }`), "m.json")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	err = NewRegistry().Apply(doc.Patches[0])
	if !errs.Is(err, errs.ErrCodeModNotFound) {
		t.Errorf("Apply() error = %v, want %v", err, errs.ErrCodeModNotFound)
	}
}

func TestApplyPatchRejectsDirective(t *testing.T) {
	doc, err := Decode([]byte(`[
  { "type": "MOD_INFO", "id": "a", "version": "1" },
  { "type": "MOD_PATCH", "id": "a", "relative": { "version": "2" } }
]`), "m.json")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	reg := NewRegistry()
	reg.Add(doc.Mods...)
	err = reg.Apply(doc.Patches[0])
	if !errs.Is(err, errs.ErrCodePolicy) {
		t.Errorf("Apply() error = %v, want %v", err, errs.ErrCodePolicy)
	}
}

func TestRegistryOverrides(t *testing.T) {
	reg := NewRegistry()
	reg.Add(&Info{ID: "a", File: "one/modinfo.json"})
	reg.Add(&Info{ID: "a", File: "two/modinfo.json"}, &Info{ID: "b"})

	want := []Override{{ID: "a", Old: "one/modinfo.json", New: "two/modinfo.json"}}
	if got := reg.Overrides(); !reflect.DeepEqual(got, want) {
		t.Errorf("Overrides() = %v, want %v", got, want)
	}
	if got := reg.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
	if got := reg.RemoveInvalid([]string{"b", "zz", "a"}); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("RemoveInvalid() = %v, want [b a]", got)
	}
}

func TestRegistrySorted(t *testing.T) {
	reg := NewRegistry()
	reg.Add(
		&Info{ID: "z", Name: "zeta", Category: "items"},
		&Info{ID: "b", Name: "Beta", Category: "content"},
		&Info{ID: "dda", Name: "Dark Days Ahead", Core: true, Category: "core"},
		&Info{ID: "a", Name: "alpha", Category: "content"},
		&Info{ID: "n"},
	)
	var got []string
	for _, m := range reg.Sorted() {
		got = append(got, m.ID)
	}
	want := []string{"dda", "a", "b", "z", "n"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}

func TestReplace(t *testing.T) {
	reg := NewRegistry()
	reg.SetReplacements(map[string]string{"old": "new", "gone": ""})

	tests := []struct {
		in      []string
		want    []string
		changed bool
	}{
		{[]string{"a", "b"}, []string{"a", "b"}, false},
		{[]string{"old", "a"}, []string{"new", "a"}, true},
		{[]string{"a", "gone", "b"}, []string{"a", "b"}, true},
		{[]string{"new", "old"}, []string{"new"}, true},
		{[]string{"a", "a"}, []string{"a"}, false},
	}
	for _, tt := range tests {
		got, changed := reg.Replace(tt.in)
		if !reflect.DeepEqual(got, tt.want) || changed != tt.changed {
			t.Errorf("Replace(%v) = %v, %v, want %v, %v", tt.in, got, changed, tt.want, tt.changed)
		}
	}
}

func TestRegistryTree(t *testing.T) {
	reg := NewRegistry()
	reg.SetReplacements(map[string]string{"legacy": "dda"})
	reg.Add(
		&Info{ID: "dda"},
		&Info{ID: "mod", Dependencies: []string{"legacy"}},
		&Info{ID: "broken", Dependencies: []string{"nowhere"}},
	)
	tree := reg.Tree()
	if got := tree.DependenciesOf("mod"); !reflect.DeepEqual(got, []string{"dda"}) {
		t.Errorf("DependenciesOf(mod) = %v, want [dda]", got)
	}
	if tree.IsAvailable("broken") {
		t.Error("IsAvailable(broken) = true, want false")
	}
}

func TestLoadReplacements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "replacements.json")
	if err := os.WriteFile(path, []byte(`[ [ "old", "new" ], [ "removed" ] ]`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadReplacements(path)
	if err != nil {
		t.Fatalf("LoadReplacements() error = %v", err)
	}
	want := map[string]string{"old": "new", "removed": ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadReplacements() = %v, want %v", got, want)
	}

	got, err = LoadReplacements(filepath.Join(dir, "missing.json"))
	if err != nil || len(got) != 0 {
		t.Errorf("LoadReplacements(missing) = %v, %v, want empty", got, err)
	}
}

func TestModList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mods.json")
	ids := []string{"dda", "magiclysm"}
	if err := SaveListFile(path, ids); err != nil {
		t.Fatalf("SaveListFile() error = %v", err)
	}
	got, err := LoadList(path)
	if err != nil {
		t.Fatalf("LoadList() error = %v", err)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Errorf("LoadList() = %v, want %v", got, ids)
	}

	var buf bytes.Buffer
	if err := SaveList(&buf, ids); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "]\n") {
		t.Errorf("SaveList() = %q, want trailing newline", buf.String())
	}

	if err := SaveListFile(path, nil); err != nil {
		t.Fatalf("SaveListFile(nil) error = %v", err)
	}
	if _, err := LoadList(path); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("LoadList() after clear error = %v, want %v", err, errs.ErrCodeFileNotFound)
	}
}

// =============================================================================
// Scanner
// =============================================================================

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string) { h.misses++ }

func writeManifest(t *testing.T, dir, sub, content string) string {
	t.Helper()
	path := filepath.Join(dir, sub, ManifestName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScannerCache(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "dda", `{ "type": "MOD_INFO", "id": "dda", "core": true }`)
	writeManifest(t, dir, "magic", `[
  { "type": "MOD_INFO", "id": "magiclysm", "dependencies": [ "dda" ] },
  { "type": "MOD_PATCH", "id": "dda", "extend": { "authors": [ "Mage" ] } }
]`)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	s := &Scanner{Cache: fc}
	ctx := context.Background()
	for pass := 0; pass < 2; pass++ {
		res, err := s.Load(ctx, []string{dir}, nil)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(res.Problems) != 0 {
			t.Fatalf("Load() problems = %v", res.Problems)
		}
		if got := res.Registry.IDs(); !reflect.DeepEqual(got, []string{"dda", "magiclysm"}) {
			t.Errorf("pass %d: IDs() = %v", pass, got)
		}
		dda, _ := res.Registry.Get("dda")
		if !reflect.DeepEqual(dda.Authors, []string{"Mage"}) {
			t.Errorf("pass %d: dda authors = %v, want [Mage]", pass, dda.Authors)
		}
		if !dda.Core {
			t.Errorf("pass %d: dda Core = false", pass)
		}
		if !res.Tree.IsAvailable("magiclysm") {
			t.Errorf("pass %d: magiclysm unavailable", pass)
		}
	}
	if hooks.misses != 2 || hooks.hits != 2 {
		t.Errorf("hits, misses = %d, %d, want 2, 2", hooks.hits, hooks.misses)
	}
}

func TestScannerResolveCache(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "dda", `{ "type": "MOD_INFO", "id": "dda" }`)
	writeManifest(t, dir, "more", `{ "type": "MOD_INFO", "id": "more", "dependencies": [ "dda" ] }`)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := &Scanner{Cache: fc}
	ctx := context.Background()
	res, err := s.Load(ctx, []string{dir}, nil)
	if err != nil {
		t.Fatal(err)
	}

	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()
	for i := 0; i < 2; i++ {
		order, err := s.Resolve(ctx, res, []string{"more"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !reflect.DeepEqual(order, []string{"dda", "more"}) {
			t.Errorf("Resolve() = %v, want [dda more]", order)
		}
	}
	if hooks.hits != 1 || hooks.misses != 1 {
		t.Errorf("hits, misses = %d, %d, want 1, 1", hooks.hits, hooks.misses)
	}
}

func TestScannerDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "one", `{ "type": "MOD_INFO", "id": "twin" }`)
	writeManifest(t, dir, "two", `{ "type": "MOD_INFO", "id": "twin" }`)
	writeManifest(t, dir, "ok", `{ "type": "MOD_INFO", "id": "solo" }`)
	writeManifest(t, dir, "bad", `{ "type": "MOD_INFO", "id": }`)

	res, err := (&Scanner{}).Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Mods) != 1 || res.Mods[0].ID != "solo" {
		t.Errorf("Scan() mods = %v, want [solo]", res.Mods)
	}
	if len(res.Problems) != 2 {
		t.Fatalf("Scan() problems = %v, want 2", res.Problems)
	}
	var dup error
	for _, p := range res.Problems {
		if strings.Contains(p.Error(), "twin") {
			dup = p
		}
	}
	if dup == nil || !strings.Contains(dup.Error(), "None of them will be loaded") {
		t.Errorf("duplicate problem = %v", dup)
	}
}

func TestScannerOverrideAcrossDirs(t *testing.T) {
	base, user := t.TempDir(), t.TempDir()
	writeManifest(t, base, "a", `{ "type": "MOD_INFO", "id": "a", "name": "Base" }`)
	writeManifest(t, user, "a", `{ "type": "MOD_INFO", "id": "a", "name": "User" }`)

	res, err := (&Scanner{}).Load(context.Background(), []string{base, user}, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := res.Registry.Get("a")
	if a.Name != "User" {
		t.Errorf("Name = %q, want User", a.Name)
	}
	if got := len(res.Registry.Overrides()); got != 1 {
		t.Errorf("Overrides() = %d, want 1", got)
	}
}

func TestScannerMissingDir(t *testing.T) {
	_, err := (&Scanner{}).Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Scan() error = %v, want %v", err, errs.ErrCodeFileNotFound)
	}
}

func TestScannerCanceled(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a", `{ "type": "MOD_INFO", "id": "a" }`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Scanner{}).Scan(ctx, dir); err == nil {
		t.Error("Scan() error = nil, want context error")
	}
}

// =============================================================================
// Sample data
// =============================================================================

func TestLoadExampleMods(t *testing.T) {
	ctx := context.Background()
	repl, err := LoadReplacements(filepath.Join("..", "..", "examples", "obsolete_mods.json"))
	if err != nil {
		t.Fatalf("LoadReplacements() error = %v", err)
	}
	s := &Scanner{Cache: cache.NewNullCache()}
	res, err := s.Load(ctx, []string{filepath.Join("..", "..", "examples", "mods")}, repl)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(res.Problems) != 0 {
		t.Fatalf("Load() problems = %v", res.Problems)
	}
	if got := res.Registry.Len(); got != 6 {
		t.Errorf("Registry.Len() = %d, want 6", got)
	}

	var unavailable []string
	for _, id := range res.Tree.Keys() {
		if !res.Tree.IsAvailable(id) {
			unavailable = append(unavailable, id)
		}
	}
	if want := []string{"arcana_aftershock"}; !reflect.DeepEqual(unavailable, want) {
		t.Errorf("unavailable = %v, want %v", unavailable, want)
	}
	want := "Has conflicting dependencies: [aftershock] with [magiclysm]"
	if got := res.Tree.Node("arcana_aftershock").ErrorString(); got != want {
		t.Errorf("ErrorString() = %q, want %q", got, want)
	}

	// The patch in aftershock's manifest adds the reverse conflict.
	magic, _ := res.Registry.Get("magiclysm")
	if !reflect.DeepEqual(magic.Conflicts, []string{"aftershock"}) {
		t.Errorf("magiclysm conflicts = %v, want [aftershock]", magic.Conflicts)
	}

	order, err := s.Resolve(ctx, res, []string{"fungal_removal"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := []string{"dda", "aftershock", "no_fungal_monsters"}; !reflect.DeepEqual(order, want) {
		t.Errorf("Resolve() = %v, want %v", order, want)
	}
}
