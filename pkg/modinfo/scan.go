package modinfo

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/modkit/pkg/cache"
	"github.com/matzehuels/modkit/pkg/deptree"
	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/json"
	"github.com/matzehuels/modkit/pkg/observability"
)

// Scanner finds and decodes manifests. The zero value scans without a
// cache.
type Scanner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration // zero keeps entries until evicted
	Options []json.Option // passed to every manifest reader
}

func (s *Scanner) cache() cache.Cache {
	if s.Cache == nil {
		return cache.NewNullCache()
	}
	return s.Cache
}

func (s *Scanner) keyer() cache.Keyer {
	if s.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return s.Keyer
}

// DirResult is the content of one scanned directory.
type DirResult struct {
	Dir     string
	Mods    []*Info
	Patches []*Patch
	// Problems holds per-manifest errors. A manifest with an error
	// contributes nothing.
	Problems []error

	hashes []string
}

// Scan walks dir for manifests. Mods whose id is defined more than once in
// the directory are all dropped and reported in Problems. Scan fails only
// when dir cannot be walked or ctx is done.
func (s *Scanner) Scan(ctx context.Context, dir string) (*DirResult, error) {
	hooks := observability.Load()
	start := time.Now()
	hooks.OnScanStart(ctx, dir)

	res, err := s.scan(ctx, dir)
	n := 0
	if res != nil {
		n = len(res.Mods)
	}
	hooks.OnScanComplete(ctx, dir, n, time.Since(start), err)
	return res, err
}

func (s *Scanner) scan(ctx context.Context, dir string) (*DirResult, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "mod directory %s not found", dir)
		}
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ManifestName {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &DirResult{Dir: dir}
	byID := make(map[string][]*Info)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, hash, err := s.loadManifest(ctx, path)
		if err != nil {
			res.Problems = append(res.Problems, err)
			continue
		}
		res.hashes = append(res.hashes, hash)
		for _, m := range doc.Mods {
			if len(byID[m.ID]) == 0 {
				res.Mods = append(res.Mods, m)
			}
			byID[m.ID] = append(byID[m.ID], m)
		}
		res.Patches = append(res.Patches, doc.Patches...)
	}

	res.Mods = slices.DeleteFunc(res.Mods, func(m *Info) bool {
		dups := byID[m.ID]
		if len(dups) < 2 {
			return false
		}
		res.Problems = append(res.Problems, duplicateError(m.ID, dir, dups))
		return true
	})
	return res, nil
}

func duplicateError(id, dir string, dups []*Info) error {
	var b strings.Builder
	fmt.Fprintf(&b, "There are multiple mods with same id [%s] found in folder %q:\n", id, dir)
	for _, m := range dups {
		fmt.Fprintf(&b, "  - %s\n", m.File)
	}
	b.WriteString("None of them will be loaded to avoid data corruption.")
	return errs.New(errs.ErrCodeInvalidManifest, "%s", b.String())
}

// loadManifest decodes one manifest, consulting the cache first. It returns
// the content hash along with the document.
func (s *Scanner) loadManifest(ctx context.Context, path string) (doc *Document, hash string, err error) {
	cached := false
	defer func() {
		n := 0
		if doc != nil {
			n = len(doc.Mods)
		}
		observability.Load().OnManifest(ctx, path, n, cached, err)
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	hash = cache.Hash(data)
	key := s.keyer().ManifestKey(path, hash)
	c := s.cache()
	hooks := observability.Cache()

	// Cache failures only cost a re-parse.
	if enc, ok, cerr := c.Get(ctx, key); cerr == nil && ok {
		if doc, err := decodeCached(enc, path, data, s.Options); err == nil {
			hooks.OnCacheHit(ctx, "manifest")
			cached = true
			return doc, hash, nil
		}
	}
	hooks.OnCacheMiss(ctx, "manifest")

	doc, err = Decode(data, path, s.Options...)
	if err != nil {
		return nil, "", err
	}
	enc := encodeCached(doc)
	if c.Set(ctx, key, enc, s.TTL) == nil {
		hooks.OnCacheSet(ctx, "manifest", len(enc))
	}
	return doc, hash, nil
}

// encodeCached writes the decoded form of a manifest:
// {"mods":[...],"patches":[{"id":...,"offset":...}]}.
func encodeCached(doc *Document) []byte {
	var buf bytes.Buffer
	w := json.NewWriter(&buf, false)
	w.StartObject()
	w.Member("mods")
	w.StartArray()
	for _, m := range doc.Mods {
		w.Write(m)
	}
	w.EndArray()
	w.Member("patches")
	w.StartArray()
	for _, p := range doc.Patches {
		w.StartObjectCompact()
		w.MemberValue("id", p.ID)
		w.MemberValue("offset", p.offset)
		w.EndObject()
	}
	w.EndArray()
	w.EndObject()
	_ = w.Flush()
	return buf.Bytes()
}

func decodeCached(enc []byte, path string, data []byte, opts []json.Option) (*Document, error) {
	r := json.NewReader(enc, json.WithPath(path), json.WithStrict(false))
	o, err := r.GetObject()
	if err != nil {
		return nil, err
	}
	d := &Document{File: path}
	dir := filepath.Dir(path)

	mods, err := o.GetArray("mods")
	if err != nil {
		return nil, err
	}
	for _, v := range mods.Values() {
		mo, err := v.GetObject()
		if err != nil {
			return nil, err
		}
		info, err := Load(mo, dir)
		if err != nil {
			return nil, err
		}
		info.File = path
		d.Mods = append(d.Mods, info)
	}

	patches, err := o.GetArray("patches")
	if err != nil {
		return nil, err
	}
	for _, v := range patches.Values() {
		po, err := v.GetObject()
		if err != nil {
			return nil, err
		}
		p := &Patch{File: path, data: data, opts: opts}
		if p.ID, err = po.GetString("id"); err != nil {
			return nil, err
		}
		if p.offset, err = po.GetInt("offset"); err != nil {
			return nil, err
		}
		d.Patches = append(d.Patches, p)
	}
	return d, nil
}

// =============================================================================
// Loading a full mod set
// =============================================================================

// Result is a registry assembled from several directories.
type Result struct {
	Registry *Registry
	Tree     *deptree.Tree
	// Problems collects manifest, duplicate and patch errors. None of them
	// stop loading.
	Problems []error
	// Hash identifies the manifest contents that produced the result.
	Hash string
}

// Load scans dirs in order, later directories overriding earlier ones,
// applies every patch once all mods are known, and builds the tree.
// replacements may be nil.
func (s *Scanner) Load(ctx context.Context, dirs []string, replacements map[string]string) (*Result, error) {
	reg := NewRegistry()
	reg.SetReplacements(replacements)
	res := &Result{Registry: reg}

	var hashes []string
	var patches []*Patch
	for _, dir := range dirs {
		dr, err := s.Scan(ctx, dir)
		if err != nil {
			return nil, err
		}
		reg.Add(dr.Mods...)
		patches = append(patches, dr.Patches...)
		res.Problems = append(res.Problems, dr.Problems...)
		hashes = append(hashes, dr.hashes...)
	}
	for _, p := range patches {
		if err := reg.Apply(p); err != nil {
			res.Problems = append(res.Problems, err)
		}
	}

	start := time.Now()
	res.Tree = reg.Tree()
	unavailable := 0
	for _, k := range res.Tree.Keys() {
		if !res.Tree.IsAvailable(k) {
			unavailable++
		}
	}
	observability.Load().OnTreeBuilt(ctx, res.Tree.Len(), unavailable, time.Since(start))

	var buf bytes.Buffer
	w := json.NewWriter(&buf, false)
	w.Write(hashes)
	w.Write(reg.replacements)
	_ = w.Flush()
	res.Hash = cache.Hash(buf.Bytes())
	return res, nil
}

// Resolve returns the load order for selected, reusing a cached order for
// the same manifests when one exists. Obsolete ids are rewritten first.
func (s *Scanner) Resolve(ctx context.Context, res *Result, selected []string) ([]string, error) {
	selected, _ = res.Registry.Replace(selected)
	key := s.keyer().TreeKey(res.Hash, selected)
	c := s.cache()
	hooks := observability.Cache()

	if enc, ok, err := c.Get(ctx, key); err == nil && ok {
		var order []string
		if json.NewReader(enc, json.WithStrict(false)).Read(&order) == nil {
			hooks.OnCacheHit(ctx, "order")
			return order, nil
		}
	}
	hooks.OnCacheMiss(ctx, "order")

	order, err := res.Tree.Resolve(selected)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := json.NewWriter(&buf, false)
	w.Write(order)
	if w.Flush() == nil && c.Set(ctx, key, buf.Bytes(), s.TTL) == nil {
		hooks.OnCacheSet(ctx, "order", buf.Len())
	}
	return order, nil
}
