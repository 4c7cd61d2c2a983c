// Package pkg provides the core libraries of modkit, a toolkit for game mod
// manifests and the dependency graph between mods.
//
// # Overview
//
// Mods ship a modinfo.json manifest naming their dependencies and
// conflicts. modkit reads those manifests with a position-tracking JSON
// reader, builds a dependency tree that records why each mod cannot be
// activated, and resolves load orders. The pkg directory is organized into
// three areas:
//
//  1. Data formats - [json] and [json/typed] (streaming JSON with positioned
//     errors, member merge directives)
//  2. Domain logic - [deptree] and [modinfo] (availability analysis, the mod
//     registry and manifest scanning)
//  3. Infrastructure - [cache], [observability], [httputil], [errors],
//     [render/nodelink] and [buildinfo]
//
// # Architecture
//
// The typical data flow through modkit:
//
//	modinfo.json files
//	         ↓
//	    [json] Reader (positioned errors, strict member checks)
//	         ↓
//	    [modinfo] Scanner (MOD_INFO and MOD_PATCH objects, cached by content hash)
//	         ↓
//	    [modinfo] Registry (overrides, patches, obsolete-id replacements)
//	         ↓
//	    [deptree] Tree (missing, conflicting and cyclic dependencies)
//	         ↓
//	    load order, tables, DOT/SVG graphs, HTTP API
//
// # Quick Start
//
// Load every mod under a directory and resolve a load order:
//
//	s := &modinfo.Scanner{Cache: cache.NewNullCache()}
//	res, err := s.Load(ctx, []string{"data/mods"}, nil)
//	if err != nil {
//	    return err
//	}
//	for _, id := range res.Tree.Keys() {
//	    if n := res.Tree.Node(id); !n.IsAvailable() {
//	        fmt.Printf("%s:\n%s\n", id, n.ErrorString())
//	    }
//	}
//	order, err := s.Resolve(ctx, res, []string{"aftershock"})
//
// # Main Packages
//
// [json] - Streaming JSON reader and writer. Errors carry the file, line and
// column plus surrounding source lines. Objects and arrays are scanned once
// and decoded on demand; in strict mode members nobody read are reported.
//
// [json/typed] - Loading of object members with extend, delete, relative and
// proportional directives, used when a patch modifies an existing mod.
//
// [deptree] - The dependency tree. Nodes inherit errors from everything they
// depend on, so a mod is available only when its whole closure is.
//
// [modinfo] - Mod manifests, the category table, the registry, mod lists and
// the caching directory scanner.
//
// [cache] - Key-value cache with file, Redis and null backends.
//
// [render/nodelink] - Graphviz DOT output and in-process SVG/PNG rendering.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/json/...       # Specific package
//	go test -run Example ./...   # Examples only
//
// Redis tests run only when MODKIT_REDIS_ADDR is set.
//
// [json]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/json
// [json/typed]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/json/typed
// [deptree]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/deptree
// [modinfo]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/modinfo
// [cache]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/errors
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/render/nodelink
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/modkit/pkg/buildinfo
package pkg
