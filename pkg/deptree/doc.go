// Package deptree computes availability, load order and error summaries for
// a set of named mods that depend on and conflict with each other.
//
// # Overview
//
// A [Tree] is built from two adjacency maps keyed by mod id: what each mod
// depends on, and what each mod conflicts with. Only keys of the dependency
// map become nodes; a dependency on anything else is recorded as a missing
// dependency on the mod that declared it. Conflicts are symmetric and are
// registered on both sides.
//
//	t := deptree.New()
//	t.Init(
//	    map[string][]string{"core": nil, "music": {"core"}},
//	    map[string][]string{"music": {"silence"}},
//	)
//	t.IsAvailable("music") // true
//
// # Errors
//
// Graph problems never abort construction. They accumulate on each [Node]
// by [ErrorKind]:
//
//   - [Missing]: a declared dependency that is not in the tree, "[b]"
//   - [Conflicting]: two mods in the transitive dependency set that
//     conflict with each other, "[a] with [b]"
//   - [Cyclic]: the strongly connected component the node belongs to,
//     "/c/d/b/"
//
// After cycle detection every node inherits the errors of everything it
// transitively depends on, so a mod is available only when its whole
// dependency chain is clean. Conflict detection runs last and is not
// inherited. [Node.ErrorString] renders one line per kind:
//
//	Has conflicting dependencies: [a] with [c], [b] with [d]
//	Has dependency cycle(s): /d/c/b/a/
//
// # Traversal
//
// [Node.Dependencies] lists the transitive dependencies in reverse
// discovery order; [Node.Dependents] lists the transitive dependents in
// discovery order. [Tree.Resolve] produces a load order for a selection of
// mods with every dependency placed before the mods that need it.
//
// Construction visits keys in sorted order, so error text and traversal
// order are reproducible for identical input.
package deptree
