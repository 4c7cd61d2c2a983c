package deptree

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	errs "github.com/matzehuels/modkit/pkg/errors"
)

// Tree owns the nodes of a dependency graph keyed by mod id.
//
// A Tree is not safe for concurrent mutation. Once [Tree.Init] returns it
// may be queried from several goroutines.
type Tree struct {
	nodes map[string]*Node
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// Init replaces the tree's contents with the graph described by deps
// (mod id to the ids it depends on) and conflicts (mod id to the ids it
// conflicts with), then runs cycle detection, error inheritance and
// conflict detection.
func (t *Tree) Init(deps, conflicts map[string][]string) {
	t.Clear()
	for key := range deps {
		t.nodes[key] = newNode(key)
	}

	for _, key := range slices.Sorted(maps.Keys(deps)) {
		n := t.nodes[key]
		for _, dep := range deps[key] {
			if p, ok := t.nodes[dep]; ok {
				n.AddParent(p)
			} else {
				n.addError(Missing, "["+dep+"]")
			}
		}
	}

	for _, key := range slices.Sorted(maps.Keys(conflicts)) {
		n, ok := t.nodes[key]
		if !ok {
			continue
		}
		for _, other := range conflicts[key] {
			if c, ok := t.nodes[other]; ok {
				n.AddConflict(c)
				c.AddConflict(n)
			}
		}
	}

	t.detectCycles()
	for _, n := range t.sorted() {
		n.inheritErrors()
	}
	t.detectConflicts()
}

// Clear removes every node.
func (t *Tree) Clear() {
	if t.nodes == nil {
		t.nodes = make(map[string]*Node)
	}
	clear(t.nodes)
}

// Node returns the node for key, or nil.
func (t *Tree) Node(key string) *Node { return t.nodes[key] }

// Keys returns all mod ids in sorted order.
func (t *Tree) Keys() []string { return slices.Sorted(maps.Keys(t.nodes)) }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// IsAvailable reports whether key is known and has no errors.
func (t *Tree) IsAvailable(key string) bool {
	n := t.nodes[key]
	return n != nil && n.IsAvailable()
}

// DependenciesOf returns [Node.Dependencies] for key, or nil when unknown.
func (t *Tree) DependenciesOf(key string) []string {
	if n := t.nodes[key]; n != nil {
		return n.Dependencies()
	}
	return nil
}

// DependencyNodesOf returns [Node.DependencyNodes] for key, or nil when
// unknown.
func (t *Tree) DependencyNodesOf(key string) []*Node {
	if n := t.nodes[key]; n != nil {
		return n.DependencyNodes()
	}
	return nil
}

// DependentsOf returns [Node.Dependents] for key, or nil when unknown.
func (t *Tree) DependentsOf(key string) []string {
	if n := t.nodes[key]; n != nil {
		return n.Dependents()
	}
	return nil
}

// DependentNodesOf returns [Node.DependentNodes] for key, or nil when
// unknown.
func (t *Tree) DependentNodesOf(key string) []*Node {
	if n := t.nodes[key]; n != nil {
		return n.DependentNodes()
	}
	return nil
}

// Resolve returns a load order for selected: each mod appears once, after
// everything it depends on. Selected mods keep their relative order where
// dependencies allow. Unknown or unavailable mods are errors.
func (t *Tree) Resolve(selected []string) ([]string, error) {
	var bad []string
	for _, key := range selected {
		n := t.nodes[key]
		if n == nil {
			return nil, errs.New(errs.ErrCodeModNotFound, "mod %q is not installed", key)
		}
		if !n.IsAvailable() {
			bad = append(bad, fmt.Sprintf("%s: %s", key, strings.ReplaceAll(n.ErrorString(), "\n", "; ")))
		}
	}
	if len(bad) > 0 {
		return nil, errs.New(errs.ErrCodeGraph, "unavailable mods:\n  %s", strings.Join(bad, "\n  "))
	}

	var order []string
	placed := make(map[string]bool)
	var place func(n *Node)
	place = func(n *Node) {
		if placed[n.Key] {
			return
		}
		placed[n.Key] = true
		for _, p := range n.parents {
			place(p)
		}
		order = append(order, n.Key)
	}
	for _, key := range selected {
		place(t.nodes[key])
	}
	return order, nil
}

func (t *Tree) sorted() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, key := range t.Keys() {
		out = append(out, t.nodes[key])
	}
	return out
}

// detectConflicts reports, for every node, each pair of mods in its
// dependency set where one conflicts with the other. Pairs are reported
// once, ordered by key.
func (t *Tree) detectConflicts() {
	byKey := func(a, b *Node) int { return strings.Compare(a.Key, b.Key) }
	for _, n := range t.sorted() {
		deps := n.DependencyNodes()
		slices.SortFunc(deps, byKey)
		rank := make(map[*Node]int, len(deps))
		for i, dep := range deps {
			rank[dep] = i
		}
		for i, dep := range deps {
			conflicts := slices.Clone(dep.conflicts)
			slices.SortFunc(conflicts, byKey)
			for _, other := range conflicts {
				if j, ok := rank[other]; ok && j > i {
					n.addError(Conflicting, fmt.Sprintf("[%s] with [%s]", dep.Key, other.Key))
				}
			}
		}
	}
}
