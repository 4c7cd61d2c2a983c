package deptree

import (
	"slices"
	"strings"
)

// ErrorKind classifies the problems a node can accumulate.
type ErrorKind int

const (
	// Missing marks a dependency on a mod that is not in the tree.
	Missing ErrorKind = iota
	// Conflicting marks two conflicting mods in the dependency set.
	Conflicting
	// Cyclic marks membership in a dependency cycle.
	Cyclic

	numKinds
)

var prefixes = [numKinds]string{
	Missing:     "Missing Dependency(ies): ",
	Conflicting: "Has conflicting dependencies: ",
	Cyclic:      "Has dependency cycle(s): ",
}

// Prefix returns the summary line prefix for the kind.
func (k ErrorKind) Prefix() string {
	if k < 0 || k >= numKinds {
		return ""
	}
	return prefixes[k]
}

func (k ErrorKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Conflicting:
		return "conflicting"
	case Cyclic:
		return "cyclic"
	default:
		return "unknown"
	}
}

// Node is one mod in a [Tree].
//
// Parent and child links are always kept in pairs: [Node.AddParent] also
// records the receiver as a child of the parent.
type Node struct {
	Key string

	parents   []*Node
	children  []*Node
	conflicts []*Node
	errors    [numKinds][]string

	// Tarjan bookkeeping, reset by every detection run.
	index   int
	lowlink int
	onStack bool
}

func newNode(key string) *Node {
	return &Node{Key: key, index: -1, lowlink: -1}
}

// Parents returns the direct dependencies in declaration order.
func (n *Node) Parents() []*Node { return n.parents }

// Children returns the direct dependents.
func (n *Node) Children() []*Node { return n.children }

// Conflicts returns the mods this one conflicts with.
func (n *Node) Conflicts() []*Node { return n.conflicts }

// AddParent records that n depends on p.
func (n *Node) AddParent(p *Node) {
	n.parents = append(n.parents, p)
	p.children = append(p.children, n)
}

// AddChild records that c depends on n.
func (n *Node) AddChild(c *Node) { c.AddParent(n) }

// AddConflict records a conflict with c. Duplicates are ignored. The
// relation is not mirrored; [Tree.Init] registers both directions.
func (n *Node) AddConflict(c *Node) {
	if !slices.Contains(n.conflicts, c) {
		n.conflicts = append(n.conflicts, c)
	}
}

func (n *Node) addError(kind ErrorKind, msg string) {
	n.errors[kind] = append(n.errors[kind], msg)
}

// IsAvailable reports whether neither the node nor anything it depends on
// has errors.
func (n *Node) IsAvailable() bool { return !n.HasErrors() }

// HasErrors reports whether any error was recorded.
func (n *Node) HasErrors() bool {
	for _, list := range n.errors {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

// Errors returns a copy of the recorded errors by kind. Kinds without
// errors are omitted.
func (n *Node) Errors() map[ErrorKind][]string {
	out := make(map[ErrorKind][]string)
	for kind, list := range n.errors {
		if len(list) > 0 {
			out[ErrorKind(kind)] = slices.Clone(list)
		}
	}
	return out
}

// ErrorString renders the errors as one line per kind, in the order
// missing, conflicting, cyclic.
func (n *Node) ErrorString() string {
	var lines []string
	for kind, list := range n.errors {
		if len(list) == 0 {
			continue
		}
		lines = append(lines, ErrorKind(kind).Prefix()+strings.Join(list, ", "))
	}
	return strings.Join(lines, "\n")
}

// inheritErrors merges the errors of every transitive dependency into n.
// Ancestors are walked with an explicit stack; each one is expanded at most
// once, but its errors are merged every time it is reached.
func (n *Node) inheritErrors() {
	stack := slices.Clone(n.parents)
	visited := map[string]bool{n.Key: true}

	for len(stack) > 0 {
		check := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for kind, list := range check.errors {
			for _, msg := range list {
				if !slices.Contains(n.errors[kind], msg) {
					n.errors[kind] = append(n.errors[kind], msg)
				}
			}
		}
		if visited[check.Key] {
			continue
		}
		stack = append(stack, check.parents...)
		visited[check.Key] = true
	}
}

// =============================================================================
// Traversal
// =============================================================================

// DependencyNodes returns every transitive dependency of n, without n
// itself, in reverse discovery order.
func (n *Node) DependencyNodes() []*Node {
	found := walk(n, (*Node).Parents)
	slices.Reverse(found)
	return found
}

// Dependencies returns the keys of [Node.DependencyNodes].
func (n *Node) Dependencies() []string { return keys(n.DependencyNodes()) }

// DependentNodes returns every transitive dependent of n, without n itself,
// in discovery order.
func (n *Node) DependentNodes() []*Node { return walk(n, (*Node).Children) }

// Dependents returns the keys of [Node.DependentNodes].
func (n *Node) Dependents() []string { return keys(n.DependentNodes()) }

// walk collects the nodes reachable from start through next, depth first,
// each node once. Cycles terminate because start and every collected node
// are marked found.
func walk(start *Node, next func(*Node) []*Node) []*Node {
	var out []*Node
	stack := slices.Clone(next(start))
	found := map[string]bool{start.Key: true}

	for len(stack) > 0 {
		check := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if found[check.Key] {
			continue
		}
		out = append(out, check)
		stack = append(stack, next(check)...)
		found[check.Key] = true
	}
	return out
}

func keys(nodes []*Node) []string {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Key
	}
	return out
}
