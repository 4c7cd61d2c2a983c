package deptree

// tarjan finds strongly connected components over parent edges without
// recursion. Components come out in the order the classic recursive
// formulation emits them, members in stack pop order.
type tarjan struct {
	next       int
	stack      []*Node
	components [][]*Node
}

type frame struct {
	n    *Node
	edge int
}

func (tj *tarjan) push(n *Node) {
	n.index = tj.next
	n.lowlink = tj.next
	tj.next++
	tj.stack = append(tj.stack, n)
	n.onStack = true
}

func (tj *tarjan) connect(root *Node) {
	tj.push(root)
	calls := []frame{{n: root}}

	for len(calls) > 0 {
		top := &calls[len(calls)-1]
		n := top.n
		if top.edge < len(n.parents) {
			p := n.parents[top.edge]
			top.edge++
			switch {
			case p.index < 0:
				tj.push(p)
				calls = append(calls, frame{n: p})
			case p.onStack:
				n.lowlink = min(n.lowlink, p.index)
			}
			continue
		}

		calls = calls[:len(calls)-1]
		if n.lowlink == n.index {
			tj.pop(n)
		}
		if len(calls) > 0 {
			caller := calls[len(calls)-1].n
			caller.lowlink = min(caller.lowlink, n.lowlink)
		}
	}
}

func (tj *tarjan) pop(root *Node) {
	var scc []*Node
	for {
		d := tj.stack[len(tj.stack)-1]
		tj.stack = tj.stack[:len(tj.stack)-1]
		d.onStack = false
		scc = append(scc, d)
		if d == root {
			break
		}
	}
	tj.components = append(tj.components, scc)
}

// detectCycles marks every member of a component with more than one node
// with a cycle error listing the component as "/a/b/c/".
func (t *Tree) detectCycles() {
	nodes := t.sorted()
	for _, n := range nodes {
		n.index, n.lowlink, n.onStack = -1, -1, false
	}

	var tj tarjan
	for _, n := range nodes {
		if n.index < 0 {
			tj.connect(n)
		}
	}

	for _, scc := range tj.components {
		if len(scc) <= 1 {
			continue
		}
		msg := "/"
		for _, n := range scc {
			msg += n.Key + "/"
		}
		for _, n := range scc {
			n.addError(Cyclic, msg)
		}
	}
}
