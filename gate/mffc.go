package gate

// FFRRoots returns every fanout stem: a node whose fanout count is not
// exactly one (so it is either a primary output, or an internal node with
// zero or two-or-more fanouts). Each stem is the root of exactly one
// fanout-free region (spec GLOSSARY "FFR").
func (g *Graph) FFRRoots() []NodeID {
	var roots []NodeID
	for _, id := range g.topo {
		n := g.nodes[id]
		if n.Kind == PrimaryOutput || len(n.Fanout) != 1 {
			roots = append(roots, id)
		}
	}
	return roots
}

// FFRNodes returns root together with every internal predecessor reached
// by walking fanins through single-fanout nodes only — the maximal
// fanout-free region rooted at root.
func (g *Graph) FFRNodes(root NodeID) []NodeID {
	members := []NodeID{root}
	var walk func(NodeID)
	walk = func(id NodeID) {
		for _, f := range g.nodes[id].Fanin {
			fn := g.nodes[f]
			if fn.Kind == PrimaryInput {
				continue
			}
			if len(fn.Fanout) == 1 {
				members = append(members, f)
				walk(f)
			}
		}
	}
	walk(root)
	return members
}

// MFFCRoots returns the roots of every maximal fanout-free cone (spec
// GLOSSARY "MFFC"): every fanout stem is a candidate MFFC root. Requires
// the graph to already be activated (ActivateAll, ordinarily) so
// Dominator is populated; MFFC membership is read off the dominator tree.
func (g *Graph) MFFCRoots() []NodeID {
	var roots []NodeID
	for _, id := range g.activeOrder {
		n := g.nodes[id]
		if n.Kind == PrimaryOutput || len(n.Fanout) != 1 {
			roots = append(roots, id)
		}
	}
	return roots
}

// MFFC returns every active node dominated by root (inclusive): the
// maximal fanout-free cone whose apex is root. A node m belongs iff every
// active path from m to an active primary output passes through root,
// which the dominator tree answers directly by chain membership.
func (g *Graph) MFFC(root NodeID) []NodeID {
	var members []NodeID
	for _, id := range g.activeOrder {
		if g.dominatedBy(root, id) {
			members = append(members, id)
		}
	}
	return members
}

// dominatedBy reports whether root appears on n's dominator chain
// (root itself counts as dominating itself).
func (g *Graph) dominatedBy(root, n NodeID) bool {
	for cur := n; cur != noNode; cur = g.nodes[cur].Dominator {
		if cur == root {
			return true
		}
	}
	return root == n
}
