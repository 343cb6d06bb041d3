package gate

// ActivatePO restricts "active" to the transitive fanin of primary output
// index k (spec §4.A), rebuilds the active-order array, and recomputes
// immediate dominators for the new scope (DESIGN.md Open Question #2:
// dominators are never reused across activations).
func (g *Graph) ActivatePO(k int) error {
	if k < 0 || k >= len(g.pos) {
		return ErrNoSuchOutput
	}
	g.deactivateAll()
	bs := g.tfiByPO[k]
	var active []NodeID
	for _, id := range g.topo {
		if bs.test(int(id)) {
			g.nodes[id].Active = true
			active = append(active, id)
		}
	}
	g.activeOrder = active
	g.computeDominators()
	return nil
}

// ActivateAll marks every node active, the graph-wide cone (spec §4.A).
func (g *Graph) ActivateAll() {
	g.deactivateAll()
	g.activeOrder = append([]NodeID(nil), g.topo...)
	for _, id := range g.activeOrder {
		g.nodes[id].Active = true
	}
	g.computeDominators()
}

func (g *Graph) deactivateAll() {
	for _, id := range g.activeOrder {
		n := g.nodes[id]
		n.Active = false
		n.Dominator = noNode
	}
	g.activeOrder = nil
}

// ActiveOrder returns the currently active nodes in topological order.
// Valid only between an Activate* call and the next.
func (g *Graph) ActiveOrder() []NodeID { return g.activeOrder }

// computeDominators runs the reverse-topological iterated-meet pass over
// the currently active nodes (spec §4.A). A node's dominator is the
// nearest active node through which every active path to any active
// primary output must pass; primary outputs have no active fanout and
// their dominator is always noNode (spec: "NULL for outputs").
//
// Grounded on the Cooper-Harvey-Kennedy iterative intersection algorithm,
// adapted so the processing order is the graph's own topological rank
// (reversed) rather than a separately computed reverse-postorder number —
// the rank is already a total order because topoSort breaks same-level
// ties by larger-id-wins (spec's "ties broken by larger-id-wins").
func (g *Graph) computeDominators() {
	rank := make(map[NodeID]int, len(g.activeOrder))
	for i, id := range g.activeOrder {
		rank[id] = i
	}
	// Process from the POs backward toward the PIs: reverse of
	// activeOrder, since activeOrder is PI-to-PO topological.
	for i := len(g.activeOrder) - 1; i >= 0; i-- {
		id := g.activeOrder[i]
		node := g.nodes[id]
		if node.Kind == PrimaryOutput {
			node.Dominator = noNode
			continue
		}
		var idom NodeID = noNode
		have := false
		for _, fo := range node.Fanout {
			fn := g.nodes[fo]
			if !fn.Active {
				continue
			}
			if !have {
				idom = fo
				have = true
				continue
			}
			idom = intersectDom(idom, fo, g, rank)
		}
		if have {
			node.Dominator = idom
		} else {
			node.Dominator = noNode
		}
	}
}

// intersectDom walks two dominator-chain candidates toward the outputs
// until they meet. rank is the node's position in the PI-to-PO topological
// order, so walking a chain via Dominator strictly increases rank; the
// finger with the smaller rank (farther from the active outputs) is the
// one stepped forward on each round, the two-finger walk spec §4.A
// describes. Returns noNode if the chains never converge (possible under
// ActivateAll when two nodes feed disjoint output trees with no shared
// descendant).
func intersectDom(a, b NodeID, g *Graph, rank map[NodeID]int) NodeID {
	for a != b {
		if a == noNode || b == noNode {
			return noNode
		}
		for rank[a] < rank[b] {
			a = g.nodes[a].Dominator
			if a == noNode {
				return noNode
			}
		}
		for rank[b] < rank[a] {
			b = g.nodes[b].Dominator
			if b == noNode {
				return noNode
			}
		}
	}
	return a
}
