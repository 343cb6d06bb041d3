package gate

import (
	"fmt"
	"sort"
)

// Graph is the normalized DAG of elementary gates (spec §3/§4.A). It owns
// all Node storage for the lifetime of a netlist; Activate* calls only
// mutate the Active/Dominator scratch fields and the active-order slice.
type Graph struct {
	nodes  map[NodeID]*Node
	pis    []NodeID
	pos    []NodeID
	topo   []NodeID // all nodes, topological, assigned once at Build
	maxID  int

	activeOrder []NodeID // active nodes, topological; rebuilt per Activate*

	tfiByPO    []bitset // tfiByPO[k] has bit n set iff node n is in PO k's TFI
	tfiSize    []int    // tfiByPO[k] population count, precomputed at Build
	sizeRank   []int    // PO index -> rank when sorted ascending by tfiSize
}

// Builder assembles a Graph from a flat, already-lowered gate list (spec
// §6: "Kind is from the elementary alphabet; complex cells must be
// pre-lowered by the loader"). One Builder constructs exactly one Graph.
type Builder struct {
	g       *Graph
	nextID  NodeID
	pending map[NodeID][]NodeID // node -> fanins, recorded before fanout lists exist
}

// NewBuilder starts a fresh, empty graph under construction.
func NewBuilder() *Builder {
	return &Builder{
		g: &Graph{
			nodes: make(map[NodeID]*Node),
		},
		pending: make(map[NodeID][]NodeID),
	}
}

func (b *Builder) alloc(kind Kind, name string) NodeID {
	id := b.nextID
	b.nextID++
	b.g.nodes[id] = &Node{ID: id, Kind: kind, Name: name, Dominator: noNode}
	return id
}

// AddInput creates a PrimaryInput node and returns its id.
func (b *Builder) AddInput(name string) NodeID {
	id := b.alloc(PrimaryInput, name)
	b.g.pis = append(b.g.pis, id)
	return id
}

// AddGate creates an internal elementary-alphabet node with the given,
// order-stable fanin list. Fanin index stability is load-bearing (spec
// §3): callers must never reorder this slice's meaning afterward.
func (b *Builder) AddGate(name string, kind Kind, fanins ...NodeID) (NodeID, error) {
	if kind == PrimaryInput || kind == PrimaryOutput {
		return 0, fmt.Errorf("gate: AddGate: %w: %s is not an internal kind", ErrBadArity, kind)
	}
	if err := checkArity(kind, len(fanins)); err != nil {
		return 0, err
	}
	id := b.alloc(kind, name)
	fanin := append([]NodeID(nil), fanins...)
	b.g.nodes[id].Fanin = fanin
	b.pending[id] = fanin
	return id, nil
}

// AddOutput creates a PrimaryOutput node driven by driver and returns its
// id. Output index is assigned in call order.
func (b *Builder) AddOutput(name string, driver NodeID) (NodeID, error) {
	if _, ok := b.g.nodes[driver]; !ok {
		return 0, fmt.Errorf("gate: AddOutput %q: %w (driver=%d)", name, ErrDanglingFanin, driver)
	}
	id := b.alloc(PrimaryOutput, name)
	node := b.g.nodes[id]
	node.Fanin = []NodeID{driver}
	node.outputIdx = len(b.g.pos)
	b.g.pos = append(b.g.pos, id)
	b.pending[id] = node.Fanin
	return id, nil
}

func checkArity(kind Kind, n int) error {
	switch kind {
	case Buf, Not:
		if n != 1 {
			return fmt.Errorf("gate: %w: %s wants 1 fanin, got %d", ErrBadArity, kind, n)
		}
	case And, Nand, Or, Nor, Xor, Xnor:
		if n < 2 {
			return fmt.Errorf("gate: %w: %s wants >=2 fanins, got %d", ErrBadArity, kind, n)
		}
	default:
		return fmt.Errorf("gate: %w: unrecognized kind %s", ErrBadArity, kind)
	}
	return nil
}

// Build validates fanins, computes fanout lists, assigns a topological
// order and per-node levels, and precomputes each primary output's TFI
// bitmap and TFI size. It returns ErrDanglingFanin or ErrCycle for a
// malformed netlist (spec §4.A "Failure semantics").
func (b *Builder) Build() (*Graph, error) {
	g := b.g
	g.maxID = int(b.nextID) - 1

	// Validate fanins reference known nodes, and populate fanout lists.
	for id, fanins := range b.pending {
		for _, f := range fanins {
			fn, ok := g.nodes[f]
			if !ok {
				return nil, fmt.Errorf("gate: node %d: %w (fanin=%d)", id, ErrDanglingFanin, f)
			}
			fn.Fanout = append(fn.Fanout, id)
		}
	}

	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}
	g.topo = order
	for _, id := range order {
		g.nodes[id].Level = levelOf(g, id)
	}

	g.precomputeTFI()

	return g, nil
}

// levelOf is the longest-path distance from any primary input; nodes are
// processed in topological order so every fanin's level is already final.
func levelOf(g *Graph, id NodeID) int {
	node := g.nodes[id]
	if node.Kind == PrimaryInput {
		return 0
	}
	max := 0
	for _, f := range node.Fanin {
		if l := g.nodes[f].Level; l+1 > max {
			max = l + 1
		}
	}
	return max
}

// topoSort computes a topological order of all nodes by Kahn's algorithm,
// breaking ties among simultaneously-ready nodes by larger-id-first so the
// order (and everything ranked from it, including dominator computation's
// two-finger walk) is deterministic (spec §4.A "two-finger walk... ties
// broken by larger-id-wins").
func topoSort(g *Graph) ([]NodeID, error) {
	indeg := make(map[NodeID]int, len(g.nodes))
	for id, n := range g.nodes {
		indeg[id] = len(n.Fanin)
	}
	var ready []NodeID
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	order := make([]NodeID, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] > ready[j] })
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, fo := range g.nodes[id].Fanout {
			indeg[fo]--
			if indeg[fo] == 0 {
				ready = append(ready, fo)
			}
		}
	}
	if len(order) != len(g.nodes) {
		return nil, ErrCycle
	}
	return order, nil
}

// precomputeTFI builds, for each primary output, a bitmap of every node in
// that output's transitive fanin, by a single backward stack-based walk
// per PO, and
// records the TFI size used later to sort cones by ascending cone size
// (spec §4.C) and to expose OutputsBySize (SPEC_FULL supplemented feature
// grounded on original_source TpgNode::output_id2).
func (g *Graph) precomputeTFI() {
	g.tfiByPO = make([]bitset, len(g.pos))
	g.tfiSize = make([]int, len(g.pos))
	for k, po := range g.pos {
		bs := newBitset(g.maxID + 1)
		var stack []NodeID
		stack = append(stack, po)
		bs.set(int(po))
		size := 1
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, f := range g.nodes[n].Fanin {
				if !bs.test(int(f)) {
					bs.set(int(f))
					size++
					stack = append(stack, f)
				}
			}
		}
		g.tfiByPO[k] = bs
		g.tfiSize[k] = size
	}
	g.sizeRank = make([]int, len(g.pos))
	idx := make([]int, len(g.pos))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return g.tfiSize[idx[i]] < g.tfiSize[idx[j]] })
	for rank, poIdx := range idx {
		g.sizeRank[poIdx] = rank
	}
}

// InTFIOf reports whether node is in primary output po's (index into
// Outputs()) transitive fanin. O(1).
func (g *Graph) InTFIOf(node NodeID, po int) bool {
	return g.tfiByPO[po].test(int(node))
}

// Node returns the node with the given id, or nil if unknown.
func (g *Graph) Node(id NodeID) *Node { return g.nodes[id] }

// Inputs returns all primary input node ids in construction order.
func (g *Graph) Inputs() []NodeID { return g.pis }

// Outputs returns all primary output node ids in construction order.
func (g *Graph) Outputs() []NodeID { return g.pos }

// NumNodes returns the total node count (PI+PO+internal).
func (g *Graph) NumNodes() int { return len(g.nodes) }

// MaxNodeID returns the largest assigned node id, the bitmap allocation
// bound used throughout cone/CNF construction.
func (g *Graph) MaxNodeID() int { return g.maxID }

// Topological returns all nodes in topological order (PI-to-PO), the order
// fixed once at Build and never recomputed.
func (g *Graph) Topological() []NodeID { return g.topo }

// TFISizeRank returns primary output po's rank when all outputs are
// sorted ascending by precomputed TFI-cone size, the ordering key the
// Cone Builder uses for its output list (spec §4.C).
func (g *Graph) TFISizeRank(po int) int { return g.sizeRank[po] }

// OutputsBySize returns output indices ordered ascending by precomputed
// TFI-cone size (SPEC_FULL supplemented feature; spec §4.C requires this
// ordering of the Cone Builder's output list — this is the graph-level
// source that ordering is drawn from).
func (g *Graph) OutputsBySize() []int {
	idx := make([]int, len(g.pos))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return g.tfiSize[idx[i]] < g.tfiSize[idx[j]] })
	return idx
}
