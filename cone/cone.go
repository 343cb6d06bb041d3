package cone

import (
	"sort"

	"github.com/go-satpg/satpg/gate"
)

// Cone is the Node Set built around a single fault site (spec §4.C): the
// transitive fanout (the gates the fault's effect can propagate through)
// and the transitive fanin of that fanout (every gate whose value the CNF
// Builder must model to justify and sensitize a test).
type Cone struct {
	Site gate.NodeID

	// TFO holds the fault site's transitive fanout in BFS (non-decreasing
	// distance from Site) order, Site itself included.
	TFO []gate.NodeID
	tfo map[gate.NodeID]bool

	// POs holds the indices (gate.Graph.Outputs() position) of every
	// primary output reachable through TFO, ordered ascending by each
	// output's precomputed TFI-cone size so output-at-a-time engines
	// attack narrow cones first. The fault is untestable if this is
	// empty.
	POs []int

	// PIs holds every primary input in the cone's support, in support
	// sweep order — the domain of any test vector for this fault.
	PIs []gate.NodeID

	// Support holds TFI(TFO), i.e. every node (including TFO itself and
	// every PI feeding it) the CNF Builder must encode to both justify the
	// fault site and sensitize a path to a member of POs.
	Support []gate.NodeID
	support map[gate.NodeID]bool
}

// InTFO reports whether id is within the fault site's transitive fanout.
func (c *Cone) InTFO(id gate.NodeID) bool { return c.tfo[id] }

// InSupport reports whether id must be modeled by the CNF Builder for
// this cone.
func (c *Cone) InSupport(id gate.NodeID) bool { return c.support[id] }

// Build computes the Node Set for site (spec §4.C). g must already have
// had ActivateAll or the relevant ActivatePO called if callers intend to
// cross-check against g's active set; Build itself does not consult
// g.Node(id).Active, since a fault's TFO can include currently-inactive
// gates the strategy has not yet scheduled.
func Build(g *gate.Graph, site gate.NodeID, opts ...Option) (*Cone, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if g.Node(site) == nil {
		return nil, ErrUnknownSite
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cone{
		Site:    site,
		tfo:     make(map[gate.NodeID]bool),
		support: make(map[gate.NodeID]bool),
	}

	// Forward BFS: TFO.
	type item struct {
		id    gate.NodeID
		depth int
	}
	queue := []item{{site, 0}}
	c.tfo[site] = true
	for len(queue) > 0 {
		select {
		case <-o.ctx.Done():
			return nil, o.ctx.Err()
		default:
		}
		cur := queue[0]
		queue = queue[1:]
		c.TFO = append(c.TFO, cur.id)
		o.onTFO(int(cur.id), cur.depth)

		n := g.Node(cur.id)
		if n.Kind == gate.PrimaryOutput {
			c.POs = append(c.POs, n.OutputIndex())
		}
		if o.maxTFO > 0 && cur.depth >= o.maxTFO {
			continue
		}
		for _, fo := range n.Fanout {
			if !c.tfo[fo] {
				c.tfo[fo] = true
				queue = append(queue, item{fo, cur.depth + 1})
			}
		}
	}
	sort.SliceStable(c.POs, func(i, j int) bool {
		return g.TFISizeRank(c.POs[i]) < g.TFISizeRank(c.POs[j])
	})

	// Backward multi-source BFS from every TFO member: Support = TFI(TFO).
	bqueue := make([]item, 0, len(c.TFO))
	for _, id := range c.TFO {
		if !c.support[id] {
			c.support[id] = true
			bqueue = append(bqueue, item{id, 0})
		}
	}
	for len(bqueue) > 0 {
		select {
		case <-o.ctx.Done():
			return nil, o.ctx.Err()
		default:
		}
		cur := bqueue[0]
		bqueue = bqueue[1:]
		c.Support = append(c.Support, cur.id)
		o.onTFI(int(cur.id), cur.depth)

		n := g.Node(cur.id)
		if n.Kind == gate.PrimaryInput {
			c.PIs = append(c.PIs, cur.id)
		}
		if o.maxTFI > 0 && cur.depth >= o.maxTFI {
			continue
		}
		for _, fi := range n.Fanin {
			if !c.support[fi] {
				c.support[fi] = true
				bqueue = append(bqueue, item{fi, cur.depth + 1})
			}
		}
	}

	return c, nil
}
