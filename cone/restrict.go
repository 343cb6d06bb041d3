package cone

import "github.com/go-satpg/satpg/gate"

// RestrictToPO returns a new Cone containing only the members of c that
// lie in primary output poIdx's precomputed TFI bitmap (spec §4.A
// "in_tfi_of(po_k) is O(1)"). Used by the PO-partitioned engine (spec
// §4.E "Output-partitioned engine (S2/M2)") to narrow a fault's full cone
// down to the region relevant to one primary output at a time without
// touching g's Active/Dominator scratch state, so callers may restrict
// cones for several POs — even concurrently across goroutines each
// holding their own Engine (spec §5) — without any shared mutation.
// The result's POs list contains exactly poIdx (or is empty if the fault
// site does not reach it, which callers should never hit since they
// iterate over c's own POs list).
func RestrictToPO(c *Cone, g *gate.Graph, poIdx int) *Cone {
	nc := &Cone{
		Site:    c.Site,
		tfo:     make(map[gate.NodeID]bool),
		support: make(map[gate.NodeID]bool),
	}
	for _, id := range c.TFO {
		if !g.InTFIOf(id, poIdx) {
			continue
		}
		n := g.Node(id)
		nc.TFO = append(nc.TFO, id)
		nc.tfo[id] = true
		if n.Kind == gate.PrimaryOutput {
			nc.POs = append(nc.POs, n.OutputIndex())
		}
	}
	for _, id := range c.Support {
		if g.InTFIOf(id, poIdx) {
			nc.Support = append(nc.Support, id)
			nc.support[id] = true
			if g.Node(id).Kind == gate.PrimaryInput {
				nc.PIs = append(nc.PIs, id)
			}
		}
	}
	return nc
}
