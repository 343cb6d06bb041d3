// Package gate implements the design representation described in spec §4.A:
// a normalized DAG of elementary logic gates with explicit fault sites,
// topological ordering, per-output transitive-fanin bitmaps, and
// activation-scoped immediate dominators.
//
// The node storage is an id-keyed map filled through a Builder, and level
// assignment follows a Kahn's-algorithm topological sort (ties broken
// larger-id-first) with cycle detection. The per-fault-site
// bookkeeping and the reverse-topological immediate-dominator pass have
// no analogue in that traversal shape and are modeled directly on the
// node record this design descends from (imm_dom, output_id2).
//
// A Graph owns all Node storage for the lifetime of a netlist (see spec
// §3 Ownership); Activate* calls only flip the Active bit and recompute
// per-call scratch (active order, dominators) — they never reallocate
// Node storage.
package gate
