// Package atpg is a SAT-based automatic test pattern generator for
// stuck-at faults in combinational gate-level netlists.
//
// A netlist is parsed and lowered into a gate.Graph over the elementary
// gate alphabet (PI, PO, Buf, Not, And, Nand, Or, Nor, Xor, Xnor); every
// stuck-at-0/1 defect at a gate output or fanin pin is enumerated and
// collapsed into equivalence classes by fault.DB; and engine.Driver
// drives one of several SAT-based strategies (single-fault, k-detect,
// output-partitioned, per-FFR, per-MFFC, or fully concurrent) that each
// build a CNF instance over the fault's cone — good circuit, faulty
// circuit, and a D-chain difference plane — and hand a satisfying model
// to backtrace.Tracer for compaction into a three-valued test vector.
//
// The top-level packages are:
//
//	gate/      — elementary gate graph: topological order, activation,
//	             dominators, fanout-free regions and MFFCs
//	fault/     — fault enumeration, equivalence collapsing, lifecycle
//	cone/      — transitive fanout / support cone construction
//	cnf/       — good/faulty/D-chain CNF encoding
//	sat/       — narrow SAT solver interface, gini-backed implementation
//	imply/     — ternary implication engine for pre-SAT mandatory
//	             assignment pruning
//	backtrace/ — SAT model compaction into don't-care test vectors
//	hook/      — Detect/Untest callback protocol
//	netlist/   — declarative netlist-to-gate.Graph loader
//	engine/    — the ATPG strategies themselves, plus spec §5's
//	             errgroup-based output-partitioned parallel wrapper
//
// This root package holds only the error-kind umbrella (errors.go) that
// lets a caller classify any error surfaced by the packages above
// without importing each one's sentinels directly.
package atpg
