// Package fault implements the Fault Database of spec §4.B: enumeration
// of single stuck-at faults, structural fault collapsing, and per-fault
// status tracking.
//
// Grounded on original_source's FaultMgr.cc/TpgFault.h for the exact
// collapsing discipline: output-fault representative defaults to the
// single active fanout's corresponding input-pin fault (when a node has
// exactly one active fanout), then a node's own fanin faults are folded
// into its own output fault according to its gate kind (Buf/Not same- or
// inverted-polarity merge; And/Nand/Or/Nor controlling-value merge).
// Unlike the C++ original, which leaves rep pointers as an unflattened
// linked chain, this port resolves-with-path-compression at merge time
// (see mergeInto) so IsRep/Dominated are O(1) and the spec §8 invariant
// "status(r)=Detected ⇒ status(f)∈{Detected}" is trivial to enforce.
//
// Error/status style (sentinel errors, errors.Is) follows
// github.com/katalvlaran/lvlath's builder/errors.go.
package fault
