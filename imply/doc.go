// Package imply is the ternary (0, 1, X) implication engine of spec §4.G:
// forward simulation propagates assigned primary-input and fault-site
// values toward the outputs; backward justification pushes an assigned
// gate output back onto its unassigned inputs wherever the gate's kind
// makes that assignment mandatory (a controlling value, or all-but-one
// inputs already known). Running both passes to a fixpoint is cheaper
// than a full SAT solve and is used as the ATPG Engine's pre-filter (spec
// §4.E): a conflict after setting a fault's activation value proves the
// fault untestable without a SAT instance.
//
// Grounded on fyerfyer-fan-atpg's pkg/algorithm/implication.go (the
// ImplyValues forward/backward/fixpoint loop and its HasConflict check)
// and pkg/circuit/circuit.go (the ternary LogicValue alphabet and
// Evaluate truth tables this package's Value/eval mirror).
package imply
