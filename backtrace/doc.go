// Package backtrace projects a fault instance's satisfying assignment
// onto a three-valued primary-input test vector (spec §4.F), maximizing
// don't-cares so a downstream fault simulator can detect additional
// faults by coincidence.
//
// Three strategies share one factory: Simple copies the model's good
// value for every primary input in the cone; Just1 walks backward from
// an observing output along the sensitized path, justifying each gate's
// value through one sufficient controlling fanin (all fanins at XOR),
// the greedy justification loop grounded on fyerfyer-fan-atpg's
// circuit.go backward objective propagation; Just2 runs the same walk
// twice, first counting how often each node is demanded, then preferring
// controlling fanins already required by another path, a cheap cousin
// of the FAN algorithm's multiple-backtrace counting, which trims the
// assigned set further than Just1.
//
// Every assigned bit comes verbatim from the SAT model; the strategies
// only choose which bits to keep, never invent values.
package backtrace
