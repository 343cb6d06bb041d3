// Package netlist is the flat gate-list loader of spec §6: callers issue
// input(name), gate(name, kind, fanin...), output(name, driver) calls in
// any order a real parser would naturally produce them (inputs and gates
// before the outputs that reference them is not required — Builder
// defers wiring until Finish), and get back a fully activated gate.Graph
// plus a fault.DB with enumeration and collapsing already run.
//
// Builder follows a single-orchestrating-entry-point shape: one
// resolving call (Finish) wraps a sequence of mutating declaration calls
// behind one returned error, and every sentinel is defined once at
// package scope and never wrapped with a formatted string at its
// definition site — only %w-wrapped with call-site context where it is
// returned. Unlike a generator that assembles synthetic topology
// datasets, Builder here only ever wires caller-supplied gates — there
// is no generator surface.
package netlist
