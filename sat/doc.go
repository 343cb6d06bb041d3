// Package sat defines the narrow SAT solver interface the CNF Builder and
// ATPG Engine depend on (spec §6 "SAT solver API"), plus a concrete
// backend over github.com/irifrance/gini, the CDCL solver grounded by the
// pack's wider Go-SAT ecosystem usage (no pack repo ships a solver of its
// own; gini is the idiomatic, actively maintained choice for this API
// shape — see DESIGN.md).
package sat
