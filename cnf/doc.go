// Package cnf translates a cone.Cone into CNF clauses over a sat.Solver
// (spec §4.D): a good-circuit equation per node in the cone's support, a
// faulty-circuit equation per node in the fault's transitive fanout with
// the stuck-at fault injected at its site, and the D-chain (difference)
// variables and propagation-necessity clause tying the two together.
//
// The Tseitin gate encodings are standard CNF-of-truth-table clauses (not
// drawn from any single pack file); the d = good XOR faulty bookkeeping is
// grounded on fyerfyer-fan-atpg's circuit.go ternary simulation, which
// keeps the same good/faulty pair of values per node that this package's
// VarMap mirrors as a pair of SAT variables.
package cnf
