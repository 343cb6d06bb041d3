// Package hook implements the Detect/Untest callback protocol of spec
// §4.H: the ATPG Engine notifies a Detect hook whenever a fault's SAT
// instance is satisfiable (handing it the compacted test vector) and an
// Untest hook whenever one is proven UNSAT, letting callers collect test
// vectors, count results, or abort the run without the engine itself
// knowing what a caller wants done with an outcome.
//
// Grounded on github.com/katalvlaran/lvlath's functional-option hook
// style (bfs.Option's OnEnqueue/OnDequeue/OnVisit callbacks): the same
// "pass a function, call it at the right moment, propagate its error"
// discipline, generalized from inline options here to named,
// tag-constructible strategies since spec §6 requires hook factories by
// string tag like the backtracer/strategy factories.
package hook
