package cnf

import (
	"fmt"

	"github.com/go-satpg/satpg/cone"
	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/sat"
)

// clauseSink is the solver view the clause emitters write through. A
// plain sat.Solver satisfies it; a Builder carrying an activation
// literal substitutes a gating wrapper instead.
type clauseSink interface {
	NewVar() sat.VarID
	AddClause(lits ...sat.Literal) error
}

// gatedSink appends the negated activation literal to every clause, so
// the whole instance holds only while the activation literal is assumed
// true (spec §4.E: "a per-fault activation variable k_f gates its
// injection clauses"). Adding the unit clause ¬k_f afterwards retires
// the instance permanently.
type gatedSink struct {
	s      sat.Solver
	notAct sat.Literal
}

func (g gatedSink) NewVar() sat.VarID { return g.s.NewVar() }

func (g gatedSink) AddClause(lits ...sat.Literal) error {
	gated := make([]sat.Literal, 0, len(lits)+1)
	gated = append(gated, lits...)
	gated = append(gated, g.notAct)
	return g.s.AddClause(gated...)
}

// Builder emits a single fault instance's CNF onto a sat.Solver (spec
// §4.D). One Builder is used for exactly one (cone, fault) pair; build a
// fresh Builder per instance so ForgetLearnt's variable-id reset (spec
// §4.E) never collides with stale VarMap entries.
type Builder struct {
	g    *gate.Graph
	sink clauseSink
	vm   *VarMap
	act  sat.Literal
}

// Option configures a Builder at construction.
type Option func(*Builder)

// WithActivation gates every emitted clause behind act, the per-fault
// activation literal of the multi-fault strategies (spec §4.E). The
// instance is inert until act is assumed true; callers retire it by
// adding the unit clause act.Negate() once the fault is resolved.
func WithActivation(act sat.Literal) Option {
	return func(b *Builder) { b.act = act }
}

// NewBuilder returns a Builder that will emit clauses for g onto s.
func NewBuilder(g *gate.Graph, s sat.Solver, opts ...Option) *Builder {
	b := &Builder{g: g, sink: s, vm: newVarMap()}
	for _, o := range opts {
		o(b)
	}
	if b.act != 0 {
		b.sink = gatedSink{s: s, notAct: b.act.Negate()}
	}
	return b
}

// VarMap exposes the variable assignment built so far, for the engine to
// translate PI assignments into SAT assumptions and solver models back
// into test vectors.
func (b *Builder) VarMap() *VarMap { return b.vm }

// Activation returns the activation literal this Builder gates its
// clauses behind, or 0 if the instance is unconditional.
func (b *Builder) Activation() sat.Literal { return b.act }

// BuildFaultInstance emits the good-circuit equations over c.Support, the
// faulty-circuit equations over c.TFO with f injected at its site, the
// D-chain variables, and the propagation-necessity clause requiring at
// least one of c.POs to differ (spec §4.D, all three sub-steps:
// make_node_cnf, make_fault_cnf, make_dchain_cnf).
func (b *Builder) BuildFaultInstance(c *cone.Cone, f *fault.Fault) error {
	if err := b.makeNodeCNF(c); err != nil {
		return err
	}
	if err := b.makeFaultCNF(c, f); err != nil {
		return err
	}
	if err := b.makeDChainCNF(c, f); err != nil {
		return err
	}
	return nil
}

// makeNodeCNF allocates a good-circuit variable for every node in the
// cone's support and clauses it to its gate function.
func (b *Builder) makeNodeCNF(c *cone.Cone) error {
	for _, id := range b.g.Topological() {
		if !c.InSupport(id) {
			continue
		}
		n := b.g.Node(id)
		v := b.sink.NewVar()
		b.vm.good[id] = v
		if n.Kind == gate.PrimaryInput {
			continue
		}
		ins := make([]sat.Literal, len(n.Fanin))
		for i, fi := range n.Fanin {
			ins[i] = sat.Lit(b.vm.good[fi], true)
		}
		if err := emitGateClauses(b.sink, n.Kind, sat.Lit(v, true), ins); err != nil {
			return fmt.Errorf("%w: node %d: %v", ErrCnfBuild, id, err)
		}
	}
	return nil
}

// makeFaultCNF allocates a faulty-circuit variable for every node in the
// fault's TFO and clauses it to its gate function evaluated over faulty
// fanin values, except at the fault's own site where the stuck-at value
// is injected instead of the gate's natural logic (output fault) or in
// place of one fanin's faulty value (input fault).
func (b *Builder) makeFaultCNF(c *cone.Cone, f *fault.Fault) error {
	for _, id := range b.g.Topological() {
		if !c.InTFO(id) {
			continue
		}
		n := b.g.Node(id)
		v := b.sink.NewVar()
		b.vm.flt[id] = v

		if id == f.Node && f.IsOutput {
			// Output stuck-at: the node's faulty value is the constant,
			// irrespective of its fanins or kind.
			if err := b.sink.AddClause(sat.Lit(v, f.StuckAt == 1)); err != nil {
				return fmt.Errorf("%w: node %d fault injection: %v", ErrCnfBuild, id, err)
			}
			continue
		}
		if n.Kind == gate.PrimaryInput {
			// A PI appears in a TFO only as the fault site itself, and a
			// PI fault is always an output stuck-at (handled above); a PI
			// has no fanin pins to inject at.
			continue
		}

		ins := make([]sat.Literal, len(n.Fanin))
		for i, fi := range n.Fanin {
			if id == f.Node && !f.IsOutput && i == f.InputIdx {
				stuck, err := b.stuckLiteralVar(f.StuckAt)
				if err != nil {
					return fmt.Errorf("%w: node %d fault injection: %v", ErrCnfBuild, id, err)
				}
				ins[i] = sat.Lit(stuck, true)
				continue
			}
			ins[i] = sat.Lit(b.vm.FaultyOrGood(fi), true)
		}
		if err := emitGateClauses(b.sink, n.Kind, sat.Lit(v, true), ins); err != nil {
			return fmt.Errorf("%w: node %d faulty plane: %v", ErrCnfBuild, id, err)
		}
	}
	return nil
}

// stuckLiteralVar allocates a fresh variable forced to val, used to
// inject an input stuck-at fault's constant into a gate function's
// clauses without disturbing the driver's own good/faulty variables.
func (b *Builder) stuckLiteralVar(val int) (sat.VarID, error) {
	v := b.sink.NewVar()
	if err := b.sink.AddClause(sat.Lit(v, val == 1)); err != nil {
		return 0, err
	}
	return v, nil
}

// makeDChainCNF allocates a difference variable d = good XOR faulty for
// every TFO node, clauses each non-site node's propagation necessity
// (d here requires d at some TFO fanin; the discrepancy cannot appear
// from nowhere), and requires the difference to reach at least one of
// the cone's reachable primary outputs.
func (b *Builder) makeDChainCNF(c *cone.Cone, f *fault.Fault) error {
	for _, id := range c.TFO {
		good, ok := b.vm.Good(id)
		if !ok {
			// TFO nodes are always in Support by construction, but guard
			// defensively rather than panic on a malformed cone.
			return fmt.Errorf("%w: node %d has no good-circuit variable", ErrCnfBuild, id)
		}
		flt := b.vm.flt[id]
		d := b.sink.NewVar()
		b.vm.d[id] = d
		if err := emitXor2(b.sink, sat.Lit(d, true), sat.Lit(good, true), sat.Lit(flt, true)); err != nil {
			return fmt.Errorf("%w: node %d d-chain: %v", ErrCnfBuild, id, err)
		}
	}

	// Propagation necessity: at every TFO node except the fault site,
	// d=1 implies d=1 at some fanin inside the TFO. The site is exempt
	// because the fault itself originates the discrepancy there.
	for _, id := range c.TFO {
		if id == f.Node {
			continue
		}
		n := b.g.Node(id)
		clause := []sat.Literal{sat.Lit(b.vm.d[id], false)}
		for _, fi := range n.Fanin {
			if c.InTFO(fi) {
				clause = append(clause, sat.Lit(b.vm.d[fi], true))
			}
		}
		if err := b.sink.AddClause(clause...); err != nil {
			return fmt.Errorf("%w: node %d propagation necessity: %v", ErrCnfBuild, id, err)
		}
	}

	if len(c.POs) == 0 {
		return fmt.Errorf("%w: fault site has no reachable primary output", ErrCnfBuild)
	}
	outs := b.g.Outputs()
	clause := make([]sat.Literal, 0, len(c.POs))
	for _, poIdx := range c.POs {
		poID := outs[poIdx]
		d, ok := b.vm.Diff(poID)
		if !ok {
			return fmt.Errorf("%w: output %d missing d-chain variable", ErrCnfBuild, poID)
		}
		clause = append(clause, sat.Lit(d, true))
	}
	if err := b.sink.AddClause(clause...); err != nil {
		return fmt.Errorf("%w: propagation clause: %v", ErrCnfBuild, err)
	}
	return nil
}
