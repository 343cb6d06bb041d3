package netlist

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
)

// Builder accumulates input(name)/gate(name,kind,fanin...)/output(name,
// driver) declarations (spec §6) in any declaration order and resolves
// them into a gate.Graph on Finish. One Builder constructs exactly one
// netlist.
type Builder struct {
	logger zerolog.Logger

	inputs  []string
	pending []pendingGate
	outputs []pendingOutput

	declared map[string]bool
}

type pendingGate struct {
	name   string
	kind   gate.Kind
	fanins []string
}

type pendingOutput struct {
	name   string
	driver string
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: zerolog.Nop(), declared: make(map[string]bool)}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Input declares a primary input. Returns ErrDuplicateName if name was
// already declared by Input or Gate.
func (b *Builder) Input(name string) error {
	if b.declared[name] {
		return fmt.Errorf("netlist: Input %q: %w", name, ErrDuplicateName)
	}
	b.declared[name] = true
	b.inputs = append(b.inputs, name)
	return nil
}

// Gate declares an internal elementary-alphabet node driven by fanins
// (referenced by name; forward references to names not yet declared are
// allowed and resolved at Finish). Returns ErrDuplicateName for a repeated
// name.
func (b *Builder) Gate(name string, kind gate.Kind, fanins ...string) error {
	if b.declared[name] {
		return fmt.Errorf("netlist: Gate %q: %w", name, ErrDuplicateName)
	}
	b.declared[name] = true
	b.pending = append(b.pending, pendingGate{name: name, kind: kind, fanins: append([]string(nil), fanins...)})
	return nil
}

// Output declares a primary output named name, driven by the gate or
// input named driver. Output names are checked for duplicates only
// against other outputs; an output may share its name with an input or
// gate. Outputs are not valid fanin targets (an output has no fanout in
// this model).
func (b *Builder) Output(name, driver string) error {
	for _, o := range b.outputs {
		if o.name == name {
			return fmt.Errorf("netlist: Output %q: %w", name, ErrDuplicateName)
		}
	}
	b.outputs = append(b.outputs, pendingOutput{name: name, driver: driver})
	return nil
}

// Finish resolves every declaration into a gate.Graph, in an order that
// satisfies each gate's fanin dependencies regardless of declaration
// order, and returns the graph already activated (spec §4.A
// ActivateAll) together with a fault.DB with Enumerate already run.
func (b *Builder) Finish() (*gate.Graph, *fault.DB, error) {
	if len(b.outputs) == 0 {
		return nil, nil, ErrNoOutputs
	}
	if err := b.checkAcyclic(); err != nil {
		return nil, nil, err
	}

	order, err := b.resolveOrder()
	if err != nil {
		return nil, nil, err
	}

	gb := gate.NewBuilder()
	ids := make(map[string]gate.NodeID, len(b.declared))
	for _, name := range b.inputs {
		ids[name] = gb.AddInput(name)
	}
	for _, name := range order {
		pg := b.findPending(name)
		fanins := make([]gate.NodeID, len(pg.fanins))
		for i, fn := range pg.fanins {
			id, ok := ids[fn]
			if !ok {
				return nil, nil, fmt.Errorf("netlist: gate %q fanin %q: %w", pg.name, fn, ErrUnknownFanin)
			}
			fanins[i] = id
		}
		id, err := gb.AddGate(pg.name, pg.kind, fanins...)
		if err != nil {
			return nil, nil, err
		}
		ids[name] = id
	}
	for _, o := range b.outputs {
		driver, ok := ids[o.driver]
		if !ok {
			return nil, nil, fmt.Errorf("netlist: output %q driver %q: %w", o.name, o.driver, ErrUnknownFanin)
		}
		if _, err := gb.AddOutput(o.name, driver); err != nil {
			return nil, nil, err
		}
	}

	g, err := gb.Build()
	if err != nil {
		return nil, nil, err
	}
	g.ActivateAll()

	db := fault.NewDB(g, fault.WithLogger(b.logger))
	if err := db.Enumerate(); err != nil {
		return nil, nil, err
	}
	b.logger.Info().Int("nodes", g.NumNodes()).Int("faults", len(db.Representatives())).
		Msg("netlist loaded")
	return g, db, nil
}

func (b *Builder) findPending(name string) pendingGate {
	for _, pg := range b.pending {
		if pg.name == name {
			return pg
		}
	}
	return pendingGate{}
}

// resolveOrder topologically orders b.pending by fanin dependency using
// Kahn's algorithm over gate names, so Gate declarations may reference
// fanins declared later in call order (a real parser's emission order is
// not guaranteed to be dependency order). Declared-but-unknown fanins
// (references to a name the caller never declared at all) surface as
// ErrUnknownFanin at Finish's wiring step, not here.
func (b *Builder) resolveOrder() ([]string, error) {
	isInput := make(map[string]bool, len(b.inputs))
	for _, n := range b.inputs {
		isInput[n] = true
	}
	indeg := make(map[string]int, len(b.pending))
	dependents := make(map[string][]string)
	for _, pg := range b.pending {
		need := 0
		for _, fn := range pg.fanins {
			if isInput[fn] {
				continue
			}
			if !b.declared[fn] {
				continue // surfaced later as ErrUnknownFanin
			}
			need++
			dependents[fn] = append(dependents[fn], pg.name)
		}
		indeg[pg.name] = need
	}

	var ready []string
	for name, d := range indeg {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, dep := range dependents[name] {
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(order) != len(b.pending) {
		return nil, ErrUnresolvable
	}
	return order, nil
}

// checkAcyclic runs gonum's Tarjan SCC algorithm over the as-declared
// fanin graph as a second, independently-implemented cycle detector ahead
// of resolveOrder's hand-rolled Kahn pass (SPEC_FULL "Domain stack":
// gonum.org/v1/gonum/graph/topo). Any SCC of size greater than one, or a
// size-one SCC with a self-loop, is a cycle.
func (b *Builder) checkAcyclic() error {
	idx := make(map[string]int64, len(b.pending)+len(b.inputs))
	next := int64(0)
	nameOf := func(n string) int64 {
		if id, ok := idx[n]; ok {
			return id
		}
		idx[n] = next
		next++
		return idx[n]
	}
	for _, n := range b.inputs {
		nameOf(n)
	}

	dg := simple.NewDirectedGraph()
	for _, pg := range b.pending {
		to := nameOf(pg.name)
		// SetEdge adds missing endpoints itself; only a gate with no
		// declared fanins needs an explicit node.
		if dg.Node(to) == nil {
			dg.AddNode(simple.Node(to))
		}
		for _, fn := range pg.fanins {
			if !b.declared[fn] {
				continue
			}
			from := nameOf(fn)
			if from == to {
				// simple graphs reject self-edges, so the degenerate
				// one-gate cycle is reported directly.
				return fmt.Errorf("netlist: %w: %q feeds itself", ErrUnresolvable, pg.name)
			}
			dg.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) > 1 {
			return fmt.Errorf("netlist: %w: cycle of size %d", ErrUnresolvable, len(scc))
		}
	}
	return nil
}
