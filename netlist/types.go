package netlist

import (
	"errors"

	"github.com/rs/zerolog"
)

// Sentinel errors (spec §7 "MalformedNetwork" taxonomy, surfaced at the
// loader boundary before a gate.Graph ever exists).
var (
	// ErrDuplicateName indicates a name was declared more than once.
	ErrDuplicateName = errors.New("netlist: duplicate name")

	// ErrUnknownFanin indicates a gate or output references a name never
	// declared by Input or Gate.
	ErrUnknownFanin = errors.New("netlist: unknown fanin name")

	// ErrUnresolvable indicates a set of declared gates could not be
	// ordered because some (possibly cyclic) fanin chain never bottoms
	// out at declared inputs — the gonum.TarjanSCC pre-check in
	// builder.go reports the offending cycle's size, or the gate that
	// feeds itself.
	ErrUnresolvable = errors.New("netlist: fanin graph has no valid order")

	// ErrNoOutputs indicates Finish was called with zero declared
	// outputs, an edge case spec §8 documents for the empty-netlist
	// boundary behavior but which this loader still rejects explicitly
	// for a non-empty gate set (a gate-only netlist observes nothing).
	ErrNoOutputs = errors.New("netlist: no outputs declared")
)

// Option configures a Builder (teacher's functional-option idiom).
type Option func(*Builder)

// WithLogger attaches a structured logger; Builder logs one Info event
// per netlist that Finish loads, with its node and representative-fault
// counts (SPEC_FULL "Logging").
// Default is zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}
