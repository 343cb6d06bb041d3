package engine

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-satpg/satpg/backtrace"
	"github.com/go-satpg/satpg/hook"
	"github.com/go-satpg/satpg/sat"
)

// ErrNilSolverFactory indicates Options.NewSolver was never set.
var ErrNilSolverFactory = errors.New("engine: nil solver factory")

// ErrBadKDetectK indicates KDetect was called with k <= 0.
var ErrBadKDetectK = errors.New("engine: k-detect requires k >= 1")

// Mode names one of the ATPG strategies of spec §4.E, used to key
// Stats.ByMode (SPEC_FULL supplemented feature #5, grounded on
// original_source's DtpgStats.h).
type Mode string

const (
	ModeSingle    Mode = "single"
	ModeKDetect   Mode = "kdetect"
	ModePOSplit   Mode = "posplit"
	ModeMultiFFR  Mode = "multiffr"
	ModeMFFC      Mode = "mffc"
	ModeConcurrent Mode = "concurrent"
)

// PartitionOrder is the PO-partitioning policy orthogonal to strategy
// (spec §4.E "PO partitioning wrapper").
type PartitionOrder uint8

const (
	// NoPartition keeps the PO list in the order it is given, without
	// re-sorting by TFI-cone size; the work is still split per PO, and
	// there is no single whole-graph pass.
	NoPartition PartitionOrder = iota
	// Ascending iterates POs by ascending precomputed TFI-cone size.
	Ascending
	// Descending iterates POs by descending precomputed TFI-cone size.
	Descending
)

// ModeStats is one strategy mode's aggregate and peak SAT-call
// instrumentation (spec §6 "Statistics out").
type ModeStats struct {
	CnfBuilds     int64
	CnfBuildTime  time.Duration
	Detected      int64
	Untestable    int64
	PartialUntest int64
	Aborted       int64

	SolveTime    time.Duration
	MaxConflicts int64
	MaxDecisions int64
	SumConflicts int64
	SumDecisions int64
	SumProps     int64
}

// Stats is the Driver's cumulative run report (spec §6).
type Stats struct {
	ByMode map[Mode]*ModeStats
}

func newStats() Stats { return Stats{ByMode: make(map[Mode]*ModeStats)} }

func (s Stats) forMode(m Mode) *ModeStats {
	ms, ok := s.ByMode[m]
	if !ok {
		ms = &ModeStats{}
		s.ByMode[m] = ms
	}
	return ms
}

func (ms *ModeStats) recordSolve(d time.Duration, st sat.Stats) {
	ms.SolveTime += d
	ms.SumConflicts += st.Conflicts
	ms.SumDecisions += st.Decisions
	ms.SumProps += st.Propagations
	if st.Conflicts > ms.MaxConflicts {
		ms.MaxConflicts = st.Conflicts
	}
	if st.Decisions > ms.MaxDecisions {
		ms.MaxDecisions = st.Decisions
	}
}

// Options configures a Driver (teacher's functional-option idiom; see
// flow.FlowOptions).
type Options struct {
	NewSolver func() sat.Solver
	Tracer    backtrace.Tracer
	Detect    hook.Detect
	Untest    hook.Untest
	Logger    zerolog.Logger

	// SolveTimeout bounds each individual SAT call (spec §5 "wall-clock
	// budget"); zero means no bound beyond the caller's own context.
	SolveTimeout time.Duration

	// UniqueSensitization enables the dominator-chain assumption
	// heuristic in RunSingle and the grouped strategies (RunMultiFFR,
	// RunMFFC, RunConcurrent), which share solveAndDispatch (spec §4.E,
	// DESIGN.md Open Question #2).
	UniqueSensitization bool

	// ImplicationPrefilter proves cheaply-untestable faults with the
	// ternary implication engine before paying for a SAT instance (spec
	// §4.G use (1)). On by default; disable via
	// WithImplicationPrefilter(false).
	ImplicationPrefilter bool
}

// Option is a functional option over Options.
type Option func(*Options)

// WithSolverFactory sets the per-instance sat.Solver constructor. Required.
func WithSolverFactory(f func() sat.Solver) Option {
	return func(o *Options) { o.NewSolver = f }
}

// WithTracer sets the backtrace.Tracer used to compact SAT models into
// test vectors. Defaults to backtrace.NewSimple.
func WithTracer(t backtrace.Tracer) Option {
	return func(o *Options) { o.Tracer = t }
}

// WithDetectHook sets the Detect callback. Defaults to hook.NewDrop().
func WithDetectHook(h hook.Detect) Option {
	return func(o *Options) { o.Detect = h }
}

// WithUntestHook sets the Untest callback. Defaults to hook.NewDrop().
func WithUntestHook(h hook.Untest) Option {
	return func(o *Options) { o.Untest = h }
}

// WithLogger attaches structured logging (SPEC_FULL "Logging"): one Debug
// event per fault outcome, one Warn per Aborted, one Info per completed
// Run.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithSolveTimeout bounds each SAT call's wall-clock budget.
func WithSolveTimeout(d time.Duration) Option {
	return func(o *Options) { o.SolveTimeout = d }
}

// WithUniqueSensitization enables the dominator-chain assumption
// shortcut in RunSingle and the grouped strategies (spec §4.E,
// "completeness-preserving... not a requirement").
func WithUniqueSensitization(b bool) Option {
	return func(o *Options) { o.UniqueSensitization = b }
}

// WithImplicationPrefilter toggles the pre-SAT mandatory-assignment
// untestability proof.
func WithImplicationPrefilter(b bool) Option {
	return func(o *Options) { o.ImplicationPrefilter = b }
}

func resolveOptions(opts ...Option) Options {
	o := Options{
		Detect:               hook.NewDrop(),
		Untest:               hook.NewDrop(),
		Logger:               zerolog.Nop(),
		ImplicationPrefilter: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
