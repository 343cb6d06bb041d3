package cone

import (
	"context"
	"errors"
)

// ErrNilGraph is returned when Build is called with a nil graph.
var ErrNilGraph = errors.New("cone: graph is nil")

// ErrUnknownSite is returned when the fault site node does not exist.
var ErrUnknownSite = errors.New("cone: unknown fault site")

// Option configures Build via functional arguments (teacher's bfs.Option
// idiom).
type Option func(*options)

type options struct {
	ctx     context.Context
	onTFO   func(id int, depth int)
	onTFI   func(id int, depth int)
	maxTFO  int
	maxTFI  int
}

func defaultOptions() options {
	return options{
		ctx:    context.Background(),
		onTFO:  func(int, int) {},
		onTFI:  func(int, int) {},
		maxTFO: 0,
		maxTFI: 0,
	}
}

// WithContext sets a cancellation context for the underlying traversals.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithOnTFOVisit registers a callback invoked as each TFO node is visited.
func WithOnTFOVisit(fn func(id int, depth int)) Option {
	return func(o *options) {
		if fn != nil {
			o.onTFO = fn
		}
	}
}

// WithOnTFIVisit registers a callback invoked as each TFI node is visited.
func WithOnTFIVisit(fn func(id int, depth int)) Option {
	return func(o *options) {
		if fn != nil {
			o.onTFI = fn
		}
	}
}

// WithMaxTFODepth bounds the forward walk (0 = unbounded); a bound that
// stops short of every primary output leaves POs empty.
func WithMaxTFODepth(d int) Option {
	return func(o *options) {
		if d >= 0 {
			o.maxTFO = d
		}
	}
}

// WithMaxTFIDepth bounds the backward walk (0 = unbounded).
func WithMaxTFIDepth(d int) Option {
	return func(o *options) {
		if d >= 0 {
			o.maxTFI = d
		}
	}
}
