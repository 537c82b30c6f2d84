package services

import (
	"context"
	"sync"
	"sync/atomic"
)

// stopSignal is the stop request of one execution.
type stopSignal struct {
	requested atomic.Bool
}

func (s *stopSignal) stop() { s.requested.Store(true) }

func (s *stopSignal) stopped() bool { return s.requested.Load() }

type stopSignalKey struct{}

// withStopSignal scopes sig to ctx so the orchestrator observes the same
// request as the pipeline execution that started it.
func withStopSignal(ctx context.Context, sig *stopSignal) context.Context {
	return context.WithValue(ctx, stopSignalKey{}, sig)
}

func stopSignalFrom(ctx context.Context) *stopSignal {
	sig, _ := ctx.Value(stopSignalKey{}).(*stopSignal)
	return sig
}

// stopRegistry tracks the executions in flight. A stop requested while
// nothing is in flight is held for the next execution, so a stop issued
// just before a run begins is not lost.
type stopRegistry struct {
	mu      sync.Mutex
	active  map[*stopSignal]struct{}
	pending bool
}

// begin registers sig, creating one when nil. The returned func must be
// called when the execution ends.
func (r *stopRegistry) begin(sig *stopSignal) (*stopSignal, func()) {
	if sig == nil {
		sig = &stopSignal{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		r.active = make(map[*stopSignal]struct{})
	}
	r.active[sig] = struct{}{}
	if r.pending {
		r.pending = false
		sig.stop()
	}

	return sig, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.active, sig)
	}
}

// stop flags every execution in flight, or the next one when none is.
func (r *stopRegistry) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.active) == 0 {
		r.pending = true
		return
	}
	for sig := range r.active {
		sig.stop()
	}
}
