package asset

import (
	"context"
	"errors"
	"sync"
)

var ErrPending = errors.New("assets still loading")

// Future is a scene graph delivered once, from another goroutine
type Future struct {
	done  chan struct{}
	once  sync.Once
	graph *Graph
	err   error
}

// NewFuture returns an unresolved future and the function resolving it.
// Only the first call to resolve has an effect.
func NewFuture() (*Future, func(*Graph, error)) {
	f := &Future{done: make(chan struct{})}

	return f, f.resolve
}

// Resolved returns a future that is already complete
func Resolved(graph *Graph, err error) *Future {
	f, resolve := NewFuture()
	resolve(graph, err)

	return f
}

// LoadAsync runs load in its own goroutine. A cancelled context resolves the
// future with the context error.
func LoadAsync(ctx context.Context, load func(ctx context.Context) (*Graph, error)) *Future {
	f, resolve := NewFuture()

	go func() {
		graph, err := load(ctx)
		if err == nil && ctx.Err() != nil {
			graph, err = nil, ctx.Err()
		}
		resolve(graph, err)
	}()

	return f
}

func (f *Future) resolve(graph *Graph, err error) {
	f.once.Do(func() {
		f.graph, f.err = graph, err
		close(f.done)
	})
}

// Done is closed once the result is available
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Ready reports, without blocking, whether the result is available
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns ErrPending until the future is resolved
func (f *Future) Result() (*Graph, error) {
	if !f.Ready() {
		return nil, ErrPending
	}

	return f.graph, f.err
}
