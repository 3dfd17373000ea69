package agentcortex

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/agentcortex/agentcortex-go/working"
)

// ErrClosed is returned by AsyncStore calls made after Close.
var ErrClosed = errors.New("async store closed")

// AsyncStore makes a MemoryStore safe to share across goroutines by
// serializing every call through a single worker, so storage access is
// never interleaved. Each call blocks until the worker has executed
// it or the context is done.
//
// The AsyncStore owns the wrapped store; Close stops the worker and
// closes it.
type AsyncStore struct {
	store *MemoryStore
	jobs  chan func()
	quit  chan struct{}
	done  chan struct{}

	closeOnce sync.Once
}

// NewAsyncStore wraps store and starts its worker.
func NewAsyncStore(store *MemoryStore) *AsyncStore {
	a := &AsyncStore{
		store: store,
		jobs:  make(chan func()),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go a.serve()
	return a
}

func (a *AsyncStore) serve() {
	defer close(a.done)
	for {
		select {
		case job := <-a.jobs:
			job()
		case <-a.quit:
			// Finish any caller that won the submit race.
			for {
				select {
				case job := <-a.jobs:
					job()
				default:
					return
				}
			}
		}
	}
}

// Close stops the worker and closes the underlying store. Safe to call
// more than once.
func (a *AsyncStore) Close() error {
	a.closeOnce.Do(func() { close(a.quit) })
	<-a.done
	return a.store.Close()
}

// Store returns the wrapped MemoryStore. Direct calls on it bypass the
// worker and forfeit the serialization guarantee.
func (a *AsyncStore) Store() *MemoryStore { return a.store }

type result[T any] struct {
	value T
	err   error
}

// run executes fn on the worker and waits for its result. A canceled
// context abandons the wait but the job still runs to completion on
// the worker.
func run[T any](a *AsyncStore, ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	res := make(chan result[T], 1)
	job := func() {
		v, err := fn()
		res <- result[T]{value: v, err: err}
	}

	select {
	case a.jobs <- job:
	case <-a.quit:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case r := <-res:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (a *AsyncStore) do(ctx context.Context, fn func() error) error {
	_, err := run(a, ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Remember is the serialized MemoryStore.Remember.
func (a *AsyncStore) Remember(ctx context.Context, content string, opts ...RememberOption) error {
	return a.do(ctx, func() error { return a.store.Remember(ctx, content, opts...) })
}

// Recall is the serialized MemoryStore.Recall.
func (a *AsyncStore) Recall(ctx context.Context, query string, opts ...RecallOption) ([]ScoredMemory, error) {
	return run(a, ctx, func() ([]ScoredMemory, error) { return a.store.Recall(ctx, query, opts...) })
}

// GetContext is the serialized MemoryStore.GetContext.
func (a *AsyncStore) GetContext(ctx context.Context, opts ...ContextOption) (string, error) {
	return run(a, ctx, func() (string, error) { return a.store.GetContext(ctx, opts...) })
}

// AddMessage is the serialized MemoryStore.AddMessage.
func (a *AsyncStore) AddMessage(ctx context.Context, role, content string) error {
	return a.do(ctx, func() error { return a.store.AddMessage(ctx, role, content) })
}

// Messages is the serialized MemoryStore.Messages.
func (a *AsyncStore) Messages(ctx context.Context) ([]working.Message, error) {
	return run(a, ctx, func() ([]working.Message, error) { return a.store.Messages(), nil })
}

// Compress is the serialized MemoryStore.Compress.
func (a *AsyncStore) Compress(ctx context.Context) error {
	return a.do(ctx, func() error { return a.store.Compress(ctx) })
}

// Clear is the serialized MemoryStore.Clear.
func (a *AsyncStore) Clear(ctx context.Context) error {
	return a.do(ctx, func() error { return a.store.Clear(ctx) })
}

// ClearTiers is the serialized MemoryStore.ClearTiers.
func (a *AsyncStore) ClearTiers(ctx context.Context, tiers ...Tier) error {
	return a.do(ctx, func() error { return a.store.ClearTiers(ctx, tiers...) })
}

// Stats is the serialized MemoryStore.Stats.
func (a *AsyncStore) Stats(ctx context.Context) (*Stats, error) {
	return run(a, ctx, func() (*Stats, error) { return a.store.Stats(ctx) })
}

// Export is the serialized MemoryStore.Export.
func (a *AsyncStore) Export(ctx context.Context) (*Snapshot, error) {
	return run(a, ctx, func() (*Snapshot, error) { return a.store.Export(ctx) })
}

// ExportTo is the serialized MemoryStore.ExportTo.
func (a *AsyncStore) ExportTo(ctx context.Context, w io.Writer) error {
	return a.do(ctx, func() error { return a.store.ExportTo(ctx, w) })
}

// Import is the serialized MemoryStore.Import.
func (a *AsyncStore) Import(ctx context.Context, snap *Snapshot, merge bool) (int, error) {
	return run(a, ctx, func() (int, error) { return a.store.Import(ctx, snap, merge) })
}

// ImportFrom is the serialized MemoryStore.ImportFrom.
func (a *AsyncStore) ImportFrom(ctx context.Context, r io.Reader, merge bool) (int, error) {
	return run(a, ctx, func() (int, error) { return a.store.ImportFrom(ctx, r, merge) })
}
