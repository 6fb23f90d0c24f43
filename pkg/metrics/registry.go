package metrics

import (
	"sync"
	"sync/atomic"
)

// Registry is a concurrency-safe counter registry. It is constructed
// explicitly and passed to the components that record into it; there is no
// process-wide instance.
type Registry struct {
	counters sync.Map // name -> *atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Inc(name string) {
	r.Add(name, 1)
}

func (r *Registry) Add(name string, delta int64) {
	counter, ok := r.counters.Load(name)
	if !ok {
		counter, _ = r.counters.LoadOrStore(name, &atomic.Int64{})
	}
	counter.(*atomic.Int64).Add(delta)
}

func (r *Registry) Value(name string) int64 {
	counter, ok := r.counters.Load(name)
	if !ok {
		return 0
	}
	return counter.(*atomic.Int64).Load()
}

// Snapshot returns a point-in-time copy of every counter.
func (r *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	r.counters.Range(func(key, value any) bool {
		out[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})
	return out
}

// Reset zeroes all counters. Intended for tests.
func (r *Registry) Reset() {
	r.counters.Range(func(key, value any) bool {
		value.(*atomic.Int64).Store(0)
		return true
	})
}
