package gopool

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

var (
	// Init a instance pool when importing ants.
	defaultPool, _   = ants.NewPool(ants.DefaultAntsPoolSize, ants.WithExpiryDuration(10*time.Second))
	minNumberPerTask = 5
)

// Submit submits a task to pool.
func Submit(task func()) error {
	return defaultPool.Submit(task)
}

// Running returns the number of the currently running goroutines.
func Running() int {
	return defaultPool.Running()
}

// Cap returns the capacity of this default pool.
func Cap() int {
	return defaultPool.Cap()
}

// Free returns the available goroutines to work.
func Free() int {
	return defaultPool.Free()
}

// Threads returns a worker count for the given number of tasks, at least
// one and at most the number of CPUs.
func Threads(tasks int) int {
	threads := tasks / minNumberPerTask
	if threads > runtime.NumCPU() {
		threads = runtime.NumCPU()
	} else if threads == 0 {
		threads = 1
	}
	return threads
}

// Pool is a fixed-size worker pool, separate from the shared default one.
type Pool struct {
	inner *ants.Pool
}

// NewPool creates a pool running at most size tasks at once. A non-positive
// size falls back to Threads(tasks).
func NewPool(size, tasks int) (*Pool, error) {
	if size <= 0 {
		size = Threads(tasks)
	}
	inner, err := ants.NewPool(size, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		return nil, err
	}
	return &Pool{inner: inner}, nil
}

func (p *Pool) Cap() int { return p.inner.Cap() }

// Release closes the pool. Tasks already running are not interrupted.
func (p *Pool) Release() { p.inner.Release() }

// Map calls fn(ctx, i) for every i in [0, n) on the pool and blocks until all
// submitted calls return. Once ctx is cancelled no further calls are
// submitted and ctx.Err() is returned.
func (p *Pool) Map(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		i := i
		wg.Add(1)
		if err := p.inner.Submit(func() {
			defer wg.Done()
			fn(ctx, i)
		}); err != nil {
			wg.Done()
			return err
		}
	}
	return nil
}
