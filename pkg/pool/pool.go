package pool

import (
	"context"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// searchAlone runs f, which may return nil, until count elements are found.
func searchAlone(ctx context.Context, f func() interface{}, count int) ([]interface{}, error) {
	results := make([]interface{}, count)
	for i := 0; i < len(results); i++ {
		for results[i] == nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = f()
		}
	}
	return results, nil
}

// parallelizeAlone calculates the result of f count times.
func parallelizeAlone(f func(int) interface{}, count int) []interface{} {
	results := make([]interface{}, count)
	for i := 0; i < len(results); i++ {
		results[i] = f(i)
	}
	return results
}

// findAlone returns the first i in [0, count) with f(i) = true.
func findAlone(f func(int) bool, count int) (int, bool) {
	for i := 0; i < count; i++ {
		if f(i) {
			return i, true
		}
	}
	return -1, false
}

// worker executes the tasks it receives until the channel is closed.
func worker(tasks <-chan func()) {
	for task := range tasks {
		task()
	}
}

// Pool represents a pool of workers, used for parallelizing functions.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current thread instead.
//
// By creating a pool, you avoid the overhead of spinning up goroutines for
// each new operation.
//
// A task running on the pool must not itself submit work to the same pool.
type Pool struct {
	// The common channel used to send tasks to the workers.
	//
	// This effectively makes a work stealing pool.
	tasks chan func()
	// This holds the number of workers we've created
	workerCount int
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		tasks:       make(chan func()),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go worker(p.tasks)
	}
	return p
}

// Workers returns the number of goroutines backing the pool, or 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// TearDown cleanly tears down a pool, closing channels, etc.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	close(p.tasks)
}

// Search queries the function f, until count successes are found.
//
// f is supposed to try a single candidate, returning nil if that candidate isn't
// successful. Every worker keeps trying candidates until enough successes have
// been gathered, or ctx is done, in which case ctx.Err() is returned.
//
// The result will be an array containing the first count successes.
func (p *Pool) Search(ctx context.Context, count int, f func() interface{}) ([]interface{}, error) {
	if p == nil {
		return searchAlone(ctx, f, count)
	}

	found := make(chan interface{}, p.workerCount)
	done := make(chan struct{})
	defer close(done)

	task := func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			res := f()
			if res == nil {
				continue
			}
			select {
			case found <- res:
			case <-done:
				return
			}
		}
	}

	for i := 0; i < p.workerCount; i++ {
		select {
		case p.tasks <- task:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	results := make([]interface{}, 0, count)
	for len(results) < count {
		select {
		case res := <-found:
			results = append(results, res)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

// Parallelize calls a function count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	if p == nil {
		return parallelizeAlone(f, count)
	}

	results := make([]interface{}, count)

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		i := i
		p.tasks <- func() {
			defer wg.Done()
			results[i] = f(i)
		}
	}
	wg.Wait()

	return results
}

// Find returns the smallest index i in [0, count) such that f(i) is true.
//
// Indices are evaluated concurrently, but any index larger than a match
// already found is skipped, so the answer is the same as the one a sequential
// scan would give. The second return value is false if no index matched.
func (p *Pool) Find(count int, f func(int) bool) (int, bool) {
	if p == nil || count <= 1 {
		return findAlone(f, count)
	}

	best := int64(count)
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		i := i
		if int64(i) > atomic.LoadInt64(&best) {
			// every remaining index is larger than the current match
			wg.Add(i - count)
			break
		}
		p.tasks <- func() {
			defer wg.Done()
			if int64(i) > atomic.LoadInt64(&best) || !f(i) {
				return
			}
			for {
				current := atomic.LoadInt64(&best)
				if int64(i) >= current || atomic.CompareAndSwapInt64(&best, current, int64(i)) {
					return
				}
			}
		}
	}
	wg.Wait()

	if best == int64(count) {
		return -1, false
	}
	return int(best), true
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// This type implements io.Reader, returning the same output.
//
// This means acquiring a lock whenever a read happens, so be aware of that
// for performance or concurrency reasons.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	// Intentionally not initializing m, since the zero value is ok
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
//
// Naturally, when calling this function concurrently, what value ends up getting
// read is raced, but you won't end up reading the same value twice, or otherwise
// messing up the state of the reader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
