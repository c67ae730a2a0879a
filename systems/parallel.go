package systems

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum particle count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// Pool dispatches data-parallel passes over a fixed index range.
// Every call to For is a full barrier: it returns only after all chunks are
// done, and no goroutine outlives the call.
type Pool struct {
	numWorkers int
}

// NewPool creates a pool with the given worker count (<= 0 uses GOMAXPROCS).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{numWorkers: workers}
}

// Workers returns the number of chunks a large pass is split into.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.numWorkers
}

// For calls fn over [0, n) split into contiguous chunks. fn must only write
// to indices inside its own chunk. A nil pool runs serially.
func (p *Pool) For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	numWorkers := p.Workers()
	if n < parallelThreshold || numWorkers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
