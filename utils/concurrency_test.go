package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)

	var done int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&done, 1)
		})
	}
	pool.Wait()

	if done != 100 {
		t.Errorf("completed jobs: got %d, want 100", done)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const workers = 3
	pool := NewWorkerPool(workers)

	var inFlight, peak int64
	for i := 0; i < 30; i++ {
		pool.Submit(func() {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
		})
	}
	pool.Wait()

	if peak > workers {
		t.Errorf("peak concurrency %d exceeds pool size %d", peak, workers)
	}
}

func TestWorkerPoolTreatsNonPositiveSizeAsOne(t *testing.T) {
	pool := NewWorkerPool(0)

	var done int64
	pool.Submit(func() { atomic.AddInt64(&done, 1) })
	pool.Wait()

	if done != 1 {
		t.Errorf("job did not run on a size-0 pool")
	}
}
