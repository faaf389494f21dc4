// Package parallel provides the bounded worker pool used to decode
// network payloads concurrently while keeping results in input order.
package parallel

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with the given number of workers.
// A non-positive count falls back to a single worker.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}
	pool.start()
	return pool, nil
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		task()
	}
}

// Submit adds a task to the worker pool.
// Returns false if the pool is closed, true if the task was accepted.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// Close shuts down the worker pool and waits for in-flight tasks.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// MapOrdered runs fn over every item on a bounded pool and returns the
// results in input order. A panic inside fn is recovered and surfaces as
// that item's error instead of crashing a worker. Cancellation is checked
// between submissions: items already in flight finish, items not yet
// submitted report ctx.Err().
func MapOrdered[T, R any](ctx context.Context, workers int, items []T, fn func(T) (R, error)) ([]R, []error, error) {
	pool, err := NewWorkerPool(workers)
	if err != nil {
		return nil, nil, err
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	var cancelled error

	for i := range items {
		if err := ctx.Err(); err != nil {
			cancelled = err
			for j := i; j < len(items); j++ {
				errs[j] = err
			}
			break
		}

		i := i
		pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic during item %d: %v", i, r)
				}
			}()
			results[i], errs[i] = fn(items[i])
		})
	}
	pool.Close()

	return results, errs, cancelled
}
