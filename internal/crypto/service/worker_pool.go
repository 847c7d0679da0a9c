package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

// WorkerPool bounds the number of concurrent CPU heavy crypto operations (key derivation and
// decryption) so a burst of reveal requests cannot starve the request handlers.
type WorkerPool struct {
	sem    *semaphore.Weighted
	size   int64
	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewWorkerPool creates a pool with size concurrent slots. size <= 0 uses runtime.NumCPU().
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &WorkerPool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Size returns the number of concurrent slots.
func (p *WorkerPool) Size() int {
	return int(p.size)
}

// Do runs fn on a pool slot and waits for its result. It returns ctx.Err() if the deadline passes
// while waiting for a slot or while fn is running. A result produced after the caller gave up is
// zeroed and dropped.
func (p *WorkerPool) Do(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if p.closed.Load() {
		return nil, cryptoDomain.ErrPoolClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	type result struct {
		value []byte
		err   error
	}

	var (
		mu        sync.Mutex
		abandoned bool
	)
	done := make(chan result, 1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)

		value, err := fn(ctx)

		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			cryptoDomain.Zero(value)
			return
		}
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		mu.Lock()
		abandoned = true
		select {
		case r := <-done:
			cryptoDomain.Zero(r.value)
		default:
		}
		mu.Unlock()
		return nil, ctx.Err()
	}
}

// Close rejects new work and waits for running operations to finish.
func (p *WorkerPool) Close() {
	p.closed.Store(true)
	p.wg.Wait()
}
