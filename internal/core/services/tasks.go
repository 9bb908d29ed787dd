package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/orgsync/internal/core/ports/driving"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// ErrPoolClosed is delivered to tasks submitted after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Ensure WorkerPool implements the interface.
var _ driving.TaskRunner = (*WorkerPool)(nil)

// WorkerPool runs tasks on at most size goroutines at a time.
// A panicking task is reported as a failed Outcome.
type WorkerPool struct {
	sem chan struct{}

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewWorkerPool creates a pool running at most size tasks concurrently.
func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{sem: make(chan struct{}, size)}
}

// Submit queues a task. The returned channel receives exactly one Outcome
// and is then closed.
func (p *WorkerPool) Submit(name string, task driving.Task) <-chan driving.Outcome {
	out := make(chan driving.Outcome, 1)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		out <- driving.Outcome{Err: ErrPoolClosed}
		close(out)
		return out
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	go func() {
		defer p.wg.Done()
		defer close(out)

		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		out <- p.run(name, task)
	}()

	return out
}

// run executes task, converting a panic into an error.
func (p *WorkerPool) run(name string, task driving.Task) (outcome driving.Outcome) {
	log := logger.Zap().With(zap.String("task", name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("task %s panicked: %v", name, r)
			outcome = driving.Outcome{Err: fmt.Errorf("task %s panicked: %v", name, r)}
		}
	}()

	log.Debug("task started")
	value, err := task(context.Background())
	if err != nil {
		log.Debug("task failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return driving.Outcome{Err: err}
	}
	log.Debug("task finished", zap.Duration("took", time.Since(start)))
	return driving.Outcome{Value: value}
}

// Close waits for submitted tasks to finish and rejects new ones.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}

// Await blocks until the outcome arrives and converts its value to T.
func Await[T any](ch <-chan driving.Outcome) (T, error) {
	var zero T

	outcome, ok := <-ch
	if !ok {
		return zero, errors.New("task finished without an outcome")
	}
	if outcome.Err != nil {
		return zero, outcome.Err
	}
	if outcome.Value == nil {
		return zero, nil
	}

	value, ok := outcome.Value.(T)
	if !ok {
		return zero, fmt.Errorf("task returned %T, expected %T", outcome.Value, zero)
	}
	return value, nil
}

// Dispatch submits fn as a task and returns its outcome channel.
func Dispatch[T any](runner driving.TaskRunner, name string, fn func(ctx context.Context) (T, error)) <-chan driving.Outcome {
	return runner.Submit(name, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
}
