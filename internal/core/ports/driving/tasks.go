package driving

import "context"

// Task is one unit of work run off the caller's goroutine.
type Task func(ctx context.Context) (any, error)

// Outcome is the single result of a task: a value or an error, never both.
type Outcome struct {
	Value any
	Err   error
}

// TaskRunner runs tasks on a bounded pool.
// Each submitted task delivers exactly one Outcome on its channel.
// Tasks cannot be cancelled once dispatched and are never retried.
type TaskRunner interface {
	// Submit queues a task and returns the channel its Outcome arrives on.
	Submit(name string, task Task) <-chan Outcome

	// Close waits for running tasks and rejects new ones.
	Close()
}
