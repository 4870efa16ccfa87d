package nearby

import (
	"context"

	"github.com/mymed-inc/mymed-api/schema"
)

// Task is one nearby fetch. It resolves exactly once.
type Task struct {
	tag    uint64
	cancel context.CancelFunc
	done   chan struct{}

	places []schema.Place
	err    error
}

func newTask(tag uint64, cancel context.CancelFunc) *Task {
	return &Task{
		tag:    tag,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func resolvedTask(err error) *Task {
	t := newTask(0, func() {})
	t.resolve(nil, err)
	return t
}

func (t *Task) Tag() uint64 {
	return t.tag
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result blocks until the task is resolved
func (t *Task) Result() ([]schema.Place, error) {
	<-t.done
	return t.places, t.err
}

// Cancel aborts the underlying request. The task still resolves, with the
// cancellation error.
func (t *Task) Cancel() {
	t.cancel()
}

func (t *Task) resolve(places []schema.Place, err error) {
	t.places = places
	t.err = err
	close(t.done)
	t.cancel()
}
