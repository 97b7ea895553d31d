package tachyon

import (
	"context"
	"log/slog"
	"sync"
)

// Task is a unit of deferred work scheduled during a request.
type Task func(ctx context.Context) error

// BackgroundTasks collects work to run after the response has been written.
// A fresh sink is seeded into every request's scope, so handlers and
// injected dependencies receive it by declaring an untagged
// *tachyon.BackgroundTasks field. Task failures and panics are logged and
// never affect the already-sent response.
type BackgroundTasks struct {
	mu    sync.Mutex
	tasks []Task
}

// NewBackgroundTasks creates an empty task sink.
func NewBackgroundTasks() *BackgroundTasks {
	return &BackgroundTasks{}
}

// Add schedules a task. Nil tasks are ignored.
func (b *BackgroundTasks) Add(t Task) {
	if t == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, t)
}

// Len reports the number of scheduled tasks.
func (b *BackgroundTasks) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// drain runs the scheduled tasks in order. The request's context is gone by
// the time tasks run, so they get a background context.
func (b *BackgroundTasks) drain(log *slog.Logger) {
	b.mu.Lock()
	tasks := b.tasks
	b.tasks = nil
	b.mu.Unlock()

	for _, t := range tasks {
		runTask(t, log)
	}
}

func runTask(t Task, log *slog.Logger) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("background task panicked", slog.Any("panic", p))
		}
	}()
	if err := t(context.Background()); err != nil {
		log.Error("background task failed", slog.Any("error", err))
	}
}
