package task

import (
	"sync"

	"go.uber.org/zap"
)

const logEventTaskPanicked = "background_task_panicked"

// Dispatcher runs fire-and-forget work on background goroutines. Dispatched
// tasks have no return channel to their caller; a panicking task is isolated
// and logged rather than crashing the process.
type Dispatcher struct {
	logger    *zap.Logger
	waitGroup sync.WaitGroup
}

// NewDispatcher creates a Dispatcher that logs task panics with the provided logger.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Dispatch schedules the task to run without blocking the caller.
func (dispatcher *Dispatcher) Dispatch(runTask func()) {
	if dispatcher == nil || runTask == nil {
		return
	}
	dispatcher.waitGroup.Add(1)
	go func() {
		defer dispatcher.waitGroup.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				dispatcher.logger.Error(logEventTaskPanicked, zap.Any("panic", recovered))
			}
		}()
		runTask()
	}()
}

// Wait blocks until every dispatched task has finished. Used on shutdown so
// in-flight notifications can complete.
func (dispatcher *Dispatcher) Wait() {
	if dispatcher == nil {
		return
	}
	dispatcher.waitGroup.Wait()
}
