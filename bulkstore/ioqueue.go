package bulkstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitshard/bulkstore/filebackend"
)

// TaskType annotates an IOQueue task with the concurrency class it
// belongs to, per spec.md §5/§9: multiple reads may run concurrently, a
// single writer excludes other writers and readers, and a critical task
// excludes everything.
type TaskType int

const (
	TaskRead TaskType = iota
	TaskAppend
	TaskWrite
	TaskCritical
)

// IOQueue is an optional collaborator that wraps a *filebackend.File
// with per-task timeouts and the read/write/critical concurrency policy
// above. BulkStorage does not use it — the controller works directly
// against filebackend — but callers that drive a *filebackend.File
// themselves can use one to bound how long any single file operation may
// block.
type IOQueue struct {
	mu   sync.RWMutex
	file *filebackend.File
}

// NewIOQueue wraps file for timeout-bounded access.
func NewIOQueue(file *filebackend.File) *IOQueue {
	return &IOQueue{file: file}
}

// Run executes fn under the concurrency class implied by taskType,
// aborting with ctx.Err() if ctx is done before fn returns. fn itself is
// not preemptible mid-flight — cancellation only prevents Run from
// waiting on a result that is no longer wanted, matching the "timeouts
// fail the task" semantics rather than interrupting a live file write.
func (q *IOQueue) Run(ctx context.Context, taskType TaskType, fn func(*filebackend.File) error) error {
	done := make(chan error, 1)

	go func() {
		switch taskType {
		case TaskRead:
			q.mu.RLock()
			defer q.mu.RUnlock()
		default:
			q.mu.Lock()
			defer q.mu.Unlock()
		}
		done <- fn(q.file)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("bulkstore: %s task timed out: %w", taskTypeName(taskType), ctx.Err())
	}
}

func taskTypeName(t TaskType) string {
	switch t {
	case TaskRead:
		return "read"
	case TaskAppend:
		return "append"
	case TaskWrite:
		return "write"
	case TaskCritical:
		return "critical"
	default:
		return "unknown"
	}
}
