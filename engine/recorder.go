package engine

import (
	"context"
	"sync"

	"github.com/kbukum/jig/workitem"
)

// Failure is a failed work item together with its error.
type Failure struct {
	WorkItem *workitem.WorkItem
	Err      error
}

// Recorder is an Engine that keeps every reply and failure in memory.
type Recorder struct {
	mu       sync.Mutex
	replies  []*workitem.WorkItem
	failures []Failure
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Reply records a completed work item.
func (r *Recorder) Reply(_ context.Context, wi *workitem.WorkItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, wi)
	return nil
}

// Fail records a failed work item.
func (r *Recorder) Fail(_ context.Context, wi *workitem.WorkItem, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, Failure{WorkItem: wi, Err: err})
}

// Replies returns the recorded replies in order.
func (r *Recorder) Replies() []*workitem.WorkItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*workitem.WorkItem(nil), r.replies...)
}

// Failures returns the recorded failures in order.
func (r *Recorder) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Failure(nil), r.failures...)
}

// Signals returns the total number of replies and failures.
func (r *Recorder) Signals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies) + len(r.failures)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = nil
	r.failures = nil
}
