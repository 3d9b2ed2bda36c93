// Package engine defines the boundary between a workflow engine and the
// participants it delegates steps to, plus a small in-process engine that runs
// a sequence of steps over one work item.
package engine

import (
	"context"

	"github.com/kbukum/jig/workitem"
)

// Participant performs one step of a process on a work item. Consume is called
// once per scheduled step; the participant reports the outcome through the
// engine it was built with.
type Participant interface {
	Consume(ctx context.Context, wi *workitem.WorkItem) error
	Cancel(ctx context.Context, wi *workitem.WorkItem) error
}

// Engine is the completion channel a participant reports to. Exactly one of
// Reply or Fail is called per consumed work item.
type Engine interface {
	Reply(ctx context.Context, wi *workitem.WorkItem) error
	Fail(ctx context.Context, wi *workitem.WorkItem, err error)
}

// ParticipantFunc adapts a plain function to a Participant. The function's
// return value is its outcome: nil replies, an error fails the step.
type ParticipantFunc func(ctx context.Context, wi *workitem.WorkItem) error

// Consume calls f(ctx, wi).
func (f ParticipantFunc) Consume(ctx context.Context, wi *workitem.WorkItem) error {
	return f(ctx, wi)
}

// Cancel is a no-op.
func (f ParticipantFunc) Cancel(context.Context, *workitem.WorkItem) error {
	return nil
}
