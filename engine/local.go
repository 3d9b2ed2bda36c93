package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/logger"
	"github.com/kbukum/jig/workitem"
)

var (
	// ErrNotPending is returned by Reply when the work item is not waiting on
	// a step.
	ErrNotPending = stderrors.New("engine: work item is not pending")
	// ErrAlreadySignalled is returned by Reply when the step already completed.
	ErrAlreadySignalled = stderrors.New("engine: work item already completed")
)

// Step is one participant invocation in a process. Params replace the work
// item's params field before the participant consumes it.
type Step struct {
	Participant string         `yaml:"participant" mapstructure:"participant" json:"participant"`
	Params      map[string]any `yaml:"params" mapstructure:"params" json:"params,omitempty"`
}

// Process is a named sequence of steps.
type Process struct {
	Name  string `yaml:"name" mapstructure:"name" json:"name"`
	Steps []Step `yaml:"steps" mapstructure:"steps" json:"steps"`
}

type outcome struct {
	err error
}

type run struct {
	id   string
	done chan struct{}
	wi   *workitem.WorkItem
	err  error
}

// Local is an in-process engine. It runs a process's steps in order over one
// work item and is itself the Engine its participants reply to.
//
// A participant must signal Reply or Fail before Consume returns. When it
// signals neither, Consume's return value is taken as the outcome.
type Local struct {
	mu           sync.Mutex
	participants map[string]Participant
	pending      map[string]chan outcome
	runs         map[string]*run
	log          *logger.Logger
}

// NewLocal creates an engine with no registered participants.
func NewLocal() *Local {
	return &Local{
		participants: make(map[string]Participant),
		pending:      make(map[string]chan outcome),
		runs:         make(map[string]*run),
		log:          logger.WithComponent("engine"),
	}
}

// Register makes p available to process steps under name.
func (l *Local) Register(name string, p Participant) error {
	if name == "" || p == nil {
		return errors.Validation("participant name and implementation are required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.participants[name]; exists {
		return errors.Validation(fmt.Sprintf("participant %s already registered", name))
	}
	l.participants[name] = p
	l.log.Debug("Participant registered", logger.Fields(logger.FieldParticipant, name))
	return nil
}

// Participant returns the participant registered under name.
func (l *Local) Participant(name string) (Participant, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.participants[name]
	return p, ok
}

// Reply completes the pending step for wi.
func (l *Local) Reply(_ context.Context, wi *workitem.WorkItem) error {
	return l.signal(wi, outcome{})
}

// Fail completes the pending step for wi with err.
func (l *Local) Fail(_ context.Context, wi *workitem.WorkItem, err error) {
	if sigErr := l.signal(wi, outcome{err: err}); sigErr != nil {
		l.log.Warn("Dropped failure signal", logger.MergeWithError(
			logger.Fields(logger.FieldWorkItemID, wi.ID()), sigErr))
	}
}

func (l *Local) signal(wi *workitem.WorkItem, o outcome) error {
	l.mu.Lock()
	ch, ok := l.pending[wi.ID()]
	l.mu.Unlock()
	if !ok {
		return ErrNotPending
	}
	select {
	case ch <- o:
		return nil
	default:
		return ErrAlreadySignalled
	}
}

// Launch starts proc on wi in the background and returns the run ID. ctx
// governs the whole run.
func (l *Local) Launch(ctx context.Context, proc Process, wi *workitem.WorkItem) (string, error) {
	if len(proc.Steps) == 0 {
		return "", errors.Validation(fmt.Sprintf("process %q has no steps", proc.Name))
	}
	for _, step := range proc.Steps {
		if _, ok := l.Participant(step.Participant); !ok {
			return "", errors.Configuration("participant",
				fmt.Sprintf("participant %q is not registered", step.Participant))
		}
	}

	r := &run{id: uuid.NewString(), done: make(chan struct{}), wi: wi}
	l.mu.Lock()
	l.runs[r.id] = r
	l.mu.Unlock()

	l.log.Info("Process launched", logger.Fields(
		logger.FieldRunID, r.id,
		logger.FieldWorkItemID, wi.ID(),
		"process", proc.Name,
	))

	go l.execute(ctx, r, proc)
	return r.id, nil
}

// Wait blocks until the run finishes and returns its work item and the first
// step failure, if any.
func (l *Local) Wait(ctx context.Context, runID string) (*workitem.WorkItem, error) {
	l.mu.Lock()
	r, ok := l.runs[runID]
	l.mu.Unlock()
	if !ok {
		return nil, errors.Validation(fmt.Sprintf("unknown run %s", runID))
	}

	select {
	case <-r.done:
		return r.wi, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run launches proc on wi and waits for it to finish.
func (l *Local) Run(ctx context.Context, proc Process, wi *workitem.WorkItem) (*workitem.WorkItem, error) {
	id, err := l.Launch(ctx, proc, wi)
	if err != nil {
		return nil, err
	}
	return l.Wait(ctx, id)
}

func (l *Local) execute(ctx context.Context, r *run, proc Process) {
	defer close(r.done)

	for i, step := range proc.Steps {
		if err := ctx.Err(); err != nil {
			r.err = err
			return
		}

		p, _ := l.Participant(step.Participant)
		if step.Params != nil {
			r.wi.SetParams(step.Params)
		} else {
			r.wi.DeleteField(workitem.FieldParams)
		}

		fields := logger.Fields(
			logger.FieldRunID, r.id,
			logger.FieldStep, i,
			logger.FieldParticipant, step.Participant,
		)
		l.log.Debug("Step started", fields)

		if err := l.consume(ctx, p, r.wi); err != nil {
			l.log.Error("Step failed", logger.MergeWithError(fields, err))
			r.err = fmt.Errorf("step %d (%s): %w", i, step.Participant, err)
			return
		}
		l.log.Debug("Step completed", fields)
	}

	l.log.Info("Process completed", logger.Fields(logger.FieldRunID, r.id, "process", proc.Name))
}

func (l *Local) consume(ctx context.Context, p Participant, wi *workitem.WorkItem) error {
	ch := make(chan outcome, 1)

	l.mu.Lock()
	if _, busy := l.pending[wi.ID()]; busy {
		l.mu.Unlock()
		return errors.Validation(fmt.Sprintf("work item %s is already in a step", wi.ID()))
	}
	l.pending[wi.ID()] = ch
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.pending, wi.ID())
		l.mu.Unlock()
	}()

	err := p.Consume(ctx, wi)
	select {
	case o := <-ch:
		return o.err
	default:
		return err
	}
}
