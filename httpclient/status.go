package httpclient

import (
	"context"
	"sync/atomic"
)

type statusKey struct{}

// StatusRecorder keeps the status of the last response received by requests
// made with a context from WithStatusRecorder. Unlike Client.LastStatus it is
// not shared with other callers of the same client.
type StatusRecorder struct {
	status atomic.Int64
}

// LastStatus returns the recorded status, and false when no response was
// received.
func (r *StatusRecorder) LastStatus() (int, bool) {
	s := r.status.Load()
	return int(s), s != 0
}

// WithStatusRecorder returns a context whose requests report their status to
// the returned recorder.
func WithStatusRecorder(ctx context.Context) (context.Context, *StatusRecorder) {
	r := &StatusRecorder{}
	return context.WithValue(ctx, statusKey{}, r), r
}

func recordStatus(ctx context.Context, code int) {
	if r, ok := ctx.Value(statusKey{}).(*StatusRecorder); ok {
		r.status.Store(int64(code))
	}
}
