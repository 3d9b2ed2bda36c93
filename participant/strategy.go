package participant

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
	"github.com/kbukum/jig/workitem"
)

// DataPreparer produces the request body for POST and PUT from a work item.
type DataPreparer interface {
	Prepare(ctx context.Context, wi *workitem.WorkItem) (any, error)
}

// DataPreparerFunc adapts a function to a DataPreparer.
type DataPreparerFunc func(ctx context.Context, wi *workitem.WorkItem) (any, error)

// Prepare calls f(ctx, wi).
func (f DataPreparerFunc) Prepare(ctx context.Context, wi *workitem.WorkItem) (any, error) {
	return f(ctx, wi)
}

// ResponseHandler takes full responsibility for writing a reply into the work
// item. reply is usually a *httpclient.Response; custom dispatchers may
// produce bare values.
type ResponseHandler interface {
	Handle(ctx context.Context, reply any, wi *workitem.WorkItem) error
}

// ResponseHandlerFunc adapts a function to a ResponseHandler.
type ResponseHandlerFunc func(ctx context.Context, reply any, wi *workitem.WorkItem) error

// Handle calls f(ctx, reply, wi).
func (f ResponseHandlerFunc) Handle(ctx context.Context, reply any, wi *workitem.WorkItem) error {
	return f(ctx, reply, wi)
}

// Strategies holds named data preparers and response handlers so that
// configuration files and work item params can refer to them by name.
type Strategies struct {
	mu        sync.RWMutex
	preparers map[string]DataPreparer
	handlers  map[string]ResponseHandler
}

// NewStrategies creates an empty set.
func NewStrategies() *Strategies {
	return &Strategies{
		preparers: make(map[string]DataPreparer),
		handlers:  make(map[string]ResponseHandler),
	}
}

// AddDataPreparer registers p under name, replacing any previous entry.
func (s *Strategies) AddDataPreparer(name string, p DataPreparer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preparers[name] = p
}

// AddResponseHandler registers h under name, replacing any previous entry.
func (s *Strategies) AddResponseHandler(name string, h ResponseHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = h
}

// DataPreparer looks up a preparer by name.
func (s *Strategies) DataPreparer(name string) (DataPreparer, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.preparers[name]
	return p, ok
}

// ResponseHandler looks up a handler by name.
func (s *Strategies) ResponseHandler(name string) (ResponseHandler, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[name]
	return h, ok
}

// asDataPreparer converts a configured value into a DataPreparer. Accepted are
// DataPreparer values, the function shapes below and names registered in s.
// nil yields nil.
func asDataPreparer(v any, s *Strategies) (DataPreparer, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case DataPreparer:
		return p, nil
	case func(context.Context, *workitem.WorkItem) (any, error):
		return DataPreparerFunc(p), nil
	case func(*workitem.WorkItem) (any, error):
		return DataPreparerFunc(func(_ context.Context, wi *workitem.WorkItem) (any, error) {
			return p(wi)
		}), nil
	case func(*workitem.WorkItem) any:
		return DataPreparerFunc(func(_ context.Context, wi *workitem.WorkItem) (any, error) {
			return p(wi), nil
		}), nil
	case string:
		if found, ok := s.DataPreparer(p); ok {
			return found, nil
		}
		return nil, errors.Configuration(KeyDataPreparer, fmt.Sprintf("unknown data preparer %q", p))
	default:
		return nil, errors.Configuration(KeyDataPreparer, fmt.Sprintf("unsupported data preparer type %T", v))
	}
}

// asResponseHandler converts a configured value into a ResponseHandler.
func asResponseHandler(v any, s *Strategies) (ResponseHandler, error) {
	switch h := v.(type) {
	case nil:
		return nil, nil
	case ResponseHandler:
		return h, nil
	case func(context.Context, any, *workitem.WorkItem) error:
		return ResponseHandlerFunc(h), nil
	case func(any, *workitem.WorkItem) error:
		return ResponseHandlerFunc(func(_ context.Context, reply any, wi *workitem.WorkItem) error {
			return h(reply, wi)
		}), nil
	case func(*httpclient.Response, *workitem.WorkItem) error:
		return ResponseHandlerFunc(func(_ context.Context, reply any, wi *workitem.WorkItem) error {
			resp, ok := reply.(*httpclient.Response)
			if !ok {
				return fmt.Errorf("expected *httpclient.Response, got %T", reply)
			}
			return h(resp, wi)
		}), nil
	case string:
		if found, ok := s.ResponseHandler(h); ok {
			return found, nil
		}
		return nil, errors.Configuration(KeyResponseHandler, fmt.Sprintf("unknown response handler %q", h))
	default:
		return nil, errors.Configuration(KeyResponseHandler, fmt.Sprintf("unsupported response handler type %T", v))
	}
}
