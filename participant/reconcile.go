package participant

import (
	"context"

	"github.com/kbukum/jig/httpclient"
	"github.com/kbukum/jig/workitem"
)

// Fields written by the default response handler.
const (
	FieldResponse = "__jig_response__"
	FieldStatus   = "__jig_status__"
)

// StatusSource reports the status of the last response received. Consume
// passes a per-invocation httpclient.StatusRecorder, so concurrent
// invocations sharing the baseline client never see each other's status.
type StatusSource interface {
	LastStatus() (int, bool)
}

// DefaultResponseHandler writes the reply into FieldResponse and the status
// code into FieldStatus.
//
// A *httpclient.Response body is decoded according to its Content-Type header,
// falling back to ContentType. Any other reply is written as is, and the status
// is taken from Status when it has one. Without a status FieldStatus is left
// untouched.
type DefaultResponseHandler struct {
	ContentType string
	Status      StatusSource
}

// Handle implements ResponseHandler.
func (h DefaultResponseHandler) Handle(_ context.Context, reply any, wi *workitem.WorkItem) error {
	if resp, ok := reply.(*httpclient.Response); ok {
		wi.SetField(FieldResponse, resp.Decode(h.ContentType))
		wi.SetField(FieldStatus, resp.StatusCode)
		return nil
	}

	wi.SetField(FieldResponse, reply)
	if h.Status != nil {
		if status, ok := h.Status.LastStatus(); ok {
			wi.SetField(FieldStatus, status)
		}
	}
	return nil
}

// statusOf returns the status code a reply represents, or 0.
func statusOf(reply any, src StatusSource) int {
	if resp, ok := reply.(*httpclient.Response); ok {
		return resp.StatusCode
	}
	if src != nil {
		if status, ok := src.LastStatus(); ok {
			return status
		}
	}
	return 0
}
