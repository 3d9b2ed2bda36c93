package participant

import (
	"context"
	"maps"
	"net/http"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
	"github.com/kbukum/jig/workitem"
)

// Request is a fully built HTTP request, ready for dispatch.
type Request struct {
	Method string
	Path   string
	// Body is nil for GET and DELETE.
	Body any
	// Options is the merged request option map handed to the client.
	Options map[string]any
}

// HasBody reports whether the method carries a body.
func (r Request) HasBody() bool {
	return r.Method == http.MethodPost || r.Method == http.MethodPut
}

// BuildRequest turns the effective parameters and the work item into a
// request. An unsupported method fails before anything else runs. For POST
// and PUT the body comes from the data preparer when one is set, otherwise
// from the work item's fields.
func BuildRequest(ctx context.Context, eff Effective, wi *workitem.WorkItem) (Request, error) {
	if !supportedMethod(eff.Method) {
		return Request{}, errors.UnsupportedMethod(eff.Method)
	}

	req := Request{
		Method:  eff.Method,
		Path:    eff.Path,
		Options: requestOptions(eff),
	}

	if req.HasBody() {
		if eff.DataPreparer != nil {
			body, err := eff.DataPreparer.Prepare(ctx, wi)
			if err != nil {
				return Request{}, errors.Handler(KeyDataPreparer, err)
			}
			req.Body = body
		} else {
			req.Body = wi.ToMap()
		}
	}

	return req, nil
}

// requestOptions starts from {contentType, params} and lays the configured
// request options over it. Configured options are canonicalized first so they
// win on collisions whichever spelling they use.
func requestOptions(eff Effective) map[string]any {
	opts := map[string]any{
		KeyContentType: eff.ContentType,
		KeyParams:      nil,
	}
	if len(eff.Params) > 0 {
		opts[KeyParams] = maps.Clone(eff.Params)
	}
	maps.Copy(opts, httpclient.NormalizeRequestOptions(eff.RequestOptions))
	return opts
}
