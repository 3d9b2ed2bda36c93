package participant

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
)

// Dispatcher sends a built request through a client. A successful dispatch
// normally returns a *httpclient.Response; any status code counts as success.
type Dispatcher interface {
	Dispatch(ctx context.Context, client *httpclient.Client, req Request) (any, error)
}

// DispatcherFunc adapts a function to a Dispatcher.
type DispatcherFunc func(ctx context.Context, client *httpclient.Client, req Request) (any, error)

// Dispatch calls f(ctx, client, req).
func (f DispatcherFunc) Dispatch(ctx context.Context, client *httpclient.Client, req Request) (any, error) {
	return f(ctx, client, req)
}

// HTTPDispatcher routes a request to the client method matching its verb.
type HTTPDispatcher struct{}

// Dispatch implements Dispatcher.
func (HTTPDispatcher) Dispatch(ctx context.Context, client *httpclient.Client, req Request) (any, error) {
	opts, err := httpclient.RequestOptionsFromMap(req.Options)
	if err != nil {
		return nil, errors.Configuration(KeyRequestOptions, err.Error()).WithCause(err)
	}

	var resp *httpclient.Response
	switch req.Method {
	case http.MethodGet:
		resp, err = client.Get(ctx, req.Path, opts)
	case http.MethodPost:
		resp, err = client.Post(ctx, req.Path, req.Body, opts)
	case http.MethodPut:
		resp, err = client.Put(ctx, req.Path, req.Body, opts)
	case http.MethodDelete:
		resp, err = client.Delete(ctx, req.Path, opts)
	default:
		return nil, errors.UnsupportedMethod(req.Method)
	}
	if err != nil {
		return nil, dispatchError(joinTarget(client.Host(), client.Port()), err)
	}
	return resp, nil
}

// dispatchError classifies a dispatch failure. AppErrors pass through.
func dispatchError(target string, err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	var clientErr *httpclient.Error
	if stderrors.As(err, &clientErr) {
		switch clientErr.Code {
		case httpclient.ErrCodeTimeout:
			return errors.Timeout(target, err)
		case httpclient.ErrCodeEncode:
			return errors.Configuration(KeyContentType, "request body cannot be encoded: "+clientErr.Message).WithCause(err)
		case httpclient.ErrCodeSetup:
			return errors.Configuration(KeyPath, clientErr.Message).WithCause(err)
		}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(target, err)
	}
	return errors.Transport(target, err)
}
