// Package participant implements a workflow participant that delegates a step
// to an HTTP endpoint.
//
// For each consumed work item the participant resolves its effective
// parameters (Config overridden key by key by the work item's "params"),
// builds a request, dispatches it, writes the reply back into the work item
// and signals the engine exactly once.
//
// # Basic Usage
//
//	p, err := participant.New(participant.Config{
//	    Host:   "127.0.0.1",
//	    Port:   3000,
//	    Path:   "/my/index",
//	    Method: "POST",
//	}, eng)
//
//	err = p.Consume(ctx, wi)
//
// Without a response handler the reply lands in the "__jig_response__" and
// "__jig_status__" fields. Non-success statuses are recorded like any other
// response; only configuration, client setup, transport and handler failures
// fail the step.
//
// # Strategies
//
// Request bodies and reply handling can be customized with a DataPreparer and
// a ResponseHandler, set in Config, registered by name or passed per
// invocation in params:
//
//	p, err := participant.New(cfg, eng,
//	    participant.WithResponseHandler("reverse", participant.ResponseHandlerFunc(
//	        func(ctx context.Context, reply any, wi *workitem.WorkItem) error {
//	            wi.SetField("my_result", reverse(reply.(*httpclient.Response).String()))
//	            return nil
//	        })),
//	)
//
//	wi.SetParams(map[string]any{"responseHandler": "reverse"})
package participant
