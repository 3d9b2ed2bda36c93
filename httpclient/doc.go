// Package httpclient provides the HTTP client a participant dispatches through.
//
// A Client is bound to exactly one (host, port) target plus the transport
// options it was built with. It exposes one method per supported verb,
// encodes request bodies according to a content type and records the status
// of the last response it received.
//
// Non-success statuses are returned as ordinary responses. Only failures on
// the wire (connection refused, DNS, timeouts, unreadable bodies) are errors.
//
// # Basic Usage
//
//	client, err := httpclient.New("127.0.0.1", 3000, httpclient.TransportOptions{
//	    Timeout: 10 * time.Second,
//	})
//
//	resp, err := client.Post(ctx, "/my/index", map[string]any{"a": 1}, httpclient.RequestOptions{
//	    ContentType: "json",
//	})
package httpclient
