package httpclient

import "net/http"

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, first value per key.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// ContentType returns the Content-Type header, if any.
func (r *Response) ContentType() string {
	return r.Headers[http.CanonicalHeaderKey("Content-Type")]
}

// String returns the body as a string.
func (r *Response) String() string {
	return string(r.Body)
}

// Decode decodes the body according to the response Content-Type, or
// fallback when the server did not send one.
func (r *Response) Decode(fallback string) any {
	ct := r.ContentType()
	if ct == "" {
		ct = ResolveContentType(fallback)
	}
	return DecodeBody(r.Body, ct)
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
