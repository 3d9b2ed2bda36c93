package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/net/http2"

	"github.com/kbukum/jig/version"
)

// Client is an HTTP client bound to one (host, port) target.
// It is safe for concurrent use.
type Client struct {
	host       string
	port       int
	baseURL    *url.URL
	options    TransportOptions
	httpClient *http.Client
	lastStatus atomic.Int64
}

// New creates a client for host:port. Invalid targets or options fail with an
// ErrCodeSetup error.
func New(host string, port int, opts TransportOptions) (*Client, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, NewSetupError("invalid transport options", err)
	}
	if err := validateHost(host); err != nil {
		return nil, NewSetupError(fmt.Sprintf("invalid host %q", host), err)
	}
	if port < 1 || port > 65535 {
		return nil, NewSetupError(fmt.Sprintf("invalid port %d", port), nil)
	}

	base, err := url.Parse(opts.Scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, NewSetupError("invalid target", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = opts.MaxIdleConnsPerHost
	}

	tlsCfg, err := opts.TLS.Build()
	if err != nil {
		return nil, NewSetupError("invalid tls options", err)
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	if opts.HTTP2 {
		if _, err := http2.ConfigureTransports(transport); err != nil {
			return nil, NewSetupError("configure http2", err)
		}
	}

	return &Client{
		host:    host,
		port:    port,
		baseURL: base,
		options: opts,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}, nil
}

// Host returns the bound host.
func (c *Client) Host() string { return c.host }

// Port returns the bound port.
func (c *Client) Port() int { return c.port }

// BaseURL returns the scheme://host:port the client targets.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Options returns the transport options the client was built with.
func (c *Client) Options() TransportOptions { return c.options }

// Matches reports whether the client is bound to host:port.
func (c *Client) Matches(host string, port int) bool {
	return c.host == host && c.port == port
}

// LastStatus returns the status code of the most recent response received by
// this client, and false when none has been received yet.
func (c *Client) LastStatus() (int, bool) {
	s := c.lastStatus.Load()
	return int(s), s != 0
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts)
}

// Post issues a POST request with body.
func (c *Client) Post(ctx context.Context, path string, body any, opts RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts)
}

// Put issues a PUT request with body.
func (c *Client) Put(ctx context.Context, path string, body any, opts RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts)
}

// Do executes a request and returns the complete response. Any status code is
// a valid response.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts RequestOptions) (*Response, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	httpReq, err := c.buildRequest(ctx, method, path, body, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	c.lastStatus.Store(int64(resp.StatusCode))
	recordStatus(ctx, resp.StatusCode)
	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       data,
	}, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// buildRequest constructs an *http.Request against the bound target.
func (c *Client) buildRequest(ctx context.Context, method, path string, body any, opts RequestOptions) (*http.Request, error) {
	ref, err := url.Parse("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, NewSetupError(fmt.Sprintf("invalid path %q", path), err)
	}
	target := c.baseURL.ResolveReference(ref)

	contentType := ResolveContentType(opts.ContentType)
	reader, err := encodeBody(body, contentType)
	if err != nil {
		return nil, NewEncodeError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, NewSetupError("create request", err)
	}

	if len(opts.Params) > 0 {
		q := httpReq.URL.Query()
		for k, vs := range opts.Query() {
			q[k] = vs
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.options.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		httpReq.Header.Set(k, v)
	}

	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", version.UserAgent())
	}
	if reader != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Accept") == "" && isJSON(contentType) {
		httpReq.Header.Set("Accept", MediaJSON)
	}

	return httpReq, nil
}

func validateHost(host string) error {
	if strings.TrimSpace(host) == "" {
		return errors.New("host is empty")
	}
	if strings.ContainsAny(host, "/?#@ \t\r\n") {
		return errors.New("host contains invalid characters")
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}
