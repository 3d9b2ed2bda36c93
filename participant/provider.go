package participant

import (
	"net"
	"strconv"
	"sync"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
)

// ClientFactory builds an HTTP client for a target.
type ClientFactory func(host string, port int, opts httpclient.TransportOptions) (*httpclient.Client, error)

// ClientProvider owns the baseline client built from the participant's
// configuration. Invocations that target the baseline's (host, port) share it;
// any other target gets a new client scoped to that invocation. The baseline
// is never replaced.
type ClientProvider struct {
	mu        sync.Mutex
	baseline  *httpclient.Client
	transport httpclient.TransportOptions
	factory   ClientFactory
}

// NewClientProvider builds the baseline client for host:port.
func NewClientProvider(host string, port int, transport httpclient.TransportOptions, factory ClientFactory) (*ClientProvider, error) {
	if factory == nil {
		factory = httpclient.New
	}
	baseline, err := factory(host, port, transport)
	if err != nil {
		return nil, errors.ConnectionSetup(joinTarget(host, port), err)
	}
	return &ClientProvider{baseline: baseline, transport: transport, factory: factory}, nil
}

// Baseline returns the client built at construction.
func (p *ClientProvider) Baseline() *httpclient.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.baseline
}

// ClientFor returns a client bound to host:port. scoped reports whether the
// client was built for this call only; the caller must Close scoped clients.
// Only the lookup and construction are serialized. Requests are never made
// while the lock is held.
func (p *ClientProvider) ClientFor(host string, port int) (client *httpclient.Client, scoped bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.baseline.Matches(host, port) {
		return p.baseline, false, nil
	}

	client, err = p.factory(host, port, p.transport)
	if err != nil {
		return nil, false, errors.ConnectionSetup(joinTarget(host, port), err)
	}
	return client, true, nil
}

// Close releases the baseline client's idle connections.
func (p *ClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseline.Close()
}

func joinTarget(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
