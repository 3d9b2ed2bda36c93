package participant

import (
	"context"
	"net"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/jig/engine"
	"github.com/kbukum/jig/httpclient"
	"github.com/kbukum/jig/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstream starts a gin server and returns it with its host and port.
func upstream(t *testing.T, register func(r *gin.Engine)) (srv *httptest.Server, host string, port int) {
	t.Helper()
	r := gin.New()
	register(r)
	srv = httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u := srv.Listener.Addr().(*net.TCPAddr)
	return srv, u.IP.String(), u.Port
}

// countingDispatcher counts dispatches before delegating to HTTPDispatcher.
type countingDispatcher struct {
	calls atomic.Int32
	next  Dispatcher
}

func (d *countingDispatcher) Dispatch(ctx context.Context, client *httpclient.Client, req Request) (any, error) {
	d.calls.Add(1)
	next := d.next
	if next == nil {
		next = HTTPDispatcher{}
	}
	return next.Dispatch(ctx, client, req)
}

// countingFactory records every client it builds.
type countingFactory struct {
	mu      sync.Mutex
	clients []*httpclient.Client
}

func (f *countingFactory) build(host string, port int, opts httpclient.TransportOptions) (*httpclient.Client, error) {
	c, err := httpclient.New(host, port, opts)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.clients = append(f.clients, c)
	f.mu.Unlock()
	return c, nil
}

func (f *countingFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func newTestParticipant(t *testing.T, cfg Config, opts ...Option) (*Participant, *engine.Recorder) {
	t.Helper()
	rec := engine.NewRecorder()
	p, err := New(cfg, rec, append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error building participant: %v", err)
	}
	t.Cleanup(p.Close)
	return p, rec
}

func jsonHandler(status int, body any) gin.HandlerFunc {
	return func(c *gin.Context) { c.JSON(status, body) }
}
