package participant

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/jig/component"
	"github.com/kbukum/jig/engine"
)

// Component manages a Participant's lifecycle in a component.Registry.
type Component struct {
	name   string
	cfg    Config
	engine engine.Engine
	opts   []Option

	mu          sync.RWMutex
	participant *Participant
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component that builds the participant on Start.
func NewComponent(name string, cfg Config, eng engine.Engine, opts ...Option) *Component {
	return &Component{name: name, cfg: cfg, engine: eng, opts: opts}
}

// Name implements component.Component.
func (c *Component) Name() string { return c.name }

// Start builds the participant and its baseline client.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.participant != nil {
		return nil
	}
	p, err := New(c.cfg, c.engine, append([]Option{WithName(c.name)}, c.opts...)...)
	if err != nil {
		return err
	}
	c.participant = p
	return nil
}

// Stop releases the baseline client.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.participant != nil {
		c.participant.Close()
		c.participant = nil
	}
	return nil
}

// Health reports whether the participant has been built.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.participant == nil {
		return component.Health{Name: c.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.name, Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	cfg := c.cfg
	cfg.ApplyDefaults()
	return component.Description{
		Name:    "HTTP participant " + c.name,
		Type:    "participant",
		Details: fmt.Sprintf("%s %s:%d%s (%s)", cfg.Method, cfg.Host, cfg.Port, cfg.Path, cfg.ContentType),
		Port:    cfg.Port,
	}
}

// Participant returns the running participant, or nil before Start.
func (c *Component) Participant() *Participant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.participant
}
