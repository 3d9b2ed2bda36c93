package component

import (
	"context"
	"fmt"
	"testing"
)

// fakeComponent implements Component for testing.
type fakeComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (f *fakeComponent) Name() string { return f.name }
func (f *fakeComponent) Start(context.Context) error {
	if f.startOrder != nil {
		*f.startOrder = append(*f.startOrder, f.name)
	}
	return f.startErr
}
func (f *fakeComponent) Stop(context.Context) error {
	if f.stopOrder != nil {
		*f.stopOrder = append(*f.stopOrder, f.name)
	}
	return f.stopErr
}
func (f *fakeComponent) Health(context.Context) Health { return f.health }

type describedComponent struct {
	fakeComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeComponent{name: "jig"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "jig"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "jig"})

	if got := r.Get("jig"); got == nil || got.Name() != "jig" {
		t.Errorf("expected registered component, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Error("expected nil for unregistered component")
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 component, got %d", len(r.All()))
	}
}

func TestStartAllOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	_ = r.Register(&fakeComponent{name: "telemetry", startOrder: &order})
	_ = r.Register(&fakeComponent{name: "jig", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "telemetry" || order[1] != "jig" {
		t.Errorf("expected start order [telemetry, jig], got %v", order)
	}

	// Already started components are not started twice.
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 {
		t.Errorf("expected no restarts, got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	_ = r.Register(&fakeComponent{name: "jig", startErr: fmt.Errorf("bad config")})
	_ = r.Register(&fakeComponent{name: "later", startOrder: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Error("expected error from StartAll")
	}
	if len(order) != 0 {
		t.Error("expected later components to be skipped after a failure")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	for _, name := range []string{"telemetry", "jig", "notify"} {
		_ = r.Register(&fakeComponent{name: name, stopOrder: &order})
	}

	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 3 || order[0] != "notify" || order[1] != "jig" || order[2] != "telemetry" {
		t.Errorf("expected reverse stop order [notify, jig, telemetry], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	_ = r.Register(&fakeComponent{name: "jig", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "jig", stopErr: fmt.Errorf("stop failed")})
	_ = r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "jig", health: Health{Name: "jig", Status: StatusHealthy}})
	_ = r.Register(&fakeComponent{name: "telemetry", health: Health{Name: "telemetry", Status: StatusDegraded, Message: "exporter unreachable"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusDegraded {
		t.Errorf("unexpected health results %+v", results)
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "plain"})
	_ = r.Register(&describedComponent{
		fakeComponent: fakeComponent{name: "jig"},
		desc:          Description{Type: "participant", Details: "POST 127.0.0.1:3000/"},
	})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "jig" {
		t.Errorf("expected name to default to the component name, got %q", descs[0].Name)
	}
}
