package participant

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
	"github.com/kbukum/jig/workitem"
)

func TestAsDataPreparer(t *testing.T) {
	s := NewStrategies()
	s.AddDataPreparer("const", DataPreparerFunc(func(context.Context, *workitem.WorkItem) (any, error) {
		return "named", nil
	}))

	tests := []struct {
		name    string
		value   any
		want    any
		wantNil bool
		wantErr bool
	}{
		{name: "nil", value: nil, wantNil: true},
		{name: "interface", value: DataPreparerFunc(func(context.Context, *workitem.WorkItem) (any, error) { return "iface", nil }), want: "iface"},
		{name: "context func", value: func(context.Context, *workitem.WorkItem) (any, error) { return "ctx", nil }, want: "ctx"},
		{name: "func with error", value: func(*workitem.WorkItem) (any, error) { return "err-shape", nil }, want: "err-shape"},
		{name: "plain func", value: func(*workitem.WorkItem) any { return "plain" }, want: "plain"},
		{name: "registered name", value: "const", want: "named"},
		{name: "unknown name", value: "missing", wantErr: true},
		{name: "unsupported type", value: 42, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := asDataPreparer(tc.value, s)
			if tc.wantErr {
				if !errors.Is(err, errors.ErrCodeConfiguration) {
					t.Fatalf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantNil {
				if p != nil {
					t.Fatalf("expected nil preparer, got %T", p)
				}
				return
			}
			got, err := p.Prepare(context.Background(), workitem.New(nil))
			if err != nil || got != tc.want {
				t.Errorf("Prepare() = %v, %v; want %v", got, err, tc.want)
			}
		})
	}
}

func TestAsResponseHandler(t *testing.T) {
	s := NewStrategies()
	s.AddResponseHandler("mark", ResponseHandlerFunc(func(_ context.Context, _ any, wi *workitem.WorkItem) error {
		wi.SetField("handled", "named")
		return nil
	}))

	mark := func(v string) func(*workitem.WorkItem) {
		return func(wi *workitem.WorkItem) { wi.SetField("handled", v) }
	}

	tests := []struct {
		name    string
		value   any
		reply   any
		want    string
		wantErr bool
	}{
		{
			name:  "context func",
			value: func(_ context.Context, _ any, wi *workitem.WorkItem) error { mark("ctx")(wi); return nil },
			reply: "x",
			want:  "ctx",
		},
		{
			name:  "func without context",
			value: func(_ any, wi *workitem.WorkItem) error { mark("plain")(wi); return nil },
			reply: "x",
			want:  "plain",
		},
		{
			name:  "response func",
			value: func(resp *httpclient.Response, wi *workitem.WorkItem) error { mark(resp.String())(wi); return nil },
			reply: &httpclient.Response{StatusCode: 200, Body: []byte("body")},
			want:  "body",
		},
		{name: "registered name", value: "mark", reply: "x", want: "named"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := asResponseHandler(tc.value, s)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			wi := workitem.New(nil)
			if err := h.Handle(context.Background(), tc.reply, wi); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if got, _ := wi.Field("handled"); got != tc.want {
				t.Errorf("handled = %v, want %s", got, tc.want)
			}
		})
	}

	t.Run("response func rejects bare values", func(t *testing.T) {
		h, err := asResponseHandler(func(*httpclient.Response, *workitem.WorkItem) error { return nil }, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := h.Handle(context.Background(), "bare", workitem.New(nil)); err == nil {
			t.Fatal("expected an error for a non-response reply")
		}
	})

	t.Run("unknown and unsupported", func(t *testing.T) {
		for _, v := range []any{"missing", 3.5} {
			if _, err := asResponseHandler(v, s); !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("asResponseHandler(%v): expected configuration error, got %v", v, err)
			}
		}
	})

	t.Run("nil strategies", func(t *testing.T) {
		var nilSet *Strategies
		if _, ok := nilSet.ResponseHandler("mark"); ok {
			t.Error("nil set should find nothing")
		}
		_, err := asDataPreparer("any", nilSet)
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			t.Errorf("expected AppError, got %v", err)
		}
	})
}
