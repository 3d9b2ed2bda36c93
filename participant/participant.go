package participant

import (
	"context"
	"strconv"

	"github.com/kbukum/jig/engine"
	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
	"github.com/kbukum/jig/logger"
	"github.com/kbukum/jig/observability"
	"github.com/kbukum/jig/workitem"
)

// DefaultName is the participant name used in logs, spans and metrics.
const DefaultName = "jig"

// Stage is a step in the lifecycle of one invocation.
type Stage string

const (
	StageReceived   Stage = "received"
	StageResolved   Stage = "resolved"
	StageDispatched Stage = "dispatched"
	StageReconciled Stage = "reconciled"
	StageCompleted  Stage = "completed"
)

// Participant delegates a workflow step to an HTTP endpoint. It is safe for
// concurrent use; the only state shared between invocations is the baseline
// client.
type Participant struct {
	name       string
	cfg        Config
	engine     engine.Engine
	provider   *ClientProvider
	dispatcher Dispatcher
	strategies *Strategies
	metrics    *observability.Metrics
	log        *logger.Logger
}

var _ engine.Participant = (*Participant)(nil)

type options struct {
	name       string
	dispatcher Dispatcher
	factory    ClientFactory
	strategies *Strategies
	metrics    *observability.Metrics
	log        *logger.Logger
}

// Option configures a Participant.
type Option func(*options)

// WithName sets the participant name. Defaults to DefaultName.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDispatcher replaces the HTTPDispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithClientFactory replaces httpclient.New for building clients.
func WithClientFactory(f ClientFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithDataPreparer registers p under name for use in configuration and params.
func WithDataPreparer(name string, p DataPreparer) Option {
	return func(o *options) { o.strategies.AddDataPreparer(name, p) }
}

// WithResponseHandler registers h under name for use in configuration and params.
func WithResponseHandler(name string, h ResponseHandler) Option {
	return func(o *options) { o.strategies.AddResponseHandler(name, h) }
}

// WithMetrics records invocation metrics. Metrics are off when nil.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New builds a participant that reports to eng. cfg is copied, defaulted and
// validated, and the baseline client is built for cfg's host and port.
func New(cfg Config, eng engine.Engine, opts ...Option) (*Participant, error) {
	if eng == nil {
		return nil, errors.Configuration("engine", "an engine is required")
	}

	o := options{
		name:       DefaultName,
		dispatcher: HTTPDispatcher{},
		strategies: NewStrategies(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}

	cfg = cfg.clone()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DataPreparer == nil && cfg.DataPreparerName != "" {
		p, err := asDataPreparer(cfg.DataPreparerName, o.strategies)
		if err != nil {
			return nil, err
		}
		cfg.DataPreparer = p
	}
	if cfg.ResponseHandler == nil && cfg.ResponseHandlerName != "" {
		h, err := asResponseHandler(cfg.ResponseHandlerName, o.strategies)
		if err != nil {
			return nil, err
		}
		cfg.ResponseHandler = h
	}

	provider, err := NewClientProvider(cfg.Host, cfg.Port, cfg.Transport, o.factory)
	if err != nil {
		return nil, err
	}

	return &Participant{
		name:       o.name,
		cfg:        cfg,
		engine:     eng,
		provider:   provider,
		dispatcher: o.dispatcher,
		strategies: o.strategies,
		metrics:    o.metrics,
		log:        o.log.WithComponent(o.name),
	}, nil
}

// Name returns the participant name.
func (p *Participant) Name() string { return p.name }

// Config returns a copy of the participant's configuration.
func (p *Participant) Config() Config { return p.cfg.clone() }

// Provider returns the client provider.
func (p *Participant) Provider() *ClientProvider { return p.provider }

// Consume performs one invocation on wi and signals the engine exactly once:
// Reply on success, Fail otherwise. The failure is also returned.
func (p *Participant) Consume(ctx context.Context, wi *workitem.WorkItem) error {
	inv := observability.NewInvocation(p.name, wi.ID(), p.metrics)
	ctx, span := inv.Start(ctx)
	log := p.log.WithFields(logger.Fields(logger.FieldWorkItemID, wi.ID()))

	stage := StageReceived
	p.mark(ctx, inv, log, stage)

	status, err := p.invoke(ctx, inv, log, wi, &stage)
	if err != nil {
		appErr := errors.Wrap(err).WithDetail("stage", string(stage))
		log.Error("Invocation failed", logger.Fields(
			logger.FieldStage, string(stage),
			logger.FieldErrorCode, string(appErr.Code),
			logger.FieldError, appErr.Error(),
		))
		p.engine.Fail(ctx, wi, appErr)
		inv.End(ctx, span, string(appErr.Code), appErr)
		return appErr
	}

	if err := p.engine.Reply(ctx, wi); err != nil {
		log.Error("Reply to engine failed", logger.ErrorFields("reply", err))
		inv.End(ctx, span, "reply_failed", err)
		return err
	}
	stage = StageCompleted
	p.mark(ctx, inv, log, stage)
	fields := logger.DurationFields("consume", inv.Duration())
	fields[logger.FieldStatus] = status
	log.Info("Invocation completed", fields)
	inv.End(ctx, span, strconv.Itoa(status), nil)
	return nil
}

// Cancel is accepted and ignored. In-flight requests run to completion or
// until the transport times out.
func (p *Participant) Cancel(_ context.Context, wi *workitem.WorkItem) error {
	p.log.Debug("Cancel ignored", logger.Fields(logger.FieldWorkItemID, wi.ID()))
	return nil
}

// Close releases the baseline client.
func (p *Participant) Close() {
	p.provider.Close()
}

func (p *Participant) invoke(ctx context.Context, inv *observability.Invocation, log *logger.Logger, wi *workitem.WorkItem, stage *Stage) (int, error) {
	overrides, err := ParseOverrides(wi.Params(), p.strategies)
	if err != nil {
		return 0, err
	}
	eff := Resolve(p.cfg, overrides)
	inv.Method = eff.Method
	log = log.WithFields(logger.Fields(
		logger.FieldMethod, eff.Method,
		logger.FieldTarget, eff.Target(),
		logger.FieldPath, eff.Path,
	))
	if len(overrides.Ignored) > 0 {
		log.Debug("Ignoring unrecognized params", logger.Fields("keys", overrides.Ignored))
	}
	*stage = StageResolved
	p.mark(ctx, inv, log, *stage)

	req, err := BuildRequest(ctx, eff, wi)
	if err != nil {
		return 0, err
	}

	client, scoped, err := p.provider.ClientFor(eff.Host, eff.Port)
	if err != nil {
		return 0, err
	}
	if scoped {
		log.Debug("Using invocation-scoped client")
		defer client.Close()
	}

	dispatchCtx, recorder := httpclient.WithStatusRecorder(ctx)
	reply, err := p.dispatcher.Dispatch(dispatchCtx, client, req)
	if err != nil {
		return 0, dispatchError(eff.Target(), err)
	}
	*stage = StageDispatched
	status := statusOf(reply, recorder)
	p.mark(ctx, inv, log, *stage, logger.FieldStatus, status)

	if eff.ResponseHandler != nil {
		if err := eff.ResponseHandler.Handle(ctx, reply, wi); err != nil {
			return 0, errors.Handler(KeyResponseHandler, err)
		}
	} else {
		handler := DefaultResponseHandler{ContentType: eff.ContentType, Status: recorder}
		if err := handler.Handle(ctx, reply, wi); err != nil {
			return 0, errors.Internal(err)
		}
	}
	*stage = StageReconciled
	p.mark(ctx, inv, log, *stage)

	return status, nil
}

func (p *Participant) mark(ctx context.Context, inv *observability.Invocation, log *logger.Logger, stage Stage, kvs ...any) {
	inv.Stage(ctx, string(stage))
	log.Debug("Invocation "+string(stage), logger.Fields(append([]any{logger.FieldStage, string(stage)}, kvs...)...))
}
