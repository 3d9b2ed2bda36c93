package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/jig/component"
	"github.com/kbukum/jig/engine"
	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/logger"
	"github.com/kbukum/jig/observability"
	"github.com/kbukum/jig/participant"
	"github.com/kbukum/jig/workitem"
)

const shutdownTimeout = 10 * time.Second

type runOptions struct {
	configPath   string
	workItemPath string
	output       string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured process over one work item",
		Long: `Run loads the configuration, starts the HTTP participant and runs the
configured process over one work item through the in-process engine.

The default process calls the participant and then prints the work item.

Example:
  jig run --config jig.yml
  jig run --config jig.yml --workitem item.json --output yaml
  echo '{"order": 42}' | jig run --workitem -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(opts.output); err != nil {
				return err
			}
			cfg, err := LoadRunConfig(opts.configPath)
			if err != nil {
				return err
			}

			wi := workitem.New(cfg.WorkItem)
			if opts.workItemPath != "" {
				if wi, err = readWorkItem(opts.workItemPath); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Init(cfg.Logging)
			_, err = Run(ctx, cfg, wi, cmd.OutOrStdout(), opts.output)
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (default: search for jig.yml)")
	cmd.Flags().StringVarP(&opts.workItemPath, "workitem", "w", "", "JSON or YAML file with the initial work item fields, - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", FormatJSON, "Output format: json or yaml")
	return cmd
}

// Run starts the participant described by cfg, runs cfg.Process over wi and
// returns the resulting work item. The print_fields step writes to out in the
// given format.
func Run(ctx context.Context, cfg RunConfig, wi *workitem.WorkItem, out io.Writer, format string) (*workitem.WorkItem, error) {
	log := logger.WithComponent("cli")

	shutdown, metrics, err := startTelemetry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer shutdown()

	eng := engine.NewLocal()

	var opts []participant.Option
	if metrics != nil {
		opts = append(opts, participant.WithMetrics(metrics))
	}
	comp := participant.NewComponent(participant.DefaultName, cfg.Participant, eng, opts...)

	registry := component.NewRegistry()
	if err := registry.Register(comp); err != nil {
		return nil, err
	}
	if err := registry.StartAll(ctx); err != nil {
		return nil, err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := registry.StopAll(stopCtx); err != nil {
			log.Warn("component shutdown failed", logger.ErrorFields("stop", err))
		}
	}()

	for _, d := range registry.Describe() {
		log.Info("component started", logger.Fields("name", d.Name, "type", d.Type, "details", d.Details))
	}
	for _, h := range registry.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			return nil, errors.Internal(fmt.Errorf("component %s is %s: %s", h.Name, h.Status, h.Message))
		}
	}

	if err := eng.Register(participant.DefaultName, comp.Participant()); err != nil {
		return nil, err
	}
	if err := eng.Register(PrintFieldsStep, printFields(out, format)); err != nil {
		return nil, err
	}

	result, err := eng.Run(ctx, cfg.Process, wi)
	if err != nil {
		log.Error("process failed", logger.ErrorFields("run", err))
		return result, err
	}
	return result, nil
}

// printFields returns a participant that writes the work item fields. Its
// return value is the step outcome.
func printFields(out io.Writer, format string) engine.ParticipantFunc {
	return func(_ context.Context, wi *workitem.WorkItem) error {
		return encode(out, format, wi.ToMap())
	}
}

// startTelemetry initializes the tracer and meter providers the config
// enables. The returned function flushes and shuts them down.
func startTelemetry(ctx context.Context, cfg RunConfig) (func(), *observability.Metrics, error) {
	var shutdowns []func(context.Context) error
	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](sctx); err != nil {
				logger.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
			}
		}
	}

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, &cfg.Tracing)
		if err != nil {
			return shutdown, nil, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if !cfg.Metrics.Enabled {
		return shutdown, nil, nil
	}
	mp, err := observability.InitMeter(ctx, &cfg.Metrics)
	if err != nil {
		shutdown()
		return func() {}, nil, err
	}
	shutdowns = append(shutdowns, mp.Shutdown)
	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		shutdown()
		return func() {}, nil, err
	}
	return shutdown, metrics, nil
}
