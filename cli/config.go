package cli

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/jig/config"
	"github.com/kbukum/jig/engine"
	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/participant"
	"github.com/kbukum/jig/validation"
	"github.com/kbukum/jig/workitem"
)

// PrintFieldsStep names the built-in participant that writes the work item
// fields to the command output.
const PrintFieldsStep = "print_fields"

// RunConfig is the configuration of jig run.
type RunConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Participant participant.Config `yaml:"participant" mapstructure:"participant"`
	Process     engine.Process     `yaml:"process" mapstructure:"process"`
	// WorkItem holds the initial fields when no --workitem file is given.
	WorkItem map[string]any `yaml:"work_item" mapstructure:"work_item"`
}

// defaultRunConfig returns the values LoadConfig starts from. Logs go to
// stderr so stdout carries only the printed work item.
func defaultRunConfig() RunConfig {
	var cfg RunConfig
	cfg.Logging.Output = "stderr"
	cfg.Participant.ApplyDefaults()
	return cfg
}

// DefaultProcess runs the participant once and prints the resulting fields.
func DefaultProcess(name string) engine.Process {
	return engine.Process{
		Name: name,
		Steps: []engine.Step{
			{Participant: participant.DefaultName},
			{Participant: PrintFieldsStep},
		},
	}
}

// ApplyDefaults fills in the service settings and the default process.
func (c *RunConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Participant.ApplyDefaults()
	if c.Process.Name == "" {
		c.Process.Name = c.Name
	}
	if len(c.Process.Steps) == 0 {
		c.Process.Steps = DefaultProcess(c.Name).Steps
	}
}

// Validate checks the service settings, the participant configuration and
// that every process step names a participant jig run registers.
func (c *RunConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return errors.Configuration("", err.Error()).WithCause(err)
	}
	if err := c.Participant.Validate(); err != nil {
		return err
	}

	var errs validation.Errors
	errs.Check(len(c.Process.Steps) > 0, "process.steps", "must not be empty")
	for i, step := range c.Process.Steps {
		switch step.Participant {
		case participant.DefaultName, PrintFieldsStep:
		case "":
			errs.Add(fmt.Sprintf("process.steps[%d].participant", i), "is required")
		default:
			errs.Addf(fmt.Sprintf("process.steps[%d].participant", i), "unknown participant %q", step.Participant)
		}
	}
	return errs.Err()
}

// LoadRunConfig loads, defaults and validates the run configuration. An empty
// path searches the usual locations for jig.yml.
func LoadRunConfig(path string, opts ...config.LoaderOption) (RunConfig, error) {
	cfg := defaultRunConfig()
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if err := config.LoadConfig("jig", &cfg, opts...); err != nil {
		return cfg, errors.Configuration("config", err.Error()).WithCause(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// readWorkItem reads initial work item fields from a JSON or YAML file. "-"
// reads stdin.
func readWorkItem(path string) (*workitem.WorkItem, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("read work item %s: %v", path, err)).WithCause(err)
	}
	return parseWorkItem(data)
}

// parseWorkItem decodes a field map. JSON input is valid YAML, so both go
// through the YAML decoder.
func parseWorkItem(data []byte) (*workitem.WorkItem, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, errors.Validation(fmt.Sprintf("parse work item: %v", err)).WithCause(err)
	}
	return workitem.New(fields), nil
}
