package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/jig/engine"
	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/participant"
	"github.com/kbukum/jig/workitem"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoUpstream answers POST /orders with the order field it received.
func echoUpstream(t *testing.T) int {
	t.Helper()
	r := gin.New()
	r.POST("/orders", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"received": body["order"]})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.Listener.Addr().(*net.TCPAddr).Port
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jig.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func participantConfig(port int) string {
	return fmt.Sprintf(`
name: jig-test
logging:
  level: error
participant:
  host: 127.0.0.1
  port: %d
  path: /orders
  method: post
  transport_options:
    timeout: 2s
`, port)
}

func TestLoadRunConfig(t *testing.T) {
	path := writeConfig(t, participantConfig(8080)+`
work_item:
  order: 42
`)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}
	if cfg.Name != "jig-test" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Logging.Output = %q, want stderr", cfg.Logging.Output)
	}
	if cfg.Participant.Port != 8080 || cfg.Participant.Method != http.MethodPost {
		t.Errorf("Participant = %+v", cfg.Participant)
	}
	if cfg.Participant.ContentType != participant.DefaultContentType {
		t.Errorf("ContentType = %q", cfg.Participant.ContentType)
	}
	if cfg.Participant.Transport.Timeout.String() != "2s" {
		t.Errorf("Transport.Timeout = %v", cfg.Participant.Transport.Timeout)
	}
	if len(cfg.Process.Steps) != 2 || cfg.Process.Steps[1].Participant != PrintFieldsStep {
		t.Errorf("Process = %+v, want default process", cfg.Process)
	}
	if cfg.WorkItem["order"] != 42 {
		t.Errorf("WorkItem = %v", cfg.WorkItem)
	}
}

func TestLoadRunConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, participantConfig(8080))
	t.Setenv("JIG_PARTICIPANT_PORT", "9090")

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}
	if cfg.Participant.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Participant.Port)
	}
}

func TestLoadRunConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   errors.ErrorCode
	}{
		{"unsupported method", "participant:\n  method: patch\n", errors.ErrCodeConfiguration},
		{"bad environment", "environment: qa\n", errors.ErrCodeConfiguration},
		{"port out of range", "participant:\n  port: 70000\n", errors.ErrCodeConfiguration},
		{"unknown step", "process:\n  steps:\n    - participant: ghost\n", errors.ErrCodeInvalidInput},
		{"unnamed step", "process:\n  steps:\n    - params:\n        path: /x\n", errors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRunConfig(writeConfig(t, tc.config))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRunConfig(filepath.Join(t.TempDir(), "absent.yml"))
		if !errors.Is(err, errors.ErrCodeConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}

func TestRunDefaultProcess(t *testing.T) {
	port := echoUpstream(t)
	cfg, err := LoadRunConfig(writeConfig(t, participantConfig(port)))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}

	var out bytes.Buffer
	wi := workitem.New(map[string]any{"order": 7})
	result, err := Run(context.Background(), cfg, wi, &out, FormatJSON)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if status, _ := result.Field(participant.FieldStatus); status != http.StatusAccepted {
		t.Errorf("status = %v, want 202", status)
	}

	var printed map[string]any
	if err := json.Unmarshal(out.Bytes(), &printed); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	resp, ok := printed[participant.FieldResponse].(map[string]any)
	if !ok || resp["received"] != float64(7) {
		t.Errorf("printed response = %v", printed[participant.FieldResponse])
	}
	if printed["order"] != float64(7) {
		t.Errorf("printed order = %v", printed["order"])
	}
}

func TestRunYAMLOutput(t *testing.T) {
	port := echoUpstream(t)
	cfg, err := LoadRunConfig(writeConfig(t, participantConfig(port)))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}

	var out bytes.Buffer
	if _, err := Run(context.Background(), cfg, workitem.New(map[string]any{"order": 1}), &out, FormatYAML); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var printed map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &printed); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}
	if printed[participant.FieldStatus] != http.StatusAccepted {
		t.Errorf("printed status = %v", printed[participant.FieldStatus])
	}
}

func TestRunStepParams(t *testing.T) {
	port := echoUpstream(t)
	other := gin.New()
	other.POST("/alt", func(c *gin.Context) { c.String(http.StatusOK, "alt") })
	srv := httptest.NewServer(other)
	t.Cleanup(srv.Close)
	altPort := srv.Listener.Addr().(*net.TCPAddr).Port

	cfg, err := LoadRunConfig(writeConfig(t, participantConfig(port)))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}
	cfg.Process = engine.Process{
		Name: "override",
		Steps: []engine.Step{
			{Participant: participant.DefaultName, Params: map[string]any{"port": altPort, "path": "/alt", "contentType": "text"}},
		},
	}

	var out bytes.Buffer
	result, err := Run(context.Background(), cfg, workitem.New(nil), &out, FormatJSON)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp, _ := result.Field(participant.FieldResponse); resp != "alt" {
		t.Errorf("response = %v, want alt", resp)
	}
	if out.Len() != 0 {
		t.Errorf("expected no printed output without a print step, got %s", out.String())
	}
}

func TestRunConfigKeepsCamelCaseKeys(t *testing.T) {
	type seen struct {
		token, ref string
		body       map[string]any
	}
	got := make(chan seen, 1)
	r := gin.New()
	r.POST("/orders", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		got <- seen{token: c.GetHeader("X-Token"), ref: c.Query("orderRef"), body: body}
		c.Status(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	port := srv.Listener.Addr().(*net.TCPAddr).Port

	cfg, err := LoadRunConfig(writeConfig(t, participantConfig(port)+`
process:
  steps:
    - participant: jig
      params:
        contentType: json
        requestOptions:
          headers:
            X-Token: abc
          params:
            orderRef: A1
work_item:
  orderId: 42
`))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}
	params := cfg.Process.Steps[0].Params
	if _, ok := params["requestOptions"]; !ok {
		t.Fatalf("step params lost their spelling: %v", params)
	}
	if cfg.WorkItem["orderId"] != 42 {
		t.Fatalf("work item fields lost their spelling: %v", cfg.WorkItem)
	}

	var out bytes.Buffer
	if _, err := Run(context.Background(), cfg, workitem.New(cfg.WorkItem), &out, FormatJSON); err != nil {
		t.Fatalf("Run: %v", err)
	}
	req := <-got
	if req.token != "abc" {
		t.Errorf("X-Token = %q, want abc", req.token)
	}
	if req.ref != "A1" {
		t.Errorf("orderRef = %q, want A1", req.ref)
	}
	if req.body["orderId"] != float64(42) {
		t.Errorf("body = %v, want orderId", req.body)
	}
}

func TestRunTransportFailure(t *testing.T) {
	cfg, err := LoadRunConfig(writeConfig(t, participantConfig(closedPort(t))))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}

	var out bytes.Buffer
	_, err = Run(context.Background(), cfg, workitem.New(nil), &out, FormatJSON)
	if !errors.Is(err, errors.ErrCodeTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("print step should not run after a failure, got %s", out.String())
	}
}

func TestRunCommand(t *testing.T) {
	port := echoUpstream(t)
	cfgPath := writeConfig(t, participantConfig(port))
	itemPath := filepath.Join(t.TempDir(), "item.json")
	if err := os.WriteFile(itemPath, []byte(`{"order": 99}`), 0o600); err != nil {
		t.Fatalf("write item: %v", err)
	}

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run", "--config", cfgPath, "--workitem", itemPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var printed map[string]any
	if err := json.Unmarshal(out.Bytes(), &printed); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	resp, _ := printed[participant.FieldResponse].(map[string]any)
	if resp["received"] != float64(99) {
		t.Errorf("printed response = %v", printed[participant.FieldResponse])
	}
}

func TestRunCommandRejectsOutputFormat(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--output", "xml"})
	err := root.Execute()
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{"plain", []string{"version"}, func(t *testing.T, out string) {
			if !strings.HasPrefix(out, "jig ") {
				t.Errorf("output = %q", out)
			}
		}},
		{"json", []string{"version", "-o", "json"}, func(t *testing.T, out string) {
			var info map[string]any
			if err := json.Unmarshal([]byte(out), &info); err != nil {
				t.Fatalf("not JSON: %v", err)
			}
			if _, ok := info["version"]; !ok {
				t.Errorf("missing version in %v", info)
			}
		}},
		{"yaml", []string{"version", "-o", "yaml"}, func(t *testing.T, out string) {
			if !strings.Contains(out, "version:") {
				t.Errorf("output = %q", out)
			}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := NewRootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs(tc.args)
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			tc.check(t, out.String())
		})
	}
}

func TestParseWorkItem(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{"json", `{"order": 1, "tags": ["a"]}`, map[string]any{"order": 1, "tags": []any{"a"}}, false},
		{"yaml", "order: 2\ncustomer:\n  name: ada\n", map[string]any{"order": 2, "customer": map[string]any{"name": "ada"}}, false},
		{"empty", "", map[string]any{}, false},
		{"malformed", "{order", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wi, err := parseWorkItem([]byte(tc.input))
			if tc.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := wi.ToMap()
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Errorf("fields = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	writeError(&buf, fmt.Errorf("step 0 (jig): %w", errors.UnsupportedMethod("PATCH")))

	var resp errors.ErrorResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if resp.Error.Code != errors.ErrCodeConfiguration {
		t.Errorf("code = %s", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "PATCH") {
		t.Errorf("message = %q", resp.Error.Message)
	}
}
