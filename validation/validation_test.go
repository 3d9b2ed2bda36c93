package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/jig/errors"
)

type settings struct {
	Host   string `mapstructure:"host" validate:"required"`
	Port   int    `mapstructure:"port" validate:"min=1,max=65535"`
	Method string `mapstructure:"method" validate:"oneof=GET POST PUT DELETE"`
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(settings{Host: "127.0.0.1", Port: 3000, Method: "POST"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	err := Validate(settings{Port: 70000, Method: "PATCH"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	for _, want := range []string{"host: is required", "port: must be at most 65535", "method: must be one of"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected message to contain %q, got %q", want, appErr.Message)
		}
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
}

func TestErrors(t *testing.T) {
	var errs Errors
	if errs.Err() != nil {
		t.Fatal("empty Errors should yield nil")
	}

	errs.Check(true, "path", "unused")
	errs.Check(false, "process.steps", "must not be empty")
	errs.Addf("process.steps[1].participant", "unknown participant %q", "ghost")

	err := errs.Err()
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	want := `process.steps: must not be empty; process.steps[1].participant: unknown participant "ghost"`
	if appErr.Message != want {
		t.Errorf("message = %q, want %q", appErr.Message, want)
	}
	if fields, ok := appErr.Details["fields"].([]FieldError); !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", appErr.Details["fields"])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ContentType": "content_type",
		"Host":        "host",
		"host":        "host",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
