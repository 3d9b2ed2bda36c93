package participant

import (
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
	"github.com/kbukum/jig/validation"
)

// Defaults applied to omitted configuration keys.
const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 3000
	DefaultPath        = "/"
	DefaultMethod      = http.MethodPost
	DefaultContentType = "json"
)

// Recognized keys, both in configuration maps and in work item params.
const (
	KeyHost             = "host"
	KeyPort             = "port"
	KeyPath             = "path"
	KeyMethod           = "method"
	KeyContentType      = "contentType"
	KeyTransportOptions = "transportOptions"
	KeyRequestOptions   = "requestOptions"
	KeyDataPreparer     = "dataPreparer"
	KeyResponseHandler  = "responseHandler"
	KeyParams           = "params"
)

// keyAliases maps alternative spellings onto the recognized keys.
var keyAliases = map[string]string{
	"content_type":            KeyContentType,
	"transport_options":       KeyTransportOptions,
	"options_for_jig":         KeyTransportOptions,
	"request_options":         KeyRequestOptions,
	"options_for_jig_request": KeyRequestOptions,
	"data_preparer":           KeyDataPreparer,
	"data_preparition":        KeyDataPreparer,
	"response_handler":        KeyResponseHandler,
	"response_handling":       KeyResponseHandler,
}

// canonicalKey returns the recognized key for k, or k itself.
func canonicalKey(k string) string {
	if c, ok := keyAliases[k]; ok {
		return c
	}
	return k
}

// Config holds the static settings of a participant. It is copied when the
// participant is built and never changes afterwards.
type Config struct {
	Host        string `yaml:"host" mapstructure:"host" validate:"required"`
	Port        int    `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	Path        string `yaml:"path" mapstructure:"path"`
	Method      string `yaml:"method" mapstructure:"method"`
	ContentType string `yaml:"content_type" mapstructure:"content_type"`

	// Transport is fixed per client and cannot be overridden per invocation.
	Transport httpclient.TransportOptions `yaml:"transport_options" mapstructure:"transport_options"`
	// RequestOptions are merged over the base request options of every call.
	RequestOptions map[string]any `yaml:"request_options" mapstructure:"request_options"`
	// Params are default query parameters.
	Params map[string]any `yaml:"params" mapstructure:"params"`

	// DataPreparer and ResponseHandler are optional strategies. The *Name
	// variants refer to strategies registered with WithDataPreparer and
	// WithResponseHandler and are resolved when the participant is built.
	DataPreparer        DataPreparer    `yaml:"-" mapstructure:"-"`
	ResponseHandler     ResponseHandler `yaml:"-" mapstructure:"-"`
	DataPreparerName    string          `yaml:"data_preparer" mapstructure:"data_preparer"`
	ResponseHandlerName string          `yaml:"response_handler" mapstructure:"response_handler"`

	// Extra preserves unrecognized keys.
	Extra map[string]any `yaml:"-" mapstructure:",remain"`
}

// ApplyDefaults fills in omitted settings and normalizes the method.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.Method == "" {
		c.Method = DefaultMethod
	}
	c.Method = strings.ToUpper(c.Method)
	if c.ContentType == "" {
		c.ContentType = DefaultContentType
	}
}

// Validate checks the configuration. An unsupported method is reported as a
// configuration error rather than a validation error.
func (c *Config) Validate() error {
	if !supportedMethod(c.Method) {
		return errors.UnsupportedMethod(c.Method)
	}
	if err := validation.Validate(c); err != nil {
		appErr := errors.Wrap(err)
		return errors.Configuration("", "invalid participant configuration: "+appErr.Message).
			WithDetails(appErr.Details).
			WithCause(err)
	}
	return nil
}

// clone returns a copy whose maps are not shared with c.
func (c Config) clone() Config {
	c.RequestOptions = maps.Clone(c.RequestOptions)
	c.Params = maps.Clone(c.Params)
	c.Extra = maps.Clone(c.Extra)
	c.Transport.Headers = maps.Clone(c.Transport.Headers)
	c.Transport.Extra = maps.Clone(c.Transport.Extra)
	if c.Transport.TLS != nil {
		tls := *c.Transport.TLS
		c.Transport.TLS = &tls
	}
	return c
}

// ConfigFromMap builds a Config from an option map. Keys may use camelCase
// (contentType, transportOptions, requestOptions) or their snake_case
// aliases. dataPreparer and responseHandler accept a strategy, a function or
// the name of a registered strategy. Unrecognized keys land in Extra.
func ConfigFromMap(m map[string]any) (Config, error) {
	var cfg Config

	normalized := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		switch canonicalKey(k) {
		case KeyContentType:
			normalized["content_type"] = v
		case KeyTransportOptions:
			normalized["transport_options"] = v
		case KeyRequestOptions:
			normalized["request_options"] = v
		case KeyDataPreparer:
			if name, ok := v.(string); ok {
				cfg.DataPreparerName = name
				continue
			}
			p, err := asDataPreparer(v, nil)
			if err != nil {
				return cfg, err
			}
			cfg.DataPreparer = p
		case KeyResponseHandler:
			if name, ok := v.(string); ok {
				cfg.ResponseHandlerName = name
				continue
			}
			h, err := asResponseHandler(v, nil)
			if err != nil {
				return cfg, err
			}
			cfg.ResponseHandler = h
		default:
			normalized[k] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, errors.Internal(err)
	}
	if err := dec.Decode(normalized); err != nil {
		return cfg, errors.Configuration("", fmt.Sprintf("decode participant options: %v", err)).WithCause(err)
	}
	return cfg, nil
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
