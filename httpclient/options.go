package httpclient

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const (
	defaultTimeout = 30 * time.Second
	defaultScheme  = "http"
)

// TransportOptions configures how a Client reaches its target. They are fixed
// when the client is built.
type TransportOptions struct {
	// Scheme is "http" (default) or "https".
	Scheme string `yaml:"scheme" mapstructure:"scheme"`
	// Timeout bounds a whole request including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// TLS configures https targets.
	TLS *TLSOptions `yaml:"tls" mapstructure:"tls"`
	// HTTP2 enables HTTP/2 on the transport.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`
	// MaxIdleConnsPerHost caps pooled keep-alive connections. Zero keeps the
	// net/http default.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host"`
	// Extra holds keys this package does not interpret.
	Extra map[string]any `yaml:"-" mapstructure:",remain"`
}

// ApplyDefaults fills in zero-value fields.
func (o *TransportOptions) ApplyDefaults() {
	if o.Scheme == "" {
		o.Scheme = defaultScheme
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
}

// Validate checks that the options are usable.
func (o *TransportOptions) Validate() error {
	if o.Scheme != "http" && o.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https (got: %s)", o.Scheme)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if o.MaxIdleConnsPerHost < 0 {
		return fmt.Errorf("max_idle_conns_per_host must not be negative")
	}
	return o.TLS.Validate()
}

// TransportOptionsFromMap decodes an opaque option map. Durations may be given
// as strings ("5s") or numbers of nanoseconds.
func TransportOptionsFromMap(m map[string]any) (TransportOptions, error) {
	var opts TransportOptions
	if len(m) == 0 {
		return opts, nil
	}
	if err := decode(m, &opts); err != nil {
		return opts, fmt.Errorf("transport options: %w", err)
	}
	return opts, nil
}

// RequestOptions are applied to a single request.
type RequestOptions struct {
	// ContentType is a media type or one of the aliases understood by
	// ResolveContentType. Sent as the Content-Type header when a body is present.
	ContentType string `mapstructure:"contentType"`
	// Params are encoded into the query string.
	Params map[string]any `mapstructure:"params"`
	// Headers override the transport's default headers.
	Headers map[string]string `mapstructure:"headers"`
	// Timeout shortens the transport timeout for this request.
	Timeout time.Duration `mapstructure:"timeout"`
	// Extra holds keys this package does not interpret.
	Extra map[string]any `mapstructure:",remain"`
}

var requestOptionAliases = map[string]string{
	"content_type": "contentType",
	"query":        "params",
}

// NormalizeRequestOptions returns a copy of m with alias keys ("content_type",
// "query") rewritten to their canonical spelling. When both spellings carry a
// non-nil value the canonical one wins.
func NormalizeRequestOptions(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if canonical, ok := requestOptionAliases[k]; ok {
			if cv, dup := m[canonical]; dup && cv != nil {
				continue
			}
			k = canonical
		}
		out[k] = v
	}
	return out
}

// RequestOptionsFromMap decodes a merged request option map. Aliases are
// resolved with NormalizeRequestOptions, so the result does not depend on map
// iteration order.
func RequestOptionsFromMap(m map[string]any) (RequestOptions, error) {
	var opts RequestOptions
	if len(m) == 0 {
		return opts, nil
	}
	normalized := NormalizeRequestOptions(m)
	for k, v := range normalized {
		if v == nil {
			delete(normalized, k)
		}
	}
	if err := decode(normalized, &opts); err != nil {
		return opts, fmt.Errorf("request options: %w", err)
	}
	return opts, nil
}

// Query returns Params as url.Values. Slice values become repeated keys.
func (o RequestOptions) Query() url.Values {
	q := url.Values{}
	for k, v := range o.Params {
		rv := reflect.ValueOf(v)
		if v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			for i := 0; i < rv.Len(); i++ {
				q.Add(k, fmt.Sprint(rv.Index(i).Interface()))
			}
			continue
		}
		q.Set(k, fmt.Sprint(v))
	}
	return q
}

func decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
