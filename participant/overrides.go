package participant

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/httpclient"
)

// Overrides are the per-invocation settings read from a work item's params.
// A nil field means "not overridden"; a nil value in params counts as absent.
// Overrides are parsed once at the start of an invocation.
type Overrides struct {
	Host            *string
	Port            *int
	Path            *string
	Method          *string
	ContentType     *string
	RequestOptions  map[string]any
	Params          map[string]any
	DataPreparer    DataPreparer
	ResponseHandler ResponseHandler

	// Ignored lists, sorted, the params keys that are not overrides. They are
	// usually typos of a recognized key.
	Ignored []string
}

// ParseOverrides reads the recognized keys (and their aliases) from params.
// Named strategies are looked up in s. Malformed values are configuration
// errors; unrecognized keys are collected in Ignored.
func ParseOverrides(params map[string]any, s *Strategies) (Overrides, error) {
	var o Overrides
	for k, v := range params {
		if v == nil {
			continue
		}
		key := canonicalKey(k)
		var err error
		switch key {
		case KeyHost:
			o.Host, err = stringOverride(key, v)
		case KeyPort:
			var port int
			port, err = portValue(v)
			o.Port = &port
		case KeyPath:
			o.Path, err = stringOverride(key, v)
		case KeyMethod:
			var method *string
			method, err = stringOverride(key, v)
			if method != nil {
				upper := strings.ToUpper(*method)
				o.Method = &upper
			}
		case KeyContentType:
			o.ContentType, err = stringOverride(key, v)
		case KeyRequestOptions:
			o.RequestOptions, err = mapOverride(key, v)
		case KeyParams:
			o.Params, err = mapOverride(key, v)
		case KeyDataPreparer:
			o.DataPreparer, err = asDataPreparer(v, s)
		case KeyResponseHandler:
			o.ResponseHandler, err = asResponseHandler(v, s)
		default:
			o.Ignored = append(o.Ignored, k)
		}
		if err != nil {
			return Overrides{}, err
		}
	}
	slices.Sort(o.Ignored)
	return o, nil
}

// Effective is the parameter set of one invocation: Config with the
// invocation's overrides applied key by key. It is computed fresh for every
// call and never stored.
type Effective struct {
	Host            string
	Port            int
	Path            string
	Method          string
	ContentType     string
	Transport       httpclient.TransportOptions
	RequestOptions  map[string]any
	Params          map[string]any
	DataPreparer    DataPreparer
	ResponseHandler ResponseHandler
}

// Resolve applies o over cfg. Each key falls back to cfg independently of the
// others. Maps are copied so the result shares nothing with cfg.
func Resolve(cfg Config, o Overrides) Effective {
	eff := Effective{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Path:            cfg.Path,
		Method:          cfg.Method,
		ContentType:     cfg.ContentType,
		Transport:       cfg.Transport,
		RequestOptions:  maps.Clone(cfg.RequestOptions),
		Params:          maps.Clone(cfg.Params),
		DataPreparer:    cfg.DataPreparer,
		ResponseHandler: cfg.ResponseHandler,
	}
	eff.Transport.Headers = maps.Clone(cfg.Transport.Headers)
	if o.Host != nil {
		eff.Host = *o.Host
	}
	if o.Port != nil {
		eff.Port = *o.Port
	}
	if o.Path != nil {
		eff.Path = *o.Path
	}
	if o.Method != nil {
		eff.Method = *o.Method
	}
	if o.ContentType != nil {
		eff.ContentType = *o.ContentType
	}
	if o.RequestOptions != nil {
		eff.RequestOptions = maps.Clone(o.RequestOptions)
	}
	if o.Params != nil {
		eff.Params = maps.Clone(o.Params)
	}
	if o.DataPreparer != nil {
		eff.DataPreparer = o.DataPreparer
	}
	if o.ResponseHandler != nil {
		eff.ResponseHandler = o.ResponseHandler
	}
	return eff
}

// Value returns the effective value for a recognized key or one of its
// aliases. Absent values, including unset strategies, are nil.
func (e Effective) Value(key string) any {
	switch canonicalKey(key) {
	case KeyHost:
		return e.Host
	case KeyPort:
		return e.Port
	case KeyPath:
		return e.Path
	case KeyMethod:
		return e.Method
	case KeyContentType:
		return e.ContentType
	case KeyTransportOptions:
		return e.Transport
	case KeyRequestOptions:
		if e.RequestOptions == nil {
			return nil
		}
		return e.RequestOptions
	case KeyParams:
		if e.Params == nil {
			return nil
		}
		return e.Params
	case KeyDataPreparer:
		if e.DataPreparer == nil {
			return nil
		}
		return e.DataPreparer
	case KeyResponseHandler:
		if e.ResponseHandler == nil {
			return nil
		}
		return e.ResponseHandler
	default:
		return nil
	}
}

// Target returns host:port for logs and errors.
func (e Effective) Target() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

func stringOverride(key string, v any) (*string, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.Configuration(key, fmt.Sprintf("%s must be a string, got %T", key, v))
	}
	return &s, nil
}

func mapOverride(key string, v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, nil
	default:
		return nil, errors.Configuration(key, fmt.Sprintf("%s must be a mapping, got %T", key, v))
	}
}

// portValue accepts the numeric shapes decoders produce for a port.
func portValue(v any) (int, error) {
	var n int64
	switch p := v.(type) {
	case int:
		n = int64(p)
	case int32:
		n = int64(p)
	case int64:
		n = p
	case uint:
		if p > maxPort {
			return 0, portRangeError(p)
		}
		n = int64(p)
	case uint16:
		n = int64(p)
	case float64:
		if p != math.Trunc(p) {
			return 0, errors.Configuration(KeyPort, fmt.Sprintf("port must be an integer, got %v", p))
		}
		if p < 1 || p > maxPort {
			return 0, portRangeError(p)
		}
		n = int64(p)
	case json.Number:
		i, err := p.Int64()
		if err != nil {
			return 0, errors.Configuration(KeyPort, fmt.Sprintf("port must be an integer, got %q", p.String()))
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return 0, errors.Configuration(KeyPort, fmt.Sprintf("port must be numeric, got %q", p))
		}
		n = i
	default:
		return 0, errors.Configuration(KeyPort, fmt.Sprintf("port must be a number, got %T", v))
	}
	if n < 1 || n > maxPort {
		return 0, portRangeError(v)
	}
	return int(n), nil
}

const maxPort = 65535

func portRangeError(v any) error {
	return errors.Configuration(KeyPort, fmt.Sprintf("port must be between 1 and %d, got %v", maxPort, v))
}
