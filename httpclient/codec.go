package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
)

// Media types for the content type aliases.
const (
	MediaJSON = "application/json"
	MediaText = "text/plain"
	MediaForm = "application/x-www-form-urlencoded"
)

var contentTypeAliases = map[string]string{
	"json":  MediaJSON,
	"text":  MediaText,
	"plain": MediaText,
	"form":  MediaForm,
}

// ResolveContentType maps an alias ("json", "text", "form") to its media type.
// Values containing a slash pass through unchanged; empty means JSON.
func ResolveContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return MediaJSON
	}
	if strings.Contains(ct, "/") {
		return ct
	}
	if media, ok := contentTypeAliases[strings.ToLower(ct)]; ok {
		return media
	}
	return ct
}

// isJSON reports whether a media type carries JSON.
func isJSON(contentType string) bool {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		media = strings.ToLower(strings.TrimSpace(contentType))
	}
	return media == MediaJSON || strings.HasSuffix(media, "+json")
}

func isForm(contentType string) bool {
	media, _, _ := mime.ParseMediaType(contentType)
	return media == MediaForm
}

func isText(contentType string) bool {
	media, _, _ := mime.ParseMediaType(contentType)
	return strings.HasPrefix(media, "text/")
}

// encodeBody converts a body value into a reader for the given media type.
// Strings, byte slices and readers are sent as-is; other values are encoded
// according to the media type.
func encodeBody(body any, contentType string) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return v, nil
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return strings.NewReader(v), nil
	}

	switch {
	case isJSON(contentType):
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	case isForm(contentType):
		values, err := formValues(body)
		if err != nil {
			return nil, err
		}
		return strings.NewReader(values.Encode()), nil
	case isText(contentType):
		return strings.NewReader(fmt.Sprint(body)), nil
	default:
		return nil, fmt.Errorf("cannot encode %T as %s", body, contentType)
	}
}

func formValues(body any) (url.Values, error) {
	switch v := body.(type) {
	case url.Values:
		return v, nil
	case map[string]string:
		values := url.Values{}
		for k, s := range v {
			values.Set(k, s)
		}
		return values, nil
	case map[string]any:
		return RequestOptions{Params: v}.Query(), nil
	default:
		return nil, fmt.Errorf("cannot encode %T as form data", body)
	}
}

// DecodeBody turns a response body into a Go value. JSON media types decode
// into generic values; everything else, and JSON that fails to parse, yields
// the body as a string.
func DecodeBody(body []byte, contentType string) any {
	if isJSON(contentType) {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
	}
	return string(body)
}
