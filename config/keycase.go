package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readRawConfig decodes the config file without viper's key folding. Files
// yaml.v3 cannot read (toml, ini, ...) yield nil.
func readRawConfig(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json":
	default:
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return raw, nil
}

// restoreKeyCase renames the lower-cased keys of settings to the spelling
// used in raw. Values always come from settings, so env overrides survive.
// Keys absent from raw (defaults, env-only keys) stay as they are.
func restoreKeyCase(settings, raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return settings
	}
	spelling := make(map[string]string, len(raw))
	for k := range raw {
		// Keys differing only in case were already merged by viper; keep the
		// first spelling seen in sorted order so the result is stable.
		lk := strings.ToLower(k)
		if prev, ok := spelling[lk]; !ok || k < prev {
			spelling[lk] = k
		}
	}

	out := make(map[string]any, len(settings))
	for k, v := range settings {
		name := k
		if orig, ok := spelling[strings.ToLower(k)]; ok {
			name = orig
		}
		out[name] = restoreValue(v, raw[name])
	}
	return out
}

func restoreValue(v, raw any) any {
	switch val := v.(type) {
	case map[string]any:
		if rm, ok := raw.(map[string]any); ok {
			return restoreKeyCase(val, rm)
		}
	case []any:
		rs, ok := raw.([]any)
		if !ok || len(rs) != len(val) {
			return v
		}
		out := make([]any, len(val))
		for i := range val {
			out[i] = restoreValue(val[i], rs[i])
		}
		return out
	}
	return v
}
