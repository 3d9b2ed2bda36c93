package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix prefixes environment overrides, e.g. JIG_PARTICIPANT_PORT.
const DefaultEnvPrefix = "JIG"

// FileSystem abstracts the file lookups made while resolving config files.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem uses the real file system.
type RealFileSystem struct{}

// Exists reports whether path is a regular file.
func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv loads a dotenv file without overriding variables already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// ResolvedFiles holds the files chosen for a service.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config and env files for a service.
type Resolver struct {
	fs FileSystem
}

// NewResolver creates a resolver. A nil fs means the real file system.
func NewResolver(fs FileSystem) *Resolver {
	if fs == nil {
		fs = RealFileSystem{}
	}
	return &Resolver{fs: fs}
}

// ResolveFiles returns the first existing config and env files for the
// service. Explicit paths win and must exist.
func (r *Resolver) ResolveFiles(serviceName string, cfg *LoaderConfig) (ResolvedFiles, error) {
	var files ResolvedFiles

	if cfg.ConfigFile != "" {
		if !r.fs.Exists(cfg.ConfigFile) {
			return files, fmt.Errorf("config file not found: %s", cfg.ConfigFile)
		}
		files.ConfigFile = cfg.ConfigFile
	} else {
		files.ConfigFile = r.first(configCandidates(serviceName))
	}

	if cfg.EnvFile != "" {
		if !r.fs.Exists(cfg.EnvFile) {
			return files, fmt.Errorf("env file not found: %s", cfg.EnvFile)
		}
		files.EnvFile = cfg.EnvFile
	} else {
		files.EnvFile = r.first(envCandidates(serviceName))
	}
	return files, nil
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.fs.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, dir := range []string{".", "config", filepath.Join("cmd", serviceName)} {
		for _, name := range []string{serviceName + ".yml", serviceName + ".yaml", "config.yml", "config.yaml"} {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, dir := range []string{".", "config", filepath.Join("cmd", serviceName)} {
		paths = append(paths, filepath.Join(dir, ".env."+serviceName), filepath.Join(dir, ".env"))
	}
	return paths
}

// LoaderConfig holds the options of LoadConfig.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
	FileSystem FileSystem
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the file system used to resolve files.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(c *LoaderConfig) { c.FileSystem = fs }
}

// WithConfigFile sets an explicit config file.
func WithConfigFile(path string) LoaderOption {
	return func(c *LoaderConfig) { c.ConfigFile = path }
}

// WithEnvFile sets an explicit dotenv file.
func WithEnvFile(path string) LoaderOption {
	return func(c *LoaderConfig) { c.EnvFile = path }
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(c *LoaderConfig) { c.EnvPrefix = prefix }
}

// LoadConfig fills cfg from, in increasing priority: the values already in
// cfg, the config file, and environment variables. Env variables are named
// PREFIX_ plus the upper-cased key path joined with underscores, so
// participant.transport_options.timeout is JIG_PARTICIPANT_TRANSPORT_OPTIONS_TIMEOUT.
// Map keys keep the case used in the config file.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := &LoaderConfig{EnvPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(lc)
	}

	files, err := NewResolver(lc.FileSystem).ResolveFiles(serviceName, lc)
	if err != nil {
		return err
	}
	return loadFromResolvedFiles(files, lc, cfg)
}

func loadFromResolvedFiles(files ResolvedFiles, lc *LoaderConfig, cfg any) error {
	if files.EnvFile != "" {
		fs := lc.FileSystem
		if fs == nil {
			fs = RealFileSystem{}
		}
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}

	v := viper.New()

	defaults := map[string]any{}
	if err := mapstructure.Decode(cfg, &defaults); err != nil {
		return fmt.Errorf("read defaults: %w", err)
	}
	for key, value := range flatten("", defaults) {
		v.SetDefault(key, value)
	}

	var raw map[string]any
	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
		var err error
		if raw, err = readRawConfig(files.ConfigFile); err != nil {
			return err
		}
	}

	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key, EnvKey(lc.EnvPrefix, key)); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	// viper folds every key to lower case. Struct fields match either way,
	// but free-form maps (step params, work item fields) must keep the
	// spelling written in the file.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := dec.Decode(restoreKeyCase(v.AllSettings(), raw)); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// EnvKey returns the environment variable that overrides key.
func EnvKey(prefix, key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if prefix == "" {
		return name
	}
	return strings.ToUpper(prefix) + "_" + name
}

// flatten turns nested maps into dotted keys. Empty maps and non-map values
// are leaves.
func flatten(prefix string, m map[string]any) map[string]any {
	out := map[string]any{}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		value := m[k]
		if nested, ok := asMap(value); ok && len(nested) > 0 {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		if isNil(value) {
			continue
		}
		out[key] = value
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Struct || (rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct) {
		out := map[string]any{}
		if err := mapstructure.Decode(v, &out); err == nil {
			return out, true
		}
	}
	return nil, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
