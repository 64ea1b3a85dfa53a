// Package config loads interpreter settings from YAML files.
package config

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/example/jseval/interpreter"
	"github.com/example/jseval/runtime"
)

const maxVerbosity = 9

// Config is the evaluated form of a configuration file such as:
//
//	tdz: undefined
//	maxCallDepth: 2000
//	verbosity: 5
//	console: false
//	globals:
//	  answer: 42
//	  tags: [a, b]
type Config struct {
	TDZ          runtime.TDZMode
	MaxCallDepth int
	Verbosity    int
	Console      bool
	Globals      map[string]interface{}
}

type configFile struct {
	TDZ          string                 `yaml:"tdz"`
	MaxCallDepth *int                   `yaml:"maxCallDepth"`
	Verbosity    int                    `yaml:"verbosity"`
	Console      *bool                  `yaml:"console"`
	Globals      map[string]interface{} `yaml:"globals"`
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

func Default() *Config {
	return &Config{
		TDZ:          runtime.TDZError,
		MaxCallDepth: interpreter.DefaultMaxCallDepth,
		Console:      true,
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML configuration. Unknown fields are errors; absent fields keep
// their defaults. An empty document is the default configuration.
func Parse(data []byte) (*Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse")
	}

	cfg := Default()
	var issues []string
	switch raw.TDZ {
	case "", "error":
	case "undefined":
		cfg.TDZ = runtime.TDZUndefined
	default:
		issues = append(issues, fmt.Sprintf("tdz must be \"error\" or \"undefined\", not %q", raw.TDZ))
	}
	if raw.MaxCallDepth != nil {
		cfg.MaxCallDepth = *raw.MaxCallDepth
	}
	if raw.Console != nil {
		cfg.Console = *raw.Console
	}
	cfg.Verbosity = raw.Verbosity
	cfg.Globals = raw.Globals

	if err := cfg.Validate(); err != nil {
		verr := err.(*ValidationError)
		verr.Issues = append(issues, verr.Issues...)
		return nil, verr
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs ValidationError
	if c.TDZ != runtime.TDZError && c.TDZ != runtime.TDZUndefined {
		errs.Issues = append(errs.Issues, fmt.Sprintf("unknown tdz mode %d", c.TDZ))
	}
	if c.MaxCallDepth <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("maxCallDepth must be positive, not %d", c.MaxCallDepth))
	}
	if c.Verbosity < 0 || c.Verbosity > maxVerbosity {
		errs.Issues = append(errs.Issues, fmt.Sprintf("verbosity must be between 0 and %d, not %d", maxVerbosity, c.Verbosity))
	}
	for _, name := range sortedKeys(c.Globals) {
		if !isIdentifier(name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("globals: %q is not a valid identifier", name))
		}
		if err := checkGlobal(c.Globals[name]); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("globals.%s: %v", name, err))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Options returns interpreter options writing console output to stdout and stderr, or
// discarding it when the console is disabled.
func (c *Config) Options(stdout, stderr io.Writer) interpreter.Options {
	if !c.Console {
		stdout, stderr = io.Discard, io.Discard
	}
	return interpreter.Options{
		TDZ:          c.TDZ,
		MaxCallDepth: c.MaxCallDepth,
		Stdout:       stdout,
		Stderr:       stderr,
	}
}

// ApplyVerbosity raises the glog verbosity to the configured level. Flags given on the
// command line win over a lower configured level.
func (c *Config) ApplyVerbosity() error {
	f := flag.Lookup("v")
	if f == nil || c.Verbosity == 0 {
		return nil
	}
	if current, err := strconv.Atoi(f.Value.String()); err == nil && current >= c.Verbosity {
		return nil
	}
	return errors.Wrap(f.Value.Set(strconv.Itoa(c.Verbosity)), "config: setting verbosity")
}

// InitialBindings converts the configured globals into values of realm, ready to be
// passed to Interpreter.Run.
func (c *Config) InitialBindings(realm *runtime.Realm) (map[string]*runtime.Value, error) {
	out := make(map[string]*runtime.Value, len(c.Globals))
	for _, name := range sortedKeys(c.Globals) {
		v, err := toValue(realm, c.Globals[name])
		if err != nil {
			return nil, errors.Wrapf(err, "globals.%s", name)
		}
		out[name] = v
	}
	return out, nil
}

func checkGlobal(v interface{}) error {
	switch v := v.(type) {
	case nil, bool, int, int64, uint64, float64, string:
		return nil
	case []interface{}:
		for i, el := range v {
			if err := checkGlobal(el); err != nil {
				return errors.Wrapf(err, "[%d]", i)
			}
		}
		return nil
	case map[string]interface{}:
		for _, k := range sortedKeys(v) {
			if err := checkGlobal(v[k]); err != nil {
				return errors.Wrapf(err, ".%s", k)
			}
		}
		return nil
	}
	return errors.Errorf("unsupported value of type %T", v)
}

func toValue(realm *runtime.Realm, v interface{}) (*runtime.Value, error) {
	switch v := v.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.NewBool(v), nil
	case int:
		return runtime.NewNumber(float64(v)), nil
	case int64:
		return runtime.NewNumber(float64(v)), nil
	case uint64:
		return runtime.NewNumber(float64(v)), nil
	case float64:
		return runtime.NewNumber(v), nil
	case string:
		return runtime.NewString(v), nil
	case []interface{}:
		items := make([]*runtime.Value, 0, len(v))
		for _, el := range v {
			item, err := toValue(realm, el)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return realm.NewArrayValue(items), nil
	case map[string]interface{}:
		obj := realm.NewObject()
		for _, k := range sortedKeys(v) {
			item, err := toValue(realm, v[k])
			if err != nil {
				return nil, err
			}
			if err := obj.Set(k, item); err != nil {
				return nil, err
			}
		}
		return runtime.NewObject(obj), nil
	}
	return nil, errors.Errorf("unsupported value of type %T", v)
}

// ParseScalar interprets a command-line value the way YAML would: numbers, booleans
// and null keep their type and anything else is a string.
func ParseScalar(s string) interface{} {
	var v interface{}
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case nil:
		if s == "" {
			return ""
		}
		return nil
	case bool, int, float64:
		return v
	}
	return s
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
