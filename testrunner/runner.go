// Package testrunner runs script fixtures whose expected outcome is described by YAML
// front matter:
//
//	/*---
//	description: closures share their frame
//	exports: [1, 2]
//	---*/
package testrunner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/example/jseval/config"
	"github.com/example/jseval/interpreter"
	"github.com/example/jseval/parser"
	"github.com/example/jseval/runtime"
)

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path    string
	Result  Result
	Message string
	Elapsed time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

const (
	DefaultTimeout  = 5 * time.Second
	DefaultParallel = 4
)

type Config struct {
	Dir      string
	Filter   string
	Limit    int
	Parallel int
	Timeout  time.Duration
	// Progress receives one line per finished fixture when set.
	Progress io.Writer
}

// Metadata is the front matter of a fixture.
type Metadata struct {
	Description string                 `yaml:"description"`
	Flags       []string               `yaml:"flags"`
	TDZ         string                 `yaml:"tdz"`
	Globals     map[string]interface{} `yaml:"globals"`
	Negative    *NegativeExpectation   `yaml:"negative"`
	Exports     interface{}            `yaml:"exports"`
	Output      *string                `yaml:"output"`
}

type NegativeExpectation struct {
	Phase string `yaml:"phase"` // "parse" or "runtime"
	Type  string `yaml:"type"`  // an error name, or UnsupportedNodeError
}

func (m *Metadata) hasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Run discovers the fixtures under cfg.Dir and runs them in parallel. Results keep
// discovery order.
func Run(ctx context.Context, cfg Config) ([]TestResult, Summary, error) {
	if cfg.Parallel <= 0 {
		cfg.Parallel = DefaultParallel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	files, err := Discover(cfg.Dir, cfg.Filter)
	if err != nil {
		return nil, Summary{}, err
	}
	if cfg.Limit > 0 && len(files) > cfg.Limit {
		files = files[:cfg.Limit]
	}
	glog.V(5).Infof("Running %d fixtures from %s with %d workers", len(files), cfg.Dir, cfg.Parallel)

	start := time.Now()
	results := make([]TestResult, len(files))
	var progress sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i, path := range files {
		g.Go(func() error {
			rel, err := filepath.Rel(cfg.Dir, path)
			if err != nil {
				rel = path
			}
			results[i] = RunFixture(ctx, path, cfg.Timeout)
			results[i].Path = rel
			if cfg.Progress != nil {
				progress.Lock()
				fmt.Fprintln(cfg.Progress, formatResult(results[i]))
				progress.Unlock()
			}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{Total: len(results), Elapsed: time.Since(start)}
	for _, r := range results {
		switch r.Result {
		case Pass:
			summary.Passed++
		case Fail:
			summary.Failed++
		case Skip:
			summary.Skipped++
		case Error:
			summary.Errors++
		}
	}
	return results, summary, nil
}

// Discover lists the .js files below dir whose relative path contains filter.
func Discover(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".js") {
			return nil
		}
		if filter != "" {
			rel, _ := filepath.Rel(dir, path)
			if !strings.Contains(rel, filter) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, errors.Wrapf(err, "discovering fixtures in %s", dir)
}

// Failures collects the failed and errored results into one error, or nil when there
// are none.
func Failures(results []TestResult) error {
	var merr *multierror.Error
	for _, r := range results {
		if r.Result == Fail || r.Result == Error {
			merr = multierror.Append(merr, errors.Errorf("%s: %s", r.Path, r.Message))
		}
	}
	return merr.ErrorOrNil()
}

func formatResult(r TestResult) string {
	if r.Message == "" {
		return fmt.Sprintf("%s %s", r.Result, r.Path)
	}
	return fmt.Sprintf("%s %s %s", r.Result, r.Path, r.Message)
}

type outcome struct {
	exports *runtime.Value
	output  string
	err     error
}

// RunFixture runs the fixture at path and checks it against its front matter. A
// fixture still running after timeout is reported as an error and abandoned.
func RunFixture(ctx context.Context, path string, timeout time.Duration) TestResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return TestResult{Path: path, Result: Error, Message: "read error: " + err.Error()}
	}
	meta, err := ParseMetadata(string(source))
	if err != nil {
		return TestResult{Path: path, Result: Error, Message: err.Error()}
	}
	if meta.hasFlag("skip") {
		return TestResult{Path: path, Result: Skip, Message: meta.Description}
	}

	start := time.Now()
	done := make(chan outcome, 1)
	go func() {
		done <- execute(meta, string(source))
	}()

	var out outcome
	select {
	case out = <-done:
	case <-time.After(timeout):
		return TestResult{Path: path, Result: Error, Message: fmt.Sprintf("timeout (%s)", timeout), Elapsed: time.Since(start)}
	case <-ctx.Done():
		return TestResult{Path: path, Result: Error, Message: ctx.Err().Error(), Elapsed: time.Since(start)}
	}

	res := TestResult{Path: path, Result: Pass, Elapsed: time.Since(start)}
	if msg := check(meta, out); msg != "" {
		res.Result, res.Message = Fail, msg
	}
	return res
}

// execute runs one fixture. Evaluator assertion failures are recovered and reported
// as errors so that one broken fixture cannot take down the whole run.
func execute(meta *Metadata, source string) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out.err = errors.Errorf("evaluator panic: %v\n%s", r, debug.Stack())
		}
	}()

	cfg := config.Default()
	if meta.TDZ == "undefined" {
		cfg.TDZ = runtime.TDZUndefined
	}
	cfg.Globals = meta.Globals
	if err := cfg.Validate(); err != nil {
		return outcome{err: err}
	}

	var stdout bytes.Buffer
	interp := interpreter.New(cfg.Options(&stdout, &stdout))
	initial, err := cfg.InitialBindings(interp.Realm())
	if err != nil {
		return outcome{err: err}
	}
	exports, err := interp.RunSource(source, initial)
	return outcome{exports: exports, output: stdout.String(), err: err}
}

func check(meta *Metadata, out outcome) string {
	if neg := meta.Negative; neg != nil {
		if out.err == nil {
			return fmt.Sprintf("expected %s error in %s phase", neg.Type, neg.Phase)
		}
		if got := classify(out.err); got.phase != neg.Phase || got.kind != neg.Type {
			return fmt.Sprintf("expected %s error in %s phase, got %s in %s phase: %v", neg.Type, neg.Phase, got.kind, got.phase, out.err)
		}
		return ""
	}
	if out.err != nil {
		return out.err.Error()
	}

	if meta.Output != nil && *meta.Output != out.output {
		return fmt.Sprintf("output mismatch:\nwant %q\ngot  %q", *meta.Output, out.output)
	}
	if meta.Exports != nil {
		want := normalize(meta.Exports)
		got := exportValue(out.exports, nil)
		if !reflect.DeepEqual(want, got) {
			return fmt.Sprintf("exports mismatch:\nwant %sgot  %s", spew.Sdump(want), spew.Sdump(got))
		}
	}
	return ""
}

type errorClass struct {
	phase, kind string
}

func classify(err error) errorClass {
	var ex *interpreter.Exception
	if errors.As(err, &ex) {
		return errorClass{"runtime", string(ex.Kind)}
	}
	var unsupported *interpreter.UnsupportedNodeError
	if errors.As(err, &unsupported) {
		return errorClass{"runtime", "UnsupportedNodeError"}
	}
	var perr *parser.Error
	if errors.As(err, &perr) {
		return errorClass{"parse", string(runtime.SyntaxError)}
	}
	return errorClass{"unknown", fmt.Sprintf("%T", err)}
}

// ParseMetadata decodes the front matter between "/*---" and "---*/". A fixture
// without front matter only has to run without throwing.
func ParseMetadata(source string) (*Metadata, error) {
	meta := &Metadata{}
	startIdx := strings.Index(source, "/*---")
	if startIdx < 0 {
		return meta, nil
	}
	endIdx := strings.Index(source[startIdx:], "---*/")
	if endIdx < 0 {
		return nil, errors.New("unterminated front matter")
	}

	decoder := yaml.NewDecoder(strings.NewReader(source[startIdx+5 : startIdx+endIdx]))
	decoder.KnownFields(true)
	if err := decoder.Decode(meta); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "front matter")
	}
	if neg := meta.Negative; neg != nil && neg.Phase != "parse" && neg.Phase != "runtime" {
		return nil, errors.Errorf("front matter: unknown negative phase %q", neg.Phase)
	}
	return meta, nil
}

// normalize makes decoded YAML comparable with exported values: every number becomes
// a float64.
func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, el := range v {
			out[i] = normalize(el)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, el := range v {
			out[k] = normalize(el)
		}
		return out
	}
	return v
}

// exportValue converts a script value into the plain Go shape YAML decodes to.
// Functions become "[Function]" and undefined becomes the string "undefined", so a
// fixture can expect them.
func exportValue(v *runtime.Value, seen []*runtime.Object) interface{} {
	switch v.Type {
	case runtime.TypeUndefined:
		return "undefined"
	case runtime.TypeNull:
		return nil
	case runtime.TypeBoolean:
		return v.Bool
	case runtime.TypeNumber:
		if math.IsNaN(v.Number) {
			return "NaN"
		}
		return v.Number
	case runtime.TypeString:
		return v.Str
	}

	obj := v.Object
	for _, s := range seen {
		if s == obj {
			return "[Circular]"
		}
	}
	seen = append(seen, obj)
	if obj.Callable() {
		return "[Function]"
	}
	if obj.IsArray() {
		out := make([]interface{}, len(obj.ArrayData))
		for i, el := range obj.ArrayData {
			if el == nil {
				el = runtime.Undefined
			}
			out[i] = exportValue(el, seen)
		}
		return out
	}
	out := map[string]interface{}{}
	for _, k := range obj.OwnEnumerableKeys() {
		out[k] = exportValue(obj.Value(k), seen)
	}
	return out
}
