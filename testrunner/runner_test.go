package testrunner

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/jseval/runtime"
)

func TestRunFixtures(t *testing.T) {
	var progress bytes.Buffer
	results, summary, err := Run(context.Background(), Config{Dir: "testdata", Progress: &progress})
	require.NoError(t, err)
	require.NoError(t, Failures(results))

	assert.Equal(t, len(results), summary.Total)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, summary.Total-1, summary.Passed)
	assert.Equal(t, summary.Total, strings.Count(progress.String(), "\n"))
	assert.Contains(t, progress.String(), "SKIP "+filepath.Join("programs", "skipped.js"))
	for _, r := range results {
		assert.False(t, filepath.IsAbs(r.Path), r.Path)
	}
}

func TestRunFilterAndLimit(t *testing.T) {
	results, summary, err := Run(context.Background(), Config{Dir: "testdata", Filter: "errors", Parallel: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	for _, r := range results {
		assert.True(t, strings.HasPrefix(r.Path, "errors"), r.Path)
		assert.Equal(t, Pass, r.Result, r.Message)
	}

	results, _, err = Run(context.Background(), Config{Dir: "testdata", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRunMissingDirectory(t *testing.T) {
	_, _, err := Run(context.Background(), Config{Dir: filepath.Join(t.TempDir(), "absent")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovering fixtures")
}

func writeFixture(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestFailuresAreReported(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "wrong_exports.js", "/*---\nexports: 2\n---*/\nmodule.exports = 1;\n")
	writeFixture(t, dir, "wrong_kind.js", "/*---\nnegative: {phase: runtime, type: TypeError}\n---*/\nthrow new RangeError('x');\n")
	writeFixture(t, dir, "no_error.js", "/*---\nnegative: {phase: parse, type: SyntaxError}\n---*/\n1;\n")
	writeFixture(t, dir, "wrong_output.js", "/*---\noutput: \"a\\n\"\n---*/\nconsole.log('b');\n")
	writeFixture(t, dir, "uncaught.js", "null.x;\n")
	writeFixture(t, dir, "bad_meta.js", "/*---\nexport: 1\n---*/\n")

	results, summary, err := Run(context.Background(), Config{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Failed)
	assert.Equal(t, 1, summary.Errors)

	messages := map[string]string{}
	for _, r := range results {
		messages[r.Path] = r.Message
	}
	assert.Contains(t, messages["wrong_exports.js"], "exports mismatch")
	assert.Contains(t, messages["wrong_kind.js"], "expected TypeError error in runtime phase, got RangeError in runtime phase")
	assert.Equal(t, "expected SyntaxError error in parse phase", messages["no_error.js"])
	assert.Contains(t, messages["wrong_output.js"], "output mismatch")
	assert.Contains(t, messages["uncaught.js"], "Uncaught TypeError")
	assert.Contains(t, messages["bad_meta.js"], "field export not found")

	err = Failures(results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6 errors occurred")
	assert.Contains(t, err.Error(), "uncaught.js: ")
}

func TestRunFixtureTimesOutOnCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "quick.js", "module.exports = 1;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Either branch may win the race with an already cancelled context.
	res := RunFixture(ctx, path, time.Minute)
	if res.Result != Pass {
		assert.Equal(t, Error, res.Result)
		assert.Equal(t, context.Canceled.Error(), res.Message)
	}
}

func TestRunFixtureReadError(t *testing.T) {
	res := RunFixture(context.Background(), filepath.Join(t.TempDir(), "gone.js"), time.Second)
	assert.Equal(t, Error, res.Result)
	assert.Contains(t, res.Message, "read error")
}

func TestParseMetadata(t *testing.T) {
	meta, err := ParseMetadata(`/*---
description: labelled loops
flags: [skip, slow]
tdz: undefined
globals: {n: 3}
negative:
  phase: runtime
  type: TypeError
---*/
x;`)
	require.NoError(t, err)
	assert.Equal(t, "labelled loops", meta.Description)
	assert.True(t, meta.hasFlag("slow"))
	assert.False(t, meta.hasFlag("fast"))
	assert.Equal(t, "undefined", meta.TDZ)
	assert.Equal(t, map[string]interface{}{"n": 3}, meta.Globals)
	assert.Equal(t, &NegativeExpectation{Phase: "runtime", Type: "TypeError"}, meta.Negative)
	assert.Nil(t, meta.Output)

	meta, err = ParseMetadata("module.exports = 1;")
	require.NoError(t, err)
	assert.Equal(t, &Metadata{}, meta)

	meta, err = ParseMetadata("/*---\n---*/")
	require.NoError(t, err)
	assert.Nil(t, meta.Exports)
}

func TestParseMetadataErrors(t *testing.T) {
	tests := []struct {
		name, source, message string
	}{
		{"unterminated", "/*---\nexports: 1\n", "unterminated front matter"},
		{"unknown field", "/*---\nexpected: 1\n---*/", "field expected not found"},
		{"unknown phase", "/*---\nnegative: {phase: early, type: SyntaxError}\n---*/", `unknown negative phase "early"`},
		{"bad yaml", "/*---\nflags: [skip\n---*/", "front matter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata(tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDiscover(t *testing.T) {
	files, err := Discover("testdata", "")
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join("testdata", "properties", "closure_counter.js"))

	files, err = Discover("testdata", "tdz_")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "properties", "tdz_error.js"),
		filepath.Join("testdata", "properties", "tdz_undefined.js"),
	}, files)
}

func TestExportValue(t *testing.T) {
	realm := runtime.NewRealm()
	obj := realm.NewObject()
	require.NoError(t, obj.Set("n", runtime.NewNumber(1)))
	require.NoError(t, obj.Set("self", runtime.NewObject(obj)))
	require.NoError(t, obj.Set("list", realm.NewArrayValue([]*runtime.Value{runtime.Null, runtime.NewBool(true), nil})))
	require.NoError(t, obj.Set("nan", runtime.NewNumber(math.NaN())))

	assert.Equal(t, map[string]interface{}{
		"n":    1.0,
		"self": "[Circular]",
		"list": []interface{}{nil, true, "undefined"},
		"nan":  "NaN",
	}, exportValue(runtime.NewObject(obj), nil))
	assert.Equal(t, "undefined", exportValue(runtime.Undefined, nil))
	assert.Equal(t, "s", exportValue(runtime.NewString("s"), nil))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t,
		[]interface{}{1.0, map[string]interface{}{"a": 2.0, "b": "x"}, 0.5, nil},
		normalize([]interface{}{1, map[string]interface{}{"a": int64(2), "b": "x"}, 0.5, nil}))
}
