package builtins

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/jseval/runtime"
)

const (
	inspectDepth = 2
	breakLength  = 72
)

func (b *installer) installConsole() {
	console := b.realm.NewObject()
	for _, name := range []string{"log", "info", "debug"} {
		b.method(console, name, 0, consoleWriter(b.opts.Stdout))
	}
	for _, name := range []string{"warn", "error"} {
		b.method(console, name, 0, consoleWriter(b.opts.Stderr))
	}
	b.global("console", runtime.NewObject(console))
}

func consoleWriter(w io.Writer) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if _, err := fmt.Fprintln(w, Format(args)); err != nil {
			return nil, err
		}
		return runtime.Undefined, nil
	}
}

var formatVerb = regexp.MustCompile(`%[sdifjoO%]`)

// Format renders console arguments the way node does: printf-style verbs in a leading
// string consume arguments, and the rest are inspected and joined with spaces.
func Format(args []*runtime.Value) string {
	var parts []string
	if len(args) > 0 && args[0].Type == runtime.TypeString && strings.Contains(args[0].Str, "%") {
		rest := args[1:]
		head := formatVerb.ReplaceAllStringFunc(args[0].Str, func(verb string) string {
			if verb == "%%" {
				return "%"
			}
			if len(rest) == 0 {
				return verb
			}
			v := rest[0]
			rest = rest[1:]
			switch verb {
			case "%s":
				if v.Type == runtime.TypeString {
					return v.Str
				}
				return inspect(v, 1, nil)
			case "%d", "%i":
				if v.IsObject() {
					return "NaN"
				}
				n := runtime.NaN.Number
				if v.Type != runtime.TypeUndefined {
					n, _ = runtime.ToNumber(v)
				}
				if verb == "%i" {
					n = math.Trunc(n)
				}
				return runtime.NumberToString(n)
			case "%f":
				n, _ := runtime.ToNumber(v)
				return runtime.NumberToString(n)
			}
			return inspect(v, 1, nil)
		})
		parts = append(parts, head)
		args = rest
	} else if len(args) > 0 {
		parts = append(parts, Inspect(args[0]))
		args = args[1:]
	}
	for _, a := range args {
		parts = append(parts, Inspect(a))
	}
	return strings.Join(parts, " ")
}

// Inspect renders v for display without running script code. Top-level strings are
// printed as is; nested ones are quoted.
func Inspect(v *runtime.Value) string {
	if v.Type == runtime.TypeString {
		return v.Str
	}
	return inspect(v, 0, nil)
}

func inspect(v *runtime.Value, depth int, seen []*runtime.Object) string {
	switch v.Type {
	case runtime.TypeString:
		return quoteString(v.Str)
	case runtime.TypeNumber:
		if v.Number == 0 && math.Signbit(v.Number) {
			return "-0"
		}
		return runtime.NumberToString(v.Number)
	case runtime.TypeObject:
		return inspectObject(v.Object, depth, seen)
	}
	return v.String()
}

func quoteString(s string) string {
	s = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\t", `\t`).Replace(s)
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func inspectKey(k string) string {
	if identifier.MatchString(k) {
		return k
	}
	return quoteString(k)
}

func inspectObject(o *runtime.Object, depth int, seen []*runtime.Object) string {
	for _, s := range seen {
		if s == o {
			return "[Circular]"
		}
	}
	seen = append(seen, o)

	switch o.Class {
	case runtime.ClassFunction:
		name := o.Value("name").String()
		if name == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + name + "]"
	case runtime.ClassError:
		if stack := o.Value("stack"); stack.Type == runtime.TypeString {
			return stack.Str
		}
		return o.String()
	case runtime.ClassPromise:
		p := runtime.PromiseOf(runtime.NewObject(o))
		switch p.State {
		case runtime.Pending:
			return "Promise { <pending> }"
		case runtime.Rejected:
			return "Promise { <rejected> " + inspect(p.Result, depth+1, seen) + " }"
		}
		return "Promise { " + inspect(p.Result, depth+1, seen) + " }"
	case runtime.ClassGenerator:
		return "Object [Generator] {}"
	}

	if o.Class == runtime.ClassArray || o.Class == runtime.ClassArguments {
		prefix := ""
		if o.Class == runtime.ClassArguments {
			prefix = "[Arguments] "
		}
		if len(o.ArrayData) == 0 {
			return prefix + "[]"
		}
		if depth > inspectDepth {
			return "[Array]"
		}
		return prefix + wrap("[", arrayEntries(o, depth, seen), "]", depth)
	}

	prefix := objectPrefix(o)
	if len(o.OwnEnumerableKeys()) == 0 {
		return prefix + "{}"
	}
	if depth > inspectDepth {
		if prefix != "" {
			return "[" + strings.TrimSpace(prefix) + "]"
		}
		return "[Object]"
	}
	return prefix + wrap("{", propertyEntries(o, depth, seen), "}", depth)
}

// objectPrefix names the constructor of an object whose prototype is not the plain
// Object prototype.
func objectPrefix(o *runtime.Object) string {
	if o.Prototype == nil {
		return "[Object: null prototype] "
	}
	prop, ok := o.Prototype.GetOwnProperty("constructor")
	if !ok || prop.IsAccessor || !prop.Value.IsCallable() {
		return ""
	}
	if name := prop.Value.Object.Value("name").String(); name != "" && name != "Object" {
		return name + " "
	}
	return ""
}

func arrayEntries(o *runtime.Object, depth int, seen []*runtime.Object) []string {
	var entries []string
	holes := 0
	flush := func() {
		switch {
		case holes == 1:
			entries = append(entries, "<1 empty item>")
		case holes > 1:
			entries = append(entries, "<"+strconv.Itoa(holes)+" empty items>")
		}
		holes = 0
	}
	for _, el := range o.ArrayData {
		if el == nil {
			holes++
			continue
		}
		flush()
		entries = append(entries, inspect(el, depth+1, seen))
	}
	flush()
	return entries
}

func propertyEntries(o *runtime.Object, depth int, seen []*runtime.Object) []string {
	var entries []string
	for _, k := range o.OwnEnumerableKeys() {
		prop, _ := o.GetOwnProperty(k)
		var val string
		switch {
		case prop.IsAccessor && prop.Getter != nil && prop.Setter != nil:
			val = "[Getter/Setter]"
		case prop.IsAccessor && prop.Getter != nil:
			val = "[Getter]"
		case prop.IsAccessor:
			val = "[Setter]"
		default:
			val = inspect(prop.Value, depth+1, seen)
		}
		entries = append(entries, inspectKey(k)+": "+val)
	}
	return entries
}

// wrap joins entries on one line when they fit and otherwise puts each on its own
// line. Nested entries are already indented for their own depth.
func wrap(lbrace string, entries []string, rbrace string, depth int) string {
	total := len(lbrace) + len(rbrace)
	multiline := false
	for _, e := range entries {
		total += len(e) + 2
		if strings.Contains(e, "\n") {
			multiline = true
		}
	}
	if !multiline && total <= breakLength {
		return lbrace + " " + strings.Join(entries, ", ") + " " + rbrace
	}
	indent := strings.Repeat("  ", depth+1)
	for i, e := range entries {
		entries[i] = indent + e
	}
	return lbrace + "\n" + strings.Join(entries, ",\n") + "\n" + strings.Repeat("  ", depth) + rbrace
}
