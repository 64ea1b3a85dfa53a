package interpreter

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/jseval/runtime"
)

func newInterp(t *testing.T, opts Options) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	if opts.Stdout == nil {
		opts.Stdout = &out
	}
	if opts.Stderr == nil {
		opts.Stderr = &out
	}
	return New(opts), &out
}

func evalExpect(t *testing.T, source string) *runtime.Value {
	t.Helper()
	interp, _ := newInterp(t, Options{})
	val, err := interp.Eval(source)
	require.NoError(t, err, "source: %s", source)
	return val
}

func evalExpectError(t *testing.T, source string) error {
	t.Helper()
	interp, _ := newInterp(t, Options{})
	_, err := interp.Eval(source)
	require.Error(t, err, "source: %s", source)
	return err
}

func expectNumber(t *testing.T, source string, expected float64) {
	t.Helper()
	val := evalExpect(t, source)
	require.Equal(t, runtime.TypeNumber, val.Type, "source: %s, got %v", source, val)
	if math.IsNaN(expected) {
		require.True(t, math.IsNaN(val.Number), "source: %s, got %v", source, val.Number)
		return
	}
	require.Equal(t, expected, val.Number, "source: %s", source)
}

func expectString(t *testing.T, source string, expected string) {
	t.Helper()
	val := evalExpect(t, source)
	require.Equal(t, runtime.TypeString, val.Type, "source: %s, got %v", source, val)
	require.Equal(t, expected, val.Str, "source: %s", source)
}

func expectBool(t *testing.T, source string, expected bool) {
	t.Helper()
	val := evalExpect(t, source)
	require.Equal(t, runtime.TypeBoolean, val.Type, "source: %s, got %v", source, val)
	require.Equal(t, expected, val.Bool, "source: %s", source)
}

func expectUndefined(t *testing.T, source string) {
	t.Helper()
	require.Equal(t, runtime.TypeUndefined, evalExpect(t, source).Type, "source: %s", source)
}

func expectNull(t *testing.T, source string) {
	t.Helper()
	require.Equal(t, runtime.TypeNull, evalExpect(t, source).Type, "source: %s", source)
}

func TestLiterals(t *testing.T) {
	expectNumber(t, "42", 42)
	expectNumber(t, "3.14", 3.14)
	expectNumber(t, "0x1f", 31)
	expectString(t, `"hello"`, "hello")
	expectString(t, "'world'", "world")
	expectBool(t, "true", true)
	expectBool(t, "false", false)
	expectNull(t, "null")
	expectUndefined(t, "undefined")
}

func TestArithmetic(t *testing.T) {
	expectNumber(t, "2 + 3", 5)
	expectNumber(t, "10 - 3", 7)
	expectNumber(t, "4 * 5", 20)
	expectNumber(t, "10 / 3", 10.0/3.0)
	expectNumber(t, "10 % 3", 1)
	expectNumber(t, "-7 % 3", -1)
	expectNumber(t, "2 ** 10", 1024)
	expectNumber(t, "-5", -5)
	expectNumber(t, "+true", 1)
	expectNumber(t, "1 / 0", math.Inf(1))
	expectNumber(t, "-1 / 0", math.Inf(-1))
	expectNumber(t, "0 / 0", math.NaN())
	expectNumber(t, "'a' * 2", math.NaN())
}

func TestStringCoercion(t *testing.T) {
	expectString(t, `"hello" + " " + "world"`, "hello world")
	expectString(t, `"num: " + 42`, "num: 42")
	expectString(t, `1 + "2"`, "12")
	expectString(t, `1 + 2 + "3"`, "33")
	expectString(t, `"1" + 2 + 3`, "123")
	expectString(t, `[1, 2] + ""`, "1,2")
	expectString(t, `({}) + ""`, "[object Object]")
	expectString(t, `null + "x"`, "nullx")
	expectNumber(t, `"2" - 1`, 1)
	expectNumber(t, `"6" / "2"`, 3)
	expectNumber(t, `true + 1`, 2)
	expectNumber(t, `null + 1`, 1)
	expectNumber(t, `undefined + 1`, math.NaN())
}

func TestComparisons(t *testing.T) {
	expectBool(t, "1 < 2", true)
	expectBool(t, "2 > 1", true)
	expectBool(t, "1 <= 1", true)
	expectBool(t, "1 >= 2", false)
	expectBool(t, "'a' < 'b'", true)
	expectBool(t, "'10' < '9'", true)
	expectBool(t, "'10' < 9", false)
	expectBool(t, "1 == 1", true)
	expectBool(t, "1 == '1'", true)
	expectBool(t, "1 === '1'", false)
	expectBool(t, "1 === 1", true)
	expectBool(t, "1 != 2", true)
	expectBool(t, "1 !== '1'", true)
	expectBool(t, "null == undefined", true)
	expectBool(t, "null === undefined", false)
	expectBool(t, "null == 0", false)
	expectBool(t, "NaN == NaN", false)
	expectBool(t, "true == 1", true)
	expectBool(t, "var o = {}; o == o", true)
	expectBool(t, "({}) == ({})", false)
}

func TestLogical(t *testing.T) {
	expectNumber(t, "1 && 2", 2)
	expectNumber(t, "0 && 2", 0)
	expectNumber(t, "0 || 5", 5)
	expectString(t, "'' || 'fallback'", "fallback")
	expectBool(t, "!0", true)
	expectBool(t, "!!'x'", true)
	expectNumber(t, "var n = 0; false && n++; true || n++; n", 0)
}

func TestNullishCoalescing(t *testing.T) {
	expectNumber(t, "null ?? 1", 1)
	expectNumber(t, "undefined ?? 2", 2)
	expectNumber(t, "0 ?? 3", 0)
	expectString(t, "'' ?? 'x'", "")
}

func TestLogicalAssignment(t *testing.T) {
	expectNumber(t, "var a = null; a ??= 4; a", 4)
	expectNumber(t, "var b = 1; b ??= 4; b", 1)
	expectNumber(t, "var c = 0; c ||= 5; c", 5)
	expectNumber(t, "var d = 1; d &&= 6; d", 6)
	expectNumber(t, "var calls = 0; var e = 1; e ||= (calls++, 2); calls", 0)
}

func TestVariables(t *testing.T) {
	expectNumber(t, "var x = 10; x", 10)
	expectNumber(t, "let y = 20; y", 20)
	expectNumber(t, "const z = 30; z", 30)
	expectNumber(t, "var a = 1, b = 2; a + b", 3)
}

func TestImplicitGlobal(t *testing.T) {
	expectNumber(t, "function f() { leaked = 9; } f(); leaked", 9)
}

func TestLetBlockScoping(t *testing.T) {
	expectNumber(t, "let x = 1; { let x = 2; } x", 1)
	expectNumber(t, "var x = 1; { var x = 2; } x", 2)
	expectString(t, "{ let inner = 1; } typeof inner", "undefined")
}

func TestLoopClosuresCaptureIterationBindings(t *testing.T) {
	expectString(t, `
		var fns = [];
		for (let i = 0; i < 3; i++) { fns.push(function() { return i; }); }
		fns.map(function(f) { return f(); }).join(",")
	`, "0,1,2")
	expectString(t, `
		var fns = [];
		for (var i = 0; i < 3; i++) { fns.push(function() { return i; }); }
		fns.map(function(f) { return f(); }).join(",")
	`, "3,3,3")
}

func TestIfElse(t *testing.T) {
	expectNumber(t, "var r; if (true) { r = 1; } else { r = 2; } r", 1)
	expectNumber(t, "var r; if (0) { r = 1; } else if ('') { r = 2; } else { r = 3; } r", 3)
}

func TestTernary(t *testing.T) {
	expectString(t, "1 > 0 ? 'yes' : 'no'", "yes")
	expectString(t, "null ? 'yes' : 'no'", "no")
}

func TestLoops(t *testing.T) {
	expectNumber(t, "var s = 0; var i = 0; while (i < 5) { s += i; i++; } s", 10)
	expectNumber(t, "var n = 0; do { n++; } while (false); n", 1)
	expectNumber(t, "var s = 0; for (var i = 1; i <= 4; i++) { s += i; } s", 10)
	expectNumber(t, "var s = 0; for (var i = 0; i < 10; i++) { if (i === 5) break; if (i % 2) continue; s += i; } s", 6)
	expectNumber(t, "var n = 0; do { n++; if (n < 3) continue; break; } while (true); n", 3)
}

func TestForOf(t *testing.T) {
	expectNumber(t, "var s = 0; for (const v of [1, 2, 3]) { s += v; } s", 6)
	expectString(t, "var out = ''; for (var ch of 'abc') { out = ch + out; } out", "cba")
}

func TestForIn(t *testing.T) {
	expectString(t, "var ks = []; for (var k in { a: 1, b: 2, c: 3 }) { ks.push(k); } ks.join('')", "abc")
	expectString(t, "var ks = []; for (let k in [7, 8]) { ks.push(k); } ks.join('')", "01")
	expectNumber(t, "var n = 0; for (var k in null) { n++; } n", 0)
}

func TestSwitch(t *testing.T) {
	expectString(t, `
		var r = '';
		switch (2) {
		case 1: r += 'one';
		case 2: r += 'two';
		case 3: r += 'three'; break;
		case 4: r += 'four';
		}
		r
	`, "twothree")
	expectString(t, "var r = 'none'; switch ('1') { case 1: r = 'loose'; break; default: r = 'strict'; } r", "strict")
	expectString(t, "var r = ''; switch (9) { default: r += 'd'; case 1: r += '1'; } r", "d1")
	expectNumber(t, `
		function f(x) {
			for (var i = 0; i < 3; i++) {
				switch (x) { case 1: continue; }
				return i;
			}
			return -1;
		}
		f(1)
	`, -1)
}

func TestFunctions(t *testing.T) {
	expectNumber(t, "function add(a, b) { return a + b; } add(2, 3)", 5)
	expectNumber(t, "var mul = function(a, b) { return a * b; }; mul(3, 4)", 12)
	expectNumber(t, "var sq = x => x * x; sq(7)", 49)
	expectNumber(t, "var f = (a, b) => { return a - b; }; f(9, 4)", 5)
	expectUndefined(t, "function f() { return; } f()")
	expectUndefined(t, "function f() {} f()")
	expectNumber(t, "hoisted(); function hoisted() { return 8; } hoisted()", 8)
	expectNumber(t, "(function(n) { return n + 1; })(1)", 2)
}

func TestParameters(t *testing.T) {
	expectNumber(t, "function f(a, b = 10) { return a + b; } f(1)", 11)
	expectNumber(t, "function f(a, b = a * 2) { return b; } f(4)", 8)
	expectNumber(t, "function f(a, b = 10) { return b; } f(1, 0)", 0)
	expectNumber(t, "function f(first, ...rest) { return rest.length; } f(1, 2, 3)", 2)
	expectNumber(t, "function f() { return arguments.length; } f(1, 2, 3)", 3)
	expectNumber(t, "function f(a, b, c = 1, d) {} f.length", 2)
	expectUndefined(t, "function f(a, b) { return b; } f(1)")
	expectNumber(t, "function sum(a, b, c) { return a + b + c; } var xs = [1, 2, 3]; sum(...xs)", 6)
}

func TestRecursion(t *testing.T) {
	expectNumber(t, "function fact(n) { return n <= 1 ? 1 : n * fact(n - 1); } fact(10)", 3628800)
	expectNumber(t, `
		function fib(n) {
			var memo = {};
			function go(k) {
				if (k < 2) return k;
				if (memo[k] !== undefined) return memo[k];
				return memo[k] = go(k - 1) + go(k - 2);
			}
			return go(n);
		}
		fib(40)
	`, 102334155)
}

func TestNamedFunctionExpressionBinding(t *testing.T) {
	expectNumber(t, "var f = function self(n) { return n ? self(n - 1) + 1 : 0; }; f(4)", 4)
	expectString(t, "var g = function named() {}; g.name", "named")
	expectString(t, "var h = function() {}; h.name", "h")
	expectString(t, "var a = () => 1; a.name", "a")
}

func TestThisBinding(t *testing.T) {
	expectNumber(t, "var o = { v: 3, get: function() { return this.v; } }; o.get()", 3)
	expectUndefined(t, "var o = { v: 3, get: function() { return this; } }; var g = o.get; g()")
	expectNumber(t, `
		var o = { v: 7, m: function() { return (() => this.v)(); } };
		o.m()
	`, 7)
	expectNumber(t, "function f() { return this.n; } f.call({ n: 4 })", 4)
	expectNumber(t, "function f(a, b) { return this.n + a + b; } f.apply({ n: 1 }, [2, 3])", 6)
	expectNumber(t, "function f(a) { return this.n + a; } var b = f.bind({ n: 10 }); b(1) + b(2)", 23)
	expectNumber(t, "var o = { n: 5, m() { return this.n; } }; o.m()", 5)
}

func TestReceiverDoesNotLeakAcrossCalls(t *testing.T) {
	// A bound call of a function must not change the receiver of a later plain call of
	// a function with the same name.
	expectString(t, `
		var a = { who: 'a', f: function f() { return this === undefined ? 'none' : this.who; } };
		var b = { who: 'b', f: a.f };
		var bound = a.f.bind(b);
		[bound(), a.f(), b.f(), (0, a.f)()].join(',')
	`, "b,a,b,none")
	expectString(t, `
		function who() { return this && this.name; }
		function outer() { return [who.call({ name: 'inner' }), this.name].join(','); }
		outer.call({ name: 'outer' })
	`, "inner,outer")
}

func TestObjects(t *testing.T) {
	expectNumber(t, "var o = { a: 1, b: { c: 2 } }; o.b.c", 2)
	expectNumber(t, "var o = { 'k-1': 3 }; o['k-1']", 3)
	expectNumber(t, "var k = 'x'; var o = { [k + 'y']: 4 }; o.xy", 4)
	expectNumber(t, "var a = 5; var o = { a }; o.a", 5)
	expectNumber(t, "var o = {}; o.x = 1; o['y'] = 2; o.x + o.y", 3)
	expectUndefined(t, "var o = {}; o.missing")
	expectNumber(t, "var o = { get twice() { return this.v * 2; }, set twice(n) { this.v = n / 2; }, v: 1 }; o.twice = 10; o.v", 5)
	expectNumber(t, "var o = { get k() { return 9; } }; o.k", 9)
	expectNumber(t, "var o = { a: 1, b: 2 }; Object.keys(o).length", 2)
}

func TestArrays(t *testing.T) {
	expectNumber(t, "[1, 2, 3].length", 3)
	expectNumber(t, "var a = [1, 2]; a[5] = 6; a.length", 6)
	expectNumber(t, "var a = [1, 2, 3]; a.push(4); a[3]", 4)
	expectString(t, "[1, 2, 3].map(x => x * 2).join(',')", "2,4,6")
	expectString(t, "[1, 2, 3, 4].filter(x => x % 2 === 0).join(',')", "2,4")
	expectNumber(t, "[1, 2, 3, 4].reduce((a, b) => a + b, 0)", 10)
	expectString(t, "var xs = [3, 1, 2]; xs.sort((a, b) => a - b); xs.join('')", "123")
	expectString(t, "var a = [1, 2]; var b = [0, ...a, 3]; b.join('')", "0123")
	expectString(t, "[1, , 3].length + ''", "3")
}

func TestArrayGrowthIsBounded(t *testing.T) {
	expectString(t, `
		var a = [1], names = [];
		try { a[4294967294] = 1; } catch (e) { names.push(e.name); }
		try { a.length = 4e9; } catch (e) { names.push(e.name); }
		try { new Array(4e9); } catch (e) { names.push(e.name); }
		try { Array.from({ length: 4e9 }); } catch (e) { names.push(e.name); }
		names.join(',') + ':' + a.length
	`, "RangeError,RangeError,RangeError,RangeError:1")
}

func TestUnaryOperators(t *testing.T) {
	expectString(t, "typeof 1", "number")
	expectString(t, "typeof 'a'", "string")
	expectString(t, "typeof true", "boolean")
	expectString(t, "typeof undefined", "undefined")
	expectString(t, "typeof null", "object")
	expectString(t, "typeof {}", "object")
	expectString(t, "typeof []", "object")
	expectString(t, "typeof function() {}", "function")
	expectString(t, "typeof notDeclaredAnywhere", "undefined")
	expectUndefined(t, "void 0")
	expectNumber(t, "~5", -6)
	expectNumber(t, "-'3'", -3)
}

func TestDelete(t *testing.T) {
	expectBool(t, "var o = { a: 1 }; delete o.a; 'a' in o", false)
	expectBool(t, "var o = { a: { b: 1 } }; delete o.a.b", true)
	expectBool(t, "var o = { a: { b: 1 } }; delete o.a.b; o.a.b === undefined && 'a' in o", true)
	expectBool(t, "var x = 1; delete x", false)
	expectNumber(t, "var x = 1; delete x; x", 1)
}

func TestInAndInstanceof(t *testing.T) {
	expectBool(t, "'a' in { a: 1 }", true)
	expectBool(t, "'toString' in {}", true)
	expectBool(t, "0 in [5]", true)
	expectBool(t, "function F() {} new F() instanceof F", true)
	expectBool(t, "function F() {} ({}) instanceof F", false)
	expectBool(t, "[] instanceof Array", true)
	expectBool(t, "[] instanceof Object", true)
}

func TestBitwise(t *testing.T) {
	expectNumber(t, "5 & 3", 1)
	expectNumber(t, "5 | 3", 7)
	expectNumber(t, "5 ^ 3", 6)
	expectNumber(t, "1 << 4", 16)
	expectNumber(t, "-16 >> 2", -4)
	expectNumber(t, "-1 >>> 28", 15)
	expectNumber(t, "2147483647 + 1 | 0", -2147483648)
}

func TestUpdateAndCompoundAssignment(t *testing.T) {
	expectNumber(t, "var i = 1; i++; i", 2)
	expectNumber(t, "var i = 1; i++", 1)
	expectNumber(t, "var i = 1; ++i", 2)
	expectNumber(t, "var i = 1; i--; --i", -1)
	expectNumber(t, "var o = { n: 1 }; o.n++; o.n", 2)
	expectNumber(t, "var a = [1]; a[0] += 4; a[0]", 5)
	expectNumber(t, "var x = 10; x -= 3; x *= 2; x /= 7; x", 2)
	expectNumber(t, "var x = 2; x **= 3; x %= 5; x", 3)
	expectNumber(t, "var s = '5'; s++; s", 6)
	expectString(t, "var s = 'a'; s += 1; s", "a1")
}

func TestSequence(t *testing.T) {
	expectNumber(t, "var x = (1, 2, 3); x", 3)
}

func TestConstructors(t *testing.T) {
	expectNumber(t, "function P(x) { this.x = x; } var p = new P(3); p.x", 3)
	expectNumber(t, "function P() {} P.prototype.get = function() { return 11; }; new P().get()", 11)
	expectBool(t, "function P() {} Object.getPrototypeOf(new P()) === P.prototype", true)
	expectBool(t, "function P() { this.t = new.target === P; } new P().t", true)
	expectBool(t, "function P() { return new.target === undefined; } P()", true)
	expectString(t, `
		function Animal(name) { this.name = name; }
		Animal.prototype.speak = function() { return this.name + ' makes a sound'; };
		function Dog(name) { Animal.call(this, name); }
		Dog.prototype = Object.create(Animal.prototype);
		Dog.prototype.speak = function() { return this.name + ' barks'; };
		var d = new Dog('Rex');
		[d.speak(), d instanceof Animal, Animal.prototype.speak.call(d)].join('|')
	`, "Rex barks|true|Rex makes a sound")
}

func TestTryCatch(t *testing.T) {
	expectString(t, "var r; try { throw 'boom'; } catch (e) { r = e; } r", "boom")
	expectString(t, "var r; try { throw new Error('bad'); } catch (e) { r = e.message; } r", "bad")
	expectNumber(t, "var r = 0; try { r = 1; } finally { r += 10; } r", 11)
	expectString(t, "var r = ''; try { try { throw 1; } finally { r += 'f'; } } catch (e) { r += e; } r", "f1")
	expectString(t, "var r; try { try { throw 'inner'; } catch (e) { throw e + '!'; } } catch (e) { r = e; } r", "inner!")
	expectNumber(t, "function f() { try { return 1; } finally { return 2; } } f()", 2)
	expectNumber(t, "function f() { try { throw 1; } finally { return 3; } } f()", 3)
	expectNumber(t, "var n = 0; for (var i = 0; i < 3; i++) { try { continue; } finally { n++; } } n", 3)
	expectString(t, "var r; try { throw 1; } catch { r = 'bare'; } r", "bare")
	expectNumber(t, "var e = 1; try { throw 2; } catch (e) {} e", 1)
}

func TestErrorPropagation(t *testing.T) {
	expectString(t, `
		function a() { throw new TypeError('deep'); }
		function b() { return a(); }
		var r;
		try { b(); } catch (e) { r = e.name + ':' + e.message + ':' + (e instanceof TypeError) + ':' + (e instanceof Error); }
		r
	`, "TypeError:deep:true:true")
}

func TestConsoleOutput(t *testing.T) {
	interp, out := newInterp(t, Options{})
	_, err := interp.Eval(`console.log('sum', 1 + 2, [1, 'a'], { k: true });`)
	require.NoError(t, err)
	require.Equal(t, "sum 3 [ 1, 'a' ] { k: true }\n", out.String())
}

func TestEvalSessionPersists(t *testing.T) {
	interp, _ := newInterp(t, Options{})
	_, err := interp.Eval("var count = 1; function bump() { return ++count; }")
	require.NoError(t, err)
	_, err = interp.Eval("bump();")
	require.NoError(t, err)
	v, err := interp.Eval("count")
	require.NoError(t, err)
	require.Equal(t, 3.0, v.Number)
}

func TestEvaluateNilEnvironment(t *testing.T) {
	interp, _ := newInterp(t, Options{})
	v, err := interp.Evaluate(parse(t, "var x = 2; x * 21"), nil)
	require.NoError(t, err)
	require.Equal(t, 42.0, v.Number)
}

func TestFizzBuzz(t *testing.T) {
	expectString(t, `
		var out = [];
		for (var i = 1; i <= 15; i++) {
			if (i % 15 === 0) out.push('FizzBuzz');
			else if (i % 3 === 0) out.push('Fizz');
			else if (i % 5 === 0) out.push('Buzz');
			else out.push(i);
		}
		out.join(' ')
	`, "1 2 Fizz 4 Buzz Fizz 7 8 Fizz Buzz 11 Fizz 13 14 FizzBuzz")
}

func TestBlockFunctionDeclarations(t *testing.T) {
	expectNumber(t, "{ function inner() { return 4; } } 1", 1)
	expectNumber(t, "var r; { r = early(); function early() { return 6; } } r", 6)
	expectString(t, "function outer() { { function hidden() {} } return typeof hidden; } outer()", "function")
	expectString(t, `
		function outer() {
			var t = typeof hidden;
			{ function hidden() {} }
			return t + ':' + typeof hidden;
		}
		outer()
	`, "undefined:function")
	expectString(t, "{ function g() {} } typeof g", "function")
	expectString(t, "var before = typeof later; if (true) { function later() {} } before + ':' + typeof later", "undefined:function")
	expectNumber(t, "let f = 1; { function f() { return 2; } } f", 1)
	expectString(t, "function outer() { { function h() {} } } outer(); typeof h", "undefined")
}

func TestBlockLexicalVarConflicts(t *testing.T) {
	expectString(t, `
		var names = [];
		try { { const x = 1; var x = 2; } } catch (e) { names.push(e.name); }
		try { { let y; { var y; } } } catch (e) { names.push(e.name); }
		try { { let z; for (var z = 0; z < 1; z++) {} } } catch (e) { names.push(e.name); }
		names.join(',')
	`, "SyntaxError,SyntaxError,SyntaxError")
	expectNumber(t, "var r; { let w = 1; { let w = 2; } function f() { var w = 3; return w; } r = f(); } r", 3)
}
