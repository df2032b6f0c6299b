package evaluator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sambeau/sprig/pkg/sprig/lexer"
	"github.com/sambeau/sprig/pkg/sprig/parser"
)

// recordingLogger keeps every logged line for inspection
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Log(values ...interface{}) {
	l.lines = append(l.lines, fmt.Sprint(values...))
}

func (l *recordingLogger) LogLine(values ...interface{}) {
	l.Log(values...)
}

func newTestEnv() (*Environment, *recordingLogger) {
	logger := &recordingLogger{}
	env := NewEnvironment()
	env.Logger = logger
	return env, logger
}

func evalIn(t *testing.T, input string, env *Environment) Object {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors for %q: %v", input, p.Errors())
	}
	return Eval(program, env)
}

// Helper to parse and evaluate Sprig code in a fresh session
func testEval(t *testing.T, input string) Object {
	t.Helper()
	env, _ := newTestEnv()
	return evalIn(t, input, env)
}

func testIntegerObject(t *testing.T, input string, obj Object, expected int64) {
	t.Helper()
	result, ok := obj.(*Integer)
	if !ok {
		t.Errorf("%q: object is not Integer. got=%T (%+v)", input, obj, obj)
		return
	}
	if result.Value != expected {
		t.Errorf("%q: object has wrong value. got=%d, want=%d", input, result.Value, expected)
	}
}

func testBooleanObject(t *testing.T, input string, obj Object, expected bool) {
	t.Helper()
	result, ok := obj.(*Boolean)
	if !ok {
		t.Errorf("%q: object is not Boolean. got=%T (%+v)", input, obj, obj)
		return
	}
	if result.Value != expected {
		t.Errorf("%q: object has wrong value. got=%t, want=%t", input, result.Value, expected)
	}
}

func testNullObject(t *testing.T, input string, obj Object) {
	t.Helper()
	if obj != NULL {
		t.Errorf("%q: object is not NULL. got=%T (%+v)", input, obj, obj)
	}
}

func TestEvalIntegerExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"10", 10},
		{"-5", -5},
		{"-10", -10},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"-50 + 100 + -50", 0},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"20 + 2 * -10", 0},
		{"50 / 2 * 2 + 10", 60},
		{"2 * (5 + 10)", 30},
		{"3 * 3 * 3 + 10", 37},
		{"3 * (3 * 3) + 10", 37},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"7 / 2", 3},
		{"-7 / 2", -3},
		{"7 / -2", -3},
	}

	for _, tt := range tests {
		testIntegerObject(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 < 1", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"1 != 2", true},
		{"true == true", true},
		{"true != false", true},
		{"(1 < 2) == true", true},
		{"(1 > 2) == true", false},
		{`"a" < "b"`, true},
		{`"b" > "a"`, true},
		{`"abc" == "abc"`, true},
		{`"abc" != "abd"`, true},
		{`1 == "1"`, false},
		{`1 != "1"`, true},
		{`[1, 2] == [1, 2]`, true},
		{`[1, 2] == [2, 1]`, false},
		{`[1, [2]] == [1, [2]]`, true},
		{`{"a": 1, "b": 2} == {"b": 2, "a": 1}`, true},
		{`{"a": 1} == {"a": 2}`, false},
		{`len == len`, true},
		{`len == first`, false},
	}

	for _, tt := range tests {
		testBooleanObject(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestBangOperator(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"!true", false},
		{"!false", true},
		{"!5", false},
		{"!!true", true},
		{"!!false", false},
		{"!!5", true},
		{`!""`, false},
		{"![]", false},
		{"!(if (false) { 1 })", true},
	}

	for _, tt := range tests {
		testBooleanObject(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestIfElseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"if (true) { 10 }", 10},
		{"if (false) { 10 }", nil},
		{"if (1) { 10 }", 10},
		{"if (1 < 2) { 10 }", 10},
		{"if (1 > 2) { 10 }", nil},
		{"if (1 > 2) { 10 } else { 20 }", 20},
		{"if (1 < 2) { 10 } else { 20 }", 10},
		{"if (0) { 10 } else { 20 }", 10},
		{"if (1 < 2) { }", nil},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		if integer, ok := tt.expected.(int); ok {
			testIntegerObject(t, tt.input, evaluated, int64(integer))
		} else {
			testNullObject(t, tt.input, evaluated)
		}
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"return 10;", 10},
		{"return 10; 9;", 10},
		{"return 2 * 5; 9;", 10},
		{"9; return 2 * 5; 9;", 10},
		{"5 * 5 * 5; return 10; 9 * 9 * 9", 10},
		{`
if (10 > 1) {
  if (10 > 1) {
    return 10;
  }

  return 1;
}
`, 10},
		{"let f = fn(x) { return x; x + 10; }; f(10);", 10},
		{"let f = fn(x) { let result = x + 10; return result; return 10; }; f(10);", 20},
		{"let f = fn() { return 1; 2 }; f(); 3", 3},
		{"let f = fn() { [1, if (true) { return 5 }, 3] }; f()", 5},
		{"let f = fn() { let x = if (true) { return 7 }; 0 }; f()", 7},
		{"let f = fn() { len(if (true) { return 9 }) }; f()", 9},
	}

	for _, tt := range tests {
		testIntegerObject(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestBareReturnIsNull(t *testing.T) {
	testNullObject(t, "return;", testEval(t, "return; 5"))
	testNullObject(t, "fn", testEval(t, "let f = fn() { return; 5 }; f()"))
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5; a;", 5},
		{"let a = 5 * 5; a;", 25},
		{"let a = 5; let b = a; b;", 5},
		{"let a = 5; let b = a; let c = a + b + 5; c;", 15},
		{"let a = 1; let a = 2; a", 2},
	}

	for _, tt := range tests {
		testIntegerObject(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestLetEvaluatesToNull(t *testing.T) {
	testNullObject(t, "let a = 5", testEval(t, "let a = 5"))
}

func TestLetInsideFunctionBindsGlobally(t *testing.T) {
	input := "let f = fn() { let inner = 7; inner }; f(); inner"
	testIntegerObject(t, input, testEval(t, input), 7)
}

func TestFunctionObject(t *testing.T) {
	input := "fn(x) { x + 2; };"

	evaluated := testEval(t, input)
	fn, ok := evaluated.(*Function)
	if !ok {
		t.Fatalf("object is not Function. got=%T (%+v)", evaluated, evaluated)
	}

	if len(fn.Parameters) != 1 {
		t.Fatalf("function has wrong parameters. Parameters=%+v", fn.Parameters)
	}
	if fn.Parameters[0].String() != "x" {
		t.Fatalf("parameter is not 'x'. got=%q", fn.Parameters[0])
	}

	expectedBody := "(x + 2)"
	if fn.Body.String() != expectedBody {
		t.Fatalf("body is not %q. got=%q", expectedBody, fn.Body.String())
	}
}

func TestFunctionApplication(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let identity = fn(x) { x; }; identity(5);", 5},
		{"let identity = fn(x) { return x; }; identity(5);", 5},
		{"let double = fn(x) { x * 2; }; double(5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));", 20},
		{"let first = fn(a, b) { a }; first(1)", 1},
		{"let one = fn(a) { a }; one(1, 2, 3)", 1},
		{"let fib = fn(n) { if (n < 2) { n } else { fib(n - 1) + fib(n - 2) } }; fib(10)", 55},
		{"let l = len; l(\"abc\")", 3},
	}

	for _, tt := range tests {
		testIntegerObject(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestArgumentsEvaluateInCallerScope(t *testing.T) {
	input := `
let x = 100;
let show = fn(x) { x };
let wrap = fn(y) { show(y + 1) };
wrap(1)`
	testIntegerObject(t, input, testEval(t, input), 2)
}

func TestClosures(t *testing.T) {
	input := `
let newAdder = fn(x) {
  fn(y) { x + y };
};

let addTwo = newAdder(2);
addTwo(2);`

	testIntegerObject(t, input, testEval(t, input), 4)
}

func TestClosuresAreIndependent(t *testing.T) {
	input := `
let newAdder = fn(x) { fn(y) { x + y } };
let addOne = newAdder(1);
let addTen = newAdder(10);
[addOne(1), addTen(1), addOne(5)]`

	evaluated := testEval(t, input)
	if got := evaluated.Inspect(); got != "[2, 11, 6]" {
		t.Errorf("closures share state. got=%s", got)
	}
}

func TestMissingArgumentIsUnbound(t *testing.T) {
	env, logger := newTestEnv()
	evaluated := evalIn(t, "let second = fn(a, b) { b }; second(1)", env)

	testNullObject(t, "second(1)", evaluated)
	if len(logger.lines) != 1 || !strings.Contains(logger.lines[0], "identifier not found: b") {
		t.Errorf("unexpected diagnostics: %v", logger.lines)
	}
}

func TestStringLiteral(t *testing.T) {
	evaluated := testEval(t, `"Hello World!"`)
	str, ok := evaluated.(*String)
	if !ok {
		t.Fatalf("object is not String. got=%T (%+v)", evaluated, evaluated)
	}
	if str.Value != "Hello World!" {
		t.Errorf("String has wrong value. got=%q", str.Value)
	}
}

func TestStringConcatenation(t *testing.T) {
	evaluated := testEval(t, `"Hello" + " " + "World!"`)
	str, ok := evaluated.(*String)
	if !ok {
		t.Fatalf("object is not String. got=%T (%+v)", evaluated, evaluated)
	}
	if str.Value != "Hello World!" {
		t.Errorf("String has wrong value. got=%q", str.Value)
	}
}

func TestStringIndexExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`"abc"[0]`, "a"},
		{`"abc"[2]`, "c"},
		{`"héllo"[1]`, "é"},
		{`"abc"[3]`, nil},
		{`"abc"[-1]`, nil},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		expected, ok := tt.expected.(string)
		if !ok {
			testNullObject(t, tt.input, evaluated)
			continue
		}
		str, ok := evaluated.(*String)
		if !ok {
			t.Errorf("%q: object is not String. got=%T", tt.input, evaluated)
			continue
		}
		if str.Value != expected {
			t.Errorf("%q: got=%q, want=%q", tt.input, str.Value, expected)
		}
	}
}

func TestBuiltinFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`len("")`, 0},
		{`len("four")`, 4},
		{`len("hello world")`, 11},
		{`len("hi")`, 2},
		{`len("héllo")`, 5},
		{`len([1, 2, 3])`, 3},
		{`len([])`, 0},
		{`len(1)`, nil},
		{`len("one", "two")`, nil},
		{`len(1, 2)`, nil},
		{`first([1, 2, 3])`, 1},
		{`first([])`, nil},
		{`first(1)`, nil},
		{`last([1, 2, 3])`, 3},
		{`last([])`, nil},
		{`last(1)`, nil},
		{`len(rest([1, 2, 3]))`, 2},
		{`first(rest([1, 2, 3]))`, 2},
		{`len(rest([]))`, 0},
		{`len(push([], 1))`, 1},
		{`last(push([1], 2))`, 2},
		{`push(1, 1)`, nil},
		{`push([1])`, nil},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)

		switch expected := tt.expected.(type) {
		case int:
			testIntegerObject(t, tt.input, evaluated, int64(expected))
		case nil:
			testNullObject(t, tt.input, evaluated)
		}
	}
}

func TestBuiltinsDoNotMutate(t *testing.T) {
	input := `
let a = [1, 2];
let b = push(a, 3);
let c = rest(a);
[len(a), len(b), len(c), first(a)]`

	evaluated := testEval(t, input)
	if got := evaluated.Inspect(); got != "[2, 3, 1, 1]" {
		t.Errorf("builtins mutated their argument. got=%s", got)
	}
}

func TestUserBindingShadowsBuiltin(t *testing.T) {
	input := `let len = fn(x) { 42 }; len("abc")`
	testIntegerObject(t, input, testEval(t, input), 42)
}

func TestArrayLiterals(t *testing.T) {
	evaluated := testEval(t, "[1, 2 * 2, 3 + 3]")

	result, ok := evaluated.(*Array)
	if !ok {
		t.Fatalf("object is not Array. got=%T (%+v)", evaluated, evaluated)
	}

	if len(result.Elements) != 3 {
		t.Fatalf("array has wrong num of elements. got=%d", len(result.Elements))
	}

	testIntegerObject(t, "[0]", result.Elements[0], 1)
	testIntegerObject(t, "[1]", result.Elements[1], 4)
	testIntegerObject(t, "[2]", result.Elements[2], 6)
}

func TestArrayIndexExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"[1, 2, 3][0]", 1},
		{"[1, 2, 3][1]", 2},
		{"[1, 2, 3][2]", 3},
		{"let i = 0; [1][i];", 1},
		{"let i = 1; [1, 2][i]", 2},
		{"[1, 2, 3][1 + 1];", 3},
		{"let myArray = [1, 2, 3]; myArray[2];", 3},
		{"let myArray = [1, 2, 3]; myArray[0] + myArray[1] + myArray[2];", 6},
		{"let myArray = [1, 2, 3]; let i = myArray[0]; myArray[i]", 2},
		{"[1, 2, 3][3]", nil},
		{"[1, 2, 3][-1]", nil},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		if integer, ok := tt.expected.(int); ok {
			testIntegerObject(t, tt.input, evaluated, int64(integer))
		} else {
			testNullObject(t, tt.input, evaluated)
		}
	}
}

func TestHashLiterals(t *testing.T) {
	input := `let two = "two";
{
  "one": 10 - 9,
  two: 1 + 1,
  "thr" + "ee": 6 / 2,
  4: 4,
  true: 5,
  false: 6
}`

	evaluated := testEval(t, input)
	result, ok := evaluated.(*Hash)
	if !ok {
		t.Fatalf("Eval didn't return Hash. got=%T (%+v)", evaluated, evaluated)
	}

	expected := map[HashKey]int64{
		(&String{Value: "one"}).HashKey():   1,
		(&String{Value: "two"}).HashKey():   2,
		(&String{Value: "three"}).HashKey(): 3,
		(&Integer{Value: 4}).HashKey():      4,
		TRUE.HashKey():                      5,
		FALSE.HashKey():                     6,
	}

	if result.Len() != len(expected) {
		t.Fatalf("Hash has wrong num of pairs. got=%d", result.Len())
	}

	for expectedKey, expectedValue := range expected {
		pair, ok := result.Pairs[expectedKey]
		if !ok {
			t.Errorf("no pair for given key in Pairs")
			continue
		}
		testIntegerObject(t, input, pair.Value, expectedValue)
	}

	if got := result.Inspect(); got != `{"one": 1, "two": 2, "three": 3, 4: 4, true: 5, false: 6}` {
		t.Errorf("hash lost insertion order. got=%s", got)
	}
}

func TestHashIndexExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`{"foo": 5}["foo"]`, 5},
		{`{"foo": 5}["bar"]`, nil},
		{`let key = "foo"; {"foo": 5}[key]`, 5},
		{`{}["foo"]`, nil},
		{`{5: 5}[5]`, 5},
		{`{true: 5}[true]`, 5},
		{`{false: 5}[false]`, 5},
		{`{"1": 5}[1]`, nil},
		{`{"a": 1, "a": 2}["a"]`, 2},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		if integer, ok := tt.expected.(int); ok {
			testIntegerObject(t, tt.input, evaluated, int64(integer))
		} else {
			testNullObject(t, tt.input, evaluated)
		}
	}
}

func TestHashLiteralScope(t *testing.T) {
	input := `let wrap = fn(p) { {"v": p} }; wrap(5)`

	t.Run("global by default", func(t *testing.T) {
		env, logger := newTestEnv()
		evaluated := evalIn(t, input, env)
		if got := evaluated.Inspect(); got != `{"v": null}` {
			t.Errorf("got=%s", got)
		}
		if len(logger.lines) != 1 || !strings.Contains(logger.lines[0], "identifier not found: p") {
			t.Errorf("unexpected diagnostics: %v", logger.lines)
		}
	})

	t.Run("lexical when enabled", func(t *testing.T) {
		env, logger := newTestEnv()
		env.Options.LexicalHashLiterals = true
		evaluated := evalIn(t, input, env)
		if got := evaluated.Inspect(); got != `{"v": 5}` {
			t.Errorf("got=%s", got)
		}
		if len(logger.lines) != 0 {
			t.Errorf("unexpected diagnostics: %v", logger.lines)
		}
	})

	t.Run("globals are visible", func(t *testing.T) {
		evaluated := testEval(t, `let g = 3; let wrap = fn() { {"g": g} }; wrap()`)
		if got := evaluated.Inspect(); got != `{"g": 3}` {
			t.Errorf("got=%s", got)
		}
	})
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		input   string
		code    string
		message string
	}{
		{"5 + true;", "TYPE-0001", "type mismatch: INTEGER + BOOLEAN"},
		{"5 + true; 5;", "TYPE-0001", "type mismatch: INTEGER + BOOLEAN"},
		{"-true", "OP-0001", "unknown operator: -BOOLEAN"},
		{`-"a"`, "OP-0001", "unknown operator: -STRING"},
		{"true + false;", "OP-0002", "unknown operator: BOOLEAN + BOOLEAN"},
		{"5; true + false; 5", "OP-0002", "unknown operator: BOOLEAN + BOOLEAN"},
		{"if (10 > 1) { true + false; }", "OP-0002", "unknown operator: BOOLEAN + BOOLEAN"},
		{`"Hello" - "World"`, "OP-0002", "unknown operator: STRING - STRING"},
		{"[1] < [2]", "OP-0002", "unknown operator: ARRAY < ARRAY"},
		{"foobar", "UNDEF-0001", "identifier not found: foobar"},
		{"foobar(1)", "UNDEF-0002", "function not found: foobar"},
		{"let x = 5; x(1)", "TYPE-0003", "cannot call INTEGER as a function"},
		{`{"name": "Sprig"}[fn(x) { x }];`, "TYPE-0005", "unusable as hash key: FUNCTION"},
		{`{fn(x) { x }: 1}`, "TYPE-0005", "unusable as hash key: FUNCTION"},
		{"[1, 2][true]", "TYPE-0004", "index operator not supported: ARRAY[BOOLEAN]"},
		{"5[0]", "TYPE-0004", "index operator not supported: INTEGER[INTEGER]"},
		{"[1, 2, 3][3]", "INDEX-0001", "index 3 out of range for array of length 3"},
		{`"ab"[5]`, "INDEX-0001", "index 5 out of range for string of length 2"},
		{"1 / 0", "OP-0003", "division by zero"},
		{"len(1)", "TYPE-0002", "argument to `len` not supported, got INTEGER"},
		{"len(1, 2)", "ARITY-0001", "wrong number of arguments to `len`. got=2, want=1"},
		{"first(1)", "TYPE-0002", "argument to `first` not supported, got INTEGER"},
		{"push([1])", "ARITY-0001", "wrong number of arguments to `push`. got=1, want=2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, logger := newTestEnv()
			evalIn(t, tt.input, env)

			diags := env.Diagnostics()
			if len(diags) != 1 {
				t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
			}
			if diags[0].Code != tt.code {
				t.Errorf("code = %q, want %q", diags[0].Code, tt.code)
			}
			if diags[0].Message != tt.message {
				t.Errorf("message = %q, want %q", diags[0].Message, tt.message)
			}
			if diags[0].Line == 0 {
				t.Errorf("diagnostic has no position")
			}
			if len(logger.lines) != 1 {
				t.Errorf("expected 1 logged line, got %v", logger.lines)
			}
		})
	}
}

func TestFailuresEvaluateToNullAndContinue(t *testing.T) {
	env, _ := newTestEnv()
	evaluated := evalIn(t, "let a = 1 / 0; let b = missing; [a, b, 3]", env)

	if got := evaluated.Inspect(); got != "[null, null, 3]" {
		t.Errorf("got=%s", got)
	}
	if n := len(env.Diagnostics()); n != 2 {
		t.Errorf("expected 2 diagnostics, got %d", n)
	}
}

func TestEqualityAcrossKindsIsSilent(t *testing.T) {
	env, _ := newTestEnv()
	evalIn(t, `1 == "1"; [1] != {}; true == 1`, env)
	if diags := env.Diagnostics(); len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestDiagnosticPosition(t *testing.T) {
	env, logger := newTestEnv()
	evalIn(t, "let x = 1;\nx + true", env)

	diags := env.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Line != 2 || diags[0].Column != 3 {
		t.Errorf("position = %d:%d, want 2:3", diags[0].Line, diags[0].Column)
	}
	if want := "line 2, column 3: type mismatch: INTEGER + BOOLEAN"; logger.lines[0] != want {
		t.Errorf("logged %q, want %q", logger.lines[0], want)
	}
}

func TestDidYouMeanHint(t *testing.T) {
	tests := []struct {
		input string
		hint  string
	}{
		{"let counter = 1; conter", "Did you mean `counter`?"},
		{"lenn([1])", "Did you mean `len`?"},
		{"fisrt", "Did you mean `first`?"},
	}

	for _, tt := range tests {
		env, _ := newTestEnv()
		evalIn(t, tt.input, env)

		diags := env.Diagnostics()
		if len(diags) != 1 {
			t.Fatalf("%q: expected 1 diagnostic, got %d", tt.input, len(diags))
		}
		if len(diags[0].Hints) != 1 || diags[0].Hints[0] != tt.hint {
			t.Errorf("%q: hints = %v, want %q", tt.input, diags[0].Hints, tt.hint)
		}
	}
}

func TestSuppressHints(t *testing.T) {
	env, _ := newTestEnv()
	env.Options.SuppressHints = true
	evalIn(t, "let counter = 1; conter", env)

	diags := env.Diagnostics()
	if len(diags) != 1 || len(diags[0].Hints) != 0 {
		t.Errorf("expected one diagnostic without hints, got %v", diags)
	}
}

func TestSessionPersistsAcrossEvaluations(t *testing.T) {
	env, _ := newTestEnv()
	evalIn(t, "let base = 10; let add = fn(x) { base + x };", env)
	testIntegerObject(t, "add(5)", evalIn(t, "add(5)", env), 15)

	names := env.Names()
	if diff := cmp.Diff([]string{"add", "base"}, names); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	env.Clear()
	if got := env.Names(); len(got) != 0 {
		t.Errorf("Clear left bindings: %v", got)
	}
}

func TestEmptyProgramIsNull(t *testing.T) {
	testNullObject(t, "", testEval(t, ""))
	testNullObject(t, "// only a comment", testEval(t, "// only a comment"))
}

func TestInspect(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`[1, "two", true, [3]]`, `[1, "two", true, [3]]`},
		{`{"a": "b"}`, `{"a": "b"}`},
		{`"plain"`, `plain`},
		{`len`, `builtin function len`},
		{`fn(a, b) { a + b }`, "fn(a, b) {\n(a + b)\n}"},
		{`if (false) { 1 }`, `null`},
	}

	for _, tt := range tests {
		if got := testEval(t, tt.input).Inspect(); got != tt.expected {
			t.Errorf("%q: Inspect() = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestToNative(t *testing.T) {
	evaluated := testEval(t, `{"n": 1, "s": "x", "b": true, "z": if (false) { 1 }, "a": [1, [2]], 3: "three"}`)

	want := map[string]any{
		"n": int64(1),
		"s": "x",
		"b": true,
		"z": nil,
		"a": []any{int64(1), []any{int64(2)}},
		"3": "three",
	}
	got, err := ToNative(evaluated)
	if err != nil {
		t.Fatalf("ToNative: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToNative mismatch (-want +got):\n%s", diff)
	}
}

func TestToNativeKeyCollision(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{1: "a", "1": "b"}`, `hash keys 1 and "1" both encode as "1"`},
		{`{"true": 1, true: 2}`, `hash keys "true" and true both encode as "true"`},
		{`[{"x": 1}, {"v": {false: 1, "false": 2}}]`, `hash keys false and "false" both encode as "false"`},
	}

	for _, tt := range tests {
		_, err := ToNative(testEval(t, tt.input))
		if err == nil || err.Error() != tt.expected {
			t.Errorf("%s: expected error %q, got %v", tt.input, tt.expected, err)
		}
	}
}
