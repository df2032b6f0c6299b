// Package evaluator walks Sprig syntax trees. Failures never abort
// evaluation: they produce Null and a diagnostic reported to the
// environment.
package evaluator

import (
	"unicode/utf8"

	"github.com/sambeau/sprig/pkg/sprig/ast"
	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
)

// Eval evaluates node in env and returns its value.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node.Statements, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.BlockStatement:
		if node == nil {
			return NULL
		}
		return evalBlockStatement(node, env)

	case *ast.LetStatement:
		val := Eval(node.Value, env)
		if isReturn(val) {
			return val
		}
		if node.Name != nil && node.Name.Value != "" {
			env.SetLet(node.Name.Value, val)
		}
		return NULL

	case *ast.ReturnStatement:
		val := Eval(node.ReturnValue, env)
		if isReturn(val) {
			return val
		}
		return &ReturnValue{Value: val}

	// Expressions
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isReturn(right) {
			return right
		}
		return evalPrefixExpression(node, right, env)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isReturn(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isReturn(right) {
			return right
		}
		return evalInfixExpression(node, left, right, env)

	case *ast.IfExpression:
		return evalIfExpression(node, env)

	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.FunctionLiteral:
		return &Function{Parameters: node.Parameters, Body: node.Body, Env: env}

	case *ast.CallExpression:
		return evalCallExpression(node, env)

	case *ast.ArrayLiteral:
		elements, ret := evalExpressions(node.Elements, env)
		if ret != nil {
			return ret
		}
		return &Array{Elements: elements}

	case *ast.IndexExpression:
		left := Eval(node.Left, env)
		if isReturn(left) {
			return left
		}
		index := Eval(node.Index, env)
		if isReturn(index) {
			return index
		}
		return evalIndexExpression(node, left, index, env)

	case *ast.HashLiteral:
		return evalHashLiteral(node, env)
	}

	return NULL
}

func evalProgram(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL

	for _, statement := range stmts {
		result = Eval(statement, env)

		if returnValue, ok := result.(*ReturnValue); ok {
			return returnValue.Value
		}
	}

	return result
}

// evalBlockStatement returns the last statement's value. A ReturnValue is
// passed up unwrapped so that it stops every enclosing list.
func evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NULL

	for _, statement := range block.Statements {
		result = Eval(statement, env)

		if isReturn(result) {
			return result
		}
	}

	return result
}

func isReturn(obj Object) bool {
	_, ok := obj.(*ReturnValue)
	return ok
}

// report records a diagnostic positioned at node.
func report(env *Environment, node ast.Node, err *serrors.SprigError) {
	if err.Line == 0 {
		line, col := ast.Position(node)
		err = err.WithPosition(line, col)
	}
	env.Report(err)
}

func fail(env *Environment, node ast.Node, code string, data map[string]any) Object {
	report(env, node, serrors.New(code, data))
	return NULL
}

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func isTruthy(obj Object) bool {
	switch obj {
	case NULL, FALSE:
		return false
	default:
		return true
	}
}

func evalPrefixExpression(node *ast.PrefixExpression, right Object, env *Environment) Object {
	switch node.Operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		if integer, ok := right.(*Integer); ok {
			return &Integer{Value: -integer.Value}
		}
		return fail(env, node, "OP-0001", map[string]any{
			"Operator": node.Operator,
			"Right":    string(right.Type()),
		})
	default:
		return fail(env, node, "OP-0001", map[string]any{
			"Operator": node.Operator,
			"Right":    string(right.Type()),
		})
	}
}

func evalInfixExpression(node *ast.InfixExpression, left, right Object, env *Environment) Object {
	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerInfixExpression(node, left.(*Integer).Value, right.(*Integer).Value, env)
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return evalStringInfixExpression(node, left.(*String).Value, right.(*String).Value, env)
	case node.Operator == "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case node.Operator == "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	case left.Type() != right.Type():
		return fail(env, node, "TYPE-0001", map[string]any{
			"Left":     string(left.Type()),
			"Operator": node.Operator,
			"Right":    string(right.Type()),
		})
	default:
		return unknownInfixOperator(node, left, right, env)
	}
}

func unknownInfixOperator(node *ast.InfixExpression, left, right Object, env *Environment) Object {
	return fail(env, node, "OP-0002", map[string]any{
		"Left":     string(left.Type()),
		"Operator": node.Operator,
		"Right":    string(right.Type()),
	})
}

func evalIntegerInfixExpression(node *ast.InfixExpression, left, right int64, env *Environment) Object {
	switch node.Operator {
	case "+":
		return &Integer{Value: left + right}
	case "-":
		return &Integer{Value: left - right}
	case "*":
		return &Integer{Value: left * right}
	case "/":
		if right == 0 {
			return fail(env, node, "OP-0003", nil)
		}
		return &Integer{Value: left / right}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case "==":
		return nativeBoolToBooleanObject(left == right)
	case "!=":
		return nativeBoolToBooleanObject(left != right)
	default:
		return unknownInfixOperator(node, &Integer{Value: left}, &Integer{Value: right}, env)
	}
}

func evalStringInfixExpression(node *ast.InfixExpression, left, right string, env *Environment) Object {
	switch node.Operator {
	case "+":
		return &String{Value: left + right}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case "==":
		return nativeBoolToBooleanObject(left == right)
	case "!=":
		return nativeBoolToBooleanObject(left != right)
	default:
		return unknownInfixOperator(node, &String{Value: left}, &String{Value: right}, env)
	}
}

// objectsEqual compares by value. Arrays and hashes compare structurally,
// functions by identity, and values of different kinds are never equal.
func objectsEqual(left, right Object) bool {
	switch l := left.(type) {
	case *Integer:
		r, ok := right.(*Integer)
		return ok && l.Value == r.Value
	case *Boolean:
		r, ok := right.(*Boolean)
		return ok && l.Value == r.Value
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	case *Null:
		_, ok := right.(*Null)
		return ok
	case *Array:
		r, ok := right.(*Array)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !objectsEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Hash:
		r, ok := right.(*Hash)
		if !ok || l.Len() != r.Len() {
			return false
		}
		for key, pair := range l.Pairs {
			other, ok := r.Pairs[key]
			if !ok || !objectsEqual(pair.Value, other.Value) {
				return false
			}
		}
		return true
	case *Builtin:
		r, ok := right.(*Builtin)
		return ok && l.Name == r.Name
	default:
		return left == right
	}
}

func evalIfExpression(ie *ast.IfExpression, env *Environment) Object {
	condition := Eval(ie.Condition, env)
	if isReturn(condition) {
		return condition
	}

	if isTruthy(condition) {
		if ie.Consequence == nil {
			return NULL
		}
		return Eval(ie.Consequence, env)
	} else if ie.Alternative != nil {
		return Eval(ie.Alternative, env)
	} else {
		return NULL
	}
}

// evalIdentifier resolves a name: call scope, captured chain, session
// global, then built-ins.
func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Lookup(node.Value); ok {
		return val
	}

	if builtin, ok := builtins[node.Value]; ok {
		return builtin
	}

	var candidates []string
	if !env.options().SuppressHints {
		candidates = append(env.Names(), BuiltinNames()...)
	}
	report(env, node, serrors.NewUndefinedIdentifier(node.Value, candidates))
	return NULL
}

// evalExpressions evaluates exps in order. If one of them returns, the
// ReturnValue is passed back as the second result.
func evalExpressions(exps []ast.Expression, env *Environment) ([]Object, Object) {
	result := make([]Object, 0, len(exps))

	for _, e := range exps {
		evaluated := Eval(e, env)
		if isReturn(evaluated) {
			return nil, evaluated
		}
		result = append(result, evaluated)
	}

	return result, nil
}

func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	name := node.Function.Value

	var fn Object
	if val, ok := env.Lookup(name); ok {
		fn = val
	} else if builtin, ok := builtins[name]; ok {
		fn = builtin
	} else {
		var candidates []string
		if !env.options().SuppressHints {
			candidates = append(env.Names(), BuiltinNames()...)
		}
		report(env, node.Function, serrors.NewUndefinedFunction(name, candidates))
		return NULL
	}

	args, ret := evalExpressions(node.Arguments, env)
	if ret != nil {
		return ret
	}

	return applyFunction(node, fn, args, env)
}

func applyFunction(node *ast.CallExpression, fn Object, args []Object, env *Environment) Object {
	switch fn := fn.(type) {
	case *Function:
		if fn.Body == nil {
			return NULL
		}
		extendedEnv := extendFunctionEnv(fn, args)
		evaluated := Eval(fn.Body, extendedEnv)
		return unwrapReturnValue(evaluated)

	case *Builtin:
		result, err := fn.Fn(args...)
		if err != nil {
			report(env, node, err)
		}
		if result == nil {
			return NULL
		}
		return result

	default:
		return fail(env, node, "TYPE-0003", map[string]any{"Got": string(fn.Type())})
	}
}

// extendFunctionEnv binds parameters to arguments in a new scope enclosed
// by the function's captured scope. Parameters without an argument stay
// unbound; surplus arguments are ignored.
func extendFunctionEnv(fn *Function, args []Object) *Environment {
	env := NewEnclosedEnvironment(fn.Env)

	for i, param := range fn.Parameters {
		if i >= len(args) {
			break
		}
		env.Set(param.Value, args[i])
	}

	return env
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func evalIndexExpression(node *ast.IndexExpression, left, index Object, env *Environment) Object {
	switch {
	case left.Type() == ARRAY_OBJ && index.Type() == INTEGER_OBJ:
		return evalArrayIndexExpression(node, left.(*Array), index.(*Integer).Value, env)
	case left.Type() == STRING_OBJ && index.Type() == INTEGER_OBJ:
		return evalStringIndexExpression(node, left.(*String), index.(*Integer).Value, env)
	case left.Type() == HASH_OBJ:
		return evalHashIndexExpression(node, left.(*Hash), index, env)
	default:
		return fail(env, node, "TYPE-0004", map[string]any{
			"Left":  string(left.Type()),
			"Right": string(index.Type()),
		})
	}
}

func evalArrayIndexExpression(node *ast.IndexExpression, array *Array, idx int64, env *Environment) Object {
	max := int64(len(array.Elements) - 1)

	if idx < 0 || idx > max {
		return fail(env, node, "INDEX-0001", map[string]any{
			"Index":  idx,
			"Type":   "array",
			"Length": len(array.Elements),
		})
	}

	return array.Elements[idx]
}

func evalStringIndexExpression(node *ast.IndexExpression, str *String, idx int64, env *Environment) Object {
	length := int64(utf8.RuneCountInString(str.Value))

	if idx < 0 || idx >= length {
		return fail(env, node, "INDEX-0001", map[string]any{
			"Index":  idx,
			"Type":   "string",
			"Length": length,
		})
	}

	var i int64
	for _, r := range str.Value {
		if i == idx {
			return &String{Value: string(r)}
		}
		i++
	}
	return NULL
}

func evalHashIndexExpression(node *ast.IndexExpression, hash *Hash, index Object, env *Environment) Object {
	key, ok := index.(Hashable)
	if !ok {
		return fail(env, node, "TYPE-0005", map[string]any{"Got": string(index.Type())})
	}

	value, ok := hash.Get(key)
	if !ok {
		return NULL
	}
	return value
}

// evalHashLiteral evaluates entries in source order against the session
// global scope, or the current scope with Options.LexicalHashLiterals.
func evalHashLiteral(node *ast.HashLiteral, env *Environment) Object {
	scope := env.Global()
	if env.options().LexicalHashLiterals {
		scope = env
	}

	hash := NewHash()

	for _, pair := range node.Pairs {
		key := Eval(pair.Key, scope)
		if isReturn(key) {
			return key
		}

		hashKey, ok := key.(Hashable)
		if !ok {
			return fail(env, pair.Key, "TYPE-0005", map[string]any{"Got": string(key.Type())})
		}

		value := Eval(pair.Value, scope)
		if isReturn(value) {
			return value
		}

		hash.Set(hashKey, value)
	}

	return hash
}
