package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sambeau/sprig/pkg/sprig/ast"
	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	INTEGER_OBJ      = "INTEGER"
	BOOLEAN_OBJ      = "BOOLEAN"
	STRING_OBJ       = "STRING"
	NULL_OBJ         = "NULL"
	RETURN_VALUE_OBJ = "RETURN_VALUE"
	FUNCTION_OBJ     = "FUNCTION"
	BUILTIN_OBJ      = "BUILTIN"
	ARRAY_OBJ        = "ARRAY"
	HASH_OBJ         = "HASH"
)

// Object represents all values in our language
type Object interface {
	Type() ObjectType
	Inspect() string
}

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) HashKey() HashKey { return HashKey{Type: i.Type(), Int: i.Value} }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) HashKey() HashKey {
	key := HashKey{Type: b.Type()}
	if b.Value {
		key.Int = 1
	}
	return key
}

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) HashKey() HashKey { return HashKey{Type: s.Type(), Str: s.Value} }

// Null represents null objects
type Null struct{}

func (n *Null) Inspect() string  { return "null" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

// ReturnValue wraps other objects when returned
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Function represents function objects. Env is the environment the literal
// was evaluated in and is shared, not copied.
type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.String()
	}
	body := ""
	if f.Body != nil {
		body = f.Body.String()
	}
	return fmt.Sprintf("fn(%s) {\n%s\n}", strings.Join(params, ", "), body)
}

// BuiltinFunction is the Go implementation of a built-in. A non-nil
// diagnostic is reported at the call site; the returned object is the call
// result (Null when nil).
type BuiltinFunction func(args ...Object) (Object, *serrors.SprigError)

// Builtin represents a built-in function
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function " + b.Name }

// Array represents array objects
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	elements := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elements[i] = inspectElement(e)
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// HashKey identifies a hash entry. Keys of different types never collide.
type HashKey struct {
	Type ObjectType
	Int  int64
	Str  string
}

// Hashable is implemented by objects usable as hash keys.
type Hashable interface {
	HashKey() HashKey
}

// HashPair stores the original key object with its value.
type HashPair struct {
	Key   Object
	Value Object
}

// Hash represents hash objects. Iteration follows insertion order.
type Hash struct {
	Pairs map[HashKey]HashPair
	Order []HashKey
}

// NewHash returns an empty hash.
func NewHash() *Hash {
	return &Hash{Pairs: make(map[HashKey]HashPair)}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (h *Hash) Set(key Hashable, value Object) {
	hk := key.HashKey()
	if _, exists := h.Pairs[hk]; !exists {
		h.Order = append(h.Order, hk)
	}
	h.Pairs[hk] = HashPair{Key: key.(Object), Value: value}
}

// Get looks up key.
func (h *Hash) Get(key Hashable) (Object, bool) {
	pair, ok := h.Pairs[key.HashKey()]
	if !ok {
		return nil, false
	}
	return pair.Value, true
}

// Len returns the number of entries.
func (h *Hash) Len() int { return len(h.Order) }

// Each calls fn for every pair in insertion order.
func (h *Hash) Each(fn func(key, value Object)) {
	for _, hk := range h.Order {
		pair := h.Pairs[hk]
		fn(pair.Key, pair.Value)
	}
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }
func (h *Hash) Inspect() string {
	pairs := make([]string, 0, h.Len())
	h.Each(func(key, value Object) {
		pairs = append(pairs, inspectElement(key)+": "+inspectElement(value))
	})
	return "{" + strings.Join(pairs, ", ") + "}"
}

// inspectElement renders a value nested inside a collection. Strings are
// quoted so that ["a"] and [a] read differently.
func inspectElement(obj Object) string {
	if s, ok := obj.(*String); ok {
		return ast.Quote(s.Value)
	}
	if obj == nil {
		return "null"
	}
	return obj.Inspect()
}
