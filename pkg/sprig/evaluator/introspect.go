package evaluator

// BuiltinInfo describes a built-in function for help output
type BuiltinInfo struct {
	Name        string   `json:"name"`
	Arity       string   `json:"arity"`
	Params      []string `json:"params"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Example     string   `json:"example,omitempty"`
}

// OperatorInfo describes an operator for help output
type OperatorInfo struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Operands    string `json:"operands"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// TypeInfo describes a value type for help output
type TypeInfo struct {
	Name        string `json:"name"`
	Literal     string `json:"literal"`
	Description string `json:"description"`
}

// BuiltinMetadata documents every entry of the built-in table
var BuiltinMetadata = map[string]BuiltinInfo{
	"len": {
		Name:        "len",
		Arity:       "1",
		Params:      []string{"value"},
		Description: "Number of characters in a string or elements in an array",
		Category:    "collection",
		Example:     `len("hi")`,
	},
	"first": {
		Name:        "first",
		Arity:       "1",
		Params:      []string{"array"},
		Description: "First element of an array, null when empty",
		Category:    "array",
		Example:     "first([1, 2, 3])",
	},
	"last": {
		Name:        "last",
		Arity:       "1",
		Params:      []string{"array"},
		Description: "Last element of an array, null when empty",
		Category:    "array",
		Example:     "last([1, 2, 3])",
	},
	"rest": {
		Name:        "rest",
		Arity:       "1",
		Params:      []string{"array"},
		Description: "New array without the first element",
		Category:    "array",
		Example:     "rest([1, 2, 3])",
	},
	"push": {
		Name:        "push",
		Arity:       "2",
		Params:      []string{"array", "value"},
		Description: "New array with value appended; the argument is unchanged",
		Category:    "array",
		Example:     "push([1, 2], 3)",
	},
}

// OperatorMetadata documents the prefix and infix operators
var OperatorMetadata = []OperatorInfo{
	{Symbol: "+", Name: "add", Operands: "integer, integer | string, string", Description: "Addition or string concatenation", Category: "arithmetic"},
	{Symbol: "-", Name: "subtract", Operands: "integer, integer", Description: "Subtraction; as a prefix, negation", Category: "arithmetic"},
	{Symbol: "*", Name: "multiply", Operands: "integer, integer", Description: "Multiplication", Category: "arithmetic"},
	{Symbol: "/", Name: "divide", Operands: "integer, integer", Description: "Integer division, truncating toward zero", Category: "arithmetic"},
	{Symbol: "<", Name: "less", Operands: "integer, integer | string, string", Description: "Less than", Category: "comparison"},
	{Symbol: ">", Name: "greater", Operands: "integer, integer | string, string", Description: "Greater than", Category: "comparison"},
	{Symbol: "==", Name: "equal", Operands: "any, any", Description: "Equal by value; arrays and hashes compare element by element", Category: "comparison"},
	{Symbol: "!=", Name: "not equal", Operands: "any, any", Description: "Not equal", Category: "comparison"},
	{Symbol: "!", Name: "not", Operands: "any", Description: "Logical negation of truthiness", Category: "logical"},
	{Symbol: "[]", Name: "index", Operands: "array[integer] | string[integer] | hash[key]", Description: "Element access, null when missing", Category: "collection"},
}

// TypeMetadata documents the value types
var TypeMetadata = map[string]TypeInfo{
	"integer":  {Name: "integer", Literal: "42", Description: "Signed 64-bit integer"},
	"boolean":  {Name: "boolean", Literal: "true", Description: "true or false"},
	"string":   {Name: "string", Literal: `"text"`, Description: "Immutable Unicode text; index yields one character"},
	"null":     {Name: "null", Literal: "if (false) { 1 }", Description: "Absence of a value; the result of failed operations"},
	"array":    {Name: "array", Literal: "[1, 2, 3]", Description: "Ordered list of values"},
	"hash":     {Name: "hash", Literal: `{"key": "value"}`, Description: "Map from integer, boolean or string keys to values"},
	"function": {Name: "function", Literal: "fn(x) { x }", Description: "Closure over the scope it was created in"},
	"builtin":  {Name: "builtin", Literal: "len", Description: "Function implemented by the interpreter"},
}
