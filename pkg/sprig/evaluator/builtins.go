package evaluator

import (
	"sort"
	"unicode/utf8"

	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
)

var builtins = map[string]*Builtin{
	"len": {
		Name: "len",
		Fn: func(args ...Object) (Object, *serrors.SprigError) {
			if err := checkArity("len", args, 1); err != nil {
				return NULL, err
			}
			switch arg := args[0].(type) {
			case *String:
				return &Integer{Value: int64(utf8.RuneCountInString(arg.Value))}, nil
			case *Array:
				return &Integer{Value: int64(len(arg.Elements))}, nil
			default:
				return NULL, unsupportedArgument("len", arg)
			}
		},
	},
	"first": {
		Name: "first",
		Fn: func(args ...Object) (Object, *serrors.SprigError) {
			arr, err := arrayArgument("first", args, 1)
			if err != nil {
				return NULL, err
			}
			if len(arr.Elements) == 0 {
				return NULL, nil
			}
			return arr.Elements[0], nil
		},
	},
	"last": {
		Name: "last",
		Fn: func(args ...Object) (Object, *serrors.SprigError) {
			arr, err := arrayArgument("last", args, 1)
			if err != nil {
				return NULL, err
			}
			if len(arr.Elements) == 0 {
				return NULL, nil
			}
			return arr.Elements[len(arr.Elements)-1], nil
		},
	},
	"rest": {
		Name: "rest",
		Fn: func(args ...Object) (Object, *serrors.SprigError) {
			arr, err := arrayArgument("rest", args, 1)
			if err != nil {
				return NULL, err
			}
			if len(arr.Elements) == 0 {
				return &Array{Elements: []Object{}}, nil
			}
			elements := make([]Object, len(arr.Elements)-1)
			copy(elements, arr.Elements[1:])
			return &Array{Elements: elements}, nil
		},
	},
	"push": {
		Name: "push",
		Fn: func(args ...Object) (Object, *serrors.SprigError) {
			arr, err := arrayArgument("push", args, 2)
			if err != nil {
				return NULL, err
			}
			elements := make([]Object, len(arr.Elements), len(arr.Elements)+1)
			copy(elements, arr.Elements)
			return &Array{Elements: append(elements, args[1])}, nil
		},
	},
}

// GetBuiltin returns the built-in called name.
func GetBuiltin(name string) (*Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// BuiltinNames returns the names of all built-ins, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkArity(name string, args []Object, want int) *serrors.SprigError {
	if len(args) == want {
		return nil
	}
	return serrors.New("ARITY-0001", map[string]any{
		"Function": name,
		"Got":      len(args),
		"Want":     want,
	})
}

func unsupportedArgument(name string, arg Object) *serrors.SprigError {
	return serrors.New("TYPE-0002", map[string]any{
		"Function": name,
		"Got":      string(arg.Type()),
	})
}

// arrayArgument checks arity and that the first argument is an Array.
func arrayArgument(name string, args []Object, want int) (*Array, *serrors.SprigError) {
	if err := checkArity(name, args, want); err != nil {
		return nil, err
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return nil, unsupportedArgument(name, args[0])
	}
	return arr, nil
}
