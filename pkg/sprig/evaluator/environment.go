package evaluator

import (
	"fmt"
	"os"
	"sort"

	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
)

// Logger receives evaluation diagnostics, one line per diagnostic.
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

// defaultStderrLogger is the default logger that writes to stderr
type defaultStderrLogger struct{}

func (l *defaultStderrLogger) Log(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(os.Stderr, " ")
		}
		fmt.Fprint(os.Stderr, v)
	}
}

func (l *defaultStderrLogger) LogLine(values ...interface{}) {
	l.Log(values...)
	fmt.Fprintln(os.Stderr)
}

// DefaultLogger is the default stderr logger
var DefaultLogger Logger = &defaultStderrLogger{}

// Options tune evaluation for a session.
type Options struct {
	// LexicalHashLiterals evaluates hash literal entries in the current
	// scope instead of the session global scope.
	LexicalHashLiterals bool
	// SuppressHints skips "Did you mean" suggestions on lookup misses.
	SuppressHints bool
}

// diagnostics is shared by every environment of one session.
type diagnostics struct {
	list []*serrors.SprigError
}

// Environment represents the environment for variable bindings
type Environment struct {
	store  map[string]Object
	outer  *Environment
	global *Environment
	diag   *diagnostics

	// Logger and Options are read from the session global environment, so
	// changes reach closures created earlier.
	Logger  Logger
	Options Options
}

// NewEnvironment creates a session global environment
func NewEnvironment() *Environment {
	env := &Environment{
		store:  make(map[string]Object),
		diag:   &diagnostics{},
		Logger: DefaultLogger,
	}
	env.global = env
	return env
}

// NewEnclosedEnvironment creates a call environment enclosed by outer. It
// shares the session global and diagnostics of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{
		store:  make(map[string]Object),
		outer:  outer,
		global: outer.global,
		diag:   outer.diag,
	}
}

// options returns the session options.
func (e *Environment) options() Options {
	return e.global.Options
}

// Global returns the session global environment.
func (e *Environment) Global() *Environment {
	return e.global
}

// Get retrieves a value from this environment or its enclosing chain
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Lookup resolves name through the enclosing chain and then the session
// global environment. Built-ins are not consulted.
func (e *Environment) Lookup(name string) (Object, bool) {
	if value, ok := e.Get(name); ok {
		return value, true
	}
	if e.global != nil && e.global != e {
		return e.global.Get(name)
	}
	return nil, false
}

// Set stores a value in this environment only
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// SetLet binds name in this environment and in the session global
// environment.
func (e *Environment) SetLet(name string, val Object) Object {
	e.store[name] = val
	if e.global != nil && e.global != e {
		e.global.store[name] = val
	}
	return val
}

// Names returns every name visible from this environment, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			seen[name] = true
		}
	}
	if e.global != nil {
		for name := range e.global.store {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bindings returns a copy of the bindings held directly by this environment.
func (e *Environment) Bindings() map[string]Object {
	out := make(map[string]Object, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}

// Clear removes every binding held directly by this environment.
func (e *Environment) Clear() {
	e.store = make(map[string]Object)
}

// Report records a diagnostic for the session and writes it to the logger.
func (e *Environment) Report(err *serrors.SprigError) {
	e.diag.list = append(e.diag.list, err)
	if logger := e.global.Logger; logger != nil {
		logger.LogLine(err.String())
	}
}

// Diagnostics returns the diagnostics recorded since the last
// ClearDiagnostics.
func (e *Environment) Diagnostics() []*serrors.SprigError {
	out := make([]*serrors.SprigError, len(e.diag.list))
	copy(out, e.diag.list)
	return out
}

// ClearDiagnostics forgets recorded diagnostics.
func (e *Environment) ClearDiagnostics() {
	e.diag.list = nil
}
