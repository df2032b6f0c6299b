// Package sprig provides a public API for embedding the Sprig interpreter.
//
// A Session owns one global environment. Bindings made by one call to Eval
// are visible to the next, which is what the REPL and the file watcher rely
// on.
package sprig

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sambeau/sprig/pkg/sprig/ast"
	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
	"github.com/sambeau/sprig/pkg/sprig/evaluator"
	"github.com/sambeau/sprig/pkg/sprig/lexer"
	"github.com/sambeau/sprig/pkg/sprig/parser"
)

// Session evaluates source against a persistent global environment. Calls
// are serialised; a Session may be shared between goroutines.
type Session struct {
	mu   sync.Mutex
	env  *evaluator.Environment
	file string
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets where evaluation diagnostics are written
func WithLogger(l Logger) Option {
	return func(s *Session) {
		s.env.Logger = l
	}
}

// WithLexicalHashLiterals evaluates hash literal entries in the scope they
// appear in rather than the session global scope
func WithLexicalHashLiterals(enabled bool) Option {
	return func(s *Session) {
		s.env.Options.LexicalHashLiterals = enabled
	}
}

// WithHints turns "Did you mean" suggestions on or off
func WithHints(enabled bool) Option {
	return func(s *Session) {
		s.env.Options.SuppressHints = !enabled
	}
}

// WithFile names the source in error positions
func WithFile(name string) Option {
	return func(s *Session) {
		s.file = name
	}
}

// New creates a session. Diagnostics go to DefaultLogger unless WithLogger
// is given.
func New(opts ...Option) *Session {
	s := &Session{env: evaluator.NewEnvironment()}
	s.env.Logger = DefaultLogger
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseError reports every syntax error found in one source.
type ParseError struct {
	Errors []*serrors.SprigError
}

func (e *ParseError) multi() *multierror.Error {
	var result *multierror.Error
	for _, err := range e.Errors {
		result = multierror.Append(result, err)
	}
	return result
}

func (e *ParseError) Error() string {
	if err := e.multi().ErrorOrNil(); err != nil {
		return err.Error()
	}
	return "parse failed"
}

// Unwrap exposes the individual errors to errors.Is and errors.As
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Parse tokenizes and parses source without evaluating it.
func (s *Session) Parse(source string) (*ast.Program, error) {
	program, errs := parser.Parse(lexer.Tokenize(source))
	if len(errs) > 0 {
		if s.file != "" {
			for i, err := range errs {
				errs[i] = err.WithFile(s.file)
			}
		}
		return nil, &ParseError{Errors: errs}
	}
	return program, nil
}

// Eval parses and evaluates source. A syntax error returns a *ParseError
// and evaluates nothing. Evaluation problems never fail the call: they
// produce null values and are available from Diagnostics.
func (s *Session) Eval(source string) (evaluator.Object, error) {
	program, err := s.Parse(source)
	if err != nil {
		return nil, err
	}
	return s.EvalProgram(program), nil
}

// EvalProgram evaluates an already parsed program.
func (s *Session) EvalProgram(program *ast.Program) evaluator.Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env.ClearDiagnostics()
	return evaluator.Eval(program, s.env)
}

// Diagnostics returns the evaluation diagnostics of the last call.
func (s *Session) Diagnostics() []*serrors.SprigError {
	s.mu.Lock()
	defer s.mu.Unlock()

	diags := s.env.Diagnostics()
	if s.file != "" {
		for i, d := range diags {
			diags[i] = d.WithFile(s.file)
		}
	}
	return diags
}

// Reset forgets every binding and diagnostic.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env.Clear()
	s.env.ClearDiagnostics()
}

// Bindings returns a copy of the user bindings in the global environment.
func (s *Session) Bindings() map[string]evaluator.Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.env.Bindings()
}

// Names returns the bound names, sorted.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.env.Names()
}

// SetLogger replaces the diagnostic logger.
func (s *Session) SetLogger(l Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env.Logger = l
}
