// Package expr evaluates the expressions embedded in templates: `select` and
// `test` attributes, `{...}` attribute interpolations and script bodies.
//
// Expressions use the expr-lang grammar: literals, identifiers, member and
// index access, arithmetic, comparison and logical operators, and calls to a
// fixed set of builtins plus any host functions registered on the Runtime.
// They can read data but cannot execute arbitrary code.
//
// The environment an expression sees is built from an Env:
//   - keys of a map data context are available directly (`name`, `items`)
//   - `this` is the current data context, `root` the interpreter's root context
//   - variables are available with a `$` prefix (`$total`)
package expr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	gocache "github.com/patrickmn/go-cache"
)

// VarPrefix marks variable references inside expressions.
const VarPrefix = "$"

// Reserved environment names.
const (
	ThisName = "this"
	RootName = "root"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// ErrEmpty is returned when an expression is blank.
var ErrEmpty = errors.New("expr: empty expression")

// Env is the evaluation input: the implicit receiver, the root context and
// the active variable bindings.
type Env struct {
	This any
	Root any
	Vars map[string]any
}

// Evaluator evaluates expression source against an Env.
type Evaluator interface {
	Eval(source string, env Env) (any, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(source string, env Env) (any, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(source string, env Env) (any, error) {
	return fn(source, env)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithFunctions exposes host functions to expressions under the given names.
// Later registrations of the same name win.
func WithFunctions(funcs map[string]any) Option {
	return func(r *Runtime) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			r.funcs[name] = fn
		}
	}
}

// WithCacheExpiration controls how long compiled programs stay cached. Use
// gocache.NoExpiration to keep them for the lifetime of the Runtime.
func WithCacheExpiration(expiration, cleanup time.Duration) Option {
	return func(r *Runtime) {
		r.cache = gocache.New(expiration, cleanup)
	}
}

// Runtime compiles expressions with expr-lang and caches the compiled
// programs by source text. It is safe for concurrent use.
type Runtime struct {
	cache *gocache.Cache
	funcs map[string]any
}

var _ Evaluator = (*Runtime)(nil)

// New constructs a Runtime.
func New(options ...Option) *Runtime {
	r := &Runtime{
		funcs: make(map[string]any),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.cache == nil {
		r.cache = gocache.New(DefaultExpiration, DefaultCleanupInterval)
	}
	return r
}

// Eval compiles (or reuses) the program for source and runs it against env.
func (r *Runtime) Eval(source string, env Env) (any, error) {
	program, err := r.Compile(source)
	if err != nil {
		return nil, err
	}
	out, err := exprlang.Run(program, r.environment(env))
	if err != nil {
		return nil, fmt.Errorf("expr: run %q: %w", strings.TrimSpace(source), err)
	}
	return out, nil
}

// Compile returns the cached program for source, compiling it on a miss.
func (r *Runtime) Compile(source string) (*vm.Program, error) {
	key := strings.TrimSpace(source)
	if key == "" {
		return nil, ErrEmpty
	}
	if cached, ok := r.cache.Get(key); ok {
		if program, ok := cached.(*vm.Program); ok {
			return program, nil
		}
	}
	program, err := exprlang.Compile(key, exprlang.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("expr: compile %q: %w", key, err)
	}
	r.cache.SetDefault(key, program)
	return program, nil
}

// Cached reports how many compiled programs are held.
func (r *Runtime) Cached() int {
	return r.cache.ItemCount()
}

// Flush drops every cached program.
func (r *Runtime) Flush() {
	r.cache.Flush()
}

// environment layers, lowest priority first: context keys, host functions,
// this/root, variables.
func (r *Runtime) environment(env Env) map[string]any {
	data, _ := env.This.(map[string]any)
	out := make(map[string]any, len(data)+len(r.funcs)+len(env.Vars)+2)
	for key, val := range data {
		out[key] = val
	}
	for name, fn := range r.funcs {
		out[name] = fn
	}
	out[ThisName] = env.This
	out[RootName] = env.Root
	for name, val := range env.Vars {
		out[VarPrefix+name] = val
	}
	return out
}
