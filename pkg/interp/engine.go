// Package interp is the template interpreter. An Engine holds the
// instruction table, the registries and the configuration; every Render
// creates an Interpreter that walks a template tree against a data context
// and appends the result to an output node.
package interp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/goliatone/go-jdsl/pkg/datatype"
	"github.com/goliatone/go-jdsl/pkg/diag"
	"github.com/goliatone/go-jdsl/pkg/expr"
	"github.com/goliatone/go-jdsl/pkg/scope"
	"github.com/goliatone/go-jdsl/pkg/sorting"
	"github.com/goliatone/go-jdsl/pkg/templates"
	"github.com/goliatone/go-jdsl/pkg/tree"
)

// Engine is safe for concurrent Render calls as long as the templates it
// renders are not mutated.
type Engine struct {
	mu           sync.RWMutex
	cfg          Config
	instructions *Instructions
	dataTypes    *datatype.Registry
	sorts        *sorting.Registry
	templates    *templates.Registry
	evaluator    expr.Evaluator
	funcs        map[string]any
	sink         diag.Sink
}

// New constructs an Engine. Registries not supplied through options are
// created with their built-in entries.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		cfg:   DefaultConfig(),
		funcs: make(map[string]any),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}

	if e.instructions == nil {
		e.instructions = DefaultInstructions()
	}
	if e.dataTypes == nil {
		e.dataTypes = datatype.Default()
	}
	if e.sorts == nil {
		e.sorts = sorting.Default()
	}
	if e.templates == nil {
		e.templates = templates.NewRegistry()
	}
	if e.evaluator == nil {
		e.evaluator = expr.New(expr.WithFunctions(e.funcs))
	}
	if e.sink == nil {
		e.sink = diag.NewLoggerSink(os.Stderr)
	}

	if strings.TrimSpace(e.cfg.Prefix) == "" {
		return nil, fmt.Errorf("interp: instruction prefix is required")
	}
	if e.cfg.MaxCallDepth <= 0 {
		e.cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	if e.cfg.DefaultDataType == "" {
		e.cfg.DefaultDataType = datatype.String
	}
	if !e.dataTypes.Has(e.cfg.DefaultDataType) {
		return nil, fmt.Errorf("interp: default data type %q is not registered", e.cfg.DefaultDataType)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cfg := e.cfg
	cfg.PreserveText = append([]tree.Name(nil), e.cfg.PreserveText...)
	return cfg
}

// Instructions exposes the instruction table for registration.
func (e *Engine) Instructions() *Instructions { return e.instructions }

// DataTypes exposes the data-type registry.
func (e *Engine) DataTypes() *datatype.Registry { return e.dataTypes }

// Sorts exposes the sort-strategy registry.
func (e *Engine) Sorts() *sorting.Registry { return e.sorts }

// Templates exposes the template registry.
func (e *Engine) Templates() *templates.Registry { return e.templates }

// Evaluator returns the expression evaluator.
func (e *Engine) Evaluator() expr.Evaluator { return e.evaluator }

// DefaultDataType returns the converter name used when data-type is absent.
func (e *Engine) DefaultDataType() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.DefaultDataType
}

// SetDefaultDataType changes the default converter. The name must be
// registered.
func (e *Engine) SetDefaultDataType(name string) error {
	name = strings.TrimSpace(name)
	if !e.dataTypes.Has(name) {
		return fmt.Errorf("interp: data type %q is not registered", name)
	}
	e.mu.Lock()
	e.cfg.DefaultDataType = name
	e.mu.Unlock()
	return nil
}

// Render interprets template against data and appends the result to out.
func (e *Engine) Render(ctx context.Context, data any, template, out *tree.Node) error {
	if template == nil {
		return fmt.Errorf("interp: template is required")
	}
	if out == nil {
		return fmt.Errorf("interp: output node is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return e.newInterpreter(ctx, data, 0).Process(data, template, out)
}

// RenderTemplate renders the registered template id.
func (e *Engine) RenderTemplate(ctx context.Context, data any, id string, out *tree.Node) error {
	template, ok := e.templates.Get(id)
	if !ok {
		return fmt.Errorf("interp: template %q is not registered", id)
	}
	return e.Render(ctx, data, template, out)
}

func (e *Engine) newInterpreter(ctx context.Context, root any, depth int) *Interpreter {
	vars := scope.New()
	vars.SetRoot(root)
	return &Interpreter{
		engine: e,
		ctx:    ctx,
		scope:  vars,
		depth:  depth,
	}
}
