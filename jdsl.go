// Package jdsl is the host-facing entry point of the template interpreter.
// It re-exports the engine types from pkg/interp and wires the stylesheet
// loader and the output renderers for callers that want bytes rather than a
// tree.
package jdsl

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-jdsl/pkg/interp"
	"github.com/goliatone/go-jdsl/pkg/loader"
	"github.com/goliatone/go-jdsl/pkg/render"
	"github.com/goliatone/go-jdsl/pkg/tree"
)

// Engine aliases interp.Engine so callers rarely import pkg/interp directly.
type Engine = interp.Engine

// Option configures an Engine.
type Option = interp.Option

// Config aliases interp.Config.
type Config = interp.Config

// Error is the typed render failure; see interp.Error.
type Error = interp.Error

// Handler is the signature of an instruction handler.
type Handler = interp.Handler

// Sentinels matched with errors.Is against render failures.
var (
	ErrElementNotFound    = interp.ErrElementNotFound
	ErrElementMalformed   = interp.ErrElementMalformed
	ErrElementMisplaced   = interp.ErrElementMisplaced
	ErrAttributeMalformed = interp.ErrAttributeMalformed
	ErrExpression         = interp.ErrExpression
	ErrRecursionLimit     = interp.ErrRecursionLimit
)

// New constructs an Engine.
func New(options ...Option) (*Engine, error) {
	return interp.New(options...)
}

// Render interprets template against data and appends the output to out,
// using a throwaway Engine built from options.
func Render(ctx context.Context, data any, template, out *tree.Node, options ...Option) error {
	engine, err := interp.New(options...)
	if err != nil {
		return err
	}
	return engine.Render(ctx, data, template, out)
}

// RenderBytes renders template and serializes the output with the named
// renderer (html, safe-html, xml or text).
func RenderBytes(ctx context.Context, data any, template *tree.Node, rendererName string, options ...Option) ([]byte, error) {
	engine, err := interp.New(options...)
	if err != nil {
		return nil, err
	}
	return serialize(ctx, engine, rendererName, func(out *tree.Node) error {
		return engine.Render(ctx, data, template, out)
	})
}

// Execute renders the registered template id with an existing engine and
// serializes the result with the named renderer.
func Execute(ctx context.Context, engine *Engine, data any, id, rendererName string) ([]byte, error) {
	if engine == nil {
		return nil, fmt.Errorf("jdsl: engine is required")
	}
	return serialize(ctx, engine, rendererName, func(out *tree.Node) error {
		return engine.RenderTemplate(ctx, data, id, out)
	})
}

// LoadStylesheets walks fsys and registers every template it finds on the
// engine's template registry. The loader uses the engine's instruction prefix
// unless options override it.
func LoadStylesheets(fsys fs.FS, engine *Engine, options ...loader.Option) ([]*loader.Stylesheet, error) {
	if engine == nil {
		return nil, fmt.Errorf("jdsl: engine is required")
	}
	opts := append([]loader.Option{loader.WithPrefix(engine.Config().Prefix)}, options...)
	return loader.New(opts...).LoadFS(fsys, engine.Templates())
}

func serialize(ctx context.Context, engine *Engine, rendererName string, fill func(out *tree.Node) error) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if rendererName == "" {
		rendererName = render.NameHTML
	}
	renderer, err := render.NewDefaultRegistry().Get(rendererName)
	if err != nil {
		return nil, err
	}
	out := tree.NewFragment()
	if err := fill(out); err != nil {
		return nil, err
	}
	return renderer.Render(ctx, out)
}
