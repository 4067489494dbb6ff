package interp

import (
	"strings"

	"github.com/goliatone/go-jdsl/pkg/datatype"
	"github.com/goliatone/go-jdsl/pkg/diag"
	"github.com/goliatone/go-jdsl/pkg/expr"
	"github.com/goliatone/go-jdsl/pkg/sorting"
	"github.com/goliatone/go-jdsl/pkg/templates"
	"github.com/goliatone/go-jdsl/pkg/tree"
)

const (
	DefaultPrefix       = "j"
	DefaultNamespaceURI = "urn:jdsl"
	DefaultMaxCallDepth = 128
)

// LoopCounter selects how `loop` binds its key.
type LoopCounter int

const (
	// LoopCounterZeroBased binds key to 0..times-1 and runs exactly `times`
	// iterations.
	LoopCounterZeroBased LoopCounter = iota
	// LoopCounterLegacy pre-increments the counter when binding the key, so
	// the key starts at 1 and the loop skips every other iteration.
	LoopCounterLegacy
)

func (c LoopCounter) String() string {
	switch c {
	case LoopCounterLegacy:
		return "legacy"
	default:
		return "zero-based"
	}
}

// ParseLoopCounter maps "legacy" to LoopCounterLegacy; anything else is
// zero-based.
func ParseLoopCounter(name string) LoopCounter {
	if strings.EqualFold(strings.TrimSpace(name), "legacy") {
		return LoopCounterLegacy
	}
	return LoopCounterZeroBased
}

// Config captures the engine's behavioural settings.
type Config struct {
	// Prefix is the namespace prefix that marks instruction elements.
	Prefix string
	// NamespaceURI also marks instruction elements when nodes carry a
	// resolved namespace instead of a prefix.
	NamespaceURI string
	// DefaultDataType applies when a binding has no data-type attribute.
	DefaultDataType string
	// PreserveText lists elements whose whitespace-only text is kept.
	PreserveText []tree.Name
	// MaxCallDepth bounds nested call-template invocations.
	MaxCallDepth int
	LoopCounter  LoopCounter
}

// DefaultConfig returns the settings used when no options are supplied.
func DefaultConfig() Config {
	return Config{
		Prefix:          DefaultPrefix,
		NamespaceURI:    DefaultNamespaceURI,
		DefaultDataType: datatype.String,
		PreserveText:    []tree.Name{{Space: DefaultPrefix, Local: "text"}},
		MaxCallDepth:    DefaultMaxCallDepth,
		LoopCounter:     LoopCounterZeroBased,
	}
}

// Option mutates engine configuration.
type Option func(*Engine)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithPrefix sets the instruction namespace prefix. The preserve-text set
// follows the prefix unless it was customised.
func WithPrefix(prefix string) Option {
	return func(e *Engine) {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return
		}
		preserve := append([]tree.Name(nil), e.cfg.PreserveText...)
		for i, name := range preserve {
			if name.Space == e.cfg.Prefix {
				preserve[i].Space = prefix
			}
		}
		e.cfg.PreserveText = preserve
		e.cfg.Prefix = prefix
	}
}

// WithNamespaceURI sets the instruction namespace URI.
func WithNamespaceURI(uri string) Option {
	return func(e *Engine) {
		e.cfg.NamespaceURI = strings.TrimSpace(uri)
	}
}

// WithDefaultDataType sets the converter used when data-type is absent.
func WithDefaultDataType(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.cfg.DefaultDataType = name
		}
	}
}

// WithMaxCallDepth bounds call-template nesting. Non-positive values keep
// the default.
func WithMaxCallDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.cfg.MaxCallDepth = depth
		}
	}
}

// WithLoopCounter selects the loop key behaviour.
func WithLoopCounter(mode LoopCounter) Option {
	return func(e *Engine) {
		e.cfg.LoopCounter = mode
	}
}

// WithPreserveText replaces the set of elements whose whitespace-only text
// is kept.
func WithPreserveText(names ...tree.Name) Option {
	return func(e *Engine) {
		e.cfg.PreserveText = append([]tree.Name(nil), names...)
	}
}

// WithInstructions supplies the instruction table.
func WithInstructions(table *Instructions) Option {
	return func(e *Engine) {
		if table != nil {
			e.instructions = table
		}
	}
}

// WithDataTypes supplies the data-type registry.
func WithDataTypes(reg *datatype.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.dataTypes = reg
		}
	}
}

// WithSorts supplies the sort-strategy registry.
func WithSorts(reg *sorting.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.sorts = reg
		}
	}
}

// WithTemplates supplies the registry call-template resolves against.
func WithTemplates(reg *templates.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.templates = reg
		}
	}
}

// WithEvaluator replaces the expression evaluator.
func WithEvaluator(evaluator expr.Evaluator) Option {
	return func(e *Engine) {
		if evaluator != nil {
			e.evaluator = evaluator
		}
	}
}

// WithFunctions exposes host functions to expressions. It only applies to
// the built-in evaluator.
func WithFunctions(funcs map[string]any) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			e.funcs[name] = fn
		}
	}
}

// WithSink sets where `message` output goes.
func WithSink(sink diag.Sink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}
