package interp

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-jdsl/pkg/tree"
)

// Handler renders one instruction element. data is the current data context,
// node the instruction (with computed attributes applied) and out the
// output parent the handler appends to.
type Handler func(in *Interpreter, data any, node, out *tree.Node) error

// Reserved instruction names.
const (
	InstrAttribute    = "attribute"
	InstrCallTemplate = "call-template"
	InstrCase         = "case"
	InstrChoose       = "choose"
	InstrComment      = "comment"
	InstrElement      = "element"
	InstrFallback     = "fallback"
	InstrForEach      = "for-each"
	InstrIf           = "if"
	InstrLog          = "log"
	InstrLoop         = "loop"
	InstrMessage      = "message"
	InstrParam        = "param"
	InstrScript       = "script"
	InstrSort         = "sort"
	InstrStylesheet   = "stylesheet"
	InstrSwitch       = "switch"
	InstrTemplate     = "template"
	InstrText         = "text"
	InstrValueOf      = "value-of"
	InstrVar          = "var"
	InstrVariable     = "variable"
	InstrWithParam    = "with-param"
)

// Instructions maps local instruction names to handlers. Registration is
// append-only.
type Instructions struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewInstructions creates an empty table.
func NewInstructions() *Instructions {
	return &Instructions{handlers: make(map[string]Handler)}
}

// DefaultInstructions returns a table holding every built-in instruction.
func DefaultInstructions() *Instructions {
	t := NewInstructions()
	t.MustRegister(InstrAttribute, inert)
	t.MustRegister(InstrCallTemplate, callTemplate)
	t.MustRegister(InstrCase, misplaced)
	t.MustRegister(InstrChoose, choose)
	t.MustRegister(InstrComment, comment)
	t.MustRegister(InstrElement, element)
	t.MustRegister(InstrFallback, inert)
	t.MustRegister(InstrForEach, forEach)
	t.MustRegister(InstrIf, ifInstr)
	t.MustRegister(InstrLog, message)
	t.MustRegister(InstrLoop, loop)
	t.MustRegister(InstrMessage, message)
	t.MustRegister(InstrParam, param)
	t.MustRegister(InstrScript, script)
	t.MustRegister(InstrSort, inert)
	t.MustRegister(InstrStylesheet, misplaced)
	t.MustRegister(InstrSwitch, switchInstr)
	t.MustRegister(InstrTemplate, templateInstr)
	t.MustRegister(InstrText, textInstr)
	t.MustRegister(InstrValueOf, valueOf)
	t.MustRegister(InstrVar, variable)
	t.MustRegister(InstrVariable, variable)
	t.MustRegister(InstrWithParam, misplaced)
	return t
}

// Register adds a handler. Duplicate names return an error.
func (t *Instructions) Register(name string, handler Handler) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("interp: instruction name is required")
	}
	if handler == nil {
		return fmt.Errorf("interp: handler for %q is required", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.handlers[name]; exists {
		return fmt.Errorf("interp: instruction %q already registered", name)
	}
	t.handlers[name] = handler
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (t *Instructions) MustRegister(name string, handler Handler) {
	if err := t.Register(name, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the handler for name.
func (t *Instructions) Lookup(name string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	handler, ok := t.handlers[name]
	return handler, ok
}

// List returns the registered names, sorted.
func (t *Instructions) List() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func inert(*Interpreter, any, *tree.Node, *tree.Node) error {
	return nil
}

func misplaced(in *Interpreter, _ any, node, _ *tree.Node) error {
	return newError(KindElementMisplaced, in.QualifiedName(node), "", nil)
}
