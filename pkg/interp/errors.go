package interp

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies render failures.
type Kind string

const (
	// KindElementNotFound marks an unknown instruction without a fallback.
	KindElementNotFound Kind = "element-not-found"
	// KindElementMalformed marks an ambiguous fallback set or an otherwise
	// invalid construct.
	KindElementMalformed Kind = "element-malformed"
	// KindElementMisplaced marks an instruction outside its only valid
	// container.
	KindElementMisplaced Kind = "element-misplaced"
	// KindAttributeMalformed marks a missing required attribute or an
	// attribute holding an invalid value.
	KindAttributeMalformed Kind = "attribute-malformed"
	// KindExpression marks an expression that failed to compile or run.
	KindExpression Kind = "expression"
	// KindRecursionLimit marks call-template nesting past the configured
	// depth.
	KindRecursionLimit Kind = "recursion-limit"
)

// Sentinels for errors.Is.
var (
	ErrElementNotFound    = errors.New("jdsl: element not found")
	ErrElementMalformed   = errors.New("jdsl: element malformed")
	ErrElementMisplaced   = errors.New("jdsl: element misplaced")
	ErrAttributeMalformed = errors.New("jdsl: attribute malformed")
	ErrExpression         = errors.New("jdsl: expression failed")
	ErrRecursionLimit     = errors.New("jdsl: recursion limit exceeded")
)

func (k Kind) sentinel() error {
	switch k {
	case KindElementNotFound:
		return ErrElementNotFound
	case KindElementMalformed:
		return ErrElementMalformed
	case KindElementMisplaced:
		return ErrElementMisplaced
	case KindAttributeMalformed:
		return ErrAttributeMalformed
	case KindExpression:
		return ErrExpression
	case KindRecursionLimit:
		return ErrRecursionLimit
	default:
		return nil
	}
}

// Error is a render failure tied to the offending instruction.
type Error struct {
	Kind      Kind
	Element   string
	Attribute string
	Err       error
}

// Error formats as `jdsl: <kind>: <element>[@attr]: cause`.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("jdsl: ")
	b.WriteString(string(e.Kind))
	if e.Element != "" {
		b.WriteString(": ")
		b.WriteString(e.Element)
		if e.Attribute != "" {
			b.WriteString("@")
			b.WriteString(e.Attribute)
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	sentinel := e.Kind.sentinel()
	return sentinel != nil && target == sentinel
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

func newError(kind Kind, element, attribute string, cause error) *Error {
	return &Error{Kind: kind, Element: element, Attribute: attribute, Err: cause}
}

func errMissingAttr(element, attribute string) *Error {
	return newError(KindAttributeMalformed, element, attribute, fmt.Errorf("attribute %q is required", attribute))
}
