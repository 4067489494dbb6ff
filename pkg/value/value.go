// Package value holds the coercion rules shared by the interpreter, the data
// type converters and the sort strategies: truthiness, loose equality,
// numeric and textual conversion, and sequence detection.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// Truthy reports whether v counts as true in a test expression. Empty strings,
// zero numbers, NaN, nil and empty collections are false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch typed := v.(type) {
	case bool:
		return typed
	case string:
		return typed != ""
	case []byte:
		return len(typed) > 0
	}
	if f, ok := numberOf(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

// Number converts v to a float64. Strings are parsed after trimming; booleans
// count as 0 and 1.
func Number(v any) (float64, bool) {
	switch typed := v.(type) {
	case nil:
		return 0, false
	case bool:
		if typed {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return numberOf(v)
}

// numberOf only accepts values whose dynamic type is numeric.
func numberOf(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// IsNumeric reports whether v has a numeric dynamic type.
func IsNumeric(v any) bool {
	_, ok := numberOf(v)
	return ok
}

// LeadingInt parses the leading integer of s the way a lenient integer parser
// would: leading whitespace and an optional sign are accepted, parsing stops
// at the first non-digit. "12px" yields 12; "px" yields false.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return sign * n, true
}

// String renders v as text: strings verbatim, numbers in their shortest
// decimal form, booleans as true/false, nil as the empty string, functions as
// their signature and composite values as canonical JSON.
func String(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []byte:
		return string(typed)
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	case error:
		return typed.Error()
	case fmt.Stringer:
		return typed.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Func:
		return rv.Type().String()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// LooseEqual compares two values the way switch/case matching needs: numbers
// compare numerically (numeric strings included when the other side is a
// number or boolean), nil equals only nil, everything else compares by its
// textual form.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ab, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool && bBool {
		return ab == bb
	}
	if IsNumeric(a) || IsNumeric(b) || aBool || bBool {
		af, aok := Number(a)
		bf, bok := Number(b)
		if aok && bok {
			return af == bf
		}
		return false
	}
	return String(a) == String(b)
}

// Sequence returns the items of a slice or array value. nil yields an empty
// sequence; strings, maps and scalars are not sequences.
func Sequence(v any) ([]any, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, true
	case []any:
		return typed, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
