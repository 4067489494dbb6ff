package datatype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-jdsl/pkg/value"
)

// convertString is the identity: text stays text, evaluated values keep their
// type.
func convertString(raw any) (any, error) {
	return raw, nil
}

func convertJSON(raw any) (any, error) {
	text, ok := textOf(raw)
	if !ok {
		return raw, nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return out, nil
}

func convertYAML(raw any) (any, error) {
	text, ok := textOf(raw)
	if !ok {
		return raw, nil
	}
	var out any
	if err := yaml.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return out, nil
}

func convertNumber(raw any) (any, error) {
	if raw == nil {
		return float64(0), nil
	}
	if text, ok := raw.(string); ok && strings.TrimSpace(text) == "" {
		return float64(0), nil
	}
	f, ok := value.Number(raw)
	if !ok {
		return nil, fmt.Errorf("%q is not a number", value.String(raw))
	}
	return f, nil
}

func convertBoolean(raw any) (any, error) {
	text, ok := raw.(string)
	if !ok {
		return value.Truthy(raw), nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(text)
	if err != nil {
		return nil, fmt.Errorf("%q is not a boolean", text)
	}
	return parsed, nil
}

func convertMarkdown(raw any) (any, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(value.String(raw)), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

func textOf(raw any) (string, bool) {
	switch typed := raw.(type) {
	case string:
		return typed, true
	case []byte:
		return string(typed), true
	default:
		return "", false
	}
}
