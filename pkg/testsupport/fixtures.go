// Package testsupport holds fixture and golden-file helpers shared by the
// package tests. Helpers fail the test instead of returning errors.
package testsupport

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-jdsl/pkg/diag"
	"github.com/goliatone/go-jdsl/pkg/interp"
	"github.com/goliatone/go-jdsl/pkg/loader"
	"github.com/goliatone/go-jdsl/pkg/tree"
)

// UpdateEnv names the variable that rewrites golden files instead of
// comparing against them.
const UpdateEnv = "UPDATE_GOLDENS"

// MustParseXML parses an inline template.
func MustParseXML(t *testing.T, src string) *tree.Node {
	t.Helper()

	doc, err := tree.ParseXML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	return doc
}

// MustLoadData decodes a JSON or YAML data fixture.
func MustLoadData(t *testing.T, path string) any {
	t.Helper()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read data: %v", err)
	}
	var out any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode data %s: %v", path, err)
	}
	return out
}

// NewEngine builds an engine that discards messages and registers every
// stylesheet in fsys.
func NewEngine(t *testing.T, fsys fs.FS, options ...interp.Option) *interp.Engine {
	t.Helper()

	engine, err := interp.New(append([]interp.Option{interp.WithSink(diag.Discard)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if fsys == nil {
		return engine
	}
	if _, err := loader.New(loader.WithPrefix(engine.Config().Prefix)).LoadFS(fsys, engine.Templates()); err != nil {
		t.Fatalf("load stylesheets: %v", err)
	}
	return engine
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file at path, ignoring leading
// and trailing whitespace.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := strings.TrimSpace(string(MustReadGolden(t, path)))
	if diff := cmp.Diff(want, strings.TrimSpace(string(got))); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
