package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-jdsl/internal/prompt"
)

const greetingHTML = `<section><h1>Guests</h1><p class="admin">Hello Ada</p><p class="guest">Hello Bob</p></section>`

func newTestApp(tty bool, picked *[]string) *app {
	a := newApp()
	a.stdin = strings.NewReader("")
	a.isTTY = func() bool { return tty }
	a.picker = prompt.PickerFunc(func(_ context.Context, _ string, options []string) (string, error) {
		if picked != nil {
			*picked = options
		}
		return options[0], nil
	})
	return a
}

func run(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := a.rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderTemplateWithYAMLData(t *testing.T) {
	stdout, _, err := run(t, newTestApp(false, nil),
		"render", "-t", "testdata/templates", "-i", "greeting", "-f", "testdata/data.yaml")
	require.NoError(t, err)
	require.Equal(t, greetingHTML+"\n", stdout)
}

func TestRenderReadsJSONFromStdin(t *testing.T) {
	a := newTestApp(false, nil)
	a.stdin = strings.NewReader(`{"people": [{"name": "x"}, {"name": "y"}, {"name": "z"}]}`)

	stdout, _, err := run(t, a, "render", "-t", "testdata/templates", "-i", "#count", "-f", "-", "-r", "text")
	require.NoError(t, err)
	require.Equal(t, "012\n", stdout)
}

func TestRenderWritesOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.html")
	_, stderr, err := run(t, newTestApp(false, nil),
		"render", "-t", "testdata/templates", "-i", "greeting", "-f", "testdata/data.yaml", "-o", out)
	require.NoError(t, err)
	require.Contains(t, stderr, "wrote "+out)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, greetingHTML, string(written))
}

func TestRenderBuiltinStylesheets(t *testing.T) {
	a := newTestApp(false, nil)
	a.stdin = strings.NewReader("items: [a, b]\n")

	stdout, _, err := run(t, a, "render", "-t", "testdata/templates", "--builtin", "-i", "list", "-f", "-")
	require.NoError(t, err)
	require.Equal(t, `<ul class="list"><li>a</li><li>b</li></ul>`+"\n", stdout)
}

func TestRenderPromptsForTemplateOnTerminal(t *testing.T) {
	var offered []string
	stdout, _, err := run(t, newTestApp(true, &offered),
		"render", "-t", "testdata/templates", "-f", "testdata/data.yaml", "-r", "text")
	require.NoError(t, err)
	require.Equal(t, []string{"#count", "#greeting"}, offered)
	require.Equal(t, "01\n", stdout)
}

func TestRenderErrors(t *testing.T) {
	cases := map[string][]string{
		"no template off terminal": {"render", "-t", "testdata/templates"},
		"unknown template":         {"render", "-t", "testdata/templates", "-i", "missing"},
		"unknown renderer":         {"render", "-t", "testdata/templates", "-i", "greeting", "-r", "pdf"},
		"missing data":             {"render", "-t", "testdata/templates", "-i", "greeting", "-f", "testdata/none.yaml"},
		"missing directory":        {"render", "-t", "testdata/none", "-i", "greeting"},
		"missing config":           {"render", "-c", "testdata/none.yaml", "-t", "testdata/templates", "-i", "greeting"},
	}
	for name, args := range cases {
		_, _, err := run(t, newTestApp(false, nil), args...)
		require.Error(t, err, name)
	}
}

func TestTemplatesListsSources(t *testing.T) {
	stdout, _, err := run(t, newTestApp(false, nil), "templates", "-t", "testdata/templates")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, []string{"#greeting", "greeting.jdsl"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"#count", "greeting.jdsl"}, strings.Fields(lines[1]))
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	require.Subset(t, names, []string{"render", "templates"})

	render, _, err := cmd.Find([]string{"render"})
	require.NoError(t, err)
	for _, flag := range []string{"template", "data", "output", "renderer", "watch", "builtin"} {
		require.NotNil(t, render.Flags().Lookup(flag), flag)
	}
}
