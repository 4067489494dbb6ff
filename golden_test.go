package jdsl

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-jdsl/pkg/testsupport"
)

func TestEmbeddedStylesheetsGolden(t *testing.T) {
	t.Parallel()

	engine := testsupport.NewEngine(t, EmbeddedStylesheets())
	cases := []struct {
		id       string
		data     string
		renderer string
		golden   string
	}{
		{"#table", "table.yaml", "html", "table.html"},
		{"#list", "list.yaml", "html", "list.html"},
		{"#list", "list.yaml", "xml", "list.xml"},
	}
	for _, tc := range cases {
		data := testsupport.MustLoadData(t, filepath.Join("testdata", tc.data))
		got, err := Execute(testsupport.Context(), engine, data, tc.id, tc.renderer)
		if err != nil {
			t.Fatalf("%s: Execute returned error: %v", tc.id, err)
		}
		testsupport.AssertGolden(t, filepath.Join("testdata", "golden", tc.golden), got)
	}
}
