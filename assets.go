package jdsl

import (
	"embed"
	"io/fs"
)

//go:embed stylesheets/*.jdsl
var embeddedStylesheets embed.FS

// EmbeddedStylesheets exposes the bundled stylesheets (`#list`, `#item` and
// `#table`) so hosts can register them next to their own:
//
//	engine, _ := jdsl.New()
//	_, err := jdsl.LoadStylesheets(jdsl.EmbeddedStylesheets(), engine)
func EmbeddedStylesheets() fs.FS {
	sub, err := fs.Sub(embeddedStylesheets, "stylesheets")
	if err != nil {
		return embeddedStylesheets
	}
	return sub
}
