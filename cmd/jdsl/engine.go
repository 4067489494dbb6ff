package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	jdsl "github.com/goliatone/go-jdsl"
	"github.com/goliatone/go-jdsl/internal/config"
	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/pkg/diag"
	"github.com/goliatone/go-jdsl/pkg/interp"
	"github.com/goliatone/go-jdsl/pkg/loader"
)

// buildEngine creates an engine and registers the stylesheets found in the
// configured directory, plus the bundled ones when builtin is set.
func (a *app) buildEngine(stderr io.Writer, builtin bool) (*jdsl.Engine, []*loader.Stylesheet, error) {
	opts := append(a.cfg.EngineOptions(), interp.WithSink(diag.NewLoggerSink(stderr)))
	engine, err := jdsl.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	var sheets []*loader.Stylesheet
	if dir := a.cfg.Templates; dir != "" {
		info, err := os.Stat(dir)
		switch {
		case errors.Is(err, fs.ErrNotExist) && dir == config.Defaults().Templates:
			log.Debug(log.CatCLI, "default templates directory missing", "dir", dir)
		case err != nil:
			return nil, nil, fmt.Errorf("templates: %w", err)
		case !info.IsDir():
			return nil, nil, fmt.Errorf("templates: %s is not a directory", dir)
		default:
			loaded, err := jdsl.LoadStylesheets(os.DirFS(dir), engine)
			if err != nil {
				return nil, nil, err
			}
			sheets = append(sheets, loaded...)
		}
	}
	if builtin {
		loaded, err := jdsl.LoadStylesheets(jdsl.EmbeddedStylesheets(), engine)
		if err != nil {
			return nil, nil, err
		}
		sheets = append(sheets, loaded...)
	}
	if engine.Templates().Len() == 0 {
		return nil, nil, fmt.Errorf("no templates found in %q", a.cfg.Templates)
	}
	return engine, sheets, nil
}

// loadData decodes a JSON or YAML document. "-" reads stdin; an empty path
// yields a nil context.
func (a *app) loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(a.stdin)
	} else {
		raw, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}

	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("data: decode %s: %w", path, err)
	}
	return data, nil
}
