package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	jdsl "github.com/goliatone/go-jdsl"
	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/internal/watcher"
	"github.com/goliatone/go-jdsl/pkg/expr"
	"github.com/goliatone/go-jdsl/pkg/templates"
)

type renderFlags struct {
	template string
	data     string
	output   string
	watch    bool
	builtin  bool
}

func (a *app) renderCmd() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template to stdout or a file",
		Example: `  jdsl render -t views -i list -f data.yaml
  jdsl render --builtin -i table -f - -r text < rows.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.watch {
				return a.watch(cmd, flags)
			}
			return a.renderOnce(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.template, "template", "i", "", "template id (prompted on a terminal when omitted)")
	cmd.Flags().StringVarP(&flags.data, "data", "f", "", "JSON or YAML data file, - for stdin")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringP("renderer", "r", "", "output renderer: html, safe-html, xml, text")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-render when stylesheets or data change")
	cmd.Flags().BoolVar(&flags.builtin, "builtin", false, "also register the bundled stylesheets")
	_ = a.viper.BindPFlag("renderer", cmd.Flags().Lookup("renderer"))
	return cmd
}

func (a *app) renderOnce(cmd *cobra.Command, flags renderFlags) error {
	engine, _, err := a.buildEngine(cmd.ErrOrStderr(), flags.builtin)
	if err != nil {
		return err
	}
	id, err := a.resolveTemplate(cmd.Context(), engine, flags.template)
	if err != nil {
		return err
	}
	data, err := a.loadData(flags.data)
	if err != nil {
		return err
	}

	out, err := jdsl.Execute(cmd.Context(), engine, data, id, a.cfg.Renderer)
	if err != nil {
		return err
	}
	if rt, ok := engine.Evaluator().(*expr.Runtime); ok {
		log.Debug(log.CatCache, "compiled expressions", "count", rt.Cached())
	}
	log.Info(log.CatCLI, "rendered", "template", id, "renderer", a.cfg.Renderer, "bytes", len(out))

	if flags.output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	}
	if err := os.WriteFile(flags.output, out, 0o644); err != nil { //nolint:gosec // G306: rendered markup is not secret
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", flags.output)
	return nil
}

// resolveTemplate normalizes the requested id, asking the picker when none
// was given and stdin is a terminal.
func (a *app) resolveTemplate(ctx context.Context, engine *jdsl.Engine, id string) (string, error) {
	if id != "" {
		key := templates.Key(id)
		if !engine.Templates().Has(key) {
			return "", fmt.Errorf("template %q is not registered (have %v)", key, engine.Templates().List())
		}
		return key, nil
	}
	if !a.isTTY() {
		return "", fmt.Errorf("--template is required when not running on a terminal")
	}
	return a.picker.Pick(ctx, "Template", engine.Templates().List())
}

// watch renders once, then again after every debounced change to the
// templates directory or data file, until the context is cancelled. Render
// failures are reported without stopping the loop.
func (a *app) watch(cmd *cobra.Command, flags renderFlags) error {
	if flags.template == "" {
		engine, _, err := a.buildEngine(cmd.ErrOrStderr(), flags.builtin)
		if err != nil {
			return err
		}
		if flags.template, err = a.resolveTemplate(cmd.Context(), engine, ""); err != nil {
			return err
		}
	}

	var paths []string
	if info, err := os.Stat(a.cfg.Templates); err == nil && info.IsDir() {
		paths = append(paths, a.cfg.Templates)
	}
	if flags.data != "" && flags.data != "-" {
		paths = append(paths, filepath.Clean(flags.data))
	}
	if len(paths) == 0 {
		return fmt.Errorf("--watch needs a templates directory or data file")
	}

	cfg := watcher.DefaultConfig(paths...)
	cfg.DebounceDur = a.cfg.Watch.Debounce
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	report := func() {
		if err := a.renderOnce(cmd, flags); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		}
	}
	report()
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-changes:
			log.Debug(log.CatWatcher, "re-rendering", "template", flags.template)
			report()
		}
	}
}
