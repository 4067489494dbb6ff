package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/goliatone/go-jdsl/internal/config"
	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/internal/prompt"
)

// app carries state shared by the subcommands.
type app struct {
	cfgFile  string
	viper    *viper.Viper
	cfg      config.Config
	picker   prompt.Picker
	stdin    io.Reader
	isTTY    func() bool
	closeLog func()
}

func newApp() *app {
	return &app{
		viper:  config.New(),
		picker: prompt.Survey(),
		stdin:  os.Stdin,
		isTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // G115: fd fits in int
		},
	}
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jdsl",
		Short:         "Render jdsl stylesheets against JSON or YAML data",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./.jdsl.yaml)")
	cmd.PersistentFlags().BoolP("debug", "d", false, "write debug logs to stderr (or log.file)")
	cmd.PersistentFlags().StringP("templates", "t", "", "directory holding stylesheets")
	_ = a.viper.BindPFlag("log.debug", cmd.PersistentFlags().Lookup("debug"))
	_ = a.viper.BindPFlag("templates", cmd.PersistentFlags().Lookup("templates"))

	cmd.AddCommand(a.renderCmd(), a.templatesCmd())
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	switch {
	case cfg.Log.File != "":
		closeLog, err := log.InitFile(cfg.Log.File, cfg.LogLevel())
		if err != nil {
			return err
		}
		a.closeLog = closeLog
	case cfg.Log.Debug:
		a.closeLog = log.Init(cmd.ErrOrStderr(), cfg.LogLevel())
	}
	log.Debug(log.CatCLI, "command started", "command", cmd.Name(), "templates", cfg.Templates, "renderer", cfg.Renderer)
	return nil
}
