package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formkit "github.com/goliatone/go-formkit"
	"github.com/goliatone/go-formkit/pkg/form"
)

// app carries state shared by the subcommands once the root command has
// loaded configuration.
type app struct {
	configPath string
	cfg        *Config
	logger     *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "formkit",
		Short:         "Render, fill and serve schema-driven forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")

	root.AddCommand(
		a.newRenderCmd(),
		a.newFillCmd(),
		a.newImportCmd(),
		a.newLintCmd(),
		a.newServeCmd(),
	)
	return root
}

// loadDefinition reads the --schema argument.
func (a *app) loadDefinition(ctx context.Context, location string) (formkit.Definition, error) {
	if location == "" {
		return formkit.Definition{}, fmt.Errorf("--schema is required")
	}
	return formkit.LoadDefinition(ctx, location)
}

// sessionOptions applies the configured submit timeout and logger.
func (a *app) sessionOptions(extra ...form.Option) []form.Option {
	opts := []form.Option{form.WithLogger(a.logger)}
	if a.cfg != nil && a.cfg.Submit.Timeout > 0 {
		opts = append(opts, form.WithSubmitTimeout(a.cfg.Submit.Timeout))
	}
	return append(opts, extra...)
}

func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := out.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
