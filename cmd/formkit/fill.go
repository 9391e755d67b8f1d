package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formkit "github.com/goliatone/go-formkit"
	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
)

// newPromptDriver builds the terminal driver. Tests replace it with a
// scripted one.
var newPromptDriver = func(out io.Writer) tui.PromptDriver {
	return tui.NewSurveyDriver(out)
}

func (a *app) newFillCmd() *cobra.Command {
	var (
		schemaPath string
		format     string
		output     string
		mode       string
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a form interactively in the terminal",
		Long: `Prompt every field of the form, validating answers as they are given.
When the final submit fails validation only the failing fields are asked again.
The collected values are printed when the form is valid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			def, err := a.loadDefinition(ctx, schemaPath)
			if err != nil {
				return err
			}

			extra := []form.Option{}
			if mode != "" {
				m, ok := form.ParseValidationMode(mode)
				if !ok {
					return fmt.Errorf("unknown validation mode %q", mode)
				}
				extra = append(extra, form.WithValidationMode(m))
			}
			sess, err := formkit.NewSession(def, a.sessionOptions(extra...)...)
			if err != nil {
				return err
			}

			renderer, err := tui.New(
				tui.WithPromptDriver(newPromptDriver(cmd.ErrOrStderr())),
				tui.WithOutputFormat(tui.OutputFormat(strings.ToLower(format))),
				tui.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Fill(ctx, sess, func(_ context.Context, values map[string]any) error {
				a.logger.Info("form filled", zap.String("session", sess.ID()), zap.Int("fields", len(values)))
				return nil
			})
			if err != nil {
				return err
			}
			if !strings.HasSuffix(string(out), "\n") {
				out = append(out, '\n')
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "form document path or URL")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&mode, "mode", "", "validation mode: onBlur, onChange, onSubmit or all")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
