package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	formkit "github.com/goliatone/go-formkit"
	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
)

func (a *app) newRenderCmd() *cobra.Command {
	var (
		schemaPath string
		valuesPath string
		output     string
		action     string
		expandAll  bool
		inlineCSS  bool
		validate   bool

		rendererName string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a form document as HTML",
		Example: `  formkit render --schema signup.yaml
  formkit render --schema signup.yaml --values draft.json --expand-all --validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			def, err := a.loadDefinition(ctx, schemaPath)
			if err != nil {
				return err
			}

			extra := []form.Option{}
			if valuesPath != "" {
				values, err := readValues(valuesPath)
				if err != nil {
					return err
				}
				extra = append(extra, form.WithDefaultValues(values))
			}
			if expandAll {
				extra = append(extra, form.WithExpandAll(true))
			}
			sess, err := formkit.NewSession(def, a.sessionOptions(extra...)...)
			if err != nil {
				return err
			}
			if validate {
				_ = sess.Validate()
			}

			registry, err := a.renderers(inlineCSS)
			if err != nil {
				return err
			}
			out, _, err := registry.Render(ctx, rendererName, sess.View(), render.RenderOptions{Action: action})
			if errors.Is(err, render.ErrUnknownRenderer) {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(registry.Names(), ", "))
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "form document path or URL")
	cmd.Flags().StringVar(&valuesPath, "values", "", "JSON file with initial values")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "open every section")
	cmd.Flags().BoolVar(&inlineCSS, "inline-css", false, "embed the default stylesheet")
	cmd.Flags().StringVar(&rendererName, "renderer", "html", "renderer: html, or tui for the values as JSON")
	cmd.Flags().BoolVar(&validate, "validate", false, "show validation errors for the initial values")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func readValues(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

// renderers registers every renderer the render command can target.
func (a *app) renderers(inlineCSS bool) (*render.Registry, error) {
	htmlRenderer, err := html.New(html.WithLogger(a.logger), html.WithInlineStylesheet(inlineCSS))
	if err != nil {
		return nil, err
	}
	tuiRenderer, err := tui.New(tui.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(htmlRenderer, tuiRenderer)
}
