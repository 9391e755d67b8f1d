package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/openapi"
)

func (a *app) newImportCmd() *cobra.Command {
	var (
		specPath       string
		operationID    string
		output         string
		defaultSection string
		submitLabel    string
		resolveRefs    bool
		list           bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert an OpenAPI request body into a form document",
		Example: `  formkit import --openapi api.yaml --list
  formkit import --openapi api.yaml --operation createBooking -o booking.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(specPath)
			if err != nil {
				return fmt.Errorf("read openapi document: %w", err)
			}
			opts := []openapi.Option{
				openapi.WithResolveReferences(resolveRefs),
				openapi.WithDefaultSection(defaultSection),
				openapi.WithSubmitLabel(submitLabel),
			}

			if list {
				ops, err := openapi.Operations(cmd.Context(), raw, opts...)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, op := range ops {
					if !op.HasRequest {
						continue
					}
					fmt.Fprintf(tw, "%s\t%s %s\t%s\n", op.ID, op.Method, op.Path, op.Summary)
				}
				return tw.Flush()
			}

			if operationID == "" {
				return fmt.Errorf("--operation is required (use --list to see operations)")
			}
			def, err := openapi.ImportDefinition(cmd.Context(), raw, operationID, opts...)
			if err != nil {
				return err
			}
			a.logger.Debug("operation imported", zap.String("operation", operationID), zap.Int("sections", len(def.Schema.Sections)))
			out, err := yaml.Marshal(def)
			if err != nil {
				return fmt.Errorf("encode definition: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVar(&specPath, "openapi", "", "OpenAPI 3 document (JSON or YAML)")
	cmd.Flags().StringVar(&operationID, "operation", "", "operation id to import")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&defaultSection, "default-section", "General", "section for fields without x-formkit-section")
	cmd.Flags().StringVar(&submitLabel, "submit-label", "", "submit button caption")
	cmd.Flags().BoolVar(&resolveRefs, "resolve-refs", false, "allow external $refs and validate the document")
	cmd.Flags().BoolVar(&list, "list", false, "list operations with a request body")
	_ = cmd.MarkFlagRequired("openapi")
	return cmd
}

func (a *app) newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <openapi>...",
		Short: "Check OpenAPI documents for unsupported x-formkit extensions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total := 0
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				violations, err := openapi.Lint(cmd.Context(), raw)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				for _, v := range violations {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, v)
				}
				total += len(violations)
			}
			if total > 0 {
				return fmt.Errorf("%d extension problem(s) found", total)
			}
			return nil
		},
	}
	return cmd
}
