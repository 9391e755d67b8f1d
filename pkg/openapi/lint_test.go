package openapi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const lintDocument = `
openapi: 3.0.3
info: {title: Lint, version: "1"}
paths:
  /things:
    post:
      operationId: createThing
      requestBody:
        content:
          application/json:
            schema:
              type: object
              x-formkit-layout: grid
              properties:
                name:
                  type: string
                  x-formkit-widget: slider
                tags:
                  type: array
                  items:
                    type: string
                    x-formkit-order: first
                note:
                  type: string
                  x-formkit-section: Notes
                  x-other-tool: ignored
      responses:
        '200': {description: ok}
`

func TestLintReportsExtensionProblems(t *testing.T) {
	t.Parallel()

	violations, err := Lint(context.Background(), []byte(lintDocument))
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	want := []Violation{
		{Location: "operation > createThing > requestBody", Message: `unsupported extension "x-formkit-layout" (supported: x-formkit-accept, x-formkit-order, x-formkit-placeholder, x-formkit-section, x-formkit-widget)`},
		{Location: "operation > createThing > requestBody > properties.name", Message: "x-formkit-widget must name a field type, got slider"},
		{Location: "operation > createThing > requestBody > properties.tags > items", Message: "x-formkit-order must be a number (got string)"},
	}
	if diff := cmp.Diff(want, violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestLintCleanFixture(t *testing.T) {
	t.Parallel()

	violations, err := Lint(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}
