package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProgram_Eval(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"password":   "hunter22",
		"guests":     float64(3),
		"newsletter": true,
		"address":    map[string]any{"country": "PT"},
		"tags":       []string{"a"},
	}

	cases := []struct {
		expr  string
		value any
		want  bool
	}{
		{`value == password`, "hunter22", true},
		{`value == password`, "hunter23", false},
		{`value != password`, "other", true},
		{`value == "yes"`, "yes", true},
		{`value == 'it\'s'`, "it's", true},
		{`value >= guests`, float64(3), true},
		{`value > guests`, "2", false},
		{`value < 10 && value > 0`, float64(5), true},
		{`value == 5`, "5", true},
		{`newsletter == true`, nil, true},
		{`!newsletter || value`, "", false},
		{`(value == "a" || value == "b") && newsletter`, "b", true},
		{`address.country == "PT"`, nil, true},
		{`missing == null`, nil, true},
		{`value != null`, "", false},
		{`tags`, nil, true},
		{`value`, float64(0), false},
		{`value > missing`, float64(1), false},
	}

	for _, tc := range cases {
		prog, err := Compile(tc.expr)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tc.expr, err)
		}
		got, err := prog.Eval(Env{Value: tc.value, Values: values})
		if err != nil {
			t.Fatalf("Eval(%q): %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("Eval(%q, value=%v) = %v, want %v", tc.expr, tc.value, got, tc.want)
		}
	}
}

func TestCompile_SyntaxErrors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		`value = 1`,
		`value & other`,
		`value | other`,
		`(value == 1`,
		`value ==`,
		`"unterminated`,
		`value == 1 2`,
		`1.2.3 == value`,
	} {
		if _, err := Compile(src); !errors.Is(err, ErrSyntax) {
			t.Errorf("Compile(%q) error = %v, want ErrSyntax", src, err)
		}
	}
}

func TestCompile_EmptyAlwaysPasses(t *testing.T) {
	t.Parallel()

	prog, err := Compile("   ")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ok, err := prog.Eval(Env{})
	if err != nil || !ok {
		t.Fatalf("empty program = %v, %v", ok, err)
	}
}

func TestProgram_Idents(t *testing.T) {
	t.Parallel()

	prog := MustCompile(`value == password && (email != "" || !value) && password`)
	if diff := cmp.Diff([]string{"password", "email"}, prog.Idents()); diff != "" {
		t.Fatalf("idents mismatch (-want +got):\n%s", diff)
	}
}
