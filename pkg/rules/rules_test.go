package rules

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/goliatone/go-formkit/pkg/schema"
)

func TestCompile_Order(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name:     "email",
		Type:     schema.FieldTypeEmail,
		Required: true,
		Validation: &schema.Validation{
			MinLength: schema.Int(3),
			MaxLength: schema.Int(64),
			Min:       schema.Float(0),
			Max:       schema.Float(1),
			Pattern:   `.+@example\.com`,
			Custom:    func(any) error { return nil },
			Rule:      &schema.ExprRule{Expr: `value != ""`},
		},
	})
	want := []Kind{KindRequired, KindMinLength, KindMaxLength, KindMin, KindMax, KindPattern, KindEmail, KindCustom, KindCustom}
	if diff := cmp.Diff(want, rs.Kinds()); diff != "" {
		t.Fatalf("rule order mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_Required(t *testing.T) {
	text := MustCompile(schema.FieldConfig{Name: "name", Label: "Name", Type: schema.FieldTypeText, Required: true})
	for _, value := range []any{nil, "", "   ", []string{}} {
		v := text.Check(value, nil)
		if v == nil || v.Kind != KindRequired {
			t.Fatalf("Check(%#v) = %+v, want required", value, v)
		}
		if v.Message != "Name is required" {
			t.Fatalf("message = %q", v.Message)
		}
	}
	if v := text.Check("Ana", nil); v != nil {
		t.Fatalf("unexpected violation %+v", v)
	}

	num := MustCompile(schema.FieldConfig{Name: "guests", Type: schema.FieldTypeNumber, Required: true})
	if v := num.Check(float64(0), nil); v != nil {
		t.Fatalf("zero should count as present, got %+v", v)
	}

	terms := MustCompile(schema.FieldConfig{Name: "terms", Type: schema.FieldTypeCheckbox, Required: true})
	if v := terms.Check(false, nil); v == nil || v.Kind != KindRequired {
		t.Fatalf("unchecked required checkbox should fail, got %+v", v)
	}
	if v := terms.Check(true, nil); v != nil {
		t.Fatalf("checked checkbox failed: %+v", v)
	}
}

func TestCheck_FirstFailureWins(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name: "code", Label: "Code", Type: schema.FieldTypeText,
		Validation: &schema.Validation{MinLength: schema.Int(4), Pattern: `[0-9]+`},
	})
	v := rs.Check("ab", nil)
	if v == nil || v.Kind != KindMinLength {
		t.Fatalf("Check = %+v, want minLength", v)
	}
	if v.Message != "Code must be at least 4 characters" {
		t.Fatalf("message = %q", v.Message)
	}

	all := rs.CheckAll("ab", nil)
	var kinds []Kind
	for _, item := range all {
		kinds = append(kinds, item.Kind)
	}
	if diff := cmp.Diff([]Kind{KindMinLength, KindPattern}, kinds); diff != "" {
		t.Fatalf("CheckAll mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_ZeroBoundsAreHonoured(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name: "guests", Label: "Guests", Type: schema.FieldTypeNumber,
		Validation: &schema.Validation{Min: schema.Float(0), Max: schema.Float(0)},
	})
	if v := rs.Check(float64(-1), nil); v == nil || v.Kind != KindMin {
		t.Fatalf("Check(-1) = %+v, want min", v)
	}
	if v := rs.Check(float64(1), nil); v == nil || v.Kind != KindMax || v.Message != "Guests must be at most 0" {
		t.Fatalf("Check(1) = %+v, want max", v)
	}
	if v := rs.Check(float64(0), nil); v != nil {
		t.Fatalf("Check(0) = %+v", v)
	}

	maxZero := MustCompile(schema.FieldConfig{
		Name: "notes", Type: schema.FieldTypeText,
		Validation: &schema.Validation{MaxLength: schema.Int(0)},
	})
	if v := maxZero.Check("x", nil); v == nil || v.Kind != KindMaxLength {
		t.Fatalf("maxLength 0 not enforced: %+v", v)
	}
}

func TestCheck_EmptyOptionalSkipsConstraints(t *testing.T) {
	calls := 0
	rs := MustCompile(schema.FieldConfig{
		Name: "nickname", Type: schema.FieldTypeText,
		Validation: &schema.Validation{
			MinLength: schema.Int(3),
			Pattern:   `[a-z]+`,
			Custom: func(any) error {
				calls++
				return nil
			},
		},
	})
	if v := rs.Check("", nil); v != nil {
		t.Fatalf("empty optional value failed: %+v", v)
	}
	if calls != 1 {
		t.Fatalf("custom rule should run on empty values, calls=%d", calls)
	}
}

func TestCheck_PatternIsAnchored(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name: "zip", Type: schema.FieldTypeText,
		Validation: &schema.Validation{Pattern: `[0-9]{4}`, Message: "Four digits please"},
	})
	if v := rs.Check("12345", nil); v == nil || v.Message != "Four digits please" {
		t.Fatalf("partial match should fail, got %+v", v)
	}
	if v := rs.Check("1234", nil); v != nil {
		t.Fatalf("full match failed: %+v", v)
	}
	alt := MustCompile(schema.FieldConfig{
		Name: "size", Type: schema.FieldTypeText,
		Validation: &schema.Validation{Pattern: `S|M`},
	})
	if v := alt.Check("XS", nil); v == nil {
		t.Fatalf("alternation must be anchored as a group")
	}
}

func TestCheck_LengthCountsRunes(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name: "city", Type: schema.FieldTypeText,
		Validation: &schema.Validation{MaxLength: schema.Int(6)},
	})
	if v := rs.Check("Évora!", nil); v != nil {
		t.Fatalf("6 runes should pass maxLength 6: %+v", v)
	}
}

func TestCheck_SliceLengthCountsItems(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name: "extras", Label: "Extras", Type: schema.FieldTypeCheckbox,
		Options:    []schema.Option{{Value: "a"}, {Value: "b"}, {Value: "c"}},
		Validation: &schema.Validation{MinLength: schema.Int(2)},
	})
	v := rs.Check([]string{"a"}, nil)
	if v == nil || v.Message != "Extras needs at least 2 selections" {
		t.Fatalf("Check = %+v", v)
	}
}

func TestCheck_Custom(t *testing.T) {
	mk := func(fn schema.CustomFunc) RuleSet {
		return MustCompile(schema.FieldConfig{Name: "f", Label: "Field", Type: schema.FieldTypeText, Validation: &schema.Validation{Custom: fn}})
	}
	if v := mk(func(any) error { return schema.ErrInvalid }).Check("x", nil); v == nil || v.Message != "Field is invalid" {
		t.Fatalf("ErrInvalid should use default message, got %+v", v)
	}
	if v := mk(func(any) error { return errors.New("not on weekends") }).Check("x", nil); v == nil || v.Message != "not on weekends" {
		t.Fatalf("error text should become message, got %+v", v)
	}
	if v := mk(func(any) error { panic("boom") }).Check("x", nil); v == nil || v.Kind != KindCustom {
		t.Fatalf("panicking custom rule should fail the field, got %+v", v)
	}
}

func TestCheck_ExpressionRule(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name: "confirm", Type: schema.FieldTypePassword,
		Validation: &schema.Validation{Rule: &schema.ExprRule{Expr: "value == password", Message: "Passwords must match"}},
	})
	values := map[string]any{"password": "s3cret!"}
	if v := rs.Check("s3cret", values); v == nil || v.Message != "Passwords must match" {
		t.Fatalf("Check = %+v", v)
	}
	if v := rs.Check("s3cret!", values); v != nil {
		t.Fatalf("matching passwords failed: %+v", v)
	}

	if _, err := Compile(schema.FieldConfig{Name: "x", Validation: &schema.Validation{Rule: &schema.ExprRule{Expr: "value = 1"}}}); err == nil {
		t.Fatalf("expected compile error for bad expression")
	}
}

func TestCheck_NonNumericAgainstRange(t *testing.T) {
	rs := MustCompile(schema.FieldConfig{
		Name: "age", Label: "Age", Type: schema.FieldTypeNumber,
		Validation: &schema.Validation{Min: schema.Float(18)},
	})
	if v := rs.Check("abc", nil); v == nil || v.Kind != KindType {
		t.Fatalf("Check = %+v, want type violation", v)
	}

	bounded := MustCompile(schema.FieldConfig{
		Name: "age", Label: "Age", Type: schema.FieldTypeNumber,
		Validation: &schema.Validation{Min: schema.Float(18), Max: schema.Float(100)},
	})
	for _, value := range []any{math.NaN(), math.Inf(1), math.Inf(-1), "NaN"} {
		if v := bounded.Check(value, nil); v == nil || v.Kind != KindType {
			t.Fatalf("Check(%v) = %+v, want type violation", value, v)
		}
	}
}

func TestCompile_InvalidPattern(t *testing.T) {
	_, err := Compile(schema.FieldConfig{Name: "x", Validation: &schema.Validation{Pattern: "[a-"}})
	if !errors.Is(err, schema.ErrInvalidPattern) {
		t.Fatalf("error = %v, want ErrInvalidPattern", err)
	}
}

func TestMessages_OverridesAndTranslator(t *testing.T) {
	field := schema.FieldConfig{Name: "name", Label: "Nome", Type: schema.FieldTypeText, Required: true}

	rs := MustCompile(field, WithMessages(Messages{"required": "Fill in {label}", "min": "  "}))
	if v := rs.Check("", nil); v.Message != "Fill in Nome" {
		t.Fatalf("override message = %q", v.Message)
	}

	tr := TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
		if locale == "pt" && key == TranslationKeyPrefix+"required" {
			return "{label} é obrigatório", nil
		}
		return "", errors.New("missing")
	})
	rs = MustCompile(field, WithTranslator(tr, "pt"))
	if v := rs.Check("", nil); v.Message != "Nome é obrigatório" {
		t.Fatalf("translated message = %q", v.Message)
	}
	rs = MustCompile(field, WithTranslator(tr, "en"))
	if v := rs.Check("", nil); v.Message != "Nome is required" {
		t.Fatalf("fallback message = %q", v.Message)
	}
}

func TestEmailRule_AlwaysApplied(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "local")
		// Strings without '@' can never be valid addresses.
		rs := MustCompile(schema.FieldConfig{
			Name: "email", Type: schema.FieldTypeEmail,
			Validation: &schema.Validation{Pattern: `.*`},
		})
		v := rs.Check(local, nil)
		if v == nil || v.Kind != KindEmail {
			t.Fatalf("Check(%q) = %+v, want email violation", local, v)
		}
		if v := rs.Check(local+"@example.com", nil); v != nil {
			t.Fatalf("Check(valid) = %+v", v)
		}
	})
}

func TestMinLength_Boundary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bound := rapid.IntRange(1, 20).Draw(t, "bound")
		n := rapid.IntRange(1, 30).Draw(t, "n")
		rs := MustCompile(schema.FieldConfig{
			Name: "f", Type: schema.FieldTypeText,
			Validation: &schema.Validation{MinLength: schema.Int(bound)},
		})
		v := rs.Check(strings.Repeat("ã", n), nil)
		if (n < bound) != (v != nil) {
			t.Fatalf("n=%d bound=%d violation=%+v", n, bound, v)
		}
	})
}

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		value any
		want  bool
	}{
		{nil, true},
		{"", true},
		{" \t", true},
		{"x", false},
		{float64(0), false},
		{false, true},
		{true, false},
		{[]string{}, true},
		{[]string{"a"}, false},
		{[]int{}, true},
		{map[string]any{}, true},
	}
	for _, tc := range cases {
		if got := IsEmpty(tc.value); got != tc.want {
			t.Errorf("IsEmpty(%#v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
