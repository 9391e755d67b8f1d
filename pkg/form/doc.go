// Package form runs a schema-driven form session: it seeds values, binds
// fields to change and blur events, tracks section expansion and guards the
// submit lifecycle.
//
// A Session is safe for concurrent use. Sessions never share state; build one
// per rendered form (per user, per request, per terminal run).
//
//	s, err := form.New(sch, form.WithBlurFunc(autosave))
//	email, _ := s.Field("email")
//	_ = email.OnChange("ana@example.com")
//	email.OnBlur()
//	err = s.Submit(ctx, func(ctx context.Context, values map[string]any) error {
//		return api.Book(ctx, values)
//	})
package form
