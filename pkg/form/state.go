package form

import (
	"maps"

	"github.com/goliatone/go-formkit/pkg/widgets"
)

// state holds the mutable per-session maps. It is only touched under
// Session.mu.
type state struct {
	values  map[string]any
	errors  map[string]string
	touched map[string]bool
	// typeErrors hold the message of the last change that failed coercion.
	// They stick until a change succeeds or the session resets.
	typeErrors map[string]string
	// formErrors are server-side messages that matched no field.
	formErrors []string
}

func newState(initial map[string]any) state {
	return state{
		values:     cloneValues(initial),
		errors:     make(map[string]string),
		touched:    make(map[string]bool),
		typeErrors: make(map[string]string),
	}
}

func (s *state) setError(name, message string) {
	if message == "" {
		delete(s.errors, name)
		return
	}
	s.errors[name] = message
}

func (s *state) errorsCopy() map[string]string {
	return maps.Clone(s.errors)
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string{}, typed...)
	case []widgets.File:
		clone := make([]widgets.File, len(typed))
		for i, f := range typed {
			f.Content = append([]byte(nil), f.Content...)
			clone[i] = f
		}
		return clone
	default:
		return typed
	}
}
