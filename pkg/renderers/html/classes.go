package html

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm    ChromeClass = "fk-form"
	ClassHeader  ChromeClass = "fk-header"
	ClassSection ChromeClass = "fk-section"
	ClassField   ChromeClass = "fk-field"
	ClassActions ChromeClass = "fk-actions"
	ClassErrors  ChromeClass = "fk-errors"
	ClassGrid    ChromeClass = "fk-grid"
)

// ChromeClasses overrides the class attribute of the form chrome. Empty
// entries keep the defaults.
type ChromeClasses struct {
	Form    string
	Header  string
	Section string
	Field   string
	Actions string
	Errors  string
	Grid    string
}

func (c ChromeClasses) resolve() map[string]string {
	pick := func(override string, def ChromeClass) string {
		if cleaned := sanitizeClassList(override); cleaned != "" {
			return string(def) + " " + cleaned
		}
		return string(def)
	}
	return map[string]string{
		"form":    pick(c.Form, ClassForm),
		"header":  pick(c.Header, ClassHeader),
		"section": pick(c.Section, ClassSection),
		"field":   pick(c.Field, ClassField),
		"actions": pick(c.Actions, ClassActions),
		"errors":  pick(c.Errors, ClassErrors),
		"grid":    pick(c.Grid, ClassGrid),
	}
}
