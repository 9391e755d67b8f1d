// Package sections tracks which form sections are expanded. Sections toggle
// independently; opening one never closes another.
package sections

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gosimple/slug"
)

// ErrUnknownSection is returned when toggling a name the organizer does not
// know.
var ErrUnknownSection = errors.New("sections: unknown section")

// Organizer holds the expansion state for an ordered list of sections.
type Organizer struct {
	mu       sync.RWMutex
	names    []string
	known    map[string]struct{}
	expanded map[string]struct{}
	initial  bool
}

// New creates an organizer. With expandAll every section starts open,
// otherwise all start closed. A nil or empty names list yields an organizer
// for an unsectioned form.
func New(names []string, expandAll bool) *Organizer {
	o := &Organizer{
		names:    append([]string(nil), names...),
		known:    make(map[string]struct{}, len(names)),
		expanded: make(map[string]struct{}, len(names)),
		initial:  expandAll,
	}
	for _, name := range names {
		o.known[name] = struct{}{}
	}
	o.reset()
	return o
}

func (o *Organizer) reset() {
	o.expanded = make(map[string]struct{}, len(o.names))
	if o.initial {
		for _, name := range o.names {
			o.expanded[name] = struct{}{}
		}
	}
}

// Reset restores the initial expansion state.
func (o *Organizer) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reset()
}

// Sections returns the section names in display order.
func (o *Organizer) Sections() []string {
	return append([]string(nil), o.names...)
}

// Len reports the number of sections.
func (o *Organizer) Len() int {
	return len(o.names)
}

// Toggle flips the expansion state of name and returns the new state.
func (o *Organizer) Toggle(name string) (bool, error) {
	if _, ok := o.known[name]; !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, open := o.expanded[name]; open {
		delete(o.expanded, name)
		return false, nil
	}
	o.expanded[name] = struct{}{}
	return true, nil
}

// SetExpanded forces the state of name.
func (o *Organizer) SetExpanded(name string, open bool) error {
	if _, ok := o.known[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if open {
		o.expanded[name] = struct{}{}
	} else {
		delete(o.expanded, name)
	}
	return nil
}

// Expanded reports whether name is open. Unknown names are closed.
func (o *Organizer) Expanded(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, open := o.expanded[name]
	return open
}

// ExpandedSet lists the open sections in display order.
func (o *Organizer) ExpandedSet() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, 0, len(o.expanded))
	for _, name := range o.names {
		if _, open := o.expanded[name]; open {
			out = append(out, name)
		}
	}
	return out
}

// Lookup resolves a section by name or by its slug.
func (o *Organizer) Lookup(key string) (string, bool) {
	if _, ok := o.known[key]; ok {
		return key, true
	}
	for _, name := range o.names {
		if Slug(name) == key {
			return name, true
		}
	}
	return "", false
}

// Slug derives a stable, URL and id safe token from a section name.
func Slug(name string) string {
	if s := slug.Make(name); s != "" {
		return s
	}
	return "section"
}
