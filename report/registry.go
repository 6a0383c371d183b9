package report

import (
	"strings"

	"github.com/orayew2002/rollbook/excel"
)

// StyleFunc creates (or fetches) a header style in the file behind sm.
type StyleFunc func(sm *excel.StyleManager) (int, error)

// Registry holds header substring → style mappings.
type Registry struct {
	rules []rule
}

type rule struct {
	pattern string
	style   StyleFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry colors absence headers red and leave headers green.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("Absences", headerFill("FFC7CE"))
	r.Register("Leaves", headerFill("C6EFCE"))
	return r
}

func headerFill(color string) StyleFunc {
	return func(sm *excel.StyleManager) (int, error) {
		return sm.Header(color)
	}
}

// Register adds a style for headers containing pattern.
// Rules are checked in registration order; the first match wins.
func (r *Registry) Register(pattern string, style StyleFunc) {
	r.rules = append(r.rules, rule{pattern: pattern, style: style})
}

// Style returns the style for header. ok is false when no rule matches and the
// header stays unstyled.
func (r *Registry) Style(sm *excel.StyleManager, header string) (id int, ok bool, err error) {
	for _, ru := range r.rules {
		if strings.Contains(header, ru.pattern) {
			id, err = ru.style(sm)
			if err != nil {
				return 0, false, err
			}
			return id, true, nil
		}
	}

	return 0, false, nil
}
