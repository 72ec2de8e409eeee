// Package template holds named sets of default element properties and the
// merge logic that combines them with user-supplied partial elements into
// a complete scene.
package template

import (
	"time"

	"clipforge/internal/scene"
)

// Template is read-only once loaded; merges copy into fresh structures and
// never write back into it.
type Template struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Output scene.Output `json:"output"`
	// Defaults maps an element type to its default properties (transform,
	// style, audio flags and the like), kept as generic maps because that
	// is what the merge operates on.
	Defaults  map[string]map[string]any `json:"defaults"`
	CreatedAt time.Time                 `json:"created_at"`
}

// DefaultsFor returns the default property map for one element type, or
// nil when the template has none.
func (t *Template) DefaultsFor(elementType scene.ElementType) map[string]any {
	if t.Defaults == nil {
		return nil
	}
	return t.Defaults[string(elementType)]
}
