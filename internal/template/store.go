package template

import (
	"context"

	"clipforge/internal/pkg/errors"
)

var (
	// ErrNotFound is returned for unknown template IDs.
	ErrNotFound = errors.New(errors.CodeNotFound, "template not found")
	// ErrNameExists is returned when creating a template whose name is
	// already taken.
	ErrNameExists = errors.New(errors.CodeAlreadyExists, "template name already exists")
)

// Store is the template persistence contract. The file store is the
// default; the Postgres store is selected by configuration.
type Store interface {
	Create(ctx context.Context, t *Template) error
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	Delete(ctx context.Context, id string) error
}
