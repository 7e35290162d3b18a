package employee

import "context"

// Repository is the read-only view onto the employee directory.
type Repository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}
