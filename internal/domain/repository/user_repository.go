// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the use cases and the infrastructure layer.
package repository

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the operations for user persistence.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user. A duplicate email surfaces as
	// domainerrors.ErrUserAlreadyExists, whatever any earlier lookup said.
	Create(ctx context.Context, user *entity.User) error

	// List returns users ordered by creation time.
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
}
