// Package entity contains the core business objects of storefront.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered customer account.
type User struct {
	ID           uuid.UUID // Primary identifier, UUIDv7 so ids sort by creation time.
	Email        string    // Unique login identifier.
	Name         string    // Display name.
	PasswordHash string    // bcrypt hash; never leaves the service.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the part of a User that may be returned to clients.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the password hash.
func (u *User) Public() *PublicProfile {
	if u == nil {
		return nil
	}

	return &PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
