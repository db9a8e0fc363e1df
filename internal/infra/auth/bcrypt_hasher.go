// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"strings"
	"unicode"

	"storefront/config"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy *config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	var policy *config.PasswordStrengthConfig
	if cfg != nil {
		if cfg.Auth != nil {
			cost = cfg.Auth.BcryptCost
		}
		policy = cfg.PasswordStrength
	}

	return NewBcryptHasherWithCost(cost, policy)
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost. Out-of-range
// costs fall back to bcrypt.DefaultCost; a nil policy uses the default policy.
func NewBcryptHasherWithCost(cost int, policy *config.PasswordStrengthConfig) service.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if policy == nil {
		policy = config.DefaultPasswordStrength()
	}

	return &bcryptHasher{cost: cost, policy: policy}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt embeds a fresh random salt in every output.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	// err is nil only when the password and hash match; a malformed hash is an error too.
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength reports every policy violation at once.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	var problems []string

	length := len([]rune(password))
	if length < h.policy.MinLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters long", h.policy.MinLength))
	}
	// bcrypt only looks at the first 72 bytes.
	if h.policy.MaxLength > 0 && len(password) > h.policy.MaxLength {
		problems = append(problems, fmt.Sprintf("must be at most %d bytes long", h.policy.MaxLength))
	}
	if h.policy.RequireLowercase && !h.hasLowercase(password) {
		problems = append(problems, "must contain at least one lowercase letter")
	}
	if h.policy.RequireUppercase && !h.hasUppercase(password) {
		problems = append(problems, "must contain at least one uppercase letter")
	}
	if h.policy.RequireNumbers && !h.hasNumbers(password) {
		problems = append(problems, "must contain at least one number")
	}
	if h.policy.RequireSpecial && !h.hasSpecialChars(password) {
		problems = append(problems, "must contain at least one special character")
	}

	if len(problems) == 0 {
		return nil
	}

	return domainerrors.ErrValidationFailed.WithDetails("password " + strings.Join(problems, "; "))
}

func (h *bcryptHasher) hasUppercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) >= 0
}
