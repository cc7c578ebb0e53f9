package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// AuthAPI is the backend's authentication surface.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Register(ctx context.Context, in RegisterInput) error
}
