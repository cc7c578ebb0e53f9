package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

type AuthClient struct {
	c Doer
}

func NewAuthClient(c Doer) *AuthClient { return &AuthClient{c: c} }

var _ ports.AuthAPI = (*AuthClient)(nil)

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (a *AuthClient) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	var out loginResponse
	err := a.c.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return "", nil, err
	}
	if out.Token == "" || out.User == nil {
		return "", nil, fmt.Errorf("login: response carries no session")
	}
	return out.Token, out.User, nil
}

func (a *AuthClient) Register(ctx context.Context, in ports.RegisterInput) error {
	return a.c.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body:   in,
	}, nil)
}
