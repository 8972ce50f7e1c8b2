package rest

import (
	"context"

	"storefront-console/internal/domain"
)

type authRepository struct {
	c *Client
}

func NewAuthRepository(c *Client) domain.AuthRepository {
	return &authRepository{c: c}
}

func (r *authRepository) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var res domain.AuthResult
	if err := r.c.post(ctx, "/auth/login", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *authRepository) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var res domain.AuthResult
	if err := r.c.post(ctx, "/auth/register", reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *authRepository) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := r.c.get(ctx, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *authRepository) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var u domain.User
	if err := r.c.put(ctx, "/users/me", update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
