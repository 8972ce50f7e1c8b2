package usecase

import (
	"context"
	"fmt"
	"time"

	"storefront-console/config"
	"storefront-console/internal/domain"
	"storefront-console/pkg/cache"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/utils"
)

// AuthUsecase forwards sign-in to the backend and turns the issued token
// into a Session. It never checks passwords itself.
type AuthUsecase struct {
	repo   domain.AuthRepository
	cache  cache.CacheService
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthUsecase(repo domain.AuthRepository, cache cache.CacheService, cfg *config.Config) *AuthUsecase {
	return &AuthUsecase{
		repo:   repo,
		cache:  cache,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.UserCacheTTL,
		now:    time.Now,
	}
}

func userKey(userID string) string {
	return "session:user:" + userID
}

// Bootstrap decodes token and checks its expiry. The cached user, if any,
// is attached to the session.
func (u *AuthUsecase) Bootstrap(token string) (*domain.Session, error) {
	claims, err := utils.DecodeJWT(token, u.secret, u.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	s := &domain.Session{
		Token:     token,
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt,
	}
	if v, ok := u.cache.Get(userKey(s.UserID)); ok {
		if user, ok := v.(*domain.User); ok {
			s.User = user
		}
	}
	return s, nil
}

// Teardown forgets whatever was cached for the session's user.
func (u *AuthUsecase) Teardown(userID string) {
	if userID != "" {
		u.cache.Delete(userKey(userID))
	}
}

func (u *AuthUsecase) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if errs := domain.ValidateStruct(creds); len(errs) > 0 {
		return nil, &domain.ValidationError{Message: "invalid credentials", Fields: errs}
	}
	res, err := u.repo.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return u.establish(ctx, res)
}

func (u *AuthUsecase) Register(ctx context.Context, reg domain.Registration) (*domain.Session, error) {
	if errs := domain.ValidateStruct(reg); len(errs) > 0 {
		return nil, &domain.ValidationError{Message: "invalid registration", Fields: errs}
	}
	res, err := u.repo.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return u.establish(ctx, res)
}

func (u *AuthUsecase) establish(ctx context.Context, res *domain.AuthResult) (*domain.Session, error) {
	if res.AccessToken == "" {
		return nil, fmt.Errorf("%w: backend returned no access token", domain.ErrUpstream)
	}
	s, err := u.Bootstrap(res.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: backend issued an unusable token", domain.ErrUpstream)
	}
	if res.User != nil {
		s.User = res.User
		u.cache.Set(userKey(s.UserID), res.User, u.ttl)
	}
	logger.WithContext(ctx).Info().Str("user_id", s.UserID).Str("role", s.Role).Msg("User signed in")
	return s, nil
}

// Me returns the signed-in user, from cache when possible.
func (u *AuthUsecase) Me(ctx context.Context) (*domain.User, error) {
	s := domain.SessionFromContext(ctx)
	if !s.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return cache.Remember(u.cache, userKey(s.UserID), u.ttl, func() (*domain.User, error) {
		return u.repo.Me(ctx)
	})
}

func (u *AuthUsecase) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	s := domain.SessionFromContext(ctx)
	if !s.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	if errs := domain.ValidateStruct(update); len(errs) > 0 {
		return nil, &domain.ValidationError{Message: "invalid profile", Fields: errs}
	}
	user, err := u.repo.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	u.cache.Set(userKey(s.UserID), user, u.ttl)
	return user, nil
}
