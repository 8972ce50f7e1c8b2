package domain

import (
	"context"
	"time"
)

type ContextKey string

const SessionContextKey ContextKey = "session"

// Session is the decoded access token of the caller. It is built once per
// request and passed down through the context.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user,omitempty"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == RoleAdmin
}

// CanUsePOS is true for the roles that run the point of sale.
func (s *Session) CanUsePOS() bool {
	if !s.Authenticated() {
		return false
	}
	switch s.Role {
	case RoleAdmin, RoleStaff, RoleCashier:
		return true
	}
	return false
}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// SessionFromContext returns the caller's session, or nil when anonymous.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(SessionContextKey).(*Session)
	return s
}
