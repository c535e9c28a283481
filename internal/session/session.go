// Package session holds the resolved principal that every gated operation
// receives explicitly.
package session

import (
	"context"

	"foodshare_backend/internal/models"
	"foodshare_backend/pkg/contextkeys"
)

// Session is the resolved identity and its current role.
type Session struct {
	IdentityID string          `json:"identity_key"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Role       models.UserRole `json:"role"`
}

// FromProfile builds a session from a stored profile.
func FromProfile(p *models.Profile) *Session {
	return &Session{
		IdentityID: p.IdentityID,
		Email:      p.Email,
		Name:       p.DisplayName(),
		Role:       p.Role,
	}
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.UserRoleAdmin
}

// Is reports whether the session belongs to identityID.
func (s *Session) Is(identityID string) bool {
	return s != nil && s.IdentityID == identityID
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextkeys.SessionKey, s)
}

// FromContext returns nil when no session was attached.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextkeys.SessionKey).(*Session)
	return s
}
