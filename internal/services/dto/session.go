package dto

import (
	"foodshare_backend/internal/session"
)

type SessionResponse struct {
	IdentityKey string `json:"identity_key"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Landing     string `json:"landing"`
	Redirect    string `json:"redirect,omitempty"`
}

func NewSessionResponse(s *session.Session, landing string) SessionResponse {
	return SessionResponse{
		IdentityKey: s.IdentityID,
		Email:       s.Email,
		Name:        s.Name,
		Role:        string(s.Role),
		Landing:     landing,
	}
}

type ViewCheckResponse struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
}

type ViewsResponse struct {
	Views   []string `json:"views"`
	Landing string   `json:"landing"`
}
