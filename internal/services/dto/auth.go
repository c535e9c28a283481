package dto

import "time"

type SignUpRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	Name             string `json:"name" validate:"omitempty,max=255"`
	Role             string `json:"role" validate:"omitempty,is-user-role"`
	OrganizationName string `json:"organization_name" validate:"omitempty,max=255"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// From is the page the user was on; it decides the redirect.
	From string `json:"from"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
	From         string `json:"from"`
}

// AuthResponse is returned by sign-up, sign-in and refresh.
type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Session      SessionResponse `json:"session"`
	Redirect     string          `json:"redirect,omitempty"`
}

type SignOutResponse struct {
	Redirect string `json:"redirect,omitempty"`
}
