package apperrors

import (
	"net/http"
)

// =========================================================================
// Taxonomy factories
// =========================================================================

// AuthRequired is returned when an operation needs a session and there is none.
func AuthRequired(message string) *AppError {
	return New(CodeUnauthorized, "session", message, http.StatusUnauthorized)
}

// Permission is returned when a session exists but a role or ownership check fails.
func Permission(domain, message string) *AppError {
	return New(CodeForbidden, domain, message, http.StatusForbidden)
}

// InvalidState is returned when a transition is illegal for the current status.
func InvalidState(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// Provider wraps failures of the identity or document store itself.
func Provider(err error, domain string) *AppError {
	return Wrap(err, CodeDatabaseError, domain, "Storage provider error", http.StatusInternalServerError)
}

// ExternalService wraps failures of outbound integrations (mail, bus).
func ExternalService(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusBadGateway)
}

// ProfileSetup is returned when the default profile cannot be created at
// session start. The session must be treated as unauthenticated.
func ProfileSetup(err error) *AppError {
	return Wrap(err, CodeProfileSetupFailed, "session", "Could not set up user profile", http.StatusServiceUnavailable)
}

func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

func ErrAlreadyExists(err error, domain, message string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, message, http.StatusConflict)
}

// =========================================================================
// Shared values
// =========================================================================

var ErrCannotModifySelf = New(
	CodeForbidden,
	"user",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrInvalidUserRole = New(
	CodeValidationFailed,
	"user",
	"Role must be one of donor, ngo, admin",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password should be at least 6 characters",
	http.StatusBadRequest,
)

var ErrRateLimited = New(
	CodeRateLimited,
	"request",
	"Too many requests, slow down",
	http.StatusTooManyRequests,
)
