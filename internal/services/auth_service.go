package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"
)

type AuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	SignOut(ctx context.Context, req *dto.SignOutRequest) (*dto.SignOutResponse, error)
	// Authenticate validates an access token and resolves its session.
	Authenticate(ctx context.Context, accessToken string) (*session.Session, error)
}

type AuthServiceImpl struct {
	identityRepo     repositories.IdentityRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	sessions         SessionService
	tokens           *auth.TokenManager
	refreshTTL       time.Duration
}

func NewAuthService(
	identityRepo repositories.IdentityRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	sessions SessionService,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
) AuthService {
	return &AuthServiceImpl{
		identityRepo:     identityRepo,
		refreshTokenRepo: refreshTokenRepo,
		sessions:         sessions,
		tokens:           tokens,
		refreshTTL:       refreshTTL,
	}
}

// SignUp creates the identity and its profile in one step. Admin accounts
// cannot be self-registered.
func (s *AuthServiceImpl) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	role := models.DefaultRole
	if req.Role != "" {
		parsed, ok := models.ParseUserRole(req.Role)
		if !ok {
			return nil, apperrors.ErrInvalidUserRole
		}
		role = parsed
	}
	if role == models.UserRoleAdmin {
		return nil, apperrors.Permission("auth", "Admin accounts cannot be self-registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = models.EmailLocalPart(email)
	}

	identity := &models.Identity{Email: email, PasswordHash: hash}
	profile := &models.Profile{Name: name, Email: email, Role: role}
	if role == models.UserRoleNGO {
		profile.OrganizationName = strings.TrimSpace(req.OrganizationName)
	}

	if err := s.identityRepo.CreateWithProfile(ctx, identity, profile); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.Provider(err, "auth")
	}

	logger.CtxInfo(ctx, "Account registered", "identity_id", identity.ID, "role", role)
	return s.issue(ctx, session.FromProfile(profile), access.ViewAuth)
}

func (s *AuthServiceImpl) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error) {
	identity, err := s.identityRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrIdentityNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Provider(err, "auth")
	}
	if !auth.CheckPasswordHash(req.Password, identity.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	sess, err := s.sessions.Resolve(ctx, identity.ID, identity.Email)
	if err != nil {
		return nil, err
	}

	from := req.From
	if from == "" {
		from = access.ViewAuth
	}
	return s.issue(ctx, sess, from)
}

// Refresh rotates the refresh token: the presented one is consumed.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.Provider(err, "auth")
	}

	if err := s.refreshTokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			// Lost a race with a concurrent refresh.
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.Provider(err, "auth")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrInvalidToken
	}

	identity, err := s.identityRepo.FindByID(ctx, stored.IdentityID)
	if err != nil {
		if errors.Is(err, repositories.ErrIdentityNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.Provider(err, "auth")
	}

	sess, err := s.sessions.Resolve(ctx, identity.ID, identity.Email)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, sess, "")
}

func (s *AuthServiceImpl) SignOut(ctx context.Context, req *dto.SignOutRequest) (*dto.SignOutResponse, error) {
	if req.RefreshToken != "" {
		err := s.refreshTokenRepo.DeleteByToken(ctx, req.RefreshToken)
		if err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.Provider(err, "auth")
		}
	}
	return &dto.SignOutResponse{Redirect: access.RedirectAfterLogout(req.From)}, nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, accessToken string) (*session.Session, error) {
	if accessToken == "" {
		return nil, errNoSession
	}
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	return s.sessions.Resolve(ctx, claims.IdentityID(), claims.Email)
}

func (s *AuthServiceImpl) issue(ctx context.Context, sess *session.Session, from string) (*dto.AuthResponse, error) {
	accessToken, expiresAt, err := s.tokens.Generate(sess.IdentityID, sess.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	opaque, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	refresh := &models.RefreshToken{
		IdentityID: sess.IdentityID,
		Token:      opaque,
		ExpiresAt:  time.Now().Add(s.refreshTTL),
	}
	if err := s.refreshTokenRepo.Create(ctx, refresh); err != nil {
		return nil, apperrors.Provider(err, "auth")
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: opaque,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		Session:      s.sessions.Describe(sess, ""),
		Redirect:     access.RedirectAfterLogin(sess.Role, from),
	}, nil
}
