package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/auth"
)

// AuthService issues and refreshes API tokens
type AuthService struct {
	userRepo   *repositories.UserRepository
	tokenRepo  *repositories.TokenRepository
	jwtService *auth.JWTService
	rotate     bool
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService. With rotate set, every refresh
// revokes the presented refresh token and returns a new one.
func NewAuthService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.TokenRepository,
	jwtService *auth.JWTService,
	rotate bool,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		rotate:     rotate,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateUser registers an account with a bcrypt password hash
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (repositories.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return repositories.User{}, apperrors.NewBadRequestError("username and password are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return repositories.User{}, err
	}

	user, err := s.userRepo.Create(ctx, username, hash)
	if err != nil {
		return repositories.User{}, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User created")
	return user, nil
}

// ObtainTokenPair checks the credentials and issues an access/refresh pair
func (s *AuthService) ObtainTokenPair(ctx context.Context, creds models.Credentials) (models.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, creds.Username)
	if err != nil {
		s.logger.Warn().Str("username", creds.Username).Msg("Login attempt for unknown user")
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, creds.Password) {
		s.logger.Warn().Str("username", creds.Username).Msg("Login attempt with wrong password")
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	access, refresh, err := s.jwtService.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate tokens")
		return models.TokenPair{}, err
	}

	if err := s.tokenRepo.CreateToken(ctx, refresh, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to store refresh token")
		return models.TokenPair{}, err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Token pair issued")
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccessToken exchanges a stored refresh token for a new access token
func (s *AuthService) RefreshAccessToken(ctx context.Context, refresh string) (models.RefreshResponse, error) {
	if refresh == "" {
		return models.RefreshResponse{}, apperrors.NewCustomError(apperrors.ErrBadRequest, "refresh token is required").
			WithDetails(map[string]interface{}{"refresh": "Este campo é obrigatório."})
	}

	userID, err := s.tokenRepo.GetUserID(ctx, refresh, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			s.logger.Info().Msg("Expired refresh token presented")
		}
		return models.RefreshResponse{}, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.tokenRepo.RevokeToken(ctx, refresh)
		return models.RefreshResponse{}, apperrors.ErrTokenInvalid
	}

	if !s.rotate {
		access, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
		if err != nil {
			return models.RefreshResponse{}, err
		}
		return models.RefreshResponse{Access: access}, nil
	}

	access, next, err := s.jwtService.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		return models.RefreshResponse{}, err
	}
	s.tokenRepo.RevokeToken(ctx, refresh)
	if err := s.tokenRepo.CreateToken(ctx, next, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return models.RefreshResponse{}, err
	}

	s.logger.Debug().Int64("userID", user.ID).Msg("Refresh token rotated")
	return models.RefreshResponse{Access: access, Refresh: next}, nil
}

// RevokeAll invalidates every issued refresh token
func (s *AuthService) RevokeAll(ctx context.Context) {
	s.tokenRepo.RevokeAll(ctx)
	s.logger.Info().Msg("All refresh tokens revoked")
}
