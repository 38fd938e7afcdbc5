package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/auth"
	"github.com/veracare/marketplace-api/pkg/errors"
	"github.com/veracare/marketplace-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterUserRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
}

type Service struct {
	userRepo repository.UserRepository
	jwt      auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwt auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{userRepo: userRepo, jwt: jwt, hasher: hasher}
}

// Register creates a learner account. Practitioner accounts are created
// through practitioner registration instead.
func (s *Service) Register(ctx context.Context, req *model.RegisterUserRequest) (*model.User, error) {
	email := strings.ToLower(req.Email)
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.BadRequest("email is already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base: model.Base{
			ID: uuid.New(),
		},
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RoleLearner,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a token pair. Five consecutive
// failures lock the account for fifteen minutes; any successful login
// resets the counter.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, errors.Unauthorized("invalid credentials", err)
	}

	if user.Status == model.UserStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutDuration {
			return nil, errors.Unauthorized("account is temporarily locked", nil)
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = time.Now()
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
		}
		if updateErr := s.userRepo.Update(ctx, user); updateErr != nil {
			return nil, fmt.Errorf("failed to record login attempt: %w", updateErr)
		}
		return nil, errors.Unauthorized("invalid credentials", err)
	}

	now := time.Now()
	user.LoginAttempts = 0
	user.LastLoginAttempt = now
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token", err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token", err)
	}
	if user.Status == model.UserStatusLocked {
		return nil, errors.Unauthorized("account is temporarily locked", nil)
	}

	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessTokenTTL().Seconds()),
	}, nil
}
