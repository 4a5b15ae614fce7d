package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sukhpreet-s/travel-planner-api/config"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error)
	// RegisterAdmin requires the shared admin secret; a wrong or
	// unconfigured secret fails with types.ErrForbidden.
	RegisterAdmin(ctx context.Context, req types.AdminRegisterRequest) (*types.AuthResponse, error)
	// Login fails with types.ErrUnauthenticated on unknown username or
	// wrong password, indistinguishably.
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
}

type ServiceImpl struct {
	repo            Repository
	jwtCfg          config.JWTConfig
	adminSecretCode string
	logger          *slog.Logger
}

func NewService(repo Repository, jwtCfg config.JWTConfig, adminSecretCode string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:            repo,
		jwtCfg:          jwtCfg,
		adminSecretCode: adminSecretCode,
		logger:          logger,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	return s.register(ctx, req.Username, req.Email, req.Password, types.RoleUser)
}

func (s *ServiceImpl) RegisterAdmin(ctx context.Context, req types.AdminRegisterRequest) (*types.AuthResponse, error) {
	if s.adminSecretCode == "" ||
		subtle.ConstantTimeCompare([]byte(req.AdminSecretCode), []byte(s.adminSecretCode)) != 1 {
		return nil, fmt.Errorf("invalid admin secret code: %w", types.ErrForbidden)
	}
	return s.register(ctx, req.Username, req.Email, req.Password, types.RoleAdmin)
}

func (s *ServiceImpl) register(ctx context.Context, username, email, password string, role types.Role) (*types.AuthResponse, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, username, email, string(hash), role)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)))

	return &types.AuthResponse{Token: token, User: types.NewUserProfile(user)}, nil
}

func (s *ServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &types.AuthResponse{Token: token, User: types.NewUserProfile(user)}, nil
}

func (s *ServiceImpl) generateToken(user *types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func validateRegistration(username, email, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", types.ErrValidation)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", types.ErrValidation)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", types.ErrValidation)
	}
	return nil
}
