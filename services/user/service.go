// Package user handles account registration and token sessions. One
// active token per account: the stored hash rotates on login and
// clears on logout, revoking earlier tokens.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userRepo "mentorhub/database/repository/user"
	"mentorhub/models"
	"mentorhub/utils"
)

const tokenTTL = 72 * time.Hour

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthResult is a user with a fresh session token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type Service struct {
	Users  userRepo.UserRepository
	Logger *zap.Logger
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if err != userRepo.ErrNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.Info("user registered", zap.String("userId", u.ID))

	return s.issueToken(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == userRepo.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(ctx, u)
}

// Logout clears the stored token hash and evicts the cache entry, so
// the current token stops working immediately.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.Users.UpdateTokenHash(ctx, userID, ""); err != nil {
		return err
	}
	if cache := utils.GetAuthCacheClient(); cache != nil {
		_ = cache.Del(ctx, utils.AuthCachePrefix+userID).Err()
	}
	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *Service) issueToken(ctx context.Context, u *models.User) (*AuthResult, error) {
	token, err := utils.GenerateToken(u.ID, u.Email, tokenTTL)
	if err != nil {
		return nil, err
	}
	hash := utils.HashToken(token)
	if err := s.Users.UpdateTokenHash(ctx, u.ID, hash); err != nil {
		return nil, err
	}
	u.TokenHash = hash

	if cache := utils.GetAuthCacheClient(); cache != nil {
		_ = cache.Set(ctx, utils.AuthCachePrefix+u.ID, hash, time.Hour).Err()
	}

	return &AuthResult{User: u, Token: token}, nil
}
