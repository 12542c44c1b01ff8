package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/pkg/logger"
	"github.com/stmiyata/seibi-backend/pkg/redis"
	"github.com/stmiyata/seibi-backend/pkg/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password does not match")
	ErrInvalidRole        = errors.New("invalid role")
)

type AuthService interface {
	Register(username, password, displayName string, role model.UserRole) (*model.User, error)
	Login(username, password string) (string, *model.User, error)
	Logout(ctx context.Context, token string) error
	GetProfile(userID uint) (*model.User, error)
	ChangePassword(userID uint, currentPassword, newPassword string) error
	ResetPassword(username, newPassword string) error
}

type authService struct {
	userRepo    repository.UserRepository
	jwtSecret   string
	tokenExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenExpiry time.Duration) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
	}
}

func (s *authService) Register(username, password, displayName string, role model.UserRole) (*model.User, error) {
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	logger.Info("Registering user", map[string]interface{}{
		"username": username,
		"role":     role,
	})

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		logger.Warn("Registration rejected, username taken", map[string]interface{}{
			"username": username,
		})
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Username:    username,
		Password:    password, // hashed by the model hook
		Role:        role,
		DisplayName: displayName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (s *authService) Login(username, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed, user not found", map[string]interface{}{
				"username": username,
			})
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !util.VerifyPassword(user.Password, password) {
		logger.Warn("Login failed, wrong password", map[string]interface{}{
			"username": username,
		})
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, user.Username, string(user.Role), s.jwtSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return "", nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return token, user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
// Without Redis this is a no-op; the token simply expires on its own.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// Already invalid or expired, nothing to revoke
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	return redis.BlacklistToken(ctx, token, remaining)
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !util.VerifyPassword(user.Password, currentPassword) {
		return ErrWrongPassword
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashed); err != nil {
		return err
	}

	logger.Info("Password changed", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ResetPassword sets a new password without checking the old one.
// Callers must gate this behind the admin capability.
func (s *authService) ResetPassword(username, newPassword string) error {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashed); err != nil {
		return err
	}

	logger.Info("Password reset", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}
