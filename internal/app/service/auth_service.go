package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUser        = errors.New("user needs a username, a password and a valid role")
)

type AuthService interface {
	Verify(ctx context.Context, username, password string) (bool, error)
	Login(ctx context.Context, username, password string) (*model.User, *util.AccessToken, error)
	CreateUser(ctx context.Context, username, password string, role model.UserRole) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	jwtSecret    string
	accessExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, accessExpiry time.Duration) AuthService {
	return &authService{
		userRepo:     userRepo,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

// Verify reports whether the password matches the stored bcrypt hash.
// An unknown username is a mismatch, not an error.
func (s *authService) Verify(ctx context.Context, username, password string) (bool, error) {
	_, ok, err := s.verify(ctx, username, password)
	return ok, err
}

func (s *authService) verify(ctx context.Context, username, password string) (*model.User, bool, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !util.VerifyPassword(user.PasswordHash, password) {
		return nil, false, nil
	}
	return user, true, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.User, *util.AccessToken, error) {
	logger.Info("User login attempt", map[string]interface{}{
		"username": username,
	})

	user, ok, err := s.verify(ctx, username, password)
	if err != nil {
		logger.Error("Failed to look up user", err, map[string]interface{}{
			"username": username,
		})
		return nil, nil, err
	}
	if !ok {
		logger.Warn("Login failed: invalid credentials", map[string]interface{}{
			"username": username,
		})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := util.GenerateAccessToken(user.ID, user.Username, string(user.Role), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, token, nil
}

func (s *authService) CreateUser(ctx context.Context, username, password string, role model.UserRole) (*model.User, error) {
	username = strings.TrimSpace(username)
	if role == "" {
		role = model.RoleStaff
	}
	if username == "" || password == "" || !role.Valid() {
		return nil, ErrInvalidUser
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		logger.Warn("User creation failed: username exists", map[string]interface{}{
			"username": username,
		})
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User created", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
