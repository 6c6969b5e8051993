package service

import (
	"context"
	"errors"
	"fmt"

	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/models"
	"polyphona/internal/storage"

	"go.uber.org/zap"
)

type UserService struct {
	users storage.UserStorage
}

func NewUserService(users storage.UserStorage) *UserService {
	return &UserService{users: users}
}

// Register creates a new account. Users are immutable once created; there is
// no update or delete. Returns storage.ErrUserExists on a taken username.
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) error {
	utils.Logger.Debug("UserService.Register", zap.String("username", req.Username))

	exists, err := s.users.Exists(ctx, req.Username)
	if err != nil {
		utils.Logger.Error("UserService.Register - storage.Exists failed", zap.Error(err), zap.String("username", req.Username))
		return fmt.Errorf("UserService.Register - storage.Exists failed: %w", err)
	}
	if exists {
		return storage.ErrUserExists
	}

	user := &models.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}
	// Create maps the unique-violation race to ErrUserExists as well.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return err
		}
		utils.Logger.Error("UserService.Register - storage.Create failed", zap.Error(err), zap.String("username", req.Username))
		return fmt.Errorf("UserService.Register - storage.Create failed: %w", err)
	}

	utils.Logger.Info("UserService.Register - user created", zap.String("username", req.Username))
	return nil
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	utils.Logger.Debug("UserService.Get", zap.String("username", username))

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, err
		}
		utils.Logger.Error("UserService.Get - storage.GetByUsername failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("UserService.Get - storage.GetByUsername failed: %w", err)
	}
	return user, nil
}
