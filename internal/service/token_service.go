package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/models"
	"polyphona/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type TokenService struct {
	tokens storage.TokenStorage
	users  storage.UserStorage
}

func NewTokenService(tokens storage.TokenStorage, users storage.UserStorage) *TokenService {
	return &TokenService{
		tokens: tokens,
		users:  users,
	}
}

// Login exchanges credentials for a fresh random token. Unknown usernames and
// wrong passwords both come back as ErrInvalidCredentials.
func (s *TokenService) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	utils.Logger.Debug("TokenService.Login", zap.String("username", username))

	ok, err := s.users.CheckCredentials(ctx, username, password)
	if err != nil {
		utils.Logger.Error("TokenService.Login - storage.CheckCredentials failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("TokenService.Login - storage.CheckCredentials failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.tokens.Save(ctx, username, token); err != nil {
		utils.Logger.Error("TokenService.Login - storage.Save failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("TokenService.Login - storage.Save failed: %w", err)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		utils.Logger.Error("TokenService.Login - storage.GetByUsername failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("TokenService.Login - storage.GetByUsername failed: %w", err)
	}

	utils.Logger.Info("TokenService.Login - token issued", zap.String("username", username))
	return &models.TokenResponse{Token: token, User: user}, nil
}

func (s *TokenService) Logout(ctx context.Context, token string) error {
	utils.Logger.Debug("TokenService.Logout")

	err := s.tokens.DeleteToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return err
		}
		utils.Logger.Error("TokenService.Logout - storage.DeleteToken failed", zap.Error(err))
		return fmt.Errorf("TokenService.Logout - storage.DeleteToken failed: %w", err)
	}
	utils.Logger.Info("TokenService.Logout - token deleted")
	return nil
}

// Resolve maps a bearer token to its username.
func (s *TokenService) Resolve(ctx context.Context, token string) (string, error) {
	username, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return "", err
		}
		utils.Logger.Error("TokenService.Resolve - storage.Resolve failed", zap.Error(err))
		return "", fmt.Errorf("TokenService.Resolve - storage.Resolve failed: %w", err)
	}
	return username, nil
}

// SweepExpired is the best-effort maintenance pass over stale tokens. Safe to
// run at any time; it only removes rows already past their refresh date.
func (s *TokenService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.tokens.SweepExpired(ctx, now)
	if err != nil {
		utils.Logger.Error("TokenService.SweepExpired - storage.SweepExpired failed", zap.Error(err))
		return 0, fmt.Errorf("TokenService.SweepExpired - storage.SweepExpired failed: %w", err)
	}
	if removed > 0 {
		utils.Logger.Info("TokenService.SweepExpired - expired tokens removed", zap.Int64("count", removed))
	}
	return removed, nil
}
