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

type SongService struct {
	songs storage.SongStorage
	users storage.UserStorage
}

func NewSongService(songs storage.SongStorage, users storage.UserStorage) *SongService {
	return &SongService{
		songs: songs,
		users: users,
	}
}

// AddSong stores a new song and links it to its creating user. Both writes
// happen in one storage transaction; the caller can read the song back by id
// as soon as this returns.
func (s *SongService) AddSong(ctx context.Context, username string, req *models.SongPayload) (*models.Song, error) {
	utils.Logger.Debug("SongService.AddSong", zap.String("username", username), zap.String("name", req.Name))

	newSong := &models.Song{
		Name:   req.Name,
		Tracks: req.Tracks,
	}
	addedSong, err := s.songs.CreateForUser(ctx, newSong, username)
	if err != nil {
		utils.Logger.Error("SongService.AddSong - storage.CreateForUser failed", zap.Error(err))
		return nil, fmt.Errorf("SongService.AddSong - storage.CreateForUser failed: %w", err)
	}

	utils.Logger.Info("SongService.AddSong - song added", zap.Int("song_id", addedSong.ID), zap.String("username", username))
	return addedSong, nil
}

func (s *SongService) GetSong(ctx context.Context, id int) (*models.Song, error) {
	utils.Logger.Debug("SongService.GetSong", zap.Int("id", id))

	song, err := s.songs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			return nil, err
		}
		utils.Logger.Error("SongService.GetSong - storage.GetByID failed", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("SongService.GetSong - storage.GetByID failed: %w", err)
	}
	return song, nil
}

// ListUserSongs returns the user's songs in creation order. Listing for an
// unknown username is an error, not an empty list.
func (s *SongService) ListUserSongs(ctx context.Context, username string) ([]models.Song, error) {
	utils.Logger.Debug("SongService.ListUserSongs", zap.String("username", username))

	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		utils.Logger.Error("SongService.ListUserSongs - storage.Exists failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("SongService.ListUserSongs - storage.Exists failed: %w", err)
	}
	if !exists {
		return nil, storage.UserNotFound(username)
	}

	songs, err := s.songs.ListByUser(ctx, username)
	if err != nil {
		utils.Logger.Error("SongService.ListUserSongs - storage.ListByUser failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("SongService.ListUserSongs - storage.ListByUser failed: %w", err)
	}
	return songs, nil
}

func (s *SongService) UpdateSong(ctx context.Context, id int, username string, req *models.SongPayload) (*models.Song, error) {
	utils.Logger.Debug("SongService.UpdateSong", zap.Int("id", id), zap.String("username", username))

	updatedSong, err := s.songs.Update(ctx, id, req.Name, req.Tracks, username)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			return nil, err
		}
		utils.Logger.Error("SongService.UpdateSong - storage.Update failed", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("SongService.UpdateSong - storage.Update failed: %w", err)
	}
	utils.Logger.Info("SongService.UpdateSong - song updated", zap.Int("song_id", updatedSong.ID), zap.String("username", username))
	return updatedSong, nil
}

func (s *SongService) DeleteSong(ctx context.Context, id int, username string) error {
	utils.Logger.Debug("SongService.DeleteSong", zap.Int("id", id), zap.String("username", username))

	err := s.songs.Delete(ctx, id, username)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			return err
		}
		utils.Logger.Error("SongService.DeleteSong - storage.Delete failed", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("SongService.DeleteSong - storage.Delete failed: %w", err)
	}
	utils.Logger.Info("SongService.DeleteSong - song deleted", zap.Int("song_id", id), zap.String("username", username))
	return nil
}
