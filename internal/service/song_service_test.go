package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/models"
	"polyphona/internal/service"
	"polyphona/internal/storage"
	mock_storage "polyphona/internal/storage/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	exitCode := m.Run()
	utils.Logger.Sync()
	os.Exit(exitCode)
}

func TestSongService_AddSong(t *testing.T) {
	tracks := json.RawMessage(`[{"name":"Track 1","notes":[]}]`)

	testCases := []struct {
		name          string
		username      string
		request       *models.SongPayload
		mockStorageFn func(m *mock_storage.MockSongStorage)
		expectError   bool
	}{
		{
			name:     "Valid request",
			username: "smith",
			request:  &models.SongPayload{Name: "Song 01", Tracks: tracks},
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().CreateForUser(gomock.Any(), gomock.Any(), "smith").Return(&models.Song{ID: 1, Name: "Song 01", Tracks: tracks}, nil)
			},
			expectError: false,
		},
		{
			name:     "Storage error",
			username: "smith",
			request:  &models.SongPayload{Name: "Song 01", Tracks: tracks},
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().CreateForUser(gomock.Any(), gomock.Any(), "smith").Return(nil, errors.New("storage error"))
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSongs := mock_storage.NewMockSongStorage(ctrl)
			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockSongs)

			serviceInstance := service.NewSongService(mockSongs, mockUsers)

			song, err := serviceInstance.AddSong(context.Background(), tc.username, tc.request)

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Song 01", song.Name)
				assert.Equal(t, tracks, song.Tracks)
			}
		})
	}
}

func TestSongService_GetSong(t *testing.T) {
	testCases := []struct {
		name          string
		id            int
		mockStorageFn func(m *mock_storage.MockSongStorage)
		expectedErr   error
	}{
		{
			name: "Found",
			id:   1,
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().GetByID(gomock.Any(), 1).Return(&models.Song{ID: 1, Name: "Song 01"}, nil)
			},
		},
		{
			name: "Not found",
			id:   4,
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().GetByID(gomock.Any(), 4).Return(nil, storage.SongNotFound(4))
			},
			expectedErr: storage.ErrSongNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSongs := mock_storage.NewMockSongStorage(ctrl)
			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockSongs)

			serviceInstance := service.NewSongService(mockSongs, mockUsers)

			song, err := serviceInstance.GetSong(context.Background(), tc.id)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.id, song.ID)
			}
		})
	}
}

func TestSongService_ListUserSongs(t *testing.T) {
	testCases := []struct {
		name          string
		username      string
		mockStorageFn func(songs *mock_storage.MockSongStorage, users *mock_storage.MockUserStorage)
		expectedErr   error
		expectedCount int
	}{
		{
			name:     "User with songs",
			username: "smith",
			mockStorageFn: func(songs *mock_storage.MockSongStorage, users *mock_storage.MockUserStorage) {
				users.EXPECT().Exists(gomock.Any(), "smith").Return(true, nil)
				songs.EXPECT().ListByUser(gomock.Any(), "smith").Return([]models.Song{{ID: 1}, {ID: 2}}, nil)
			},
			expectedCount: 2,
		},
		{
			name:     "User without songs",
			username: "smith",
			mockStorageFn: func(songs *mock_storage.MockSongStorage, users *mock_storage.MockUserStorage) {
				users.EXPECT().Exists(gomock.Any(), "smith").Return(true, nil)
				songs.EXPECT().ListByUser(gomock.Any(), "smith").Return([]models.Song{}, nil)
			},
			expectedCount: 0,
		},
		{
			name:     "Unknown user is an error, not an empty list",
			username: "ghost",
			mockStorageFn: func(songs *mock_storage.MockSongStorage, users *mock_storage.MockUserStorage) {
				users.EXPECT().Exists(gomock.Any(), "ghost").Return(false, nil)
			},
			expectedErr: storage.ErrUserNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSongs := mock_storage.NewMockSongStorage(ctrl)
			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockSongs, mockUsers)

			serviceInstance := service.NewSongService(mockSongs, mockUsers)

			songs, err := serviceInstance.ListUserSongs(context.Background(), tc.username)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Len(t, songs, tc.expectedCount)
			}
		})
	}
}

func TestSongService_UpdateSong(t *testing.T) {
	tracks := json.RawMessage(`[{"name":"Track 2","notes":[]}]`)
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name          string
		id            int
		username      string
		mockStorageFn func(m *mock_storage.MockSongStorage)
		expectedErr   error
	}{
		{
			name:     "Owner updates song",
			id:       1,
			username: "smith",
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().Update(gomock.Any(), 1, "Song 02", []byte(tracks), "smith").
					Return(&models.Song{ID: 1, Name: "Song 02", Created: created, Updated: created.Add(time.Hour), Tracks: tracks}, nil)
			},
		},
		{
			name:     "Non-owner gets not found",
			id:       1,
			username: "mallory",
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().Update(gomock.Any(), 1, "Song 02", []byte(tracks), "mallory").
					Return(nil, storage.SongNotFoundForUser(1, "mallory"))
			},
			expectedErr: storage.ErrSongNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSongs := mock_storage.NewMockSongStorage(ctrl)
			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockSongs)

			serviceInstance := service.NewSongService(mockSongs, mockUsers)

			song, err := serviceInstance.UpdateSong(context.Background(), tc.id, tc.username, &models.SongPayload{Name: "Song 02", Tracks: tracks})

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Song 02", song.Name)
				assert.Equal(t, created, song.Created)
				assert.True(t, song.Updated.After(song.Created))
			}
		})
	}
}

func TestSongService_DeleteSong(t *testing.T) {
	testCases := []struct {
		name          string
		id            int
		username      string
		mockStorageFn func(m *mock_storage.MockSongStorage)
		expectedErr   error
	}{
		{
			name:     "Owner deletes song",
			id:       1,
			username: "smith",
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().Delete(gomock.Any(), 1, "smith").Return(nil)
			},
		},
		{
			name:     "Non-owner gets not found",
			id:       1,
			username: "mallory",
			mockStorageFn: func(m *mock_storage.MockSongStorage) {
				m.EXPECT().Delete(gomock.Any(), 1, "mallory").Return(storage.SongNotFoundForUser(1, "mallory"))
			},
			expectedErr: storage.ErrSongNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSongs := mock_storage.NewMockSongStorage(ctrl)
			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockSongs)

			serviceInstance := service.NewSongService(mockSongs, mockUsers)

			err := serviceInstance.DeleteSong(context.Background(), tc.id, tc.username)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
