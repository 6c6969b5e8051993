package service_test

import (
	"context"
	"testing"

	"polyphona/internal/models"
	"polyphona/internal/service"
	"polyphona/internal/storage"
	mock_storage "polyphona/internal/storage/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestUserService_Register(t *testing.T) {
	request := &models.CreateUserRequest{
		Username:  "smith",
		FirstName: "John",
		LastName:  "Smith",
		Password:  "123",
	}

	testCases := []struct {
		name          string
		mockStorageFn func(m *mock_storage.MockUserStorage)
		expectedErr   error
	}{
		{
			name: "New username",
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().Exists(gomock.Any(), "smith").Return(false, nil)
				m.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, user *models.User) error {
						assert.Equal(t, "smith", user.Username)
						assert.Equal(t, "John", user.FirstName)
						assert.Equal(t, "Smith", user.LastName)
						return nil
					})
			},
		},
		{
			name: "Taken username",
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().Exists(gomock.Any(), "smith").Return(true, nil)
			},
			expectedErr: storage.ErrUserExists,
		},
		{
			name: "Race lost on insert",
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().Exists(gomock.Any(), "smith").Return(false, nil)
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(storage.ErrUserExists)
			},
			expectedErr: storage.ErrUserExists,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockUsers)

			serviceInstance := service.NewUserService(mockUsers)

			err := serviceInstance.Register(context.Background(), request)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserService_Get(t *testing.T) {
	testCases := []struct {
		name          string
		username      string
		mockStorageFn func(m *mock_storage.MockUserStorage)
		expectedErr   error
	}{
		{
			name:     "Known user",
			username: "smith",
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().GetByUsername(gomock.Any(), "smith").Return(&models.User{Username: "smith", FirstName: "John", LastName: "Smith"}, nil)
			},
		},
		{
			name:     "Unknown user",
			username: "ghost",
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, storage.UserNotFound("ghost"))
			},
			expectedErr: storage.ErrUserNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockUsers)

			serviceInstance := service.NewUserService(mockUsers)

			user, err := serviceInstance.Get(context.Background(), tc.username)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.username, user.Username)
			}
		})
	}
}
