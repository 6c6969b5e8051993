package users_test

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"polyphona/internal/api/handlers/users"
	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/service"
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

func TestCreateUserHandler_Unit(t *testing.T) {
	testCases := []struct {
		name           string
		requestBody    string
		mockStorageFn  func(m *mock_storage.MockUserStorage)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "Valid request",
			requestBody: `{"username": "smith", "first_name": "John", "last_name": "Smith", "password": "123"}`,
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().Exists(gomock.Any(), "smith").Return(false, nil)
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid request body",
			requestBody:    `invalid json`,
			mockStorageFn:  func(m *mock_storage.MockUserStorage) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:           "Missing password",
			requestBody:    `{"username": "smith", "first_name": "John", "last_name": "Smith"}`,
			mockStorageFn:  func(m *mock_storage.MockUserStorage) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Missing password field."}`,
		},
		{
			name:        "Username taken",
			requestBody: `{"username": "smith", "first_name": "John", "last_name": "Smith", "password": "123"}`,
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().Exists(gomock.Any(), "smith").Return(true, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"User smith already exists."}`,
		},
		{
			name:        "Storage error",
			requestBody: `{"username": "smith", "first_name": "John", "last_name": "Smith", "password": "123"}`,
			mockStorageFn: func(m *mock_storage.MockUserStorage) {
				m.EXPECT().Exists(gomock.Any(), "smith").Return(false, errors.New("storage error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Failed to create user"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockStorageFn(mockUsers)

			handler := users.NewUserHandlers(service.NewUserService(mockUsers))

			req := httptest.NewRequest("POST", "/users/", bytes.NewBufferString(tc.requestBody))
			w := httptest.NewRecorder()

			handler.CreateUserHandler(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, w.Body.String())
			}
		})
	}
}
