// internal/api/handlers/users/users_handlers.go
package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/lib/response"
	"polyphona/internal/models"
	"polyphona/internal/service"
	"polyphona/internal/storage"
)

type UserHandlers struct {
	userService *service.UserService
}

func NewUserHandlers(userService *service.UserService) *UserHandlers {
	return &UserHandlers{
		userService: userService,
	}
}

// @Summary Register a new user
// @Description Create a user account. Accounts are immutable once created.
// @Tags users
// @Accept json
// @Produce json
// @Param body body models.CreateUserRequest true "User details"
// @Success 201 "Created"
// @Failure 400 {string} string "Bad Request"
// @Router /users/ [post]
func (h *UserHandlers) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("CreateUserHandler called")

	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("CreateUserHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"username", req.Username},
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"password", req.Password},
	} {
		if field.value == "" {
			response.Error(w, http.StatusBadRequest, fmt.Sprintf("Missing %s field.", field.name))
			return
		}
	}

	if err := h.userService.Register(r.Context(), &req); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			response.Error(w, http.StatusBadRequest, fmt.Sprintf("User %s already exists.", req.Username))
			return
		}
		utils.Logger.Error("CreateUserHandler - userService.Register failed", zap.Error(err), zap.String("username", req.Username))
		response.Error(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	w.WriteHeader(http.StatusCreated)
	utils.Logger.Info("CreateUserHandler - user created successfully", zap.String("username", req.Username))
}
