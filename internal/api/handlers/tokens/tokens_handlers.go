// internal/api/handlers/tokens/tokens_handlers.go
package tokens

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/lib/response"
	"polyphona/internal/models"
	"polyphona/internal/service"
	"polyphona/internal/storage"
)

type TokenHandlers struct {
	tokenService *service.TokenService
}

func NewTokenHandlers(tokenService *service.TokenService) *TokenHandlers {
	return &TokenHandlers{
		tokenService: tokenService,
	}
}

// @Summary Exchange credentials for a token
// @Description Issue a fresh bearer token for valid credentials. Unknown
// usernames and wrong passwords are indistinguishable.
// @Tags tokens
// @Accept json
// @Produce json
// @Param body body models.CreateTokenRequest true "Credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {string} string "Bad Request"
// @Failure 401 {string} string "Unauthorized"
// @Router /tokens/ [post]
func (h *TokenHandlers) CreateTokenHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("CreateTokenHandler called")

	var req models.CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("CreateTokenHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" {
		response.Error(w, http.StatusBadRequest, "Missing username field.")
		return
	}
	if req.Password == "" {
		response.Error(w, http.StatusBadRequest, "Missing password field.")
		return
	}

	result, err := h.tokenService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		utils.Logger.Error("CreateTokenHandler - tokenService.Login failed", zap.Error(err), zap.String("username", req.Username))
		response.Error(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	response.JSON(w, http.StatusOK, result)
	utils.Logger.Info("CreateTokenHandler - token issued", zap.String("username", req.Username))
}

// @Summary Delete a token
// @Description Log out by deleting the token.
// @Tags tokens
// @Produce json
// @Param token path string true "Token"
// @Success 204 "No Content"
// @Failure 404 {string} string "Not Found"
// @Router /tokens/{token} [delete]
func (h *TokenHandlers) DeleteTokenHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("DeleteTokenHandler called")

	token := mux.Vars(r)["token"]

	if err := h.tokenService.Logout(r.Context(), token); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			response.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Logger.Error("DeleteTokenHandler - tokenService.Logout failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to delete token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
	utils.Logger.Info("DeleteTokenHandler - token deleted successfully")
}
