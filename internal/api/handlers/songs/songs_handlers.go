// internal/api/handlers/songs/songs_handlers.go
package songs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"polyphona/internal/api/middleware"
	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/lib/response"
	"polyphona/internal/models"
	"polyphona/internal/service"
	"polyphona/internal/storage"
)

type SongHandlers struct {
	songService *service.SongService
}

func NewSongHandlers(songService *service.SongService) *SongHandlers {
	return &SongHandlers{
		songService: songService,
	}
}

// @Summary Create a new song
// @Description Create a song owned by the authenticated user.
// @Tags songs
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param body body models.SongPayload true "Song name and tracks"
// @Success 201 {object} models.Song
// @Failure 400 {string} string "Bad Request"
// @Failure 401 {string} string "Unauthorized"
// @Router /songs/ [post]
func (h *SongHandlers) AddSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("AddSongHandler called")

	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req models.SongPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("AddSongHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, "Missing name field.")
		return
	}
	if len(req.Tracks) == 0 {
		response.Error(w, http.StatusBadRequest, "Missing tracks field.")
		return
	}

	addedSong, err := h.songService.AddSong(r.Context(), username, &req)
	if err != nil {
		utils.Logger.Error("AddSongHandler - songService.AddSong failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to add song")
		return
	}

	response.JSON(w, http.StatusCreated, addedSong)
	utils.Logger.Info("AddSongHandler - song added successfully", zap.Int("song_id", addedSong.ID), zap.String("username", username))
}

// @Summary Get song by ID
// @Description Get the full song document by its ID.
// @Tags songs
// @Produce json
// @Security TokenAuth
// @Param id path int true "Song ID"
// @Success 200 {object} models.Song
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Not Found"
// @Router /songs/{id} [get]
func (h *SongHandlers) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("GetSongHandler called")

	id, ok := songID(w, r)
	if !ok {
		return
	}

	song, err := h.songService.GetSong(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			response.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Logger.Error("GetSongHandler - songService.GetSong failed", zap.Error(err), zap.Int("id", id))
		response.Error(w, http.StatusInternalServerError, "Failed to get song")
		return
	}

	response.JSON(w, http.StatusOK, song)
	utils.Logger.Debug("GetSongHandler - song retrieved", zap.Int("song_id", song.ID))
}

// @Summary List a user's songs
// @Description List all songs linked to a user, in creation order. This
// endpoint is deliberately unauthenticated.
// @Tags songs
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Song
// @Failure 404 {string} string "Not Found"
// @Router /users/{username}/songs [get]
func (h *SongHandlers) GetUserSongsHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("GetUserSongsHandler called")

	username := mux.Vars(r)["username"]

	songs, err := h.songService.ListUserSongs(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Logger.Error("GetUserSongsHandler - songService.ListUserSongs failed", zap.Error(err), zap.String("username", username))
		response.Error(w, http.StatusInternalServerError, "Failed to list songs")
		return
	}

	response.JSON(w, http.StatusOK, songs)
	utils.Logger.Debug("GetUserSongsHandler - songs retrieved", zap.String("username", username), zap.Int("count", len(songs)))
}

// @Summary Update song by ID
// @Description Update a song's name and tracks. The song must be owned by the
// authenticated user; a song that exists but is not owned reports the same
// 404 as a missing one.
// @Tags songs
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Song ID"
// @Param body body models.SongPayload true "New song name and tracks"
// @Success 200 {object} models.Song
// @Failure 400 {string} string "Bad Request"
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Not Found"
// @Router /songs/{id} [put]
func (h *SongHandlers) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("UpdateSongHandler called")

	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := songID(w, r)
	if !ok {
		return
	}

	var req models.SongPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("UpdateSongHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, "Missing name field.")
		return
	}
	if len(req.Tracks) == 0 {
		response.Error(w, http.StatusBadRequest, "Missing tracks field.")
		return
	}

	updatedSong, err := h.songService.UpdateSong(r.Context(), id, username, &req)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			response.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Logger.Error("UpdateSongHandler - songService.UpdateSong failed", zap.Error(err), zap.Int("id", id))
		response.Error(w, http.StatusInternalServerError, "Failed to update song")
		return
	}

	response.JSON(w, http.StatusOK, updatedSong)
	utils.Logger.Info("UpdateSongHandler - song updated successfully", zap.Int("song_id", updatedSong.ID), zap.String("username", username))
}

// @Summary Delete song by ID
// @Description Delete a song owned by the authenticated user, together with
// its ownership links.
// @Tags songs
// @Produce json
// @Security TokenAuth
// @Param id path int true "Song ID"
// @Success 204 "No Content"
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Not Found"
// @Router /songs/{id} [delete]
func (h *SongHandlers) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("DeleteSongHandler called")

	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	id, ok := songID(w, r)
	if !ok {
		return
	}

	err := h.songService.DeleteSong(r.Context(), id, username)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			response.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Logger.Error("DeleteSongHandler - songService.DeleteSong failed", zap.Error(err), zap.Int("id", id))
		response.Error(w, http.StatusInternalServerError, "Failed to delete song")
		return
	}

	w.WriteHeader(http.StatusNoContent)
	utils.Logger.Info("DeleteSongHandler - song deleted successfully", zap.Int("song_id", id), zap.String("username", username))
}

func (h *SongHandlers) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// songID parses the {id} path variable, answering 400 itself on garbage.
func songID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.Logger.Warn("invalid song ID", zap.String("id", idStr))
		response.Error(w, http.StatusBadRequest, "Invalid song ID")
		return 0, false
	}
	return id, true
}
