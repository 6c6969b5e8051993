// internal/api/router.go
package api

import (
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"polyphona/internal/api/handlers/songs"
	"polyphona/internal/api/handlers/tokens"
	"polyphona/internal/api/handlers/users"
	"polyphona/internal/api/middleware"
)

// NewRouter wires every route. Song reads/writes sit behind the token
// middleware; registration, login and the per-user song listing do not.
func NewRouter(
	songHandlers *songs.SongHandlers,
	userHandlers *users.UserHandlers,
	tokenHandlers *tokens.TokenHandlers,
	resolver middleware.TokenResolver,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", songHandlers.HealthCheckHandler).Methods("GET")

	router.HandleFunc("/users/", userHandlers.CreateUserHandler).Methods("POST")
	router.HandleFunc("/users/{username}/songs", songHandlers.GetUserSongsHandler).Methods("GET")

	router.HandleFunc("/tokens/", tokenHandlers.CreateTokenHandler).Methods("POST")
	router.HandleFunc("/tokens/{token}", tokenHandlers.DeleteTokenHandler).Methods("DELETE")

	authed := router.PathPrefix("/songs").Subrouter()
	authed.Use(middleware.RequireToken(resolver))
	authed.HandleFunc("/", songHandlers.AddSongHandler).Methods("POST")
	authed.HandleFunc("/{id}", songHandlers.GetSongHandler).Methods("GET")
	authed.HandleFunc("/{id}", songHandlers.UpdateSongHandler).Methods("PUT")
	authed.HandleFunc("/{id}", songHandlers.DeleteSongHandler).Methods("DELETE")

	// Swagger documentation
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return router
}
