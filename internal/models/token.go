// internal/models/token.go
package models

import "time"

// Token is a bearer credential. RefreshDate marks the end of its validity
// window; expired rows are removed by the token sweep.
type Token struct {
	Token       string    `json:"token"`
	Username    string    `json:"username"`
	RefreshDate time.Time `json:"refresh_date"`
}

// CreateTokenRequest is the request body for POST /tokens/.
type CreateTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the response body for a successful POST /tokens/.
type TokenResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
