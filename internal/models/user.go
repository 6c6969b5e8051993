// internal/models/user.go
package models

// User is an account holder. Password is stored as-is (see the storage
// package notes) and must never be serialized into responses.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"-"`
}

// CreateUserRequest is the request body for POST /users/.
type CreateUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}
