package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameAlreadyExists indicates that the username is taken.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrWrongPassword indicates that the given password is invalid.
	ErrWrongPassword = errors.New("wrong password")
)

// User holds user login data.
type User struct {
	Username       string    `json:"username"`
	HashedPassword string    `json:"hashed_password"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserWithoutPassword holds user data without sensitive information.
type UserWithoutPassword struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserParams is the input data for creating a user.
type CreateUserParams struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
}
