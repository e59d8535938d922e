package customerrors

import "errors"

var (
	// storage
	ErrNotFound            = errors.New("record not found")
	ErrEmailTaken          = errors.New("email already taken")
	ErrActiveSessionExists = errors.New("active time tracking session already exists")

	// usecase
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)
