package auth

import "errors"

var (
	ErrDuplicateEmail      = errors.New("auth: email already registered")
	ErrInvalidCredentials  = errors.New("auth: invalid credentials")
	ErrAccountDeactivated  = errors.New("auth: account deactivated")
	ErrInvalidRefreshToken = errors.New("auth: invalid refresh token")
	ErrNotFound            = errors.New("auth: not found")
	ErrInvalidInput        = errors.New("auth: invalid input")

	// ErrInvalidToken indicates an access token failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
)
