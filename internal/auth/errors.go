package auth

import "errors"

var (
	// ErrTokenInvalid is returned for any token that fails verification.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrSecretTooShort is returned when signing with a weak secret.
	ErrSecretTooShort = errors.New("auth: signing secret too short")
)
