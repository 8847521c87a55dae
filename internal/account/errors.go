package account

import "errors"

var (
	// ErrNotFound indicates an unknown username.
	ErrNotFound = errors.New("account not found")

	// ErrAlreadyExists indicates a duplicate username on creation.
	ErrAlreadyExists = errors.New("username already taken")

	// ErrInvalidFormat covers malformed PINs and empty required fields.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrMismatch indicates the two PIN confirmations differ.
	ErrMismatch = errors.New("pin confirmation mismatch")
)
