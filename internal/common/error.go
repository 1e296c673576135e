// Package common defines shared constants, sentinel errors and small helpers
// used across Secura components. Callers should use errors.Is to match the
// error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrOwnerNotFound = errors.New("owner not found")
	ErrEmailTaken    = errors.New("email already registered")

	// Vault-level errors.
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrForbidden       = errors.New("forbidden")

	// Cipher engine errors. ErrIntegrity means the authentication tag did
	// not verify: tampered ciphertext, wrong key, or corrupted storage.
	ErrIntegrity      = errors.New("integrity check failed")
	ErrMalformedInput = errors.New("malformed nonce or tag")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors (malformed or missing request fields).
	ErrValidation = errors.New("validation error")

	// Generic/internal flow control.
	ErrInternal = errors.New("internal error")
)
