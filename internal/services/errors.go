package services

import "errors"

var (
	ErrExpiredOrInvalidCode = errors.New("verification code is invalid or expired")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrCodeSpaceExhausted   = errors.New("could not allocate a free verification code")
)
