package apperrors

import (
	"errors"
)

var (
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidCredential    = errors.New("invalid credential")

	// Session errors. Expired and invalid tokens are reported to callers the same way,
	// but stay distinguishable for logs and tests
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrTokenInvalid           = errors.New("token is invalid")
	ErrTokenExpired           = errors.New("token is expired")
	ErrRefreshTokenSuperseded = errors.New("refresh token is superseded")

	ErrChannelNotFound  = errors.New("channel not found")
	ErrSelfSubscription = errors.New("can't subscribe to own channel")

	ErrVideoNotFound = errors.New("video not found")
	ErrForbidden     = errors.New("forbidden")

	ErrMediaKeyInvalid = errors.New("media key is invalid")
)
