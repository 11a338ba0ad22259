package errorvalues

import "errors"

var (
	// Wrapped around concrete field errors, rejected before any mutation
	ErrValidation = errors.New("validation error")

	ErrEmailExists      = errors.New("user with such email already exists")
	ErrUsernameExists   = errors.New("user with such username already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong email or password")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")

	ErrCategoryNotFound = errors.New("category doesn't exists")
	ErrTagNotFound      = errors.New("tag doesn't exists")
	ErrTagExists        = errors.New("tag with such name already exists")

	ErrWorkLogNotFound = errors.New("work log doesn't exists")
	ErrLocalIDExists   = errors.New("work log with such local id already exists")

	ErrAnnouncementNotFound = errors.New("announcement doesn't exists")
	ErrDeviceNotFound       = errors.New("device doesn't exists")

	// Row exists but belongs to a different user
	ErrWrongOwner = errors.New("resource has different owner")
)
