package models

import "errors"

var (
	ErrMissingSecret    = errors.New("session secret is not configured")
	ErrMalformedToken   = errors.New("malformed session token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenGeneration  = errors.New("error generating session token")
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRevoked  = errors.New("session revoked")
	ErrSessionInvalid  = errors.New("session invalid")
	ErrSessionCreating = errors.New("error creating session")
	ErrSessionUpdating = errors.New("error updating session")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPortalKey   = errors.New("invalid portal key")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is not active")
	ErrNotAdmin           = errors.New("user has no admin role")
	ErrLoginLocked        = errors.New("too many failed login attempts")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrDatabaseInsert     = errors.New("database insert error")
	ErrDatabaseUpdate     = errors.New("database update error")
	ErrDuplicateRecord    = errors.New("duplicate record")
)

var (
	ErrRedisGet = errors.New("redis get error")
	ErrRedisSet = errors.New("redis set error")
)
