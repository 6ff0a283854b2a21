// game/service/errors.go
package service

import "errors"

// Errors surfaced to the API layer, which maps them to HTTP responses.
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrFlagNotFound       = errors.New("flag not found")
	ErrNoActiveRound      = errors.New("no active round")
	ErrGroupFull          = errors.New("group is full")
	ErrDuplicateHandle    = errors.New("player already registered")
	ErrDuplicateFlagCode  = errors.New("flag code already exists")
	ErrInvalidFlagSet     = errors.New("flag set out of range")
	ErrInvalidPoints      = errors.New("flag points must be positive")
	ErrInvalidSession     = errors.New("invalid or inactive session")
	ErrSessionExpired     = errors.New("session has expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownTimeTarget  = errors.New("unknown add-time target")
)
