package domain

import "errors"

// Sentinel errors shared across services. The HTTP layer maps each one to a
// deterministic status code in internal/api/error_handler.go.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("user not found")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrAgentDisabled      = errors.New("agent access disabled")
	ErrCreditsExhausted   = errors.New("credits exhausted")
	ErrRoadmapNotFound    = errors.New("roadmap not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrSelfAction         = errors.New("cannot perform this action on your own account")
)
