package services

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrConsentRequired    = errors.New("user has not consented to data collection")
	ErrDuplicateEntry     = errors.New("entry already exists for this date")
	ErrConfirmationText   = errors.New("confirmation text does not match")
	ErrNLPUnavailable     = errors.New("sentiment service unavailable")
)
