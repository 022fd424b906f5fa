package core

import "errors"

// Error kinds surfaced by the engine. Handlers map these onto HTTP status
// codes; everything else is treated as a storage failure and passed through
// wrapped.
var (
	ErrNotFound          = errors.New("record not found")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrMailNotConfigured = errors.New("mail delivery not configured")
	ErrMailProvider      = errors.New("mail provider rejected the request")
)
