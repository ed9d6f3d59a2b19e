package service

import "errors"

// Business-level errors. Handlers map these to HTTP status codes with
// errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrPermission      = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrUnsupportedType = errors.New("unsupported message type")
)
