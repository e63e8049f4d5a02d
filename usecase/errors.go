package usecase

import "errors"

// ErrValidation marks request problems the caller can fix (HTTP 400)
var ErrValidation = errors.New("validation failed")
