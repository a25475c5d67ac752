package domain

import "errors"

// ErrValidation marks a request that can never be delivered as given.
var ErrValidation = errors.New("validation error")
