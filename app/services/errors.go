package services

import (
	"errors"
	"fmt"
)

// Sentinel errors. Controllers and resolvers map them to status codes;
// everything else in this package wraps one of them.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidPrice = fmt.Errorf("%w: special price must be positive and lower than the product price", ErrValidation)
	ErrNotFound     = errors.New("product not found")
	ErrPersistence  = errors.New("store unavailable")
)
